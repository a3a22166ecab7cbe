package scoring

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/db"
	assessmentstore "assessment-tools-backend/lib/assessment/store"
	"assessment-tools-backend/lib/notify"
	candidatestore "assessment-tools-backend/lib/session/candidate-store"
	responsestore "assessment-tools-backend/lib/session/response-store"
	"assessment-tools-backend/models"
)

type Provider interface {
	// Finalize вычисляет итоговый результат завершенной сессии.
	// Идемпотентен: уже завершенная сессия не изменяется, гонка
	// естественного и принудительного завершения решается в БД
	Finalize(candidateID string, reason models.CompletionReason) error
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		assessmentStore: assessmentstore.NewInstance(db.DB),
		candidateStore:  candidatestore.NewInstance(db.DB),
		responseStore:   responsestore.NewInstance(db.DB),
	}
}

type impl struct {
	assessmentStore assessmentstore.Provider
	candidateStore  candidatestore.Provider
	responseStore   responsestore.Provider
}

func (i impl) Finalize(candidateID string, reason models.CompletionReason) error {
	logger := log.
		WithField("candidate_id", candidateID).
		WithField("reason", reason)
	candidate, err := i.candidateStore.GetByID(candidateID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения кандидата")
	}
	if candidate == nil {
		return errors.New("кандидат не найден")
	}
	if candidate.IsCompleted() {
		return nil
	}
	assessmentRec, err := i.assessmentStore.GetByID(candidate.AssessmentID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения теста")
	}
	if assessmentRec == nil {
		return errors.New("тест не найден")
	}

	// корректность каждого ответа зафиксирована при записи,
	// здесь только агрегат
	isLikert := assessmentRec.IsLikert()
	var score *int
	if !isLikert {
		correct, err := i.responseStore.CountCorrect(candidateID)
		if err != nil {
			return errors.Wrap(err, "ошибка подсчета правильных ответов")
		}
		value := int(correct)
		score = &value
	}

	now := time.Now()
	completed, err := i.candidateStore.CompleteIfOpen(candidateID, now, reason, score, isLikert)
	if err != nil {
		return errors.Wrap(err, "ошибка завершения сессии")
	}
	if !completed {
		// другой путь завершения успел первым
		return nil
	}
	logger.Info("сессия завершена")
	candidate.CompletedAt = &now
	candidate.CompletionReason = reason
	candidate.TotalScore = score
	notify.Instance.CandidateCompleted(*assessmentRec, *candidate)
	return nil
}
