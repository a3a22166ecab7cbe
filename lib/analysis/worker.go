package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/config"
	"assessment-tools-backend/db"
	yagptclient "assessment-tools-backend/lib/ai/yagpt-client"
	assessmentstore "assessment-tools-backend/lib/assessment/store"
	questionstore "assessment-tools-backend/lib/question/store"
	candidatestore "assessment-tools-backend/lib/session/candidate-store"
	"assessment-tools-backend/lib/utils/lock"
	dbmodels "assessment-tools-backend/models/db"
)

// генерация анализа личности по ответам на опросник Ликерта
func StartWorker(ctx context.Context) {
	i := &impl{
		aiClient:        yagptclient.NewClient(config.Conf.YandexGPT.IAMToken, config.Conf.YandexGPT.CatalogID),
		candidateStore:  candidatestore.NewInstance(db.DB),
		questionStore:   questionstore.NewInstance(db.DB),
		assessmentStore: assessmentstore.NewInstance(db.DB),
	}
	go i.run(ctx)
}

const (
	handlePeriod = 1 * time.Minute
)

type impl struct {
	aiClient        yagptclient.Provider
	candidateStore  candidatestore.Provider
	questionStore   questionstore.Provider
	assessmentStore assessmentstore.Provider
}

func (i impl) getLogger() *log.Entry {
	logger := log.
		WithField("worker_name", "PsychometricAnalysisWorker")
	return logger
}

func (i impl) run(ctx context.Context) {
	period := 10 * time.Second
	logger := i.getLogger()
	for {
		select {
		// проверяем не завершён ли ещё контекст и выходим, если завершён
		case <-ctx.Done():
			logger.Info("Задача остановлена")
			return
		case <-time.After(period):
			logger.Info("Задача запущена")
			i.handle(ctx)
			logger.Info("Задача выполнена")
		}
		period = handlePeriod
	}
}

func (i impl) handle(ctx context.Context) {
	logger := i.getLogger()
	//Получаем список кандидатов, ожидающих анализ личности
	list, err := i.candidateStore.ListForAnalysis()
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка кандидатов для анализа")
		return
	}
	for _, candidate := range list {
		if ctx.Err() != nil {
			return
		}
		err = i.analyze(ctx, candidate)
		if err != nil {
			logger.WithError(err).
				WithField("candidate_id", candidate.ID).
				Error("ошибка генерации анализа личности")
			continue
		}
		logger.
			WithField("candidate_id", candidate.ID).
			Info("сгенерирован анализ личности кандидата")
	}
}

func (i impl) analyze(ctx context.Context, candidate dbmodels.Candidate) error {
	rec, err := i.candidateStore.GetByIDWithResponses(candidate.ID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения ответов кандидата")
	}
	assessment, err := i.assessmentStore.GetByID(rec.AssessmentID)
	if err != nil {
		return errors.Wrap(err, "ошибка получения теста")
	}
	if !assessment.IsLikert() {
		// защита от некорректно выставленного флага: снимаем запрос без генерации
		return i.candidateStore.SetAnalysis(rec.ID, "")
	}
	questions, err := i.questionStore.GetByIDs([]string(rec.AssignedQuestionIDs))
	if err != nil {
		return errors.Wrap(err, "ошибка получения вопросов")
	}
	promt, text := buildAnalysisPrompt(*assessment, *rec, questions)
	if !lock.Resource.Acquire(ctx, "PsychometricAnalysis") {
		return errors.New("контекст завершен до захвата ресурса ИИ")
	}
	generated, err := i.aiClient.GenerateByPromtAndText(ctx, promt, text)
	lock.Resource.Release("PsychometricAnalysis")
	if err != nil {
		return errors.Wrap(err, "ошибка сервиса генерации")
	}
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return errors.New("сервис генерации вернул пустой анализ")
	}
	return i.candidateStore.SetAnalysis(rec.ID, generated)
}

// buildAnalysisPrompt собирает системный промт и текст с ответами кандидата.
// Пропущенные по таймауту утверждения помечаются отдельно
func buildAnalysisPrompt(assessment dbmodels.Assessment, candidate dbmodels.Candidate, questions []dbmodels.AssessmentQuestion) (promt string, text string) {
	subtype := ""
	if assessment.PsychometricType != nil {
		subtype = assessment.PsychometricType.Title()
	}
	langName := "испанском"
	if assessment.Language == "en" {
		langName = "английском"
	}
	promt = fmt.Sprintf("Ты - организационный психолог. Кандидат прошел психометрический опросник «%s» по шкале Ликерта из 5 пунктов "+
		"(A - полностью не согласен, B - не согласен, C - нейтрально, D - согласен, E - полностью согласен). "+
		"Составь профессиональный анализ личности кандидата на %s языке: 3-4 абзаца, сильные стороны, зоны роста, "+
		"рекомендации для работодателя. Не упоминай буквы ответов, пиши связным текстом.", subtype, langName)

	byID := make(map[string]dbmodels.AssessmentQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	answered := make(map[string]string, len(candidate.Responses))
	for _, resp := range candidate.Responses {
		answered[resp.QuestionID] = resp.SelectedAnswer
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Кандидат: %s\n", candidate.FullName))
	for num, id := range candidate.AssignedQuestionIDs {
		q, ok := byID[id]
		if !ok {
			continue
		}
		answer, ok := answered[id]
		if !ok || answer == "" {
			sb.WriteString(fmt.Sprintf("%d. %s — без ответа (истекло время)\n", num+1, q.QuestionText))
			continue
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %s (%s)\n", num+1, q.QuestionText, answer, q.Option(answer)))
	}
	text = sb.String()
	return promt, text
}
