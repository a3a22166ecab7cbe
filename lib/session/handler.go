package session

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/db"
	assessmentstore "assessment-tools-backend/lib/assessment/store"
	questionstore "assessment-tools-backend/lib/question/store"
	"assessment-tools-backend/lib/scoring"
	candidatestore "assessment-tools-backend/lib/session/candidate-store"
	responsestore "assessment-tools-backend/lib/session/response-store"
	"assessment-tools-backend/models"
	sessionapimodels "assessment-tools-backend/models/api/session"
	dbmodels "assessment-tools-backend/models/db"
)

// answerGraceSeconds - допуск на сетевую задержку при проверке таймера на сервере
const answerGraceSeconds = 2

type Provider interface {
	GetPublicAssessment(token string) (view *sessionapimodels.AssessmentPublicView, hMsg string, err error)
	// StartSession назначает кандидату случайные 20 вопросов из пула и открывает сессию
	StartSession(token string, data sessionapimodels.StartSessionRequest) (view *sessionapimodels.StartSessionView, hMsg string, err error)
	GetSession(token, candidateID string) (view *sessionapimodels.SessionView, hMsg string, err error)
	// Answer записывает ответ на текущий вопрос и сдвигает курсор.
	// Ответ записывается строго до сдвига курсора: при ошибке записи курсор
	// не двигается и клиент может повторить отправку
	Answer(token, candidateID string, data sessionapimodels.AnswerRequest) (view *sessionapimodels.SessionView, hMsg string, err error)
	// Interrupt - сигнал потери видимости вкладки, принудительное завершение
	Interrupt(token, candidateID string) (hMsg string, err error)
	Result(token, candidateID string) (view *sessionapimodels.ResultView, hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		assessmentStore: assessmentstore.NewInstance(db.DB),
		questionStore:   questionstore.NewInstance(db.DB),
		candidateStore:  candidatestore.NewInstance(db.DB),
		responseStore:   responsestore.NewInstance(db.DB),
		rnd:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type impl struct {
	assessmentStore assessmentstore.Provider
	questionStore   questionstore.Provider
	candidateStore  candidatestore.Provider
	responseStore   responsestore.Provider
	rnd             *rand.Rand
}

func (i *impl) GetPublicAssessment(token string) (*sessionapimodels.AssessmentPublicView, string, error) {
	rec, hMsg, err := i.getByToken(token)
	if err != nil || hMsg != "" {
		return nil, hMsg, err
	}
	count, err := i.questionStore.CountByAssessmentID(rec.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения размера пула вопросов")
	}
	view := sessionapimodels.AssessmentPublicView{
		Title:          rec.Title,
		Description:    rec.Description,
		AssessmentType: string(rec.AssessmentType),
		Language:       rec.Language,
		QuestionCount:  int(count),
		TotalQuestions: models.AssignmentSize,
		SecondsPerItem: models.QuestionPeriodSeconds,
		IsReady:        count > 0,
		MobileOnly:     rec.MobileOnly,
	}
	return &view, "", nil
}

func (i *impl) StartSession(token string, data sessionapimodels.StartSessionRequest) (*sessionapimodels.StartSessionView, string, error) {
	rec, hMsg, err := i.getByToken(token)
	if err != nil || hMsg != "" {
		return nil, hMsg, err
	}
	if rec.MobileOnly && data.Device != "" && data.Device != "mobile" {
		// барьер от прохождения с запрещенного устройства, проверяется до старта
		return nil, "тест доступен только с мобильного устройства", nil
	}
	pool, err := i.questionStore.ListByAssessmentID(rec.ID)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения пула вопросов")
	}
	if len(pool) == 0 {
		return nil, "вопросы еще готовятся, попробуйте позже", nil
	}

	assigned := drawAssignment(pool, i.rnd)
	ids := make([]string, 0, len(assigned))
	for _, q := range assigned {
		ids = append(ids, q.ID)
	}
	now := time.Now()
	candidate := dbmodels.Candidate{
		AssessmentID:        rec.ID,
		FullName:            strings.TrimSpace(data.FullName),
		Email:               strings.ToLower(strings.TrimSpace(data.Email)),
		AssignedQuestionIDs: ids,
		CurrentIndex:        0,
		QuestionStartedAt:   &now,
		StartedAt:           now,
	}
	id, err := i.candidateStore.Create(candidate)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка создания кандидата")
	}
	log.
		WithField("assessment_id", rec.ID).
		WithField("candidate_id", id).
		Info("сессия начата")

	view := sessionapimodels.StartSessionView{
		CandidateID:    id,
		Questions:      make([]sessionapimodels.QuestionView, 0, len(assigned)),
		SecondsPerItem: models.QuestionPeriodSeconds,
	}
	for idx, q := range assigned {
		view.Questions = append(view.Questions, toQuestionView(q, idx+1))
	}
	return &view, "", nil
}

func (i *impl) GetSession(token, candidateID string) (*sessionapimodels.SessionView, string, error) {
	rec, candidate, hMsg, err := i.getSessionRecs(token, candidateID)
	if err != nil || hMsg != "" {
		return nil, hMsg, err
	}
	assigned, err := i.assignedQuestions(*candidate)
	if err != nil {
		return nil, "", err
	}
	if err = i.catchUp(candidate, assigned, time.Now()); err != nil {
		return nil, "", err
	}
	view := i.toSessionView(*rec, *candidate, assigned)
	return &view, "", nil
}

func (i *impl) Answer(token, candidateID string, data sessionapimodels.AnswerRequest) (*sessionapimodels.SessionView, string, error) {
	rec, candidate, hMsg, err := i.getSessionRecs(token, candidateID)
	if err != nil || hMsg != "" {
		return nil, hMsg, err
	}
	assigned, err := i.assignedQuestions(*candidate)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	if err = i.catchUp(candidate, assigned, now); err != nil {
		return nil, "", err
	}
	if candidate.IsCompleted() {
		view := i.toSessionView(*rec, *candidate, assigned)
		return &view, "", nil
	}
	if data.QuestionID != "" && data.QuestionID != candidate.CurrentQuestionID() {
		// защита от повторной отправки: ответ на уже закрытый вопрос не перезаписывается
		return nil, "вопрос уже закрыт", nil
	}
	selected := strings.ToUpper(strings.TrimSpace(data.SelectedAnswer))
	if selected != "" && !isAllowedAnswer(selected, assigned[candidate.CurrentIndex]) {
		return nil, "недопустимый вариант ответа", nil
	}

	rawElapsed := 0
	if candidate.QuestionStartedAt != nil {
		rawElapsed = int(now.Sub(*candidate.QuestionStartedAt).Seconds())
	}
	machine := Restore(len(assigned), models.QuestionPeriodSeconds, candidate.CurrentIndex,
		models.QuestionPeriodSeconds-rawElapsed, false, "")
	var effects []Effect
	if rawElapsed >= models.QuestionPeriodSeconds+answerGraceSeconds {
		effects, err = machine.Timeout()
	} else {
		effects, err = machine.Answer(selected)
	}
	if err != nil {
		return nil, "", err
	}
	if err = i.applyEffects(candidate, assigned, effects, now); err != nil {
		return nil, "", err
	}
	view := i.toSessionView(*rec, *candidate, assigned)
	return &view, "", nil
}

func (i *impl) Interrupt(token, candidateID string) (string, error) {
	_, candidate, hMsg, err := i.getSessionRecs(token, candidateID)
	if err != nil || hMsg != "" {
		return hMsg, err
	}
	if candidate.IsCompleted() {
		// сессия уже завершена, повторный сигнал игнорируется
		return "", nil
	}
	machine := Restore(len(candidate.AssignedQuestionIDs), models.QuestionPeriodSeconds,
		candidate.CurrentIndex, models.QuestionPeriodSeconds, false, "")
	for _, effect := range machine.VisibilityLost() {
		if effect.Kind == EffectComplete {
			if err = scoring.Instance.Finalize(candidate.ID, effect.Reason); err != nil {
				return "", err
			}
		}
	}
	return "", nil
}

func (i *impl) Result(token, candidateID string) (*sessionapimodels.ResultView, string, error) {
	rec, candidate, hMsg, err := i.getSessionRecs(token, candidateID)
	if err != nil || hMsg != "" {
		return nil, hMsg, err
	}
	if !candidate.IsCompleted() {
		return nil, "сессия еще не завершена", nil
	}
	view := sessionapimodels.ResultView{
		CandidateID:      candidate.ID,
		CompletedAt:      candidate.CompletedAt,
		CompletionReason: string(candidate.CompletionReason),
		TotalScore:       candidate.TotalScore,
		ScoreOutOf:       models.AssignmentSize,
		AnalysisPending:  rec.IsLikert() && candidate.PsychometricAnalysis == nil,
	}
	if candidate.TotalScore != nil {
		percent := int(math.Round(float64(*candidate.TotalScore) / float64(models.AssignmentSize) * 100))
		view.Percent = &percent
	}
	return &view, "", nil
}

func (i *impl) getByToken(token string) (*dbmodels.Assessment, string, error) {
	rec, err := i.assessmentStore.GetByShareToken(token)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return nil, "тест не найден", nil
	}
	if rec.IsExpired(time.Now()) {
		return nil, "срок действия теста истек", nil
	}
	return rec, "", nil
}

func (i *impl) getSessionRecs(token, candidateID string) (*dbmodels.Assessment, *dbmodels.Candidate, string, error) {
	rec, hMsg, err := i.getByToken(token)
	if err != nil || hMsg != "" {
		return nil, nil, hMsg, err
	}
	candidate, err := i.candidateStore.GetByID(candidateID)
	if err != nil {
		return nil, nil, "", errors.Wrap(err, "ошибка получения кандидата")
	}
	if candidate == nil || candidate.AssessmentID != rec.ID {
		return nil, nil, "сессия не найдена", nil
	}
	return rec, candidate, "", nil
}

// assignedQuestions материализует назначенные вопросы в порядке назначения
func (i *impl) assignedQuestions(candidate dbmodels.Candidate) ([]dbmodels.AssessmentQuestion, error) {
	list, err := i.questionStore.GetByIDs(candidate.AssignedQuestionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения вопросов кандидата")
	}
	byID := make(map[string]dbmodels.AssessmentQuestion, len(list))
	for _, q := range list {
		byID[q.ID] = q
	}
	ordered := make([]dbmodels.AssessmentQuestion, 0, len(candidate.AssignedQuestionIDs))
	for _, id := range candidate.AssignedQuestionIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// catchUp закрывает вопросы, у которых период истек пока клиент был недоступен:
// каждый истекший период дает автоответ, как если бы таймер дошел до нуля
func (i *impl) catchUp(candidate *dbmodels.Candidate, assigned []dbmodels.AssessmentQuestion, now time.Time) error {
	for !candidate.IsCompleted() && candidate.QuestionStartedAt != nil {
		if candidate.CurrentIndex >= len(assigned) {
			// все ответы записаны, но финализация не сохранилась; довершаем
			if err := scoring.Instance.Finalize(candidate.ID, models.CompletionNatural); err != nil {
				return err
			}
			completedAt := now
			candidate.CompletedAt = &completedAt
			candidate.CompletionReason = models.CompletionNatural
			return nil
		}
		elapsed := int(now.Sub(*candidate.QuestionStartedAt).Seconds())
		if elapsed < models.QuestionPeriodSeconds+answerGraceSeconds {
			return nil
		}
		machine := Restore(len(assigned), models.QuestionPeriodSeconds, candidate.CurrentIndex, 0, false, "")
		effects, err := machine.Timeout()
		if err != nil {
			return err
		}
		closedAt := candidate.QuestionStartedAt.Add(time.Duration(models.QuestionPeriodSeconds) * time.Second)
		if err = i.applyEffects(candidate, assigned, effects, closedAt); err != nil {
			return err
		}
	}
	return nil
}

// applyEffects выполняет эффекты перехода машины состояний.
// Запись ответа предшествует сдвигу курсора: при ошибке вставки курсор
// остается на месте и инвариант "один ответ на показанный вопрос" сохранен
func (i *impl) applyEffects(candidate *dbmodels.Candidate, assigned []dbmodels.AssessmentQuestion, effects []Effect, answeredAt time.Time) error {
	for _, effect := range effects {
		switch effect.Kind {
		case EffectRecordResponse:
			draft := effect.Record
			question := assigned[draft.Cursor]
			responseRec := dbmodels.CandidateResponse{
				CandidateID:      candidate.ID,
				QuestionID:       question.ID,
				SelectedAnswer:   draft.Selected,
				IsCorrect:        !question.IsLikert() && !draft.TimedOut && draft.Selected != "" && draft.Selected == question.CorrectAnswer,
				TimeTakenSeconds: draft.Elapsed,
				AnsweredAt:       answeredAt,
			}
			if err := i.responseStore.Create(responseRec); err != nil {
				return errors.Wrap(err, "ошибка записи ответа")
			}
			newIndex := draft.Cursor + 1
			if err := i.candidateStore.Advance(candidate.ID, newIndex, answeredAt); err != nil {
				return errors.Wrap(err, "ошибка сдвига курсора")
			}
			candidate.CurrentIndex = newIndex
			started := answeredAt
			candidate.QuestionStartedAt = &started
		case EffectComplete:
			if err := scoring.Instance.Finalize(candidate.ID, effect.Reason); err != nil {
				return err
			}
			completedAt := answeredAt
			candidate.CompletedAt = &completedAt
			candidate.CompletionReason = effect.Reason
		}
	}
	return nil
}

func (i *impl) toSessionView(rec dbmodels.Assessment, candidate dbmodels.Candidate, assigned []dbmodels.AssessmentQuestion) sessionapimodels.SessionView {
	view := sessionapimodels.SessionView{
		CandidateID:    candidate.ID,
		State:          "in_progress",
		CurrentIndex:   candidate.CurrentIndex,
		TotalQuestions: len(assigned),
	}
	if candidate.IsCompleted() {
		view.State = "completed"
		return view
	}
	if candidate.CurrentIndex < len(assigned) {
		q := toQuestionView(assigned[candidate.CurrentIndex], candidate.CurrentIndex+1)
		view.Question = &q
		view.RemainingSeconds = clamp(models.QuestionPeriodSeconds-elapsedSeconds(candidate, time.Now()), 0, models.QuestionPeriodSeconds)
	}
	return view
}

// drawAssignment - случайная перестановка пула, первые 20 становятся назначением
func drawAssignment(pool []dbmodels.AssessmentQuestion, rnd *rand.Rand) []dbmodels.AssessmentQuestion {
	perm := rnd.Perm(len(pool))
	size := models.AssignmentSize
	if size > len(pool) {
		size = len(pool)
	}
	assigned := make([]dbmodels.AssessmentQuestion, 0, size)
	for _, idx := range perm[:size] {
		assigned = append(assigned, pool[idx])
	}
	return assigned
}

func elapsedSeconds(candidate dbmodels.Candidate, now time.Time) int {
	if candidate.QuestionStartedAt == nil {
		return 0
	}
	return clamp(int(now.Sub(*candidate.QuestionStartedAt).Seconds()), 0, models.QuestionPeriodSeconds)
}

func isAllowedAnswer(selected string, question dbmodels.AssessmentQuestion) bool {
	allowed := []string{"A", "B", "C", "D"}
	if question.IsLikert() {
		allowed = append(allowed, "E")
	}
	for _, letter := range allowed {
		if selected == letter {
			return true
		}
	}
	return false
}

func toQuestionView(q dbmodels.AssessmentQuestion, number int) sessionapimodels.QuestionView {
	view := sessionapimodels.QuestionView{
		ID:       q.ID,
		Number:   number,
		Text:     q.QuestionText,
		IsLikert: q.IsLikert(),
	}
	letters := []string{"A", "B", "C", "D"}
	if q.IsLikert() {
		letters = append(letters, "E")
	}
	for _, letter := range letters {
		view.Options = append(view.Options, sessionapimodels.Option{Letter: letter, Text: q.Option(letter)})
	}
	return view
}
