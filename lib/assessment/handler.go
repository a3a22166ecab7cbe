package assessment

import (
	"bytes"
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/config"
	"assessment-tools-backend/db"
	assessmentstore "assessment-tools-backend/lib/assessment/store"
	pdfexport "assessment-tools-backend/lib/export/pdf"
	xlsexport "assessment-tools-backend/lib/export/xls"
	"assessment-tools-backend/lib/notify"
	"assessment-tools-backend/lib/question"
	questionstore "assessment-tools-backend/lib/question/store"
	"assessment-tools-backend/lib/smtp"
	connectionhub "assessment-tools-backend/lib/ws/hub/connection-hub"
	"assessment-tools-backend/models"
	assessmentapimodels "assessment-tools-backend/models/api/assessment"
	dbmodels "assessment-tools-backend/models/db"
	wsmodels "assessment-tools-backend/models/ws"
)

type Provider interface {
	Create(ctx context.Context, userID string, data assessmentapimodels.AssessmentData) (id string, hMsg string, err error)
	List(userID string, page, limit int) (list []assessmentapimodels.AssessmentView, rowCount int64, err error)
	Get(userID, id string) (view *assessmentapimodels.AssessmentDetailView, hMsg string, err error)
	Delete(userID, id string) (hMsg string, err error)
	Claim(userID, email string) (claimed int64, err error)
	Regenerate(ctx context.Context, userID, id string) (hMsg string, err error)
	Invite(userID, id, email string) (hMsg string, err error)
	// ExportResults - выгрузка результатов кандидатов в xlsx
	ExportResults(userID, id string) (file *bytes.Buffer, hMsg string, err error)
	// CandidateReport - pdf отчет по кандидату
	CandidateReport(userID, id, candidateID string) (file []byte, hMsg string, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:         assessmentstore.NewInstance(db.DB),
		questionStore: questionstore.NewInstance(db.DB),
	}
}

type impl struct {
	store         assessmentstore.Provider
	questionStore questionstore.Provider
}

func (i impl) Create(ctx context.Context, userID string, data assessmentapimodels.AssessmentData) (id string, hMsg string, err error) {
	rec := dbmodels.Assessment{
		CreatorEmail:   strings.ToLower(strings.TrimSpace(data.CreatorEmail)),
		Title:          data.Title,
		Description:    data.Description,
		AssessmentType: data.AssessmentType,
		Language:       data.Language,
		ShareToken:     uuid.NewString(),
		ExpiresAt:      data.ExpiresAt,
		MobileOnly:     data.MobileOnly,
	}
	if rec.Language == "" {
		rec.Language = "es"
	}
	if userID != "" {
		rec.RecruiterID = &userID
	} else if rec.CreatorEmail == "" {
		return "", "для теста без аккаунта требуется email создателя", nil
	}
	switch data.AssessmentType {
	case models.AssessmentTypePsychometric:
		pt := data.PsychometricType
		rec.PsychometricType = &pt
		rec.Title = pt.Title()
	default:
		topic := data.CustomTopic
		rec.CustomTopic = &topic
	}

	id, err = i.store.Create(rec)
	if err != nil {
		return "", "", errors.Wrap(err, "ошибка создания теста")
	}
	rec.ID = id

	// генерация пула выполняется в фоне, пока пул пуст тест считается "еще готовится"
	go func() {
		genErr := question.Instance.GeneratePool(context.Background(), id)
		if genErr != nil {
			log.WithField("assessment_id", id).WithError(genErr).Error("ошибка генерации пула вопросов")
			return
		}
		if rec.RecruiterID != nil {
			connectionhub.Instance.SendOrQueue(wsmodels.ServerMessage{
				ToUserID: *rec.RecruiterID,
				Time:     time.Now().Format("02.01.2006 15:04:05"),
				Code:     wsmodels.CodePoolReady,
				Msg:      "Вопросы теста готовы: " + rec.Title,
			})
		}
	}()
	notify.Instance.AssessmentCreated(rec)
	return id, "", nil
}

func (i impl) List(userID string, page, limit int) (list []assessmentapimodels.AssessmentView, rowCount int64, err error) {
	recs, rowCount, err := i.store.ListByOwner(userID, page, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "ошибка получения списка тестов")
	}
	list = make([]assessmentapimodels.AssessmentView, 0, len(recs))
	for _, rec := range recs {
		count, err := i.questionStore.CountByAssessmentID(rec.ID)
		if err != nil {
			return nil, 0, errors.Wrap(err, "ошибка получения размера пула вопросов")
		}
		view := toView(rec)
		view.QuestionCount = int(count)
		list = append(list, view)
	}
	return list, rowCount, nil
}

func (i impl) Get(userID, id string) (*assessmentapimodels.AssessmentDetailView, string, error) {
	rec, err := i.store.GetByIDFull(id)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return nil, "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return nil, "нет доступа к тесту", nil
	}
	view := assessmentapimodels.AssessmentDetailView{
		AssessmentView: toView(*rec),
		Candidates:     make([]assessmentapimodels.CandidateResultView, 0, len(rec.Candidates)),
	}
	view.QuestionCount = len(rec.Questions)
	view.CandidateCount = len(rec.Candidates)
	for _, candidate := range rec.Candidates {
		view.Candidates = append(view.Candidates, ToCandidateResultView(candidate))
	}
	return &view, "", nil
}

func (i impl) Delete(userID, id string) (hMsg string, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return "нет доступа к тесту", nil
	}
	err = i.store.Delete(id)
	if err != nil {
		return "", errors.Wrap(err, "ошибка удаления теста")
	}
	return "", nil
}

func (i impl) Claim(userID, email string) (claimed int64, err error) {
	if email == "" {
		return 0, errors.New("в токене отсутствует email")
	}
	claimed, err = i.store.ClaimByEmail(strings.ToLower(email), userID)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка привязки тестов к аккаунту")
	}
	if claimed > 0 {
		log.
			WithField("user_id", userID).
			WithField("claimed", claimed).
			Info("тесты привязаны к аккаунту")
	}
	return claimed, nil
}

func (i impl) Regenerate(ctx context.Context, userID, id string) (hMsg string, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return "нет доступа к тесту", nil
	}
	count, err := i.questionStore.CountByAssessmentID(id)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения размера пула вопросов")
	}
	if count > 0 {
		return "пул вопросов уже сгенерирован", nil
	}
	err = question.Instance.GeneratePool(ctx, id)
	if err != nil {
		return "", err
	}
	return "", nil
}

func (i impl) Invite(userID, id, email string) (hMsg string, err error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return "нет доступа к тесту", nil
	}
	link := config.Conf.App.PublicHost + "/take/" + rec.ShareToken
	message := "Вас пригласили пройти оценку: " + rec.Title + "\nСсылка: " + link
	err = smtp.Instance.SendEMail(rec.CreatorEmail, email, message, "Приглашение на оценку")
	if err != nil {
		return "", errors.Wrap(err, "ошибка отправки приглашения")
	}
	return "", nil
}

func (i impl) ExportResults(userID, id string) (*bytes.Buffer, string, error) {
	rec, err := i.store.GetByIDFull(id)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return nil, "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return nil, "нет доступа к тесту", nil
	}
	file, err := xlsexport.Instance.ExportCandidateResults(*rec)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка выгрузки результатов в xlsx")
	}
	return file, "", nil
}

func (i impl) CandidateReport(userID, id, candidateID string) ([]byte, string, error) {
	rec, err := i.store.GetByIDFull(id)
	if err != nil {
		return nil, "", errors.Wrap(err, "ошибка получения теста")
	}
	if rec == nil {
		return nil, "тест не найден", nil
	}
	if !rec.IsOwnedBy(userID) {
		return nil, "нет доступа к тесту", nil
	}
	for _, candidate := range rec.Candidates {
		if candidate.ID == candidateID {
			file, err := pdfexport.GenerateCandidateReport(*rec, candidate)
			if err != nil {
				return nil, "", errors.Wrap(err, "ошибка формирования pdf отчета")
			}
			return file, "", nil
		}
	}
	return nil, "кандидат не найден", nil
}

func toView(rec dbmodels.Assessment) assessmentapimodels.AssessmentView {
	return assessmentapimodels.AssessmentView{
		ID:               rec.ID,
		Title:            rec.Title,
		Description:      rec.Description,
		AssessmentType:   rec.AssessmentType,
		PsychometricType: rec.PsychometricType,
		Language:         rec.Language,
		ShareToken:       rec.ShareToken,
		IsClaimed:        rec.RecruiterID != nil,
		CreatedAt:        rec.CreatedAt,
		ExpiresAt:        rec.ExpiresAt,
	}
}

// ToCandidateResultView - результат кандидата для рекрутера.
// Знаменатель всегда номинальные 20 вопросов, даже при принудительном завершении
func ToCandidateResultView(rec dbmodels.Candidate) assessmentapimodels.CandidateResultView {
	view := assessmentapimodels.CandidateResultView{
		ID:               rec.ID,
		FullName:         rec.FullName,
		Email:            rec.Email,
		StartedAt:        rec.StartedAt,
		CompletedAt:      rec.CompletedAt,
		CompletionReason: string(rec.CompletionReason),
		TotalScore:       rec.TotalScore,
		ScoreOutOf:       models.AssignmentSize,
		Analysis:         rec.PsychometricAnalysis,
		ResponseCount:    len(rec.Responses),
	}
	if rec.TotalScore != nil {
		percent := int(math.Round(float64(*rec.TotalScore) / float64(models.AssignmentSize) * 100))
		view.Percent = &percent
	}
	return view
}
