package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"assessment-tools-backend/config"
	connectionhub "assessment-tools-backend/lib/ws/hub/connection-hub"
	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
	wsmodels "assessment-tools-backend/models/ws"
)

// Уведомления для рекрутеров: вебхуки Slack и Google Sheets плюс ws-пуш.
// Все отправки best-effort и не влияют на сохраненное состояние сессии

type Provider interface {
	AssessmentCreated(rec dbmodels.Assessment)
	CandidateCompleted(rec dbmodels.Assessment, candidate dbmodels.Candidate)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		slackURL:  config.Conf.Notify.SlackWebhookURL,
		sheetsURL: config.Conf.Notify.SheetsWebhookURL,
	}
}

type impl struct {
	slackURL  string
	sheetsURL string
}

func (i impl) AssessmentCreated(rec dbmodels.Assessment) {
	go func() {
		payload := map[string]interface{}{
			"text": fmt.Sprintf("Создан тест: %s (%s)", rec.Title, rec.AssessmentType),
		}
		i.deliver(i.slackURL, payload, "slack")
	}()
}

func (i impl) CandidateCompleted(rec dbmodels.Assessment, candidate dbmodels.Candidate) {
	scoreDisplay := "анализ готовится"
	if candidate.TotalScore != nil {
		scoreDisplay = fmt.Sprintf("%d/%d", *candidate.TotalScore, models.AssignmentSize)
	}
	reason := "прошел все вопросы"
	if candidate.CompletionReason.IsForced() {
		reason = "завершен принудительно: " + string(candidate.CompletionReason)
	}
	go func() {
		slackPayload := map[string]interface{}{
			"text": fmt.Sprintf("Кандидат завершил тест\nКандидат: %s (%s)\nТест: %s\nРезультат: %s\nЗавершение: %s",
				candidate.FullName, candidate.Email, rec.Title, scoreDisplay, reason),
		}
		i.deliver(i.slackURL, slackPayload, "slack")

		sheetsPayload := map[string]interface{}{
			"candidateName":    candidate.FullName,
			"candidateEmail":   candidate.Email,
			"assessmentTitle":  rec.Title,
			"assessmentType":   string(rec.AssessmentType),
			"score":            scoreDisplay,
			"completionReason": string(candidate.CompletionReason),
			"completedAt":      time.Now().Format(time.RFC3339),
		}
		i.deliver(i.sheetsURL, sheetsPayload, "sheets")
	}()
	// пуш владельцу теста, для офлайн-рекрутера событие откладывается в БД
	if rec.RecruiterID != nil {
		connectionhub.Instance.SendOrQueue(wsmodels.ServerMessage{
			ToUserID: *rec.RecruiterID,
			Time:     time.Now().Format("02.01.2006 15:04:05"),
			Code:     wsmodels.CodeCandidateCompleted,
			Msg:      fmt.Sprintf("%s завершил тест %s: %s", candidate.FullName, rec.Title, scoreDisplay),
		})
	}
}

const maxRedirects = 5

// deliver отправляет вебхук, вручную следуя цепочке редиректов
// с ограничением глубины; скрипты Sheets отвечают redirect-ами
func (i impl) deliver(url string, payload interface{}, sink string) {
	logger := log.WithField("sink", sink)
	if url == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("ошибка сериализации уведомления")
		return
	}
	client := http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	for attempt := 0; attempt <= maxRedirects; attempt++ {
		resp, err := client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.WithError(err).Error("ошибка отправки уведомления")
			return
		}
		location := resp.Header.Get("Location")
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 && resp.StatusCode < 400 && location != "" {
			// Location может быть относительным
			next, err := resp.Request.URL.Parse(location)
			if err != nil {
				logger.WithError(err).Error("некорректный адрес редиректа при отправке уведомления")
				return
			}
			url = next.String()
			continue
		}
		if resp.StatusCode >= 400 {
			logger.WithField("status", resp.StatusCode).Error("уведомление отклонено приемником")
		}
		return
	}
	logger.Error("превышена глубина редиректов при отправке уведомления")
}
