package assessmentapimodels

import (
	"strings"
	"time"

	"assessment-tools-backend/models"

	"github.com/pkg/errors"
)

type AssessmentData struct {
	Title            string                  `json:"title"`             // Название теста
	Description      string                  `json:"description"`       // Описание для кандидата
	AssessmentType   models.AssessmentType   `json:"assessment_type"`   // hard_skills/soft_skills/psychometric
	CustomTopic      string                  `json:"custom_topic"`      // Тема для hard/soft skills, включая сеньорность и навыки
	PsychometricType models.PsychometricType `json:"psychometric_type"` // Тип психометрического теста
	Language         string                  `json:"language"`          // Язык теста es/en
	CreatorEmail     string                  `json:"creator_email"`     // Email создателя, для привязки теста к аккаунту
	MobileOnly       bool                    `json:"mobile_only"`       // Разрешить прохождение только с мобильного устройства
	ExpiresAt        *time.Time              `json:"expires_at"`        // Срок действия ссылки
}

func (r AssessmentData) Validate() error {
	if !r.AssessmentType.IsValid() {
		return errors.New("не указан тип теста")
	}
	switch r.AssessmentType {
	case models.AssessmentTypePsychometric:
		if !r.PsychometricType.IsValid() {
			return errors.New("не указан тип психометрического теста")
		}
	default:
		if strings.TrimSpace(r.Title) == "" {
			return errors.New("не указано название теста")
		}
		if strings.TrimSpace(r.CustomTopic) == "" {
			return errors.New("не указана тема теста")
		}
		if len([]rune(r.CustomTopic)) > models.TopicMaxLen {
			return errors.Errorf("тема теста превышает %v символов", models.TopicMaxLen)
		}
	}
	if r.Language != "" && r.Language != "es" && r.Language != "en" {
		return errors.New("неподдерживаемый язык теста")
	}
	return nil
}

type AssessmentView struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description,omitempty"`
	AssessmentType   models.AssessmentType    `json:"assessment_type"`
	PsychometricType *models.PsychometricType `json:"psychometric_type,omitempty"`
	Language         string                   `json:"language"`
	ShareToken       string                   `json:"share_token"`
	QuestionCount    int                      `json:"question_count"` // 0 - пул еще генерируется
	CandidateCount   int                      `json:"candidate_count"`
	IsClaimed        bool                     `json:"is_claimed"`
	CreatedAt        time.Time                `json:"created_at"`
	ExpiresAt        *time.Time               `json:"expires_at,omitempty"`
}

type AssessmentDetailView struct {
	AssessmentView
	Candidates []CandidateResultView `json:"candidates"`
}

type CandidateResultView struct {
	ID               string     `json:"id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CompletionReason string     `json:"completion_reason,omitempty"`
	TotalScore       *int       `json:"total_score,omitempty"`
	ScoreOutOf       int        `json:"score_out_of"`              // номинальный знаменатель, всегда 20
	Percent          *int       `json:"percent,omitempty"`         // round(score/20*100)
	Analysis         *string    `json:"analysis,omitempty"`        // анализ личности для тестов Ликерта
	ResponseCount    int        `json:"response_count"`
}

type InviteRequest struct {
	Email string `json:"email"` // Email кандидата для отправки ссылки
}

func (r InviteRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("не указан email кандидата")
	}
	return nil
}
