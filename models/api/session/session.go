package sessionapimodels

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type StartSessionRequest struct {
	FullName string `json:"full_name"` // Имя кандидата
	Email    string `json:"email"`     // Email кандидата
	Device   string `json:"device"`    // Форм-фактор устройства: mobile/desktop/tablet
}

func (r StartSessionRequest) Validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return errors.New("не указано имя кандидата")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("не указан email кандидата")
	}
	return nil
}

type AnswerRequest struct {
	QuestionID     string `json:"question_id"`     // Идентификатор текущего вопроса, защита от повторной отправки
	SelectedAnswer string `json:"selected_answer"` // A..E, пусто при истечении времени
}

// QuestionView - вопрос для показа кандидату, без правильного ответа
type QuestionView struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"` // позиция в назначении кандидата, 1..20
	Text     string   `json:"text"`
	Options  []Option `json:"options"`
	IsLikert bool     `json:"is_likert"`
}

type Option struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// StartSessionView - ответ на старт сессии: кандидат и его 20 вопросов
// в назначенном порядке, без правильных ответов
type StartSessionView struct {
	CandidateID    string         `json:"candidate_id"`
	Questions      []QuestionView `json:"questions"`
	SecondsPerItem int            `json:"seconds_per_item"`
}

type SessionView struct {
	CandidateID      string        `json:"candidate_id"`
	State            string        `json:"state"` // in_progress/completed
	CurrentIndex     int           `json:"current_index"`
	TotalQuestions   int           `json:"total_questions"`
	RemainingSeconds int           `json:"remaining_seconds"`
	Question         *QuestionView `json:"question,omitempty"`
}

type ResultView struct {
	CandidateID      string     `json:"candidate_id"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CompletionReason string     `json:"completion_reason,omitempty"`
	TotalScore       *int       `json:"total_score,omitempty"`
	ScoreOutOf       int        `json:"score_out_of"`
	Percent          *int       `json:"percent,omitempty"`
	AnalysisPending  bool       `json:"analysis_pending"` // анализ личности еще готовится
}

// AssessmentPublicView - данные теста по публичному токену
type AssessmentPublicView struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	AssessmentType string `json:"assessment_type"`
	Language       string `json:"language"`
	QuestionCount  int    `json:"question_count"`
	TotalQuestions int    `json:"total_questions"`  // кол-во вопросов в сессии
	SecondsPerItem int    `json:"seconds_per_item"` // время на вопрос
	IsReady        bool   `json:"is_ready"`         // false - пул вопросов еще генерируется
	MobileOnly     bool   `json:"mobile_only"`
}
