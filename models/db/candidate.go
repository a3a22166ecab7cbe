package dbmodels

import (
	"time"

	"assessment-tools-backend/models"

	"github.com/lib/pq"
)

type Candidate struct {
	BaseModel
	AssessmentID         string                  `gorm:"type:varchar(36);index"`
	FullName             string                  `gorm:"type:varchar(255)"`
	Email                string                  `gorm:"type:varchar(255)"`
	AssignedQuestionIDs  pq.StringArray          `gorm:"type:text[]"` // 20 вопросов, выбранных из пула, в порядке показа
	CurrentIndex         int                     // курсор текущего вопроса, 0..20
	QuestionStartedAt    *time.Time              // момент показа текущего вопроса
	StartedAt            time.Time
	CompletedAt          *time.Time
	CompletionReason     models.CompletionReason `gorm:"type:varchar(20)"`
	TotalScore           *int                    // null для тестов без объективной оценки
	PsychometricAnalysis *string                 `gorm:"type:text"`
	AnalysisRequested    bool                    `gorm:"index"` // ожидает генерации анализа личности

	Responses []CandidateResponse `gorm:"constraint:OnDelete:CASCADE"`
}

func (c Candidate) IsCompleted() bool {
	return c.CompletedAt != nil
}

// CurrentQuestionID - идентификатор еще не отвеченного вопроса
func (c Candidate) CurrentQuestionID() string {
	if c.CurrentIndex < 0 || c.CurrentIndex >= len(c.AssignedQuestionIDs) {
		return ""
	}
	return c.AssignedQuestionIDs[c.CurrentIndex]
}
