package dbmodels

import (
	"time"

	"assessment-tools-backend/models"
)

type Assessment struct {
	BaseModel
	RecruiterID      *string                  `gorm:"type:varchar(36);index"` // владелец, пусто пока тест не привязан к аккаунту
	CreatorEmail     string                   `gorm:"type:varchar(255);index"`
	Title            string                   `gorm:"type:varchar(255)"`
	Description      string                   `gorm:"type:text"`
	AssessmentType   models.AssessmentType    `gorm:"type:varchar(30);index"`
	CustomTopic      *string                  `gorm:"type:text"`
	PsychometricType *models.PsychometricType `gorm:"type:varchar(30)"`
	Language         string                   `gorm:"type:varchar(5);default:'es'"`
	ShareToken       string                   `gorm:"type:varchar(36);uniqueIndex"` // публичный идентификатор для кандидатов, неизменяемый
	ExpiresAt        *time.Time
	MobileOnly       bool

	Questions  []AssessmentQuestion `gorm:"constraint:OnDelete:CASCADE"`
	Candidates []Candidate          `gorm:"constraint:OnDelete:CASCADE"`
}

// IsLikert - пул теста состоит из утверждений по шкале Ликерта, без объективной оценки
func (a Assessment) IsLikert() bool {
	return a.AssessmentType == models.AssessmentTypePsychometric &&
		a.PsychometricType != nil && a.PsychometricType.IsLikert()
}

func (a Assessment) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

func (a Assessment) IsOwnedBy(userID string) bool {
	return a.RecruiterID != nil && *a.RecruiterID == userID
}
