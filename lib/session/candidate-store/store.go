package candidatestore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Candidate) (id string, err error)
	GetByID(id string) (rec *dbmodels.Candidate, err error)
	GetByIDWithResponses(id string) (rec *dbmodels.Candidate, err error)
	// Advance сдвигает курсор на следующий вопрос; вызывается только после
	// успешной записи ответа на текущий
	Advance(id string, newIndex int, questionStartedAt time.Time) error
	// CompleteIfOpen атомарно завершает сессию, если она еще не завершена.
	// Разрешает гонку монитора честности с естественным завершением
	CompleteIfOpen(id string, completedAt time.Time, reason models.CompletionReason, score *int, analysisRequested bool) (completed bool, err error)
	ListExpired(before time.Time) (list []dbmodels.Candidate, err error)
	ListForAnalysis() (list []dbmodels.Candidate, err error)
	SetAnalysis(id string, analysis string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Candidate) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Candidate, error) {
	rec := dbmodels.Candidate{}
	err := i.db.
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByIDWithResponses(id string) (*dbmodels.Candidate, error) {
	rec := dbmodels.Candidate{}
	err := i.db.
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("answered_at")
		}).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Advance(id string, newIndex int, questionStartedAt time.Time) error {
	return i.db.
		Model(&dbmodels.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_index":       newIndex,
			"question_started_at": questionStartedAt,
		}).
		Error
}

func (i impl) CompleteIfOpen(id string, completedAt time.Time, reason models.CompletionReason, score *int, analysisRequested bool) (bool, error) {
	tx := i.db.
		Model(&dbmodels.Candidate{}).
		Where("id = ?", id).
		Where("completed_at is null").
		Updates(map[string]interface{}{
			"completed_at":       completedAt,
			"completion_reason":  reason,
			"total_score":        score,
			"analysis_requested": analysisRequested,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) ListExpired(before time.Time) (list []dbmodels.Candidate, err error) {
	err = i.db.
		Where("completed_at is null").
		Where("question_started_at < ?", before).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListForAnalysis() (list []dbmodels.Candidate, err error) {
	err = i.db.
		Where("analysis_requested = true").
		Where("psychometric_analysis is null").
		Where("completed_at is not null").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) SetAnalysis(id string, analysis string) error {
	return i.db.
		Model(&dbmodels.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"psychometric_analysis": analysis,
			"analysis_requested":    false,
		}).
		Error
}
