package responsestore

import (
	"gorm.io/gorm"

	dbmodels "assessment-tools-backend/models/db"
)

type Provider interface {
	// Create записывает ответ кандидата; повторная запись по той же паре
	// (кандидат, вопрос) отклоняется уникальным индексом
	Create(rec dbmodels.CandidateResponse) error
	ListByCandidateID(candidateID string) (list []dbmodels.CandidateResponse, err error)
	CountCorrect(candidateID string) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.CandidateResponse) error {
	return i.db.
		Create(&rec).
		Error
}

func (i impl) ListByCandidateID(candidateID string) (list []dbmodels.CandidateResponse, err error) {
	err = i.db.
		Where("candidate_id = ?", candidateID).
		Order("answered_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) CountCorrect(candidateID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.CandidateResponse{}).
		Where("candidate_id = ?", candidateID).
		Where("is_correct = true").
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
