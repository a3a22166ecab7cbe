package questionstore

import (
	"gorm.io/gorm"

	dbmodels "assessment-tools-backend/models/db"
)

type Provider interface {
	// ReplaceAll заменяет пул вопросов теста единой транзакцией
	ReplaceAll(assessmentID string, recs []dbmodels.AssessmentQuestion) error
	ListByAssessmentID(assessmentID string) (list []dbmodels.AssessmentQuestion, err error)
	GetByIDs(ids []string) (list []dbmodels.AssessmentQuestion, err error)
	CountByAssessmentID(assessmentID string) (count int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) ReplaceAll(assessmentID string, recs []dbmodels.AssessmentQuestion) error {
	return i.db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("assessment_id = ?", assessmentID).
			Delete(&dbmodels.AssessmentQuestion{}).
			Error
		if err != nil {
			return err
		}
		return tx.Create(&recs).Error
	})
}

func (i impl) ListByAssessmentID(assessmentID string) (list []dbmodels.AssessmentQuestion, err error) {
	err = i.db.
		Where("assessment_id = ?", assessmentID).
		Order("question_number").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) GetByIDs(ids []string) (list []dbmodels.AssessmentQuestion, err error) {
	err = i.db.
		Where("id in (?)", ids).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) CountByAssessmentID(assessmentID string) (count int64, err error) {
	err = i.db.
		Model(&dbmodels.AssessmentQuestion{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
