package assessmentstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "assessment-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Assessment) (id string, err error)
	GetByID(id string) (rec *dbmodels.Assessment, err error)
	GetByIDFull(id string) (rec *dbmodels.Assessment, err error)
	GetByShareToken(token string) (rec *dbmodels.Assessment, err error)
	ListByOwner(recruiterID string, page, limit int) (list []dbmodels.Assessment, rowCount int64, err error)
	Delete(id string) error
	// ClaimByEmail привязывает к аккаунту все непривязанные тесты, созданные с этого email.
	// Повторная привязка уже привязанных тестов не выполняется
	ClaimByEmail(email, recruiterID string) (claimed int64, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Assessment) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Assessment, error) {
	rec := dbmodels.Assessment{}
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

func (i impl) GetByIDFull(id string) (*dbmodels.Assessment, error) {
	rec := dbmodels.Assessment{}
	err := i.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number")
		}).
		Preload("Candidates", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at desc")
		}).
		Preload("Candidates.Responses").
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

func (i impl) GetByShareToken(token string) (*dbmodels.Assessment, error) {
	rec := dbmodels.Assessment{}
	err := i.db.
		Where("share_token = ?", token).
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

func (i impl) ListByOwner(recruiterID string, page, limit int) (list []dbmodels.Assessment, rowCount int64, err error) {
	tx := i.db.
		Model(&dbmodels.Assessment{}).
		Where("recruiter_id = ?", recruiterID)
	err = tx.Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	err = tx.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}

func (i impl) Delete(id string) error {
	rec := dbmodels.Assessment{
		BaseModel: dbmodels.BaseModel{ID: id},
	}
	return i.db.
		Select("Questions", "Candidates").
		Delete(&rec).
		Error
}

func (i impl) ClaimByEmail(email, recruiterID string) (claimed int64, err error) {
	tx := i.db.
		Model(&dbmodels.Assessment{}).
		Where("creator_email = ?", email).
		Where("recruiter_id is null").
		Update("recruiter_id", recruiterID)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
