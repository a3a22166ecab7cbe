package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	dbmodels "assessment-tools-backend/models/db"
)

func AutoMigrateDB() error {
	DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Assessment{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Assessment")
	}
	if err := DB.AutoMigrate(&dbmodels.AssessmentQuestion{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры AssessmentQuestion")
	}
	if err := DB.AutoMigrate(&dbmodels.Candidate{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Candidate")
	}
	if err := DB.AutoMigrate(&dbmodels.CandidateResponse{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры CandidateResponse")
	}
	if err := DB.AutoMigrate(&dbmodels.PushData{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры PushData")
	}
	log.Info("Миграция прошла успешно")
	return nil
}
