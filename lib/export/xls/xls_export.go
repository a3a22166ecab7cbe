package xlsexport

import (
	"bytes"
	"fmt"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportCandidateResults(rec dbmodels.Assessment) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var resultHeaders = []string{"ФИО", "Email", "Дата начала", "Дата завершения", "Статус", "Баллы", "Процент"}

func (i impl) ExportCandidateResults(rec dbmodels.Assessment) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, resultHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(rec.Candidates) != 0 {
		row, err = writeResultData(f, sheet, rec.Candidates, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	f.SetSheetName(sheet, "Результаты")
	return f.WriteToBuffer()
}

func writeResultData(f *excelize.File, sheet string, list []dbmodels.Candidate, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(resultHeaders), len(list)+1); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "ФИО"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.FullName); err != nil {
			return row, err
		}

		// "Email"
		col++
		if err := writeColumn(f, sheet, col, row, item.Email); err != nil {
			return row, err
		}

		// "Дата начала"
		col++
		if err := writeColumn(f, sheet, col, row, item.StartedAt.Format("02.01.2006 15:04")); err != nil {
			return row, err
		}

		// "Дата завершения"
		col++
		if item.CompletedAt != nil {
			if err := writeColumn(f, sheet, col, row, item.CompletedAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}

		// "Статус"
		col++
		status := "В процессе"
		if item.IsCompleted() {
			status = item.CompletionReason.Title()
		}
		if err := writeColumn(f, sheet, col, row, status); err != nil {
			return row, err
		}

		// "Баллы"
		col++
		if item.TotalScore != nil {
			score := fmt.Sprintf("%v из %v", *item.TotalScore, models.AssignmentSize)
			if err := writeColumn(f, sheet, col, row, score); err != nil {
				return row, err
			}
		}

		// "Процент"
		col++
		if item.TotalScore != nil {
			percent := int(float64(*item.TotalScore)/float64(models.AssignmentSize)*100 + 0.5)
			if err := writeColumn(f, sheet, col, row, fmt.Sprintf("%v%%", percent)); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
