package pdfexport

import (
	"bytes"
	"fmt"
	"html"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
)

// GenerateCandidateReport формирует pdf с результатом кандидата.
// Для опросников Ликерта вместо баллов выводится анализ личности
func GenerateCandidateReport(rec dbmodels.Assessment, candidate dbmodels.Candidate) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateCandidateReport panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "static/font/")
	pdf.AddPage()
	pdf.AddUTF8Font("Arial", "", "Arial.ttf")
	pdf.AddUTF8Font("Arial", "B", "Arial Bold.ttf")
	pdf.SetFont("Arial", "B", 16)
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	pdf.MultiCell(0, 8, rec.Title, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 12)
	_, lineHt := pdf.GetFontSize()
	htmlStr := fmt.Sprintf("<b>Кандидат:</b> %v<br>", html.EscapeString(candidate.FullName)) +
		fmt.Sprintf("<b>Email:</b> %v<br>", html.EscapeString(candidate.Email)) +
		fmt.Sprintf("<b>Начало:</b> %v<br>", candidate.StartedAt.Format("02.01.2006 15:04"))
	if candidate.CompletedAt != nil {
		htmlStr += fmt.Sprintf("<b>Завершение:</b> %v<br>", candidate.CompletedAt.Format("02.01.2006 15:04")) +
			fmt.Sprintf("<b>Статус:</b> %v<br>", candidate.CompletionReason.Title())
	} else {
		htmlStr += "<b>Статус:</b> В процессе<br>"
	}
	htmlWriter := pdf.HTMLBasicNew()
	htmlWriter.Write(lineHt, htmlStr)
	pdf.Ln(6)

	if candidate.TotalScore != nil {
		percent := int(float64(*candidate.TotalScore)/float64(models.AssignmentSize)*100 + 0.5)
		pdf.SetFont("Arial", "B", 14)
		pdf.MultiCell(0, 8, fmt.Sprintf("Результат: %v из %v (%v%%)", *candidate.TotalScore, models.AssignmentSize, percent), "", "L", false)
		pdf.Ln(4)
	}

	if candidate.PsychometricAnalysis != nil && *candidate.PsychometricAnalysis != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.MultiCell(0, 8, "Анализ личности", "", "L", false)
		pdf.SetFont("Arial", "", 12)
		pdf.MultiCell(0, 6, *candidate.PsychometricAnalysis, "", "L", false)
	}

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
