package dbmodels

import "assessment-tools-backend/models"

type AssessmentQuestion struct {
	BaseModel
	AssessmentID   string `gorm:"type:varchar(36);index"`
	QuestionNumber int    // порядковый номер в пуле, 1..50
	QuestionText   string `gorm:"type:text"`
	OptionA        string `gorm:"type:text"`
	OptionB        string `gorm:"type:text"`
	OptionC        string `gorm:"type:text"`
	OptionD        string `gorm:"type:text"`
	OptionE        string `gorm:"type:text"` // только для 5-балльной шкалы Ликерта
	CorrectAnswer  string `gorm:"type:varchar(10)"` // A..D, либо LIKERT для вопросов без правильного ответа
}

func (q AssessmentQuestion) IsLikert() bool {
	return q.CorrectAnswer == models.LikertSentinel
}

// Option возвращает текст варианта по букве ответа
func (q AssessmentQuestion) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	case "E":
		return q.OptionE
	}
	return ""
}

func (q *AssessmentQuestion) SetOption(letter, text string) {
	switch letter {
	case "A":
		q.OptionA = text
	case "B":
		q.OptionB = text
	case "C":
		q.OptionC = text
	case "D":
		q.OptionD = text
	case "E":
		q.OptionE = text
	}
}
