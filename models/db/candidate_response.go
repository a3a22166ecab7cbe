package dbmodels

import "time"

type CandidateResponse struct {
	BaseModel
	CandidateID      string `gorm:"type:varchar(36);index:idx_candidate_question,unique"`
	QuestionID       string `gorm:"type:varchar(36);index:idx_candidate_question,unique"`
	SelectedAnswer   string `gorm:"type:varchar(5)"` // A..E, пусто при авто-ответе по таймауту
	IsCorrect        bool   // фиксируется в момент записи ответа, при финализации не пересчитывается
	TimeTakenSeconds int
	AnsweredAt       time.Time `gorm:"index"`
}
