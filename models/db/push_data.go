package dbmodels

// PushData - отложенные события для рекрутеров без активного ws-соединения
type PushData struct {
	BaseModel
	UserID string `gorm:"type:varchar(36);index:idx_user"`
	Code   string `gorm:"type:varchar(255)"`
	Msg    string
	Title  string
}
