package question

import "github.com/pkg/errors"

// Ошибки генерации пула. При любой из них тест остается без вопросов,
// повторный вызов генерации допустим
var (
	ErrGenerationUnavailable  = errors.New("сервис генерации вопросов недоступен")
	ErrGenerationMalformed    = errors.New("ответ сервиса генерации не разобран")
	ErrGenerationInsufficient = errors.New("сервис генерации вернул недостаточно вопросов")
)
