package question

import (
	"fmt"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
)

const objectiveFormat = `Формат каждого вопроса - JSON:
{
  "question": "текст вопроса",
  "options": {"A": "вариант A", "B": "вариант B", "C": "вариант C", "D": "вариант D"},
  "correct": "A/B/C/D"
}
Верни ТОЛЬКО JSON-массив из %d вопросов, без пояснений.`

const likertFormat = `Формат каждого утверждения - JSON:
{"question": "текст утверждения"}
Верни ТОЛЬКО JSON-массив из %d утверждений, без пояснений.`

func buildPrompt(rec dbmodels.Assessment) (systemPromt, userPromt string) {
	lang := "испанском"
	if rec.Language == "en" {
		lang = "английском"
	}
	switch rec.AssessmentType {
	case models.AssessmentTypeHardSkills:
		systemPromt = "Ты - эксперт по составлению технических тестов для найма."
		userPromt = fmt.Sprintf(
			"Составь %d вопросов с выбором ответа по теме: %s. Язык вопросов - %s. "+
				"У каждого вопроса 4 варианта и ровно один правильный ответ, сложность нарастает. ",
			models.PoolSize, topicOf(rec), lang) + fmt.Sprintf(objectiveFormat, models.PoolSize)
	case models.AssessmentTypeSoftSkills:
		systemPromt = "Ты - эксперт по оценке soft skills."
		userPromt = fmt.Sprintf(
			"Составь %d сценарных вопросов для оценки soft skills по теме: %s. Язык вопросов - %s. "+
				"Каждый вопрос описывает рабочую ситуацию, 4 подхода к ней и один лучший по профессиональным практикам. ",
			models.PoolSize, topicOf(rec), lang) + fmt.Sprintf(objectiveFormat, models.PoolSize)
	case models.AssessmentTypePsychometric:
		pt := models.PsychometricWonderlic
		if rec.PsychometricType != nil {
			pt = *rec.PsychometricType
		}
		if pt.IsLikert() {
			systemPromt = "Ты - эксперт по психометрическим методикам."
			userPromt = fmt.Sprintf(
				"Составь %d утверждений для методики %s, оцениваемых по 5-балльной шкале согласия. Язык - %s. ",
				models.PoolSize, pt.Title(), lang) + fmt.Sprintf(likertFormat, models.PoolSize)
		} else {
			systemPromt = "Ты - эксперт по когнитивным тестам."
			userPromt = fmt.Sprintf(
				"Составь %d вопросов когнитивного теста %s: логика, счет, скорость обучения. Язык вопросов - %s. "+
					"У каждого вопроса 4 варианта и ровно один правильный ответ. ",
				models.PoolSize, pt.Title(), lang) + fmt.Sprintf(objectiveFormat, models.PoolSize)
		}
	}
	return systemPromt, userPromt
}

func topicOf(rec dbmodels.Assessment) string {
	if rec.CustomTopic != nil && *rec.CustomTopic != "" {
		return *rec.CustomTopic
	}
	return rec.Title
}
