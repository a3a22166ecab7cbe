package analysis

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"assessment-tools-backend/models"
	dbmodels "assessment-tools-backend/models/db"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	pt := models.PsychometricBigFive
	rec := dbmodels.Assessment{
		AssessmentType:   models.AssessmentTypePsychometric,
		PsychometricType: &pt,
		Language:         "es",
	}
	scale := models.LikertScale("es")
	q1 := dbmodels.AssessmentQuestion{QuestionText: "Me adapto con facilidad a los cambios"}
	q1.ID = "q-1"
	q1.CorrectAnswer = models.LikertSentinel
	q1.OptionA, q1.OptionB, q1.OptionC, q1.OptionD, q1.OptionE = scale[0], scale[1], scale[2], scale[3], scale[4]
	q2 := dbmodels.AssessmentQuestion{QuestionText: "Prefiero trabajar en equipo"}
	q2.ID = "q-2"
	q2.CorrectAnswer = models.LikertSentinel
	q2.OptionA, q2.OptionB, q2.OptionC, q2.OptionD, q2.OptionE = scale[0], scale[1], scale[2], scale[3], scale[4]

	candidate := dbmodels.Candidate{
		FullName:            "Мария Гарсия",
		AssignedQuestionIDs: pq.StringArray{"q-1", "q-2"},
		Responses: []dbmodels.CandidateResponse{
			{QuestionID: "q-1", SelectedAnswer: "D"},
		},
	}

	promt, text := buildAnalysisPrompt(rec, candidate, []dbmodels.AssessmentQuestion{q1, q2})

	t.Run(`системный промт содержит подтип и язык`, func(t *testing.T) {
		require.Contains(t, promt, pt.Title())
		require.Contains(t, promt, "испанском")
	})

	t.Run(`ответы в порядке назначения с текстом шкалы`, func(t *testing.T) {
		require.Contains(t, text, "Мария Гарсия")
		require.Contains(t, text, "1. "+q1.QuestionText)
		require.Contains(t, text, scale[3])
	})

	t.Run(`вопрос без ответа помечается отдельно`, func(t *testing.T) {
		require.Contains(t, text, "2. "+q2.QuestionText)
		require.Contains(t, text, "без ответа")
	})

	t.Run(`английский тест анализируется на английском`, func(t *testing.T) {
		rec.Language = "en"
		promt, _ := buildAnalysisPrompt(rec, candidate, []dbmodels.AssessmentQuestion{q1, q2})
		require.Contains(t, promt, "английском")
	})
}
