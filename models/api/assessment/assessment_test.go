package assessmentapimodels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"assessment-tools-backend/models"
)

func TestAssessmentDataValidate(t *testing.T) {
	t.Run(`тест на навыки требует название и тему`, func(t *testing.T) {
		data := AssessmentData{
			AssessmentType: models.AssessmentTypeHardSkills,
			Title:          "Go разработчик",
			CustomTopic:    "Senior Go: конкурентность, каналы, профилирование",
		}
		require.Nil(t, data.Validate())

		data.Title = "  "
		require.NotNil(t, data.Validate())

		data.Title = "Go разработчик"
		data.CustomTopic = ""
		require.NotNil(t, data.Validate())
	})

	t.Run(`тема ограничена по длине`, func(t *testing.T) {
		data := AssessmentData{
			AssessmentType: models.AssessmentTypeSoftSkills,
			Title:          "Коммуникация",
			CustomTopic:    strings.Repeat("я", models.TopicMaxLen),
		}
		require.Nil(t, data.Validate())

		data.CustomTopic = strings.Repeat("я", models.TopicMaxLen+1)
		require.NotNil(t, data.Validate())
	})

	t.Run(`психометрический тест требует подтип`, func(t *testing.T) {
		data := AssessmentData{AssessmentType: models.AssessmentTypePsychometric}
		require.NotNil(t, data.Validate())

		data.PsychometricType = models.PsychometricBigFive
		require.Nil(t, data.Validate())
	})

	t.Run(`неизвестный тип отклоняется`, func(t *testing.T) {
		data := AssessmentData{AssessmentType: "iq"}
		require.NotNil(t, data.Validate())
		require.NotNil(t, AssessmentData{}.Validate())
	})

	t.Run(`язык только es или en`, func(t *testing.T) {
		data := AssessmentData{
			AssessmentType:   models.AssessmentTypePsychometric,
			PsychometricType: models.PsychometricDISC,
		}
		for _, lang := range []string{"", "es", "en"} {
			data.Language = lang
			require.Nil(t, data.Validate())
		}
		data.Language = "fr"
		require.NotNil(t, data.Validate())
	})
}

func TestInviteRequestValidate(t *testing.T) {
	require.NotNil(t, InviteRequest{}.Validate())
	require.Nil(t, InviteRequest{Email: "candidate@example.com"}.Validate())
}
