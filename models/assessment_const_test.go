package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPsychometricTypes(t *testing.T) {
	t.Run(`wonderlic - единственный объективный подтип`, func(t *testing.T) {
		for pt := range psychometricTypes {
			if pt == PsychometricWonderlic {
				require.False(t, pt.IsLikert())
				continue
			}
			require.True(t, pt.IsLikert(), string(pt))
		}
	})

	t.Run(`заголовок подтипа для названия теста`, func(t *testing.T) {
		require.NotEmpty(t, PsychometricMBTI.Title())
		require.Empty(t, PsychometricType("unknown").Title())
		require.False(t, PsychometricType("unknown").IsValid())
	})
}

func TestLikertScale(t *testing.T) {
	es := LikertScale("es")
	en := LikertScale("en")
	require.Len(t, es, 5)
	require.Len(t, en, 5)
	require.NotEqual(t, es[0], en[0])
	// неизвестный язык отдает испанскую шкалу
	require.Equal(t, es, LikertScale("de"))
}

func TestCompletionReason(t *testing.T) {
	require.False(t, CompletionNatural.IsForced())
	require.True(t, CompletionTabSwitch.IsForced())
	require.True(t, CompletionExpired.IsForced())
}
