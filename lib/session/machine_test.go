package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"assessment-tools-backend/models"
)

func TestMachine(t *testing.T) {
	t.Run(`старт переводит в активную фазу с полным таймером`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Equal(t, PhaseInfo, m.State.Phase)
		require.Nil(t, m.Start())
		require.Equal(t, PhaseInProgress, m.State.Phase)
		require.Equal(t, 0, m.State.Cursor)
		require.Equal(t, 40, m.State.Remaining)
		// повторный старт отклоняется
		require.NotNil(t, m.Start())
	})

	t.Run(`ответ двигает курсор и сбрасывает таймер`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Nil(t, m.Start())
		for i := 0; i < 12; i++ {
			m.Tick()
		}
		effects, err := m.Answer("B")
		require.Nil(t, err)
		require.Len(t, effects, 1)
		require.Equal(t, EffectRecordResponse, effects[0].Kind)
		require.Equal(t, 0, effects[0].Record.Cursor)
		require.Equal(t, "B", effects[0].Record.Selected)
		require.Equal(t, 12, effects[0].Record.Elapsed)
		require.False(t, effects[0].Record.TimedOut)
		require.Equal(t, 1, m.State.Cursor)
		require.Equal(t, 40, m.State.Remaining)
	})

	t.Run(`обратный отсчет закрывает вопрос автоответом на нуле`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Nil(t, m.Start())
		var effects []Effect
		for i := 0; i < 40; i++ {
			effects = m.Tick()
			if i < 39 {
				require.Empty(t, effects)
			}
		}
		require.Len(t, effects, 1)
		require.Equal(t, EffectRecordResponse, effects[0].Kind)
		require.True(t, effects[0].Record.TimedOut)
		require.Empty(t, effects[0].Record.Selected)
		require.Equal(t, 40, effects[0].Record.Elapsed)
		require.Equal(t, 1, m.State.Cursor)
		require.Equal(t, PhaseInProgress, m.State.Phase)
	})

	t.Run(`ответ на последний вопрос завершает сессию естественно`, func(t *testing.T) {
		m := NewMachine(3, 40)
		require.Nil(t, m.Start())
		for i := 0; i < 2; i++ {
			effects, err := m.Answer("A")
			require.Nil(t, err)
			require.Len(t, effects, 1)
		}
		effects, err := m.Answer("C")
		require.Nil(t, err)
		require.Len(t, effects, 2)
		require.Equal(t, EffectRecordResponse, effects[0].Kind)
		require.Equal(t, EffectComplete, effects[1].Kind)
		require.Equal(t, models.CompletionNatural, effects[1].Reason)
		require.Equal(t, PhaseCompleted, m.State.Phase)
		// после завершения ответы не принимаются
		_, err = m.Answer("A")
		require.NotNil(t, err)
	})

	t.Run(`таймаут последнего вопроса тоже завершает сессию`, func(t *testing.T) {
		m := Restore(3, 40, 2, 40, false, "")
		effects, err := m.Timeout()
		require.Nil(t, err)
		require.Len(t, effects, 2)
		require.True(t, effects[0].Record.TimedOut)
		require.Equal(t, EffectComplete, effects[1].Kind)
		require.Equal(t, models.CompletionNatural, effects[1].Reason)
	})

	t.Run(`потеря видимости завершает принудительно`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Nil(t, m.Start())
		effects := m.VisibilityLost()
		require.Len(t, effects, 1)
		require.Equal(t, EffectComplete, effects[0].Kind)
		require.Equal(t, models.CompletionTabSwitch, effects[0].Reason)
		require.Equal(t, PhaseCompleted, m.State.Phase)
	})

	t.Run(`повторный сигнал видимости игнорируется`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Nil(t, m.Start())
		require.Len(t, m.VisibilityLost(), 1)
		require.Empty(t, m.VisibilityLost())
		require.Equal(t, models.CompletionTabSwitch, m.State.Reason)
	})

	t.Run(`сигнал видимости до старта игнорируется`, func(t *testing.T) {
		m := NewMachine(20, 40)
		require.Empty(t, m.VisibilityLost())
		require.Equal(t, PhaseInfo, m.State.Phase)
	})

	t.Run(`гонка с естественным завершением: сигнал после финала не дает эффектов`, func(t *testing.T) {
		m := NewMachine(1, 40)
		require.Nil(t, m.Start())
		effects, err := m.Answer("D")
		require.Nil(t, err)
		require.Equal(t, EffectComplete, effects[1].Kind)
		require.Empty(t, m.VisibilityLost())
		require.Equal(t, models.CompletionNatural, m.State.Reason)
	})

	t.Run(`восстановление из снимка`, func(t *testing.T) {
		m := Restore(20, 40, 7, 25, false, "")
		require.Equal(t, PhaseInProgress, m.State.Phase)
		require.Equal(t, 7, m.State.Cursor)
		require.Equal(t, 25, m.State.Remaining)

		done := Restore(20, 40, 20, 0, true, models.CompletionNatural)
		require.Equal(t, PhaseCompleted, done.State.Phase)
		require.Empty(t, done.VisibilityLost())
	})

	t.Run(`снимок с курсором за последним вопросом терминален`, func(t *testing.T) {
		// сдвиг курсора сохранился, а финализация нет: все ответы уже
		// записаны, таймаут не должен порождать ответ за пределами назначения
		m := Restore(20, 40, 20, 0, false, "")
		require.Equal(t, PhaseCompleted, m.State.Phase)
		require.Equal(t, models.CompletionNatural, m.State.Reason)
		_, err := m.Timeout()
		require.NotNil(t, err)
		require.Empty(t, m.VisibilityLost())
	})

	t.Run(`остаток таймера при восстановлении ограничен периодом`, func(t *testing.T) {
		m := Restore(20, 40, 0, 99, false, "")
		require.Equal(t, 40, m.State.Remaining)
		m = Restore(20, 40, 0, -5, false, "")
		require.Equal(t, 0, m.State.Remaining)
	})
}
