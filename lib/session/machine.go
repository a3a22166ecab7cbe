package session

import (
	"github.com/pkg/errors"

	"assessment-tools-backend/models"
)

// Машина состояний сессии кандидата.
// Info - до старта, собраны только имя и email.
// InProgress - курсор текущего вопроса и остаток таймера.
// Completed - терминальное состояние с причиной завершения.
// Сигналы окружения (потеря видимости вкладки) подаются методом VisibilityLost,
// что позволяет проверять монитор синтетическими сигналами

type Phase int

const (
	PhaseInfo Phase = iota
	PhaseInProgress
	PhaseCompleted
)

type State struct {
	Phase     Phase
	Cursor    int // индекс текущего вопроса, 0..Total
	Remaining int // остаток секунд на текущий вопрос
	Reason    models.CompletionReason
}

type EffectKind int

const (
	// EffectRecordResponse - записать ответ; выполняется строго до сдвига курсора
	EffectRecordResponse EffectKind = iota
	// EffectComplete - финализировать сессию
	EffectComplete
)

type Effect struct {
	Kind   EffectKind
	Record ResponseDraft
	Reason models.CompletionReason
}

// ResponseDraft - ответ на вопрос до привязки к идентификаторам БД
type ResponseDraft struct {
	Cursor   int
	Selected string // пусто при истечении времени
	Elapsed  int    // секунд потрачено, 0..период
	TimedOut bool
}

type Machine struct {
	Total  int
	Period int
	State  State
}

func NewMachine(total, periodSeconds int) *Machine {
	return &Machine{
		Total:  total,
		Period: periodSeconds,
		State:  State{Phase: PhaseInfo, Remaining: periodSeconds},
	}
}

// Restore восстанавливает машину из сохраненного снимка сессии
func Restore(total, periodSeconds, cursor, remaining int, completed bool, reason models.CompletionReason) *Machine {
	m := &Machine{
		Total:  total,
		Period: periodSeconds,
		State: State{
			Phase:     PhaseInProgress,
			Cursor:    cursor,
			Remaining: clamp(remaining, 0, periodSeconds),
			Reason:    reason,
		},
	}
	if completed {
		m.State.Phase = PhaseCompleted
	}
	// курсор за последним вопросом означает, что все ответы уже записаны,
	// но финализация не успела сохраниться; сессия терминальна
	if cursor >= total {
		m.State.Phase = PhaseCompleted
		if m.State.Reason == "" {
			m.State.Reason = models.CompletionNatural
		}
	}
	return m
}

func (m *Machine) Start() error {
	if m.State.Phase != PhaseInfo {
		return errors.New("сессия уже начата")
	}
	m.State.Phase = PhaseInProgress
	m.State.Cursor = 0
	m.State.Remaining = m.Period
	return nil
}

// Answer фиксирует выбранный ответ и сдвигает курсор.
// На последнем вопросе происходит естественное завершение
func (m *Machine) Answer(selected string) ([]Effect, error) {
	if m.State.Phase != PhaseInProgress {
		return nil, errors.New("сессия не активна")
	}
	return m.advance(ResponseDraft{
		Cursor:   m.State.Cursor,
		Selected: selected,
		Elapsed:  clamp(m.Period-m.State.Remaining, 0, m.Period),
	}), nil
}

// Tick - одна секунда обратного отсчета. На нуле вопрос
// закрывается автоответом: пустой ответ, неверный
func (m *Machine) Tick() []Effect {
	if m.State.Phase != PhaseInProgress {
		return nil
	}
	m.State.Remaining--
	if m.State.Remaining > 0 {
		return nil
	}
	return m.timeoutEffects()
}

// Timeout закрывает текущий вопрос по исчерпанию периода
func (m *Machine) Timeout() ([]Effect, error) {
	if m.State.Phase != PhaseInProgress {
		return nil, errors.New("сессия не активна")
	}
	return m.timeoutEffects(), nil
}

func (m *Machine) timeoutEffects() []Effect {
	return m.advance(ResponseDraft{
		Cursor:   m.State.Cursor,
		Selected: "",
		Elapsed:  m.Period,
		TimedOut: true,
	})
}

// VisibilityLost - сигнал потери видимости вкладки от монитора честности.
// Гарантированно однократен: в завершенной сессии сигнал игнорируется,
// гонка с естественным завершением решается проверкой фазы
func (m *Machine) VisibilityLost() []Effect {
	if m.State.Phase != PhaseInProgress {
		return nil
	}
	m.State.Phase = PhaseCompleted
	m.State.Reason = models.CompletionTabSwitch
	return []Effect{{Kind: EffectComplete, Reason: models.CompletionTabSwitch}}
}

func (m *Machine) advance(draft ResponseDraft) []Effect {
	effects := []Effect{{Kind: EffectRecordResponse, Record: draft}}
	m.State.Cursor++
	if m.State.Cursor >= m.Total {
		m.State.Phase = PhaseCompleted
		m.State.Reason = models.CompletionNatural
		effects = append(effects, Effect{Kind: EffectComplete, Reason: models.CompletionNatural})
		return effects
	}
	m.State.Remaining = m.Period
	return effects
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
