package systems

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(trace *[]string, name string, phase ExecutionPhase, prio Priority) Func {
	return Func{SystemName: name, Phase: phase, Order: prio, Fn: func(float64) error {
		*trace = append(*trace, name)
		return nil
	}}
}

func TestManagerRunsPhasesInOrder(t *testing.T) {
	var trace []string
	m := NewManager()
	require.NoError(t, m.RegisterSystem(record(&trace, "progress", PhaseLateUpdate, PriorityNormal)))
	require.NoError(t, m.RegisterSystem(record(&trace, "physics", PhasePostUpdate, PriorityNormal)))
	require.NoError(t, m.RegisterSystem(record(&trace, "ai", PhasePreUpdate, PriorityNormal)))
	require.NoError(t, m.RegisterSystem(record(&trace, "player", PhasePreUpdate, PriorityHigh)))
	require.NoError(t, m.RegisterSystem(record(&trace, "motion", PhaseUpdate, PriorityNormal)))

	require.NoError(t, m.Update(1.0/60))
	expected := []string{"player", "ai", "motion", "physics", "progress"}
	assert.Equal(t, expected, trace)
	assert.Equal(t, expected, m.GetExecutionOrder())

	metrics, ok := m.GetSystemMetrics("physics")
	require.True(t, ok)
	assert.Equal(t, uint64(1), metrics.ExecutionCount)
}

func TestManagerRejectsDuplicatesAndNil(t *testing.T) {
	m := NewManager()
	noop := Func{SystemName: "a", Fn: func(float64) error { return nil }}
	require.NoError(t, m.RegisterSystem(noop))
	assert.ErrorIs(t, m.RegisterSystem(noop), ErrDuplicateSystem)
	assert.ErrorIs(t, m.RegisterSystem(nil), ErrNilSystem)
}

func TestManagerStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var trace []string
	m := NewManager()
	require.NoError(t, m.RegisterSystem(Func{SystemName: "bad", Phase: PhaseUpdate, Fn: func(float64) error { return boom }}))
	require.NoError(t, m.RegisterSystem(record(&trace, "late", PhaseLateUpdate, PriorityNormal)))

	err := m.Update(0.016)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "update system bad")
	assert.Empty(t, trace)

	metrics, _ := m.GetSystemMetrics("bad")
	assert.Equal(t, uint64(1), metrics.ErrorCount)
	assert.ErrorIs(t, metrics.LastError, boom)
}
