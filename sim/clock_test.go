package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_SecondsAdvancesAfterReset(t *testing.T) {
	var c Clock
	c.Reset()
	workFor(5)
	assert.GreaterOrEqual(t, c.Seconds(), 0.005)
}

func TestInterruptWord_SetClearHas(t *testing.T) {
	var w interruptWord
	assert.False(t, w.any())

	w.set(interruptQuantum)
	assert.True(t, w.any())
	assert.True(t, w.has(interruptQuantum))
	assert.False(t, w.has(interruptLoader))

	w.set(interruptLoader)
	w.clear(interruptQuantum)
	assert.True(t, w.has(interruptLoader))
	assert.False(t, w.has(interruptQuantum))

	w.clear(interruptLoader)
	assert.False(t, w.any())
}

func TestWorkFor_SpinsForRequestedTime(t *testing.T) {
	start := time.Now()
	workFor(10)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestWorkForInterruptible_RunsToCompletionWhenQuiet(t *testing.T) {
	var w interruptWord
	start := time.Now()
	remaining := workForInterruptible(10, &w)

	assert.Zero(t, remaining)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestWorkForInterruptible_ReturnsUnspentBudget(t *testing.T) {
	var w interruptWord
	w.set(interruptQuantum)

	start := time.Now()
	remaining := workForInterruptible(100, &w)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 50*time.Millisecond)
	assert.Greater(t, remaining, int64(0))
	assert.LessOrEqual(t, remaining, int64(100))
}
