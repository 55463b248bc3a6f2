package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	fake := Fake(start)

	assert.Equal(t, start, fake.Now())

	fake.Advance(11 * time.Second)
	assert.Equal(t, start.Add(11*time.Second), fake.Now())

	fake.Advance(-time.Hour)
	assert.Equal(t, start.Add(11*time.Second), fake.Now(), "negative advance must not move time")
}

func TestFakeClockSet(t *testing.T) {
	fake := Fake(time.Unix(1000, 0))
	fake.Set(time.Unix(10, 0))
	assert.Equal(t, int64(10), fake.Now().Unix())
}

func TestRealClockMovesForward(t *testing.T) {
	c := Real()
	before := time.Now()
	assert.False(t, c.Now().Before(before))
}
