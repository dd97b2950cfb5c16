package club

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampLayout_LexicographicOrderIsChronological(t *testing.T) {
	// A whole-second timestamp must not sort after fractional timestamps in
	// the same second, otherwise undo would pick the wrong batch.
	wholeSecond := time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		wholeSecond.Add(-300 * time.Millisecond),
		wholeSecond,
		wholeSecond.Add(1),
		wholeSecond.Add(500 * time.Millisecond),
		wholeSecond.Add(time.Second),
	}

	prev := ""
	for _, ts := range times {
		formatted := ts.UTC().Format(timestampLayout)
		assert.Greater(t, formatted, prev, "order must match chronology for %s", ts)
		prev = formatted
	}
}

func TestTimestampLayout_FixedWidth(t *testing.T) {
	wholeSecond := time.Date(2026, 4, 18, 12, 0, 0, 0, time.UTC)
	fractional := wholeSecond.Add(123456789 * time.Nanosecond)

	a := wholeSecond.UTC().Format(timestampLayout)
	b := fractional.UTC().Format(timestampLayout)
	assert.Equal(t, len(a), len(b), "zero nanoseconds must still be padded")
	assert.Contains(t, a, ".000000000")
}
