package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRecordsISO8601Timestamp(t *testing.T) {
	q := NewQueue(8)
	fixed := time.Date(2026, 8, 24, 15, 4, 5, 0, time.UTC)
	q.SetClock(func() time.Time { return fixed })

	q.Track("cta_click", map[string]interface{}{"section": "hero"})

	events := q.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "cta_click", events[0].Name)
	assert.Equal(t, "2026-08-24T15:04:05Z", events[0].Timestamp)
	assert.Equal(t, "hero", events[0].Metadata["section"])
}

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	q := NewQueue(3)
	for i := 0; i < 5; i++ {
		q.Track(fmt.Sprintf("event_%d", i), nil)
	}

	assert.Equal(t, 2, q.Dropped())

	events := q.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, "event_2", events[0].Name)
	assert.Equal(t, "event_4", events[2].Name)
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := NewQueue(0)
	q.Track("form_submit_success", nil)

	assert.Equal(t, 1, q.Len())
	q.Drain()
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.Drain())
}
