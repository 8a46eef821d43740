package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/waitlist-engine/roster"
)

func at(hour, min int) time.Time {
	return time.Date(2024, time.March, 10, hour, min, 0, 0, time.UTC)
}

func window(start, end time.Time) roster.Window {
	return roster.Window{Start: start, End: end}
}

func TestOverlapHours(t *testing.T) {
	w := window(at(9, 0), at(12, 0))

	tests := []struct {
		name     string
		sessions []roster.Session
		want     string
	}{
		{
			name:     "fully inside counts fully",
			sessions: []roster.Session{{Start: at(10, 0), End: at(11, 0)}},
			want:     "1",
		},
		{
			name:     "straddles start, only intersection counts",
			sessions: []roster.Session{{Start: at(8, 0), End: at(9, 30)}},
			want:     "0.5",
		},
		{
			name:     "straddles end, only intersection counts",
			sessions: []roster.Session{{Start: at(11, 30), End: at(13, 0)}},
			want:     "0.5",
		},
		{
			name:     "fully outside counts zero",
			sessions: []roster.Session{{Start: at(1, 0), End: at(2, 0)}},
			want:     "0",
		},
		{
			name:     "session covering entire window clamps to window",
			sessions: []roster.Session{{Start: at(8, 0), End: at(13, 0)}},
			want:     "3",
		},
		{
			name: "multiple sessions sum",
			sessions: []roster.Session{
				{Start: at(9, 0), End: at(10, 0)},
				{Start: at(10, 30), End: at(11, 0)},
				{Start: at(1, 0), End: at(2, 0)},
			},
			want: "1.5",
		},
		{
			name: "malformed sessions skipped, not errors",
			sessions: []roster.Session{
				{Start: time.Time{}, End: at(11, 0)},
				{Start: at(10, 0), End: time.Time{}},
				{Start: at(10, 0), End: at(10, 30)},
			},
			want: "0.5",
		},
		{
			name:     "no sessions",
			sessions: nil,
			want:     "0",
		},
		{
			name:     "touching the window edge contributes zero duration",
			sessions: []roster.Session{{Start: at(8, 0), End: at(9, 0)}},
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roster.OverlapHours(w, tt.sessions)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestOverlapHours_NoInternalRounding(t *testing.T) {
	// 100 sessions of 36 seconds each: each is 0.01h exactly, and the sum
	// must be exactly 1h - per-session rounding would drift.
	w := window(at(0, 0), time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC))
	var sessions []roster.Session
	cursor := at(0, 0)
	for i := 0; i < 100; i++ {
		sessions = append(sessions, roster.Session{Start: cursor, End: cursor.Add(36 * time.Second)})
		cursor = cursor.Add(time.Minute)
	}
	got := roster.OverlapHours(w, sessions)
	assert.True(t, got.Equal(dec("1")), "got %s", got)
}

func TestRoundHours(t *testing.T) {
	// Rounding happens only at the reporting boundary.
	h := roster.HoursFromSeconds(dec("5000")) // 1.3888...
	assert.Equal(t, "1.39", roster.RoundHours(h).String())
}
