package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewWindow(t *testing.T) {
	w := NewWindow(date(2024, time.January, 1))
	assert.Equal(t, date(2024, time.January, 11), w.DateEcheance)
}

func TestComputeStatus(t *testing.T) {
	w := NewWindow(date(2024, time.January, 1))

	tests := []struct {
		name        string
		now         time.Time
		wantDays    int
		wantDepasse bool
		wantUrgency Urgency
	}{
		{"window just opened", date(2024, time.January, 1), 10, false, UrgencyNormal},
		{"mid window", date(2024, time.January, 5), 6, false, UrgencyNormal},
		{"three days left", date(2024, time.January, 8), 3, false, UrgencyUrgent},
		{"deadline day", date(2024, time.January, 11), 0, false, UrgencyUrgent},
		{"four days overdue", date(2024, time.January, 15), -4, true, UrgencyOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatus(w, tt.now)
			assert.Equal(t, tt.wantDays, got.JoursRestants)
			assert.Equal(t, tt.wantDepasse, got.Depasse)
			assert.Equal(t, tt.wantUrgency, Classify(got))
		})
	}
}

func TestComputeStatusPartialDays(t *testing.T) {
	w := NewWindow(date(2024, time.January, 1))

	// Half a day into the overdue zone still counts as an overdue day.
	got := ComputeStatus(w, date(2024, time.January, 11).Add(12*time.Hour))
	assert.Equal(t, -1, got.JoursRestants)
	assert.True(t, got.Depasse)

	// Half a day before the deadline floors to zero remaining days.
	got = ComputeStatus(w, date(2024, time.January, 10).Add(12*time.Hour))
	assert.Equal(t, 0, got.JoursRestants)
	assert.False(t, got.Depasse)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 100, Progress(Status{JoursRestants: -4, Depasse: true}))
	assert.Equal(t, 0, Progress(Status{JoursRestants: 10}))
	assert.Equal(t, 70, Progress(Status{JoursRestants: 3}))
	assert.Equal(t, 100, Progress(Status{JoursRestants: 0}))
}
