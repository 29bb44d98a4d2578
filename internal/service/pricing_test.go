package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func TestComputeAmount(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		rate  float64
		want  float64
	}{
		{"partial hour rounds up", at(10, 0), at(11, 30), 30, 60},
		{"exact hours", at(10, 0), at(12, 0), 30, 60},
		{"sub hour charges one hour", at(10, 0), at(10, 10), 50, 50},
		{"one minute over rounds up", at(10, 0), at(12, 1), 30, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAmount(tt.start, tt.end, tt.rate))
		})
	}
}

func TestExtensionAmount(t *testing.T) {
	assert.Equal(t, float64(15), ExtensionAmount(30, 30))
	assert.Equal(t, float64(30), ExtensionAmount(30, 60))
	// 50 * 20/60 = 16.67 rounds to 17
	assert.Equal(t, float64(17), ExtensionAmount(50, 20))
}

func TestComputeRefundTiers(t *testing.T) {
	start := at(12, 0)
	end := at(14, 0)

	tests := []struct {
		name       string
		now        time.Time
		entry      bool
		wantAmount float64
		wantPct    int
	}{
		{"more than 2h before start", at(9, 30), false, 100, 100},
		{"between 1h and 2h", at(10, 30), false, 75, 75},
		{"between 30m and 1h", at(11, 15), false, 50, 50},
		{"under 30m", at(11, 45), false, 25, 25},
		{"mid session, not entered", at(12, 30), false, 50, 50},
		{"entry scanned", at(9, 0), true, 0, 0},
		{"session over", at(14, 0), false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, pct := ComputeRefund(tt.now, start, end, 100, tt.entry)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantPct, pct)
		})
	}
}

func TestComputeRefundRoundsToCents(t *testing.T) {
	amount, pct := ComputeRefund(at(10, 30), at(12, 0), at(14, 0), 99.99, false)
	assert.Equal(t, 75, pct)
	assert.Equal(t, 74.99, amount)
}

func TestOverlapsHalfOpen(t *testing.T) {
	assert.True(t, Overlaps(at(10, 0), at(12, 0), at(11, 0), at(13, 0)))
	assert.True(t, Overlaps(at(10, 0), at(12, 0), at(9, 0), at(10, 1)))
	// touching endpoints do not overlap
	assert.False(t, Overlaps(at(10, 0), at(11, 0), at(11, 0), at(12, 0)))
	assert.False(t, Overlaps(at(11, 0), at(12, 0), at(10, 0), at(11, 0)))
}
