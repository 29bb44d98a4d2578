package service

import (
	"math"
	"time"
)

// ComputeAmount charges whole hours, rounded up, with a one hour minimum.
func ComputeAmount(start, end time.Time, hourlyRate float64) float64 {
	hours := int(math.Ceil(end.Sub(start).Hours()))
	if hours < 1 {
		hours = 1
	}
	return float64(hours) * hourlyRate
}

// ExtensionAmount prices an extension pro rata by the minute, rounded to the
// nearest whole unit.
func ExtensionAmount(hourlyRate float64, extraMinutes int) float64 {
	return math.Round(hourlyRate * float64(extraMinutes) / 60)
}

// ComputeRefund applies the cancellation tiers. No refund once the vehicle has
// entered or the session is over; cancelling mid-session before entry refunds
// half.
func ComputeRefund(now, start, end time.Time, amount float64, entryScanned bool) (refundAmount float64, refundPercentage int) {
	if entryScanned {
		return 0, 0
	}
	if !now.Before(end) {
		return 0, 0
	}

	hoursUntilStart := start.Sub(now).Hours()
	switch {
	case hoursUntilStart > 2:
		refundPercentage = 100
	case hoursUntilStart > 1:
		refundPercentage = 75
	case hoursUntilStart > 0.5:
		refundPercentage = 50
	case hoursUntilStart > 0:
		refundPercentage = 25
	default:
		refundPercentage = 50
	}

	return roundMoney(amount * float64(refundPercentage) / 100), refundPercentage
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
