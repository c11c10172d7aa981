package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// DutyFromPercent returns the nanosecond on-time for a duty percentage
// of the given period. pct is clamped to [0,100].
func DutyFromPercent(periodNs uint64, pct uint8) uint64 {
	if pct > 100 {
		pct = 100
	}
	return periodNs / 100 * uint64(pct)
}
