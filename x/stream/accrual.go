package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
)

// Accrued returns the scaled amount a stream with given cursor has earned
// but not yet settled as of given time. Accrual starts at the later of the
// stream start and the cursor and never continues past the stream end.
func Accrued(key StreamKey, cursor, asOf drip.UnixTime) *uint256.Int {
	from := drip.MaxTime(key.Start, cursor)
	to := drip.MinTime(asOf, key.End)
	if to <= from {
		return new(uint256.Int)
	}
	// Cannot overflow for a valid key, the face value is bounded.
	return new(uint256.Int).Mul(&key.Rate, seconds(from, to))
}

// Remaining returns the scaled face value of a stream that accrues after
// given time.
func Remaining(key StreamKey, at drip.UnixTime) *uint256.Int {
	at = clamp(at, key.Start, key.End)
	return new(uint256.Int).Mul(&key.Rate, seconds(at, key.End))
}

// clamp returns t bounded to [min, max].
func clamp(t, min, max drip.UnixTime) drip.UnixTime {
	return drip.MinTime(drip.MaxTime(t, min), max)
}

// accruing is an active stream as seen by the accrual engine.
type accruing struct {
	key    StreamKey
	cursor drip.UnixTime
}

// owed returns the total amount accrued by all streams as of given time.
// The result saturates instead of overflowing.
func owed(streams []accruing, asOf drip.UnixTime) *uint256.Int {
	total := new(uint256.Int)
	for _, s := range streams {
		if _, overflow := total.AddOverflow(total, Accrued(s.key, s.cursor, asOf)); overflow {
			return total.SetAllOne()
		}
	}
	return total
}

// coveredUntil returns the latest second, not after now, up to which balance
// covers the accrual of all given streams.
//
// The aggregate accrual is a non decreasing function of time, so the moment
// the balance runs out is found with a binary search.
func coveredUntil(balance *uint256.Int, streams []accruing, now drip.UnixTime) drip.UnixTime {
	if !owed(streams, now).Gt(balance) {
		return now
	}
	// Nothing accrues before the earliest effective start.
	lo := now
	for _, s := range streams {
		lo = drip.MinTime(lo, drip.MaxTime(s.key.Start, s.cursor))
	}
	hi := now
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if owed(streams, mid).Gt(balance) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}
