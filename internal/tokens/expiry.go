package tokens

import "time"

// ComputeExpiry turns an exp claim into a local wall-clock time using the
// offset between local time and UTC at the moment of the call, not at issue
// time. Across a DST change the result is off by the DST delta; callers
// compare it against LocalWallClock(now), which uses the same offset.
func ComputeExpiry(unixSeconds int64, now time.Time) time.Time {
	_, offset := now.Zone()
	return time.Unix(unixSeconds, 0).UTC().Add(time.Duration(offset) * time.Second)
}

// LocalWallClock is now expressed on the same scale as ComputeExpiry.
func LocalWallClock(now time.Time) time.Time {
	_, offset := now.Zone()
	return now.UTC().Add(time.Duration(offset) * time.Second)
}
