package share

import "time"

// computeExpiry turns a relative lifetime in hours into an absolute deadline.
// Zero or negative hours mean the link never expires.
func computeExpiry(now time.Time, hours int) *time.Time {
	if hours <= 0 {
		return nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t
}

// expired reports whether the deadline has passed. A nil deadline never
// expires. The exact boundary instant still counts as live, so a link checked
// in the same request that computed now cannot report expired.
func expired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && now.After(*expiresAt)
}
