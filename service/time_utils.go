package service

import (
	"time"
)

// NextTriggerTime calculates the next occurrence of the daily reminder
// trigger (hour:minute UTC) strictly after now
func NextTriggerTime(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)

	// If current time is at or past today's trigger, use tomorrow's
	if now.After(target) || now.Equal(target) {
		target = target.AddDate(0, 0, 1)
	}

	return target
}

// CurrentCycleStart calculates when the current reminder cycle began
func CurrentCycleStart(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)

	// If current time is before today's trigger, the cycle started yesterday
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}

	return start
}
