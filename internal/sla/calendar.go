package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

const (
	minutesPerHour = 60
	hoursPerDay    = 24
)

// ValidateBusinessHours checks a business-hours configuration at policy
// creation time so that bad data cannot silently produce garbage durations
// inside a report later. A disabled config is always valid.
func ValidateBusinessHours(cfg domain.BusinessHoursConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if len(cfg.WorkingDays) == 0 {
		return fmt.Errorf("at least one working day is required")
	}
	for _, day := range cfg.WorkingDays {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid working day %d", day)
		}
	}
	start, err := parseClockTime(cfg.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	end, err := parseClockTime(cfg.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s (overnight windows are unsupported)", cfg.EndTime, cfg.StartTime)
	}
	for _, holiday := range cfg.Holidays {
		if _, err := time.Parse("2006-01-02", holiday); err != nil {
			return fmt.Errorf("invalid holiday date %q: %w", holiday, err)
		}
	}
	return nil
}

// IsBusinessInstant reports whether the instant falls inside the configured
// business window. All instants qualify when the config is disabled.
func IsBusinessInstant(instant time.Time, cfg domain.BusinessHoursConfig) bool {
	if !cfg.Enabled {
		return true
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return false
	}
	local := instant.In(loc)
	if !isWorkingDay(local, cfg) {
		return false
	}
	start, _ := parseClockTime(cfg.StartTime)
	end, _ := parseClockTime(cfg.EndTime)
	minuteOfDay := local.Hour()*minutesPerHour + local.Minute()
	return minuteOfDay >= start && minuteOfDay < end
}

// ElapsedBusinessTime returns the business time between start and end as
// fractional hours. With a disabled config this is the wall-clock difference.
// With an enabled config it walks calendar days in the policy timezone,
// intersects each working day's window with [start, end] and sums the
// positive overlaps. Internal math stays in seconds; the conversion to hours
// happens once at the boundary.
func ElapsedBusinessTime(start, end time.Time, cfg domain.BusinessHoursConfig) float64 {
	if !end.After(start) {
		return 0
	}
	if !cfg.Enabled {
		return end.Sub(start).Hours()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		// Validation rejects unknown zones at policy-creation time, so this
		// only trips for configs that bypassed the registry.
		return 0
	}

	windowStart, _ := parseClockTime(cfg.StartTime)
	windowEnd, _ := parseClockTime(cfg.EndTime)

	localStart := start.In(loc)
	localEnd := end.In(loc)

	var totalSeconds float64
	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(localEnd.Year(), localEnd.Month(), localEnd.Day(), 0, 0, 0, 0, loc)

	for !day.After(lastDay) {
		if isWorkingDay(day, cfg) {
			open := clockInstant(day, windowStart, loc)
			close := clockInstant(day, windowEnd, loc)

			overlapStart := maxTime(localStart, open)
			overlapEnd := minTime(localEnd, close)
			if overlapEnd.After(overlapStart) {
				totalSeconds += overlapEnd.Sub(overlapStart).Seconds()
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return totalSeconds / 3600
}

func isWorkingDay(day time.Time, cfg domain.BusinessHoursConfig) bool {
	working := false
	for _, wd := range cfg.WorkingDays {
		if day.Weekday() == wd {
			working = true
			break
		}
	}
	if !working {
		return false
	}
	date := day.Format("2006-01-02")
	for _, holiday := range cfg.Holidays {
		if holiday == date {
			return false
		}
	}
	return true
}

// clockInstant pins a minutes-past-midnight offset to the wall clock of the
// given day. Adding a duration to midnight would drift by the offset change
// on DST transition days; time.Date keeps the window at the configured
// local time.
func clockInstant(day time.Time, minuteOfDay int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		minuteOfDay/minutesPerHour, minuteOfDay%minutesPerHour, 0, 0, loc)
}

// parseClockTime converts an HH:MM string to minutes since midnight.
func parseClockTime(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	if hour < 0 || hour >= hoursPerDay || minute < 0 || minute >= minutesPerHour {
		return 0, fmt.Errorf("out of range clock time %q", value)
	}
	return hour*minutesPerHour + minute, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
