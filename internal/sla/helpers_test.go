package sla

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func weekdayBusinessHours() domain.BusinessHoursConfig {
	return domain.BusinessHoursConfig{
		Enabled:  true,
		Timezone: "UTC",
		WorkingDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func alwaysOnHours() domain.BusinessHoursConfig {
	return domain.BusinessHoursConfig{Enabled: false}
}

func criticalPolicyInput(hours domain.BusinessHoursConfig) PolicyInput {
	return PolicyInput{
		Name:              "critical-default",
		Priority:          domain.TicketPriorityCritical,
		ResponseMinutes:   15,
		ResolutionMinutes: 240,
		BusinessHours:     hours,
		IsActive:          true,
	}
}

func ticketAt(id string, priority domain.TicketPriority, createdAt time.Time) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Priority:  priority,
		Status:    domain.TicketStatusNew,
		CreatedAt: createdAt,
	}
}
