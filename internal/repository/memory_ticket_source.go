package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// MemoryTicketSource is an in-memory TicketSource used when no ticket store
// is configured and in tests.
type MemoryTicketSource struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
}

// NewMemoryTicketSource creates a source seeded with the given tickets.
func NewMemoryTicketSource(tickets ...domain.Ticket) *MemoryTicketSource {
	return &MemoryTicketSource{tickets: append([]domain.Ticket(nil), tickets...)}
}

// Put inserts or replaces a ticket by id.
func (s *MemoryTicketSource) Put(ticket domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == ticket.ID {
			s.tickets[i] = ticket
			return
		}
	}
	s.tickets = append(s.tickets, ticket)
}

// GetByID returns the ticket or pgx.ErrNoRows, mirroring the postgres
// source's not-found behavior.
func (s *MemoryTicketSource) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			ticket := s.tickets[i]
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// ListAll returns every ticket in insertion order.
func (s *MemoryTicketSource) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Ticket(nil), s.tickets...), nil
}

// ListCreatedBetween filters by creation instant.
func (s *MemoryTicketSource) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := []domain.Ticket{}
	for _, ticket := range s.tickets {
		if !from.IsZero() && ticket.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && ticket.CreatedAt.After(to) {
			continue
		}
		matched = append(matched, ticket)
	}
	return matched, nil
}
