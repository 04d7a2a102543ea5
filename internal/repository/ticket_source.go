package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// TicketSource supplies read-only ticket records from the external ticket
// store. The SLA engine never writes through it.
type TicketSource interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// ListAll returns the full ticket set in creation order. Breach scans
	// need terminal tickets too: a resolution breach is only observable
	// once the ticket has closed.
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	// ListCreatedBetween returns tickets created in [from, to]; zero bounds
	// disable the corresponding cut-off.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error)
}

const ticketColumns = `
        id, priority, category, department, status, assignee_id,
        escalation_level, created_at, updated_at, first_response_at,
        resolved_at, closed_at`

type postgresTicketSource struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketSource reads tickets from the shared tickets table.
func NewPostgresTicketSource(pool *pgxpool.Pool) TicketSource {
	return &postgresTicketSource{pool: pool}
}

func (s *postgresTicketSource) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT` + ticketColumns + ` FROM tickets WHERE id=$1`
	row := s.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *postgresTicketSource) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT` + ticketColumns + ` FROM tickets ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *postgresTicketSource) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ` FROM tickets WHERE 1=1`
	args := []any{}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND created_at >= $1`
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 1 {
			query += ` AND created_at <= $1`
		} else {
			query += ` AND created_at <= $2`
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Department,
		&ticket.Status,
		&ticket.AssigneeID,
		&ticket.EscalationLevel,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
