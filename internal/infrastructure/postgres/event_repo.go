package postgres

import (
	"context"
	"fmt"

	"github.com/justbelka/VSFI2024/internal/domain/event"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertEventSQL = `
		INSERT INTO event (actor, event_date, event_type, image, amount, target)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	recentEventsSQL = `
		SELECT id, actor, event_date, event_type, image, amount, target
		FROM event
		ORDER BY event_date DESC, id DESC
		LIMIT $1
	`

	topActorsByTypeSQL = `
		SELECT actor, COUNT(id) AS events_count
		FROM event
		WHERE event_type = $1
		GROUP BY actor
		ORDER BY events_count DESC, actor ASC
		LIMIT $2
	`

	countByTypeSQL = `SELECT COUNT(id) FROM event WHERE event_type = $1`

	sumAmountByTypeSQL = `SELECT COALESCE(SUM(amount), 0) FROM event WHERE event_type = $1`
)

// EventRepository persists and aggregates dashboard events. The event table
// is append-only: there are no update or delete paths.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Insert(ctx context.Context, e *event.Event) error {
	// Check for transaction in context
	var executor interface {
		Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	} = r.pool

	if tx := GetTx(ctx); tx != nil {
		executor = tx
	}

	_, err := executor.Exec(ctx, insertEventSQL,
		e.Actor, e.EventDate, string(e.EventType), e.Image, e.Amount, e.Target)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// Recent returns up to n events, newest first. Events sharing an event_date
// are ordered by id descending so the result is deterministic.
func (r *EventRepository) Recent(ctx context.Context, n int) ([]event.Event, error) {
	rows, err := r.pool.Query(ctx, recentEventsSQL, n)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var e event.Event
		if err := rows.Scan(&e.ID, &e.Actor, &e.EventDate, &e.EventType, &e.Image, &e.Amount, &e.Target); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// TopActorByType groups events of the given type by actor and returns the n
// actors with the most events, highest count first (actor name breaks ties).
func (r *EventRepository) TopActorByType(ctx context.Context, t event.Type, n int) ([]event.ActorCount, error) {
	rows, err := r.pool.Query(ctx, topActorsByTypeSQL, string(t), n)
	if err != nil {
		return nil, fmt.Errorf("query top actors: %w", err)
	}
	defer rows.Close()

	var counts []event.ActorCount
	for rows.Next() {
		var ac event.ActorCount
		if err := rows.Scan(&ac.Actor, &ac.Count); err != nil {
			return nil, fmt.Errorf("scan actor count: %w", err)
		}
		counts = append(counts, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actor counts: %w", err)
	}

	return counts, nil
}

func (r *EventRepository) CountByType(ctx context.Context, t event.Type) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countByTypeSQL, string(t)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}

// SumAmountByType sums amount over events of the given type. NULL amounts do
// not contribute and an empty result sums to 0.
func (r *EventRepository) SumAmountByType(ctx context.Context, t event.Type) (int64, error) {
	var sum int64
	if err := r.pool.QueryRow(ctx, sumAmountByTypeSQL, string(t)).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum amounts: %w", err)
	}

	return sum, nil
}
