package query

import (
	"context"
	"fmt"

	"github.com/justbelka/VSFI2024/internal/domain/event"
)

// Stats is the read side of the event store. Every call recomputes over the
// full persisted history; there is no cache in front of it.
type Stats interface {
	Recent(ctx context.Context, n int) ([]event.Event, error)
	TopActorByType(ctx context.Context, t event.Type, n int) ([]event.ActorCount, error)
	CountByType(ctx context.Context, t event.Type) (int64, error)
	SumAmountByType(ctx context.Context, t event.Type) (int64, error)
}

// Snapshot is the analytics view rendered on the dashboard page. TopBuyer and
// TopUploader are nil while no events of the respective type exist.
type Snapshot struct {
	TopBuyer    *string       `json:"top_buyer"`
	TopUploader *string       `json:"top_uploader"`
	LastEvents  []event.Event `json:"last_10_events"`
	MoneyEarned int64         `json:"money_earned"`
	Uploads     int64         `json:"shisha_uploads"`
}

const recentEventsLimit = 10

type Service struct {
	stats Stats
}

func NewService(stats Stats) *Service {
	return &Service{stats: stats}
}

// Dashboard composes the independent store queries into one snapshot. The
// queries do not share a transaction, so the fields may reflect slightly
// different points in the event history while ingestion is running.
func (s *Service) Dashboard(ctx context.Context) (Snapshot, error) {
	topBuyer, err := s.topActor(ctx, event.TypeBuy)
	if err != nil {
		return Snapshot{}, fmt.Errorf("top buyer: %w", err)
	}

	topUploader, err := s.topActor(ctx, event.TypeUpload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("top uploader: %w", err)
	}

	last, err := s.stats.Recent(ctx, recentEventsLimit)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recent events: %w", err)
	}

	money, err := s.stats.SumAmountByType(ctx, event.TypeBuy)
	if err != nil {
		return Snapshot{}, fmt.Errorf("money earned: %w", err)
	}

	uploads, err := s.stats.CountByType(ctx, event.TypeUpload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("upload count: %w", err)
	}

	return Snapshot{
		TopBuyer:    topBuyer,
		TopUploader: topUploader,
		LastEvents:  last,
		MoneyEarned: money,
		Uploads:     uploads,
	}, nil
}

func (s *Service) topActor(ctx context.Context, t event.Type) (*string, error) {
	top, err := s.stats.TopActorByType(ctx, t, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}
	return &top[0].Actor, nil
}
