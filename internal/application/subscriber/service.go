// Package subscriber manages the newsletter recipient list.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
	"github.com/portfolio-api/internal/pkg/validate"
)

type Service interface {
	// Subscribe registers a new recipient. Re-subscribing a deactivated
	// address reactivates it; an already-active address is a conflict.
	Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Subscriber, error)
	// Unsubscribe deactivates the subscriber for the given address. Rows are
	// never deleted, so delivery history survives.
	Unsubscribe(ctx context.Context, req domain.UnsubscribeRequest) error
	Get(ctx context.Context, subscriberID string) (*domain.Subscriber, error)
	List(ctx context.Context, limit int32, cursor string) ([]domain.Subscriber, string, error)
}

type store interface {
	Put(ctx context.Context, s *domain.Subscriber) error
	Get(ctx context.Context, subscriberID string) (*domain.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Subscriber, string, error)
	Update(ctx context.Context, subscriberID string, updates map[string]interface{}) error
	Deactivate(ctx context.Context, subscriberID string) error
}

type service struct {
	store store
}

func NewService(store store) Service {
	return &service{store: store}
}

func (s *service) Subscribe(ctx context.Context, req domain.SubscribeRequest) (*domain.Subscriber, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}

	existing, err := s.store.GetByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.IsActive:
		return nil, fmt.Errorf("email already subscribed: %w", domain.ErrConflict)
	case err == nil:
		// Deactivated row: flip it back on instead of creating a duplicate.
		updates := map[string]interface{}{"is_active": true}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if err := s.store.Update(ctx, existing.SubscriberID, updates); err != nil {
			return nil, err
		}
		existing.IsActive = true
		if req.Name != "" {
			existing.Name = req.Name
		}
		slog.Info("subscriber reactivated", "subscriber_id", existing.SubscriberID)
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	sub := &domain.Subscriber{
		SubscriberID: id.New(),
		Email:        req.Email,
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Put(ctx, sub); err != nil {
		return nil, err
	}
	slog.Info("subscriber created", "subscriber_id", sub.SubscriberID)
	return sub, nil
}

func (s *service) Unsubscribe(ctx context.Context, req domain.UnsubscribeRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	sub, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return nil
	}
	return s.store.Deactivate(ctx, sub.SubscriberID)
}

func (s *service) Get(ctx context.Context, subscriberID string) (*domain.Subscriber, error) {
	if _, err := ulid.Parse(subscriberID); err != nil {
		return nil, fmt.Errorf("invalid subscriber id: %w", domain.ErrBadRequest)
	}
	return s.store.Get(ctx, subscriberID)
}

func (s *service) List(ctx context.Context, limit int32, cursor string) ([]domain.Subscriber, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.store.ScanPage(ctx, limit, cursor)
}
