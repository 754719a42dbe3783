// Package newsletter implements the bulk broadcast dispatcher: one
// notification delivered to every active subscriber in fixed-size batches,
// with per-recipient failure isolation and an exact delivery report.
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/portfolio-api/internal/config"
	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/infrastructure/template"
)

type Service interface {
	// DispatchToAll delivers the notification to every active subscriber.
	// Per-recipient failures are collected in the result, never returned as
	// an error; an error return means the run could not start (subscriber
	// fetch or content preparation failed) and nothing was sent.
	DispatchToAll(ctx context.Context, req domain.BroadcastRequest) (*domain.DispatchResult, error)
	// DispatchToOne delivers to a single stored subscriber, with the same
	// success bookkeeping as a full run.
	DispatchToOne(ctx context.Context, subscriberID string, req domain.BroadcastRequest) error
	// SendTest delivers to an arbitrary address and never touches
	// subscriber state.
	SendTest(ctx context.Context, email string, req domain.BroadcastRequest) error
	// Preview returns the shared content a broadcast would embed.
	Preview(ctx context.Context) (*domain.ContentPreview, error)
}

type subscriberStore interface {
	ListActive(ctx context.Context) ([]domain.Subscriber, error)
	Get(ctx context.Context, subscriberID string) (*domain.Subscriber, error)
	RecordDelivery(ctx context.Context, subscriberID string, at time.Time) error
}

type mailSender interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

type contentProvider interface {
	Substitutions(ctx context.Context) (map[string]string, error)
	Preview(ctx context.Context) (*domain.ContentPreview, error)
}

type templateRenderer interface {
	Render(id string, subs map[string]string) (string, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	subscribers subscriberStore
	mailer      mailSender
	content     contentProvider
	templates   templateRenderer
	sms         smsSender // optional
	ownerPhone  string
	batchSize   int
	batchDelay  time.Duration

	// sleep is the inter-batch pause, swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type ServiceDeps struct {
	Subscribers subscriberStore
	Mailer      mailSender
	Content     contentProvider
	Templates   templateRenderer
	SMS         smsSender
	OwnerPhone  string
	Config      config.NewsletterConfig
}

func NewService(deps ServiceDeps) Service {
	batchSize := deps.Config.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	return &service{
		subscribers: deps.Subscribers,
		mailer:      deps.Mailer,
		content:     deps.Content,
		templates:   deps.Templates,
		sms:         deps.SMS,
		ownerPhone:  deps.OwnerPhone,
		batchSize:   batchSize,
		batchDelay:  deps.Config.BatchDelay,
		sleep:       sleepCtx,
	}
}

func (s *service) DispatchToAll(ctx context.Context, req domain.BroadcastRequest) (*domain.DispatchResult, error) {
	res := &domain.DispatchResult{StartedAt: time.Now().UTC()}

	subs, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	if req.SkipNotifiedWithin > 0 {
		subs = filterRecentlyNotified(subs, req.SkipNotifiedWithin, res.StartedAt)
	}
	res.TotalRecipients = len(subs)
	if len(subs) == 0 {
		res.Note = "no recipients"
		res.FinishedAt = time.Now().UTC()
		return res, nil
	}

	// Shared content is rendered exactly once so every recipient in the run
	// sees identical body bytes.
	html, err := s.renderBody(ctx, req, "there")
	if err != nil {
		return nil, fmt.Errorf("prepare content: %w", err)
	}

	for start := 0; start < len(subs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(subs) {
			end = len(subs)
		}
		batch := subs[start:end]

		for i, derr := range s.deliverBatch(ctx, batch, req.Subject, html) {
			if derr != nil {
				res.FailedCount++
				res.Failures = append(res.Failures, domain.DeliveryFailure{
					Email:       batch[i].Email,
					ErrorDetail: derr.Error(),
				})
			} else {
				res.SentCount++
			}
		}

		// Throttle between batches, never after the last one. A cancelled
		// context stops the run here; the in-flight batch above has already
		// settled, so the partial result is exact.
		if end < len(subs) {
			if err := s.sleep(ctx, s.batchDelay); err != nil {
				res.Note = "cancelled before completion"
				break
			}
		}
	}

	res.FinishedAt = time.Now().UTC()
	slog.Info("newsletter dispatch finished",
		"total", res.TotalRecipients, "sent", res.SentCount, "failed", res.FailedCount)
	s.notifyOwner(ctx, res)
	return res, nil
}

func (s *service) DispatchToOne(ctx context.Context, subscriberID string, req domain.BroadcastRequest) error {
	if _, err := ulid.Parse(subscriberID); err != nil {
		return fmt.Errorf("invalid subscriber id: %w", domain.ErrBadRequest)
	}
	sub, err := s.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return fmt.Errorf("subscriber is inactive: %w", domain.ErrBadRequest)
	}
	html, err := s.renderBody(ctx, req, sub.DisplayName())
	if err != nil {
		return fmt.Errorf("prepare content: %w", err)
	}
	return s.deliverOne(ctx, sub, req.Subject, html)
}

func (s *service) SendTest(ctx context.Context, email string, req domain.BroadcastRequest) error {
	html, err := s.renderBody(ctx, req, "there")
	if err != nil {
		return fmt.Errorf("prepare content: %w", err)
	}
	receipt, err := s.mailer.Send(ctx, email, req.Subject, html)
	if err != nil {
		return fmt.Errorf("test send to %s: %w", email, err)
	}
	slog.Info("test email sent", "to", email, "receipt", receipt)
	return nil
}

func (s *service) Preview(ctx context.Context) (*domain.ContentPreview, error) {
	return s.content.Preview(ctx)
}

// deliverBatch attempts delivery to every batch member concurrently and
// waits for all of them to settle. One entry per member, in batch order:
// nil for success, the delivery error otherwise. No short-circuiting — a
// failure in one goroutine never affects the others.
func (s *service) deliverBatch(ctx context.Context, batch []domain.Subscriber, subject, html string) []error {
	results := make([]error, len(batch))
	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int, sub domain.Subscriber) {
			defer wg.Done()
			results[i] = s.deliverOne(ctx, &sub, subject, html)
		}(i, batch[i])
	}
	wg.Wait()
	return results
}

// deliverOne performs a single delivery attempt and, on success, records it
// against the subscriber. Bookkeeping failures do not turn a delivered email
// into a reported failure; they are logged for reconciliation.
func (s *service) deliverOne(ctx context.Context, sub *domain.Subscriber, subject, html string) error {
	receipt, err := s.mailer.Send(ctx, sub.Email, subject, html)
	if err != nil {
		slog.Warn("newsletter delivery failed", "email", sub.Email, "err", err)
		return err
	}
	if err := s.subscribers.RecordDelivery(ctx, sub.SubscriberID, time.Now().UTC()); err != nil {
		slog.Error("delivered but failed to record", "subscriber_id", sub.SubscriberID, "err", err)
	}
	slog.Info("newsletter delivered", "email", sub.Email, "receipt", receipt)
	return nil
}

// renderBody resolves the notification body: an explicit template (with the
// shared content substitutions fetched once), or pre-rendered HTML as-is.
func (s *service) renderBody(ctx context.Context, req domain.BroadcastRequest, recipientName string) (string, error) {
	if req.TemplateID == "" {
		if req.HTML == "" {
			return "", fmt.Errorf("broadcast needs a template_id or html body: %w", domain.ErrBadRequest)
		}
		return req.HTML, nil
	}
	subs, err := s.content.Substitutions(ctx)
	if err != nil {
		return "", err
	}
	subs["recipient_name"] = recipientName
	for k, v := range req.Substitutions {
		subs[k] = v
	}
	// Rendering is lax, so missing variables collapse silently; surface them
	// in the log before the run instead.
	if checker, ok := s.templates.(interface {
		MissingVariables(id string, subs map[string]string) []string
	}); ok {
		if missing := checker.MissingVariables(req.TemplateID, subs); len(missing) > 0 {
			slog.Warn("template has unresolved variables", "template_id", req.TemplateID, "missing", missing)
		}
	}
	return s.templates.Render(req.TemplateID, subs)
}

func (s *service) notifyOwner(ctx context.Context, res *domain.DispatchResult) {
	if s.sms == nil || s.ownerPhone == "" {
		return
	}
	msg := fmt.Sprintf("Newsletter run: sent %d, failed %d of %d", res.SentCount, res.FailedCount, res.TotalRecipients)
	if err := s.sms.SendSMS(ctx, s.ownerPhone, msg); err != nil {
		slog.Warn("owner SMS summary failed", "err", err)
	}
}

func filterRecentlyNotified(subs []domain.Subscriber, window time.Duration, now time.Time) []domain.Subscriber {
	kept := subs[:0:0]
	for _, sub := range subs {
		if sub.LastNotifiedAt != nil && now.Sub(*sub.LastNotifiedAt) < window {
			continue
		}
		kept = append(kept, sub)
	}
	return kept
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DefaultTemplateID is re-exported so transport code does not need to import
// the template infrastructure package directly.
const DefaultTemplateID = template.DefaultDigestTemplate
