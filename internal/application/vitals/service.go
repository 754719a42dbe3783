// Package vitals ingests client-side performance samples and computes
// per-day summaries for the dashboard.
package vitals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/id"
	"github.com/portfolio-api/internal/pkg/validate"
)

type Service interface {
	Ingest(ctx context.Context, req domain.IngestVitalRequest) (*domain.WebVital, error)
	// Summary aggregates samples since the given time into one bucket per
	// (metric, day, page, device_kind), sorted newest day first.
	Summary(ctx context.Context, since time.Time) ([]domain.VitalSummary, error)
}

type store interface {
	Put(ctx context.Context, v *domain.WebVital) error
	ListSince(ctx context.Context, since time.Time) ([]domain.WebVital, error)
}

type service struct {
	store store
}

func NewService(store store) Service {
	return &service{store: store}
}

func (s *service) Ingest(ctx context.Context, req domain.IngestVitalRequest) (*domain.WebVital, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if req.DeviceKind == "" {
		req.DeviceKind = "desktop"
	}
	v := &domain.WebVital{
		VitalID:    id.New(),
		Metric:     req.Metric,
		Value:      req.Value,
		Page:       req.Page,
		DeviceKind: req.DeviceKind,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

type bucketKey struct {
	metric string
	day    string
	page   string
	device string
}

func (s *service) Summary(ctx context.Context, since time.Time) ([]domain.VitalSummary, error) {
	samples, err := s.store.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	buckets := make(map[bucketKey][]float64)
	for _, v := range samples {
		k := bucketKey{
			metric: v.Metric,
			day:    v.RecordedAt.UTC().Format("2006-01-02"),
			page:   v.Page,
			device: v.DeviceKind,
		}
		buckets[k] = append(buckets[k], v.Value)
	}

	summaries := make([]domain.VitalSummary, 0, len(buckets))
	for k, values := range buckets {
		summaries = append(summaries, summarize(k, values))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Day != summaries[j].Day {
			return summaries[i].Day > summaries[j].Day
		}
		if summaries[i].Metric != summaries[j].Metric {
			return summaries[i].Metric < summaries[j].Metric
		}
		if summaries[i].Page != summaries[j].Page {
			return summaries[i].Page < summaries[j].Page
		}
		return summaries[i].DeviceKind < summaries[j].DeviceKind
	})
	return summaries, nil
}

func summarize(k bucketKey, values []float64) domain.VitalSummary {
	sort.Float64s(values)
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return domain.VitalSummary{
		Metric:     k.metric,
		Day:        k.day,
		Page:       k.page,
		DeviceKind: k.device,
		Count:      len(values),
		Average:    sum / float64(len(values)),
		Median:     percentile(values, 0.50),
		P75:        percentile(values, 0.75),
		Min:        values[0],
		Max:        values[len(values)-1],
	}
}

// percentile uses the nearest-rank method on an already-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
