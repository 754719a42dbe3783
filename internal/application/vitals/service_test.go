package vitals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, v *domain.WebVital) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockStore) ListSince(ctx context.Context, since time.Time) ([]domain.WebVital, error) {
	args := m.Called(ctx, since)
	if v, _ := args.Get(0).([]domain.WebVital); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func sample(metric string, value float64, page, device string, at time.Time) domain.WebVital {
	return domain.WebVital{Metric: metric, Value: value, Page: page, DeviceKind: device, RecordedAt: at}
}

func TestIngest_StoresSample(t *testing.T) {
	st := &mockStore{}
	st.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.WebVital) bool {
		return v.VitalID != "" && v.Metric == "LCP" && v.DeviceKind == "mobile" && !v.RecordedAt.IsZero()
	})).Return(nil)

	svc := NewService(st)
	v, err := svc.Ingest(context.Background(), domain.IngestVitalRequest{
		Metric: "LCP", Value: 1820.5, Page: "/blog", DeviceKind: "mobile",
	})
	require.NoError(t, err)
	assert.Equal(t, 1820.5, v.Value)
	st.AssertExpectations(t)
}

func TestIngest_DefaultsDeviceKind(t *testing.T) {
	st := &mockStore{}
	st.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(st)
	v, err := svc.Ingest(context.Background(), domain.IngestVitalRequest{Metric: "CLS", Value: 0.02, Page: "/"})
	require.NoError(t, err)
	assert.Equal(t, "desktop", v.DeviceKind)
}

func TestIngest_RejectsInvalid(t *testing.T) {
	st := &mockStore{}
	svc := NewService(st)

	_, err := svc.Ingest(context.Background(), domain.IngestVitalRequest{Value: 1, Page: "/"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Ingest(context.Background(), domain.IngestVitalRequest{Metric: "LCP", Value: 1, Page: "/", DeviceKind: "toaster"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	st.AssertNotCalled(t, "Put")
}

func TestSummary_BucketsAndStats(t *testing.T) {
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	st := &mockStore{}
	st.On("ListSince", mock.Anything, mock.Anything).Return([]domain.WebVital{
		sample("LCP", 1000, "/", "desktop", day),
		sample("LCP", 2000, "/", "desktop", day.Add(time.Hour)),
		sample("LCP", 3000, "/", "desktop", day.Add(2*time.Hour)),
		sample("LCP", 4000, "/", "desktop", day.Add(3*time.Hour)),
		sample("CLS", 0.1, "/", "desktop", day),
	}, nil)

	svc := NewService(st)
	summaries, err := svc.Summary(context.Background(), day.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Same day sorts CLS before LCP.
	assert.Equal(t, "CLS", summaries[0].Metric)

	lcp := summaries[1]
	assert.Equal(t, "LCP", lcp.Metric)
	assert.Equal(t, "2026-08-30", lcp.Day)
	assert.Equal(t, 4, lcp.Count)
	assert.InDelta(t, 2500, lcp.Average, 0.001)
	assert.Equal(t, 2000.0, lcp.Median)
	assert.Equal(t, 3000.0, lcp.P75)
	assert.Equal(t, 1000.0, lcp.Min)
	assert.Equal(t, 4000.0, lcp.Max)
}

func TestSummary_SplitsByPageAndDevice(t *testing.T) {
	day := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	st := &mockStore{}
	st.On("ListSince", mock.Anything, mock.Anything).Return([]domain.WebVital{
		sample("LCP", 1000, "/", "desktop", day),
		sample("LCP", 1500, "/", "mobile", day),
		sample("LCP", 1200, "/blog", "desktop", day),
	}, nil)

	svc := NewService(st)
	summaries, err := svc.Summary(context.Background(), day.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
	for _, s := range summaries {
		assert.Equal(t, 1, s.Count)
	}
}

func TestSummary_NewestDayFirst(t *testing.T) {
	st := &mockStore{}
	st.On("ListSince", mock.Anything, mock.Anything).Return([]domain.WebVital{
		sample("LCP", 1000, "/", "desktop", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)),
		sample("LCP", 1000, "/", "desktop", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)),
	}, nil)

	svc := NewService(st)
	summaries, err := svc.Summary(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2026-08-30", summaries[0].Day)
	assert.Equal(t, "2026-08-28", summaries[1].Day)
}

func TestSummary_StoreError(t *testing.T) {
	st := &mockStore{}
	st.On("ListSince", mock.Anything, mock.Anything).Return(nil, errors.New("scan failed"))

	svc := NewService(st)
	_, err := svc.Summary(context.Background(), time.Now())
	assert.ErrorContains(t, err, "scan failed")
}
