package content

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

// --- mocks ---

type mockBlogStore struct{ mock.Mock }

func (m *mockBlogStore) ListRecent(ctx context.Context, limit int) ([]domain.BlogPost, error) {
	args := m.Called(ctx, limit)
	if p, _ := args.Get(0).([]domain.BlogPost); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEventStore struct{ mock.Mock }

type mockProjectStore struct{ mock.Mock }

func (m *mockProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	args := m.Called(ctx)
	if p, _ := args.Get(0).([]domain.Project); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPositionStore struct{ mock.Mock }

func (m *mockPositionStore) List(ctx context.Context) ([]domain.Position, error) {
	args := m.Called(ctx)
	if p, _ := args.Get(0).([]domain.Position); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventStore) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]domain.Event, error) {
	args := m.Called(ctx, now, limit)
	if e, _ := args.Get(0).([]domain.Event); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func fixturePosts() []domain.BlogPost {
	return []domain.BlogPost{
		{PostID: "p1", Title: "Go Tips", Body: "# Heading\n\nSome **useful** tips.", CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{PostID: "p2", Title: "On Testing", Body: "Testing *matters*.", CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func fixtureEvents() []domain.Event {
	return []domain.Event{
		{EventID: "e1", Title: "GopherCon", Description: "A talk about [dispatchers](https://example.com).", StartsAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
	}
}

// --- tests ---

func TestPreview_SummarizesContent(t *testing.T) {
	bs, es := &mockBlogStore{}, &mockEventStore{}
	bs.On("ListRecent", mock.Anything, 3).Return(fixturePosts(), nil)
	es.On("ListUpcoming", mock.Anything, mock.Anything, 2).Return(fixtureEvents(), nil)

	svc := NewService(bs, es, nil, nil, 3, 2)
	preview, err := svc.Preview(context.Background())
	require.NoError(t, err)

	require.Len(t, preview.Posts, 2)
	assert.Equal(t, "Go Tips", preview.Posts[0].Title)
	assert.Equal(t, "Heading Some useful tips.", preview.Posts[0].Excerpt)

	require.Len(t, preview.Events, 1)
	assert.Equal(t, "A talk about dispatchers.", preview.Events[0].Excerpt)
	assert.False(t, preview.GeneratedAt.IsZero())
}

func TestPreview_Idempotent(t *testing.T) {
	bs, es := &mockBlogStore{}, &mockEventStore{}
	bs.On("ListRecent", mock.Anything, 3).Return(fixturePosts(), nil)
	es.On("ListUpcoming", mock.Anything, mock.Anything, 2).Return(fixtureEvents(), nil)

	svc := NewService(bs, es, nil, nil, 3, 2)
	p1, err := svc.Preview(context.Background())
	require.NoError(t, err)
	p2, err := svc.Preview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, p1.Posts, p2.Posts)
	assert.Equal(t, p1.Events, p2.Events)
	bs.AssertNumberOfCalls(t, "ListRecent", 2)
}

func TestPreview_PropagatesStoreError(t *testing.T) {
	bs, es := &mockBlogStore{}, &mockEventStore{}
	bs.On("ListRecent", mock.Anything, 3).Return(nil, errors.New("dynamo down"))

	svc := NewService(bs, es, nil, nil, 3, 2)
	_, err := svc.Preview(context.Background())
	assert.ErrorContains(t, err, "dynamo down")
	es.AssertNotCalled(t, "ListUpcoming")
}

func TestSubstitutions_BuildsSharedMap(t *testing.T) {
	bs, es := &mockBlogStore{}, &mockEventStore{}
	bs.On("ListRecent", mock.Anything, 3).Return(fixturePosts(), nil)
	es.On("ListUpcoming", mock.Anything, mock.Anything, 2).Return(fixtureEvents(), nil)

	svc := NewService(bs, es, nil, nil, 3, 2)
	subs, err := svc.Substitutions(context.Background())
	require.NoError(t, err)

	assert.Contains(t, subs["recent_posts_html"], "Go Tips")
	assert.Contains(t, subs["upcoming_events_html"], "GopherCon")
}

func TestPortfolio_Aggregates(t *testing.T) {
	ps, ws := &mockProjectStore{}, &mockPositionStore{}
	ps.On("List", mock.Anything).Return([]domain.Project{{ProjectID: "pr1", Title: "Dispatcher"}}, nil)
	ws.On("List", mock.Anything).Return([]domain.Position{{PositionID: "po1", Company: "Acme"}}, nil)

	svc := NewService(&mockBlogStore{}, &mockEventStore{}, ps, ws, 3, 2)
	view, err := svc.Portfolio(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Projects, 1)
	assert.Equal(t, "Dispatcher", view.Projects[0].Title)
	require.Len(t, view.Positions, 1)
	assert.Equal(t, "Acme", view.Positions[0].Company)
}

func TestPortfolio_EmptySlicesNotNil(t *testing.T) {
	ps, ws := &mockProjectStore{}, &mockPositionStore{}
	ps.On("List", mock.Anything).Return([]domain.Project{}, nil)
	ws.On("List", mock.Anything).Return([]domain.Position{}, nil)

	svc := NewService(&mockBlogStore{}, &mockEventStore{}, ps, ws, 3, 2)
	view, err := svc.Portfolio(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, view.Projects)
	assert.NotNil(t, view.Positions)
}

func TestSubstitutions_EmptyContent(t *testing.T) {
	bs, es := &mockBlogStore{}, &mockEventStore{}
	bs.On("ListRecent", mock.Anything, 3).Return([]domain.BlogPost{}, nil)
	es.On("ListUpcoming", mock.Anything, mock.Anything, 2).Return([]domain.Event{}, nil)

	svc := NewService(bs, es, nil, nil, 3, 2)
	subs, err := svc.Substitutions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", subs["recent_posts_html"])
	assert.Equal(t, "", subs["upcoming_events_html"])
}
