// Package content aggregates recent site content for newsletter broadcasts.
package content

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/portfolio-api/internal/domain"
	"github.com/portfolio-api/internal/pkg/excerpt"
)

// Character budgets for preview excerpts.
const (
	postExcerptLimit  = 120
	eventExcerptLimit = 100
)

type Service interface {
	// Substitutions builds the shared template substitution map for one
	// broadcast run. Called once per run, never per recipient.
	Substitutions(ctx context.Context) (map[string]string, error)
	// Preview returns the summaries a broadcast would embed, without
	// sending anything or touching subscriber state.
	Preview(ctx context.Context) (*domain.ContentPreview, error)
	// Portfolio returns the read-only project and work-history aggregate
	// for the public site.
	Portfolio(ctx context.Context) (*domain.PortfolioView, error)
}

type blogStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.BlogPost, error)
}

type eventStore interface {
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]domain.Event, error)
}

type projectStore interface {
	List(ctx context.Context) ([]domain.Project, error)
}

type positionStore interface {
	List(ctx context.Context) ([]domain.Position, error)
}

type service struct {
	blogs          blogStore
	events         eventStore
	projects       projectStore
	positions      positionStore
	recentPosts    int
	upcomingEvents int
}

func NewService(blogs blogStore, events eventStore, projects projectStore, positions positionStore, recentPosts, upcomingEvents int) Service {
	if recentPosts <= 0 {
		recentPosts = 3
	}
	if upcomingEvents <= 0 {
		upcomingEvents = 2
	}
	return &service{
		blogs:          blogs,
		events:         events,
		projects:       projects,
		positions:      positions,
		recentPosts:    recentPosts,
		upcomingEvents: upcomingEvents,
	}
}

func (s *service) Portfolio(ctx context.Context) (*domain.PortfolioView, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	positions, err := s.positions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	view := &domain.PortfolioView{Projects: projects, Positions: positions}
	if view.Projects == nil {
		view.Projects = []domain.Project{}
	}
	if view.Positions == nil {
		view.Positions = []domain.Position{}
	}
	return view, nil
}

func (s *service) Preview(ctx context.Context) (*domain.ContentPreview, error) {
	posts, events, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	preview := &domain.ContentPreview{GeneratedAt: time.Now().UTC()}
	for _, p := range posts {
		preview.Posts = append(preview.Posts, domain.ItemSummary{
			ID:      p.PostID,
			Title:   p.Title,
			Excerpt: excerpt.Summarize(p.Body, postExcerptLimit),
			Date:    p.CreatedAt,
		})
	}
	for _, e := range events {
		preview.Events = append(preview.Events, domain.ItemSummary{
			ID:      e.EventID,
			Title:   e.Title,
			Excerpt: excerpt.Summarize(e.Description, eventExcerptLimit),
			Date:    e.StartsAt,
		})
	}
	return preview, nil
}

func (s *service) Substitutions(ctx context.Context) (map[string]string, error) {
	posts, events, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"recent_posts_html":    postsHTML(posts),
		"upcoming_events_html": eventsHTML(events),
	}, nil
}

func (s *service) fetch(ctx context.Context) ([]domain.BlogPost, []domain.Event, error) {
	posts, err := s.blogs.ListRecent(ctx, s.recentPosts)
	if err != nil {
		return nil, nil, fmt.Errorf("recent posts: %w", err)
	}
	events, err := s.events.ListUpcoming(ctx, time.Now().UTC(), s.upcomingEvents)
	if err != nil {
		return nil, nil, fmt.Errorf("upcoming events: %w", err)
	}
	return posts, events, nil
}

func postsHTML(posts []domain.BlogPost) string {
	if len(posts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<h3>Latest posts</h3><ul>")
	for _, p := range posts {
		b.WriteString(fmt.Sprintf("<li><strong>%s</strong> — %s</li>",
			html.EscapeString(p.Title),
			html.EscapeString(excerpt.Summarize(p.Body, postExcerptLimit))))
	}
	b.WriteString("</ul>")
	return b.String()
}

func eventsHTML(events []domain.Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<h3>Upcoming events</h3><ul>")
	for _, e := range events {
		b.WriteString(fmt.Sprintf("<li><strong>%s</strong> (%s) — %s</li>",
			html.EscapeString(e.Title),
			e.StartsAt.Format("Jan 2, 2006"),
			html.EscapeString(excerpt.Summarize(e.Description, eventExcerptLimit))))
	}
	b.WriteString("</ul>")
	return b.String()
}
