package domain

import "time"

// BlogPost is a published article shown on the site and embedded in newsletters.
type BlogPost struct {
	PostID    string    `json:"id" dynamodbav:"post_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Slug      string    `json:"slug" dynamodbav:"slug"`
	Body      string    `json:"body" dynamodbav:"body"` // markdown
	CoverKey  string    `json:"cover_key,omitempty" dynamodbav:"cover_key"`
	Published bool      `json:"published" dynamodbav:"published"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Event is a speaking engagement or appearance.
type Event struct {
	EventID     string    `json:"id" dynamodbav:"event_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"` // markdown
	Location    string    `json:"location,omitempty" dynamodbav:"location"`
	StartsAt    time.Time `json:"starts_at" dynamodbav:"starts_at"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Project is a portfolio entry.
type Project struct {
	ProjectID   string    `json:"id" dynamodbav:"project_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	RepoURL     string    `json:"repo_url,omitempty" dynamodbav:"repo_url"`
	LiveURL     string    `json:"live_url,omitempty" dynamodbav:"live_url"`
	ImageKey    string    `json:"image_key,omitempty" dynamodbav:"image_key"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// PortfolioView is the read-only aggregate the public site renders.
type PortfolioView struct {
	Projects  []Project  `json:"projects"`
	Positions []Position `json:"positions"`
}

// Position is a work-experience entry.
type Position struct {
	PositionID string     `json:"id" dynamodbav:"position_id"`
	Company    string     `json:"company" dynamodbav:"company"`
	Title      string     `json:"title" dynamodbav:"title"`
	Summary    string     `json:"summary" dynamodbav:"summary"`
	StartedAt  time.Time  `json:"started_at" dynamodbav:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" dynamodbav:"ended_at"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`
}
