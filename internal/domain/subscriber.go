package domain

import "time"

// Subscriber is a newsletter recipient. IsActive is always written explicitly
// at creation (true); rows where the attribute is absent predate this schema
// and are treated as inactive by the store filter.
type Subscriber struct {
	SubscriberID      string     `json:"id" dynamodbav:"subscriber_id"`
	Email             string     `json:"email" dynamodbav:"email"`
	Name              string     `json:"name,omitempty" dynamodbav:"name"`
	IsActive          bool       `json:"is_active" dynamodbav:"is_active"`
	NotificationsSent int        `json:"notifications_sent" dynamodbav:"notifications_sent"`
	LastNotifiedAt    *time.Time `json:"last_notified_at,omitempty" dynamodbav:"last_notified_at"`
	CreatedAt         time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// DisplayName returns the subscriber's name, falling back to the email address.
func (s *Subscriber) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}
