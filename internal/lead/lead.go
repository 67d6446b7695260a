// Package lead holds the company records produced by discovery and the
// persisted leads built from them.
package lead

import (
	"fmt"
	"time"
)

// Company is a normalized company record. Email is empty when no address was
// scraped for the company; it is never filled with a guessed value.
type Company struct {
	Name        string `json:"name" yaml:"name"`
	Website     string `json:"website" yaml:"website"`
	Email       string `json:"email" yaml:"email"`
	Phone       string `json:"phone" yaml:"phone"`
	Address     string `json:"address" yaml:"address"`
	Description string `json:"description" yaml:"description"`
}

// Status is a lead's position in the outreach pipeline.
type Status string

const (
	StatusNew        Status = "new"
	StatusEmailSent  Status = "email_sent"
	StatusReplied    Status = "replied"
	StatusInProgress Status = "in_progress"
	StatusInterested Status = "interested"
	StatusRejected   Status = "rejected"
	StatusClosed     Status = "closed"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusNew,
	StatusEmailSent,
	StatusReplied,
	StatusInProgress,
	StatusInterested,
	StatusRejected,
	StatusClosed,
}

// ParseStatus validates s against Statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("lead: unknown status %q", s)
}

// Lead is a Company saved for outreach under a search category.
type Lead struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Company   Company   `json:"company"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
