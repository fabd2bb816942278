package redis

import (
	"context"
	"fmt"
	"time"
)

const submissionPrefix = "demo:submitted:"

// SubmissionGuard marks an email as having submitted a demo request so
// that concurrent submissions from the same address cannot both pass the
// duplicate check.
type SubmissionGuard struct {
	client *Client
}

// NewSubmissionGuard creates a new submission guard
func NewSubmissionGuard(client *Client) *SubmissionGuard {
	return &SubmissionGuard{client: client}
}

// Acquire reports whether the caller is the first to claim email within ttl.
func (g *SubmissionGuard) Acquire(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	ok, err := g.client.rdb.SetNX(ctx, submissionKey(email), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	return ok, nil
}

// Release drops the claim on email.
func (g *SubmissionGuard) Release(ctx context.Context, email string) error {
	if err := g.client.rdb.Del(ctx, submissionKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to release submission guard: %w", err)
	}
	return nil
}

func submissionKey(email string) string {
	return submissionPrefix + email
}
