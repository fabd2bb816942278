package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DemoStatus is the lifecycle state of a demo request
type DemoStatus string

const (
	DemoPending   DemoStatus = "pending"
	DemoApproved  DemoStatus = "approved"
	DemoRejected  DemoStatus = "rejected"
	DemoContacted DemoStatus = "contacted"
)

// Valid reports whether s is one of the known statuses
func (s DemoStatus) Valid() bool {
	switch s {
	case DemoPending, DemoApproved, DemoRejected, DemoContacted:
		return true
	}
	return false
}

// UseCases lists the accepted values of DemoRequest.UseCase
var UseCases = []string{"business", "education", "personal", "research", "customer-support", "other"}

// DemoSubmissionWindow is the rolling period in which an email may submit once
const DemoSubmissionWindow = 24 * time.Hour

// DemoRequest is a lead-capture submission
type DemoRequest struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Email       string             `json:"email" bson:"email"`
	Company     string             `json:"company,omitempty" bson:"company,omitempty"`
	UseCase     string             `json:"useCase" bson:"useCase"`
	Message     string             `json:"message,omitempty" bson:"message,omitempty"`
	Status      DemoStatus         `json:"status" bson:"status"`
	SubmittedAt time.Time          `json:"submittedAt" bson:"submittedAt"`
	ContactedAt *time.Time         `json:"contactedAt,omitempty" bson:"contactedAt,omitempty"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// DemoSubmission is the public form body
type DemoSubmission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,basic_email"`
	Company string `json:"company"`
	UseCase string `json:"useCase" validate:"required,oneof=business education personal research customer-support other"`
	Message string `json:"message"`
}

// DemoStatusUpdate is the admin update body. Nil fields are left untouched.
type DemoStatusUpdate struct {
	Status      *DemoStatus `json:"status,omitempty"`
	Notes       *string     `json:"notes,omitempty"`
	ContactedAt *time.Time  `json:"contactedAt,omitempty"`
}

// DemoListQuery holds admin listing parameters
type DemoListQuery struct {
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// DemoFilter is the normalized query passed to the repository
type DemoFilter struct {
	Status     DemoStatus
	SortField  string
	Descending bool
	Skip       int64
	Limit      int64
}

// Pagination describes one page of a listing
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// DemoPage is a page of demo requests
type DemoPage struct {
	Items      []DemoRequest `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// DemoRepository defines storage for demo requests.
// GetByID, Update and Delete report a missing document as ErrNotFound.
type DemoRepository interface {
	Create(ctx context.Context, req *DemoRequest) error
	FindRecentByEmail(ctx context.Context, email string, since time.Time) (*DemoRequest, error)
	List(ctx context.Context, filter DemoFilter) ([]DemoRequest, error)
	Count(ctx context.Context, status DemoStatus) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*DemoRequest, error)
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*DemoRequest, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SubmissionGuard reserves an email for the submission window so that two
// concurrent submissions cannot both pass the repository check.
type SubmissionGuard interface {
	Acquire(ctx context.Context, email string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, email string) error
}
