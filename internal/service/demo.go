package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/chatbot-api/internal/domain"
)

const (
	msgDemoRequired      = "Name, email, and use case are required"
	msgDemoInvalidEmail  = "Please provide a valid email address"
	msgDemoInvalidUse    = "Invalid use case selected"
	msgDemoInvalidStatus = "Invalid status value"

	defaultDemoPage  = 1
	defaultDemoLimit = 10
	maxDemoLimit     = 100
	defaultDemoSort  = "submittedAt"
)

var basicEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var demoSortFields = map[string]bool{
	"submittedAt": true,
	"name":        true,
	"email":       true,
	"company":     true,
	"useCase":     true,
	"status":      true,
	"contactedAt": true,
}

// DemoService manages demo requests
type DemoService struct {
	repo     domain.DemoRepository
	guard    domain.SubmissionGuard
	validate *validator.Validate
	now      func() time.Time
}

// NewDemoService creates a new demo service. guard may be nil.
func NewDemoService(repo domain.DemoRepository, guard domain.SubmissionGuard) *DemoService {
	v := validator.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})

	return &DemoService{
		repo:     repo,
		guard:    guard,
		validate: v,
		now:      time.Now,
	}
}

// Submit validates and stores a new demo request. An email that already
// submitted within DemoSubmissionWindow is rejected with ErrRateLimited.
func (s *DemoService) Submit(ctx context.Context, input domain.DemoSubmission) (*domain.DemoRequest, error) {
	input = normalizeSubmission(input)
	if err := s.validateSubmission(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	recent, err := s.repo.FindRecentByEmail(ctx, input.Email, now.Add(-domain.DemoSubmissionWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to check recent requests: %w", err)
	}
	if recent != nil {
		return nil, fmt.Errorf("demo request already submitted: %w", domain.ErrRateLimited)
	}

	claimed := false
	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, input.Email, domain.DemoSubmissionWindow)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("email", input.Email).Msg("Submission guard unavailable")
		case !ok:
			return nil, fmt.Errorf("demo request already submitted: %w", domain.ErrRateLimited)
		default:
			claimed = true
		}
	}

	req := &domain.DemoRequest{
		Name:        input.Name,
		Email:       input.Email,
		Company:     input.Company,
		UseCase:     input.UseCase,
		Message:     input.Message,
		Status:      domain.DemoPending,
		SubmittedAt: now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		if claimed {
			if relErr := s.guard.Release(ctx, input.Email); relErr != nil {
				log.Warn().Err(relErr).Str("email", input.Email).Msg("Failed to release submission guard")
			}
		}
		return nil, fmt.Errorf("failed to create demo request: %w", err)
	}

	log.Info().Str("id", req.ID.Hex()).Str("use_case", req.UseCase).Msg("Demo request submitted")
	return req, nil
}

// List returns one page of demo requests
func (s *DemoService) List(ctx context.Context, q domain.DemoListQuery) (*domain.DemoPage, error) {
	page := q.Page
	if page < 1 {
		page = defaultDemoPage
	}
	limit := q.Limit
	switch {
	case limit < 1:
		limit = defaultDemoLimit
	case limit > maxDemoLimit:
		limit = maxDemoLimit
	}

	sortField := q.SortBy
	if !demoSortFields[sortField] {
		sortField = defaultDemoSort
	}

	var status domain.DemoStatus
	if q.Status != "" && q.Status != "all" {
		status = domain.DemoStatus(q.Status)
	}

	filter := domain.DemoFilter{
		Status:     status,
		SortField:  sortField,
		Descending: q.SortOrder != "asc",
		Limit:      int64(limit),
	}

	var items []domain.DemoRequest
	// a page whose offset does not fit in int64 is past the end of any collection
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		filter.Skip = int64(page-1) * int64(limit)

		var err error
		items, err = s.repo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list demo requests: %w", err)
		}
	}
	total, err := s.repo.Count(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to count demo requests: %w", err)
	}
	if items == nil {
		items = []domain.DemoRequest{}
	}

	return &domain.DemoPage{
		Items: items,
		Pagination: domain.Pagination{
			CurrentPage:  page,
			TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}

// Get returns a demo request by its hex id
func (s *DemoService) Get(ctx context.Context, id string) (*domain.DemoRequest, error) {
	oid, err := parseDemoID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, oid)
}

// UpdateStatus applies an admin update. Moving to contacted without an
// explicit contactedAt stamps the current time.
func (s *DemoService) UpdateStatus(ctx context.Context, id string, input domain.DemoStatusUpdate) (*domain.DemoRequest, error) {
	if input.Status != nil && *input.Status != "" && !input.Status.Valid() {
		return nil, domain.NewValidationError(msgDemoInvalidStatus)
	}

	oid, err := parseDemoID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Status != nil && *input.Status != "" {
		fields["status"] = *input.Status
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.ContactedAt != nil {
		fields["contactedAt"] = input.ContactedAt.UTC()
	} else if input.Status != nil && *input.Status == domain.DemoContacted {
		fields["contactedAt"] = s.now().UTC()
	}

	return s.repo.Update(ctx, oid, fields)
}

// Delete removes a demo request. When the request is still inside the
// submission window its guard reservation is released too, so the email
// may submit again at once.
func (s *DemoService) Delete(ctx context.Context, id string) error {
	oid, err := parseDemoID(id)
	if err != nil {
		return err
	}

	if s.guard == nil {
		return s.repo.Delete(ctx, oid)
	}

	req, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		return err
	}

	if !req.SubmittedAt.Before(s.now().UTC().Add(-domain.DemoSubmissionWindow)) {
		if err := s.guard.Release(ctx, req.Email); err != nil {
			log.Warn().Err(err).Str("email", req.Email).Msg("Failed to release submission guard")
		}
	}
	return nil
}

func (s *DemoService) validateSubmission(input domain.DemoSubmission) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate demo request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	message := ""
	rank := 0
	for _, e := range verrs {
		fields[e.Field()] = e.Tag()

		// required beats email beats use case
		var m string
		var r int
		switch e.Tag() {
		case "required":
			m, r = msgDemoRequired, 3
		case "basic_email":
			m, r = msgDemoInvalidEmail, 2
		default:
			m, r = msgDemoInvalidUse, 1
		}
		if r > rank {
			message, rank = m, r
		}
	}

	return &domain.ValidationError{Message: message, Fields: fields}
}

func normalizeSubmission(in domain.DemoSubmission) domain.DemoSubmission {
	return domain.DemoSubmission{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Company: strings.TrimSpace(in.Company),
		UseCase: strings.TrimSpace(in.UseCase),
		Message: strings.TrimSpace(in.Message),
	}
}

func parseDemoID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid demo request id %q: %w", id, domain.ErrNotFound)
	}
	return oid, nil
}
