package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/chatbot-api/internal/domain"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newDemoService(repo *MockDemoRepo, guard domain.SubmissionGuard) *DemoService {
	svc := NewDemoService(repo, guard)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestDemoService_Submit(t *testing.T) {
	repo := new(MockDemoRepo)
	svc := newDemoService(repo, nil)

	ctx := context.Background()
	since := fixedNow.Add(-24 * time.Hour)

	repo.On("FindRecentByEmail", ctx, "ada@example.com", since).Return(nil, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(r *domain.DemoRequest) bool {
		return r.Name == "Ada" &&
			r.Email == "ada@example.com" &&
			r.Company == "Analytical" &&
			r.UseCase == "business" &&
			r.Status == domain.DemoPending &&
			r.SubmittedAt.Equal(fixedNow)
	})).Return(nil)

	req, err := svc.Submit(ctx, domain.DemoSubmission{
		Name:    "  Ada ",
		Email:   " Ada@Example.COM ",
		Company: "Analytical ",
		UseCase: "business",
	})
	require.NoError(t, err)
	assert.False(t, req.ID.IsZero())
	assert.Equal(t, fixedNow, req.SubmittedAt)

	repo.AssertExpectations(t)
}

func TestDemoService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   domain.DemoSubmission
		message string
	}{
		{
			name:    "missing name",
			input:   domain.DemoSubmission{Name: "", Email: "a@b.com", UseCase: "business"},
			message: "Name, email, and use case are required",
		},
		{
			name:    "blank name",
			input:   domain.DemoSubmission{Name: "   ", Email: "a@b.com", UseCase: "business"},
			message: "Name, email, and use case are required",
		},
		{
			name:    "missing use case beats bad email",
			input:   domain.DemoSubmission{Name: "A", Email: "bad-email"},
			message: "Name, email, and use case are required",
		},
		{
			name:    "invalid email",
			input:   domain.DemoSubmission{Name: "A", Email: "bad-email", UseCase: "business"},
			message: "Please provide a valid email address",
		},
		{
			name:    "email without dot",
			input:   domain.DemoSubmission{Name: "A", Email: "a@b", UseCase: "business"},
			message: "Please provide a valid email address",
		},
		{
			name:    "bad email beats bad use case",
			input:   domain.DemoSubmission{Name: "A", Email: "a b@c.d", UseCase: "gaming"},
			message: "Please provide a valid email address",
		},
		{
			name:    "unknown use case",
			input:   domain.DemoSubmission{Name: "A", Email: "a@b.com", UseCase: "gaming"},
			message: "Invalid use case selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDemoRepo)
			svc := newDemoService(repo, nil)

			_, err := svc.Submit(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.Message)

			repo.AssertNotCalled(t, "FindRecentByEmail", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestDemoService_Submit_AllUseCases(t *testing.T) {
	for _, useCase := range domain.UseCases {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)
		repo.On("FindRecentByEmail", mock.Anything, "a@b.com", mock.Anything).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Submit(context.Background(), domain.DemoSubmission{Name: "A", Email: "a@b.com", UseCase: useCase})
		assert.NoError(t, err, useCase)
	}
}

func TestDemoService_Submit_DuplicateWindow(t *testing.T) {
	repo := new(MockDemoRepo)
	svc := newDemoService(repo, nil)
	ctx := context.Background()

	stored := []*domain.DemoRequest{}
	repo.On("FindRecentByEmail", ctx, "lead@example.com", mock.AnythingOfType("time.Time")).
		Return(func(_ context.Context, _ string, since time.Time) *domain.DemoRequest {
			for _, r := range stored {
				if !r.SubmittedAt.Before(since) {
					return r
				}
			}
			return nil
		}, nil)
	repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		stored = append(stored, args.Get(1).(*domain.DemoRequest))
	}).Return(nil)

	input := domain.DemoSubmission{Name: "Lead", Email: "lead@example.com", UseCase: "research"}

	_, err := svc.Submit(ctx, input)
	require.NoError(t, err)

	// same address with different case within the window
	svc.now = func() time.Time { return fixedNow.Add(23 * time.Hour) }
	input.Email = "LEAD@example.com"
	_, err = svc.Submit(ctx, input)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Len(t, stored, 1)

	svc.now = func() time.Time { return fixedNow.Add(24*time.Hour + time.Second) }
	_, err = svc.Submit(ctx, input)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestDemoService_Submit_Guard(t *testing.T) {
	ctx := context.Background()
	input := domain.DemoSubmission{Name: "A", Email: "a@b.com", UseCase: "other"}

	t.Run("claimed elsewhere", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		repo.On("FindRecentByEmail", ctx, "a@b.com", mock.Anything).Return(nil, nil)
		guard.On("Acquire", ctx, "a@b.com", domain.DemoSubmissionWindow).Return(false, nil)

		_, err := svc.Submit(ctx, input)
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("guard unavailable", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		repo.On("FindRecentByEmail", ctx, "a@b.com", mock.Anything).Return(nil, nil)
		guard.On("Acquire", ctx, "a@b.com", domain.DemoSubmissionWindow).Return(false, errors.New("connection refused"))
		repo.On("Create", ctx, mock.Anything).Return(nil)

		_, err := svc.Submit(ctx, input)
		require.NoError(t, err)
		guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("released on insert failure", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		repo.On("FindRecentByEmail", ctx, "a@b.com", mock.Anything).Return(nil, nil)
		guard.On("Acquire", ctx, "a@b.com", domain.DemoSubmissionWindow).Return(true, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
		guard.On("Release", ctx, "a@b.com").Return(nil)

		_, err := svc.Submit(ctx, input)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRateLimited)
		guard.AssertExpectations(t)
	})
}

func TestDemoService_List(t *testing.T) {
	tests := []struct {
		name       string
		query      domain.DemoListQuery
		filter     domain.DemoFilter
		total      int64
		pagination domain.Pagination
	}{
		{
			name:       "defaults",
			query:      domain.DemoListQuery{},
			filter:     domain.DemoFilter{SortField: "submittedAt", Descending: true, Skip: 0, Limit: 10},
			total:      25,
			pagination: domain.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10},
		},
		{
			name:       "status all and ascending",
			query:      domain.DemoListQuery{Status: "all", SortBy: "name", SortOrder: "asc", Page: 2, Limit: 5},
			filter:     domain.DemoFilter{SortField: "name", Descending: false, Skip: 5, Limit: 5},
			total:      6,
			pagination: domain.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 6, ItemsPerPage: 5},
		},
		{
			name:       "page offset beyond int64",
			query:      domain.DemoListQuery{Page: math.MaxInt, Limit: 100},
			filter:     domain.DemoFilter{SortField: "submittedAt", Descending: true, Limit: 100},
			total:      3,
			pagination: domain.Pagination{CurrentPage: math.MaxInt, TotalPages: 1, TotalItems: 3, ItemsPerPage: 100},
		},
		{
			name:       "status filter with unknown sort and clamped limit",
			query:      domain.DemoListQuery{Status: "contacted", SortBy: "$where", Page: -3, Limit: 1000},
			filter:     domain.DemoFilter{Status: domain.DemoContacted, SortField: "submittedAt", Descending: true, Skip: 0, Limit: 100},
			total:      0,
			pagination: domain.Pagination{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDemoRepo)
			svc := newDemoService(repo, nil)

			overflow := tt.query.Page == math.MaxInt
			if !overflow {
				repo.On("List", mock.Anything, tt.filter).Return(nil, nil)
			}
			repo.On("Count", mock.Anything, tt.filter.Status).Return(tt.total, nil)

			page, err := svc.List(context.Background(), tt.query)
			require.NoError(t, err)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.pagination, page.Pagination)
			repo.AssertExpectations(t)
			if overflow {
				assert.Empty(t, page.Items)
				repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDemoService_Get(t *testing.T) {
	repo := new(MockDemoRepo)
	svc := newDemoService(repo, nil)

	id := primitive.NewObjectID()
	repo.On("GetByID", mock.Anything, id).Return(&domain.DemoRequest{ID: id, Name: "A"}, nil)

	req, err := svc.Get(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "A", req.Name)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDemoService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()

	t.Run("contacted stamps time", func(t *testing.T) {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)

		status := domain.DemoContacted
		repo.On("Update", ctx, id, map[string]any{
			"status":      domain.DemoContacted,
			"contactedAt": fixedNow,
		}).Return(&domain.DemoRequest{ID: id, Status: domain.DemoContacted, ContactedAt: &fixedNow}, nil)

		req, err := svc.UpdateStatus(ctx, id.Hex(), domain.DemoStatusUpdate{Status: &status})
		require.NoError(t, err)
		require.NotNil(t, req.ContactedAt)
		assert.False(t, req.ContactedAt.Before(fixedNow))
		repo.AssertExpectations(t)
	})

	t.Run("explicit contactedAt wins", func(t *testing.T) {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)

		status := domain.DemoContacted
		at := fixedNow.Add(-time.Hour)
		notes := "called back"
		repo.On("Update", ctx, id, map[string]any{
			"status":      domain.DemoContacted,
			"contactedAt": at,
			"notes":       "called back",
		}).Return(&domain.DemoRequest{ID: id}, nil)

		_, err := svc.UpdateStatus(ctx, id.Hex(), domain.DemoStatusUpdate{Status: &status, ContactedAt: &at, Notes: &notes})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("notes only", func(t *testing.T) {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)

		notes := ""
		repo.On("Update", ctx, id, map[string]any{"notes": ""}).Return(&domain.DemoRequest{ID: id}, nil)

		_, err := svc.UpdateStatus(ctx, id.Hex(), domain.DemoStatusUpdate{Notes: &notes})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)

		status := domain.DemoStatus("archived")
		_, err := svc.UpdateStatus(ctx, id.Hex(), domain.DemoStatusUpdate{Status: &status})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.EqualError(t, err, "Invalid status value")
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockDemoRepo)
		svc := newDemoService(repo, nil)

		repo.On("Update", ctx, id, map[string]any{}).Return(nil, domain.ErrNotFound)

		_, err := svc.UpdateStatus(ctx, id.Hex(), domain.DemoStatusUpdate{})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = svc.UpdateStatus(ctx, "123", domain.DemoStatusUpdate{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDemoService_Delete(t *testing.T) {
	repo := new(MockDemoRepo)
	svc := newDemoService(repo, nil)

	id := primitive.NewObjectID()
	repo.On("Delete", mock.Anything, id).Return(nil).Once()

	require.NoError(t, svc.Delete(context.Background(), id.Hex()))
	assert.ErrorIs(t, svc.Delete(context.Background(), "zzz"), domain.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestDemoService_Delete_ReleasesGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("inside window frees the email", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		id := primitive.NewObjectID()
		repo.On("GetByID", ctx, id).Return(&domain.DemoRequest{ID: id, Email: "lead@example.com", SubmittedAt: fixedNow.Add(-time.Hour)}, nil)
		repo.On("Delete", ctx, id).Return(nil)
		guard.On("Release", ctx, "lead@example.com").Return(nil)

		require.NoError(t, svc.Delete(ctx, id.Hex()))
		repo.AssertExpectations(t)
		guard.AssertExpectations(t)

		// the same email may submit again right away
		repo.On("FindRecentByEmail", ctx, "lead@example.com", mock.Anything).Return(nil, nil)
		guard.On("Acquire", ctx, "lead@example.com", domain.DemoSubmissionWindow).Return(true, nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		_, err := svc.Submit(ctx, domain.DemoSubmission{Name: "Lead", Email: "lead@example.com", UseCase: "business"})
		require.NoError(t, err)
	})

	t.Run("outside window keeps the guard", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		id := primitive.NewObjectID()
		repo.On("GetByID", ctx, id).Return(&domain.DemoRequest{ID: id, Email: "old@example.com", SubmittedAt: fixedNow.Add(-48 * time.Hour)}, nil)
		repo.On("Delete", ctx, id).Return(nil)

		require.NoError(t, svc.Delete(ctx, id.Hex()))
		guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("missing request", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		id := primitive.NewObjectID()
		repo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id.Hex()), domain.ErrNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})

	t.Run("release failure is not fatal", func(t *testing.T) {
		repo := new(MockDemoRepo)
		guard := new(MockGuard)
		svc := newDemoService(repo, guard)

		id := primitive.NewObjectID()
		repo.On("GetByID", ctx, id).Return(&domain.DemoRequest{ID: id, Email: "lead@example.com", SubmittedAt: fixedNow}, nil)
		repo.On("Delete", ctx, id).Return(nil)
		guard.On("Release", ctx, "lead@example.com").Return(errors.New("connection refused"))

		assert.NoError(t, svc.Delete(ctx, id.Hex()))
	})
}
