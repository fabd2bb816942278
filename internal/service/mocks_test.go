package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/llm"
)

// MockUserRepo mocks the UserRepository interface
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) AppendTurns(ctx context.Context, id primitive.ObjectID, turns ...domain.Turn) ([]domain.Turn, error) {
	args := m.Called(ctx, id, turns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Turn), args.Error(1)
}

func (m *MockUserRepo) ClearTurns(ctx context.Context, id primitive.ObjectID) ([]domain.Turn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Turn), args.Error(1)
}

// MockDemoRepo mocks the DemoRepository interface
type MockDemoRepo struct {
	mock.Mock
}

func (m *MockDemoRepo) Create(ctx context.Context, req *domain.DemoRequest) error {
	args := m.Called(ctx, req)
	if args.Error(0) == nil && req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockDemoRepo) FindRecentByEmail(ctx context.Context, email string, since time.Time) (*domain.DemoRequest, error) {
	args := m.Called(ctx, email, since)
	if fn, ok := args.Get(0).(func(context.Context, string, time.Time) *domain.DemoRequest); ok {
		return fn(ctx, email, since), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DemoRequest), args.Error(1)
}

func (m *MockDemoRepo) List(ctx context.Context, filter domain.DemoFilter) ([]domain.DemoRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DemoRequest), args.Error(1)
}

func (m *MockDemoRepo) Count(ctx context.Context, status domain.DemoStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDemoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DemoRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DemoRequest), args.Error(1)
}

func (m *MockDemoRepo) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.DemoRequest, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DemoRequest), args.Error(1)
}

func (m *MockDemoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGuard mocks the SubmissionGuard interface
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Acquire(ctx context.Context, email string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, email, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) Release(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) AvailableModels() []string {
	return []string{"mock-1"}
}

func (m *MockProvider) DefaultModel() string {
	return "mock-1"
}

func (m *MockProvider) IsConfigured() bool {
	return true
}

func (m *MockProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}
