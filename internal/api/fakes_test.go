package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/llm"
)

// memUsers is an in-memory UserRepository
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.Chats = []domain.Turn{}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Chats = append([]domain.Turn{}, u.Chats...)
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetByEmail(ctx, email)
	return u != nil, err
}

func (m *memUsers) AppendTurns(_ context.Context, id primitive.ObjectID, turns ...domain.Turn) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.Chats = append(u.Chats, turns...)
	return append([]domain.Turn{}, u.Chats...), nil
}

func (m *memUsers) ClearTurns(_ context.Context, id primitive.ObjectID) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.Chats = []domain.Turn{}
	return []domain.Turn{}, nil
}

func (m *memUsers) chats(email string) []domain.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return append([]domain.Turn{}, u.Chats...)
		}
	}
	return nil
}

// memDemos is an in-memory DemoRepository
type memDemos struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]domain.DemoRequest
}

func newMemDemos() *memDemos {
	return &memDemos{items: map[primitive.ObjectID]domain.DemoRequest{}}
}

func (m *memDemos) Create(_ context.Context, req *domain.DemoRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = primitive.NewObjectID()
	m.items[req.ID] = *req
	return nil
}

func (m *memDemos) FindRecentByEmail(_ context.Context, email string, since time.Time) (*domain.DemoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.Email == email && !r.SubmittedAt.Before(since) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDemos) filtered(status domain.DemoStatus) []domain.DemoRequest {
	var out []domain.DemoRequest
	for _, r := range m.items {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func (m *memDemos) List(_ context.Context, f domain.DemoFilter) ([]domain.DemoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.filtered(f.Status)
	sort.Slice(out, func(i, j int) bool {
		if f.Descending {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	if f.Skip >= int64(len(out)) {
		return []domain.DemoRequest{}, nil
	}
	out = out[f.Skip:]
	if int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memDemos) Count(_ context.Context, status domain.DemoStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(status))), nil
}

func (m *memDemos) GetByID(_ context.Context, id primitive.ObjectID) (*domain.DemoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *memDemos) Update(_ context.Context, id primitive.ObjectID, fields map[string]any) (*domain.DemoRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(domain.DemoStatus)
		case "notes":
			r.Notes = v.(string)
		case "contactedAt":
			t := v.(time.Time)
			r.ContactedAt = &t
		}
	}
	m.items[id] = r
	return &r, nil
}

func (m *memDemos) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memDemos) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// echoProvider answers every conversation by echoing the last user turn
type echoProvider struct {
	mu    sync.Mutex
	calls int
	seen  []domain.Turn
}

func (p *echoProvider) Name() string              { return "echo" }
func (p *echoProvider) AvailableModels() []string { return []string{"echo-1"} }
func (p *echoProvider) DefaultModel() string      { return "echo-1" }
func (p *echoProvider) IsConfigured() bool        { return true }

func (p *echoProvider) Generate(_ context.Context, req llm.Request, model string) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.seen = append([]domain.Turn{}, req.Turns...)
	last := req.Turns[len(req.Turns)-1]
	return &llm.Response{Content: "echo: " + strings.ToUpper(last.Content), Model: "echo-1"}, nil
}

func (p *echoProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
