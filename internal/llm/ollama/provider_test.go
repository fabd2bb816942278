package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chatbot-api/internal/config"
	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/llm"
)

func TestProvider_Generate(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"message":{"role":"assistant","content":"42"},"done":true,"prompt_eval_count":5,"eval_count":1}`))
	}))
	defer srv.Close()

	p := NewProvider(config.OllamaConfig{Host: srv.URL})
	require.True(t, p.IsConfigured())

	resp, err := p.Generate(context.Background(), llm.Request{Turns: []domain.Turn{
		domain.NewUserTurn("what is the answer?"),
	}}, "mistral")
	require.NoError(t, err)

	assert.Equal(t, "42", resp.Content)
	assert.Equal(t, "mistral", resp.Model)
	assert.Equal(t, 6, resp.TokensUsed)
	assert.False(t, got.Stream)
	assert.Equal(t, "mistral", got.Model)
}

func TestProvider_NotConfigured(t *testing.T) {
	p := NewProvider(config.OllamaConfig{})
	assert.False(t, p.IsConfigured())
	assert.Equal(t, "llama3", p.DefaultModel())
}
