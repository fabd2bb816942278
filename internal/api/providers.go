package api

import (
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/config"
	"github.com/Rrens/chatbot-api/internal/llm"
	"github.com/Rrens/chatbot-api/internal/llm/anthropic"
	"github.com/Rrens/chatbot-api/internal/llm/gemini"
	"github.com/Rrens/chatbot-api/internal/llm/ollama"
	"github.com/Rrens/chatbot-api/internal/llm/openai"
)

// NewLLMRouter registers every provider that has credentials configured
func NewLLMRouter(cfg config.LLMConfig) *llm.Router {
	router := llm.NewRouter(cfg.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.DefaultProvider)

	if cfg.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.Gemini))
	} else {
		log.Warn().Msg("Gemini API key is empty, skipping registration")
	}
	if cfg.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.OpenAI))
	}
	if cfg.DeepSeek.APIKey != "" {
		router.RegisterProvider(openai.NewDeepSeekProvider(cfg.DeepSeek))
	}
	if cfg.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.Anthropic))
	}
	if cfg.Ollama.Host != "" {
		log.Info().Str("host", cfg.Ollama.Host).Msg("Registering Ollama provider")
		router.RegisterProvider(ollama.NewProvider(cfg.Ollama))
	}

	if _, err := router.GetProvider(""); err != nil {
		log.Warn().Err(err).Msg("Default LLM provider unavailable, chat requests will fail")
	}
	log.Info().Strs("providers", router.ListProviders()).Str("default", router.DefaultProvider()).Msg("LLM providers ready")

	return router
}
