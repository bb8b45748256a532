package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/newswaters/newswaters/domain/service"
)

// defaultCompletionTimeout bounds one completion call; long summaries on
// CPU-bound servers can take minutes.
const defaultCompletionTimeout = 600 * time.Second

// LlamaConfig holds the completion backend settings.
type LlamaConfig struct {
	// BaseURL is the OpenAI-compatible API root, e.g.
	// http://127.0.0.1:8080/v1 for a llama.cpp server.
	BaseURL string

	// Model is the model name passed through to the server.
	Model string

	// Template wraps instructions before completion; the {instruction}
	// placeholder is substituted.
	Template string

	// Temperature is the sampling temperature.
	Temperature float32

	// Timeout bounds one completion call.
	Timeout time.Duration
}

// Llama runs instruction completions against an OpenAI-compatible
// completion server.
type Llama struct {
	client      *openai.Client
	model       string
	template    string
	temperature float32
}

// NewLlama creates a Llama instructor from configuration.
func NewLlama(cfg LlamaConfig) *Llama {
	config := openai.DefaultConfig("")
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCompletionTimeout
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &Llama{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		template:    cfg.Template,
		temperature: cfg.Temperature,
	}
}

// Instruct wraps the instruction in the prompt template, completes it
// and returns the trimmed completion text.
func (l *Llama) Instruct(ctx context.Context, instruction string) (string, error) {
	prompt := l.renderPrompt(instruction)

	resp, err := l.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       l.model,
		Prompt:      prompt,
		Temperature: l.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	// Some servers echo the prompt in the generated text; the echo
	// carries neither the BOS nor the EOS marker.
	echo := strings.ReplaceAll(strings.ReplaceAll(prompt, "<s>", ""), "</s>", "")
	completion := strings.ReplaceAll(resp.Choices[0].Text, echo, "")
	return strings.TrimSpace(completion), nil
}

func (l *Llama) renderPrompt(instruction string) string {
	if l.template == "" {
		return instruction
	}
	return strings.ReplaceAll(l.template, "{instruction}", instruction)
}

var _ service.Instructor = (*Llama)(nil)
