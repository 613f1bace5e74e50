package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/allisson/reelcast/internal/credential"
	generationDomain "github.com/allisson/reelcast/internal/generation/domain"
	"github.com/allisson/reelcast/internal/mapping"
	sourceDomain "github.com/allisson/reelcast/internal/source/domain"
)

// ScriptConfig configures the chat-completions style script service.
type ScriptConfig struct {
	// Endpoint is the full completions URL. Empty means unconfigured.
	Endpoint string
	// APIKeyRef is a credential reference for the bearer token.
	APIKeyRef string
	Model     string
}

// ScriptService writes a short voiceover script for a record.
type ScriptService struct {
	client   *http.Client
	config   ScriptConfig
	resolver credential.Resolver
}

// NewScriptService creates a ScriptService. A nil client uses http.DefaultClient.
func NewScriptService(client *http.Client, config ScriptConfig, resolver credential.Resolver) *ScriptService {
	if client == nil {
		client = http.DefaultClient
	}
	return &ScriptService{client: client, config: config, resolver: resolver}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate returns ErrScriptUnavailable when the service is unconfigured, its credential
// is missing, or the call fails; callers fall back to the record text.
func (s *ScriptService) Generate(
	ctx context.Context,
	record sourceDomain.ProductRecord,
	params mapping.Parameters,
) (string, error) {
	if s.config.Endpoint == "" {
		return "", generationDomain.ErrScriptUnavailable
	}

	token, err := s.resolver.Resolve(ctx, s.config.APIKeyRef)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generationDomain.ErrScriptUnavailable, err)
	}

	request := chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: scriptSystemPrompt(params)},
			{Role: "user", Content: scriptUserPrompt(record)},
		},
	}

	var response chatResponse
	if err := doJSON(ctx, s.client, http.MethodPost, s.config.Endpoint, token, request, &response); err != nil {
		return "", fmt.Errorf("%w: %v", generationDomain.ErrScriptUnavailable, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", generationDomain.ErrScriptUnavailable)
	}

	script := strings.TrimSpace(response.Choices[0].Message.Content)
	if script == "" {
		return "", fmt.Errorf("%w: empty completion", generationDomain.ErrScriptUnavailable)
	}
	return script, nil
}

func scriptSystemPrompt(params mapping.Parameters) string {
	// Roughly 2.5 spoken words per second.
	words := params.DurationSeconds * 5 / 2
	return fmt.Sprintf(
		"You write voiceover scripts for short vertical product videos. "+
			"Write plain spoken text of at most %d words, no stage directions, no hashtags.",
		words,
	)
}

func scriptUserPrompt(record sourceDomain.ProductRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", record.Title)
	if record.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", record.Description)
	}
	return b.String()
}
