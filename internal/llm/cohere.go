package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CohereProvider implements the Provider interface for Cohere's chat
// API. It backs the first-layer decision model.
type CohereProvider struct {
	baseProvider
}

// NewCohereProvider creates a new Cohere provider.
func NewCohereProvider(cfg *ProviderConfig) *CohereProvider {
	return &CohereProvider{
		baseProvider: newBaseProvider(cfg, "cohere"),
	}
}

// Chat sends a chat request to Cohere. The request's SystemPrompt maps
// to Cohere's preamble and all but the last message become the chat
// history; the last user message is the one being answered.
func (p *CohereProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("Cohere API key not configured")
	}

	start := time.Now()

	cohereReq := cohereChatRequest{
		Model:       req.Model,
		Preamble:    req.SystemPrompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Connectors:  []cohereConnector{},
	}
	if cohereReq.Model == "" {
		cohereReq.Model = p.config.Model
	}
	if cohereReq.Temperature == 0 {
		cohereReq.Temperature = p.config.Temperature
	}
	if cohereReq.MaxTokens == 0 {
		cohereReq.MaxTokens = p.config.MaxTokens
	}

	// Split history from the message being answered.
	msgs := req.Messages
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages in request")
	}
	cohereReq.Message = msgs[len(msgs)-1].Content
	for _, m := range msgs[:len(msgs)-1] {
		cohereReq.ChatHistory = append(cohereReq.ChatHistory, cohereHistoryEntry{
			Role:    cohereRole(m.Role),
			Message: m.Content,
		})
	}

	body, err := json.Marshal(cohereReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.Endpoint+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := readLimitedBody(resp.Body, MaxErrorBodySize)
		return nil, fmt.Errorf("Cohere error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var cohereResp cohereChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cohereResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &ChatResponse{
		Content:    cohereResp.Text,
		Model:      cohereReq.Model,
		TokensUsed: cohereResp.Meta.BilledUnits.InputTokens + cohereResp.Meta.BilledUnits.OutputTokens,
		Duration:   time.Since(start),
	}, nil
}

// cohereRole maps OpenAI-style roles onto Cohere's history roles.
func cohereRole(role string) string {
	switch strings.ToLower(role) {
	case "assistant", "chatbot":
		return "CHATBOT"
	case "system":
		return "SYSTEM"
	default:
		return "USER"
	}
}

// Cohere API types.
type cohereChatRequest struct {
	Model       string               `json:"model"`
	Message     string               `json:"message"`
	Preamble    string               `json:"preamble,omitempty"`
	ChatHistory []cohereHistoryEntry `json:"chat_history,omitempty"`
	Temperature float64              `json:"temperature,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Connectors  []cohereConnector    `json:"connectors"`
}

type cohereHistoryEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereConnector struct {
	ID string `json:"id"`
}

type cohereChatResponse struct {
	Text         string `json:"text"`
	GenerationID string `json:"generation_id"`
	FinishReason string `json:"finish_reason"`
	Meta         struct {
		BilledUnits struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"billed_units"`
	} `json:"meta"`
}
