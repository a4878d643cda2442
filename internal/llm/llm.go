package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Chat message roles on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Tool declares a callable capability to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Definition
}

// Response carries the model's reply text and any requested tool
// invocations.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	return nil
}

// Chat sends the transcript and tool declarations to the model and returns
// the reply text plus zero or more requested tool invocations.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: 0.3,
	}
	for _, t := range tools {
		var params any = map[string]any{"type": "object", "properties": map[string]any{}}
		if t.Parameters != nil {
			params = t.Parameters
		}
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	msg := resp.Choices[0].Message
	slog.Debug("LLM response", "content_len", len(msg.Content), "tool_calls", len(msg.ToolCalls))

	out := &Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		if tc.Type != openai.ToolTypeFunction {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		cm := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		msgs = append(msgs, cm)
	}
	return msgs
}
