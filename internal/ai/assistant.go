// Package ai implements the farming assistant chat backed by the Claude
// Messages API. The assistant answers crop questions and can look up the
// user's reminders, market quotes, and recent advisories through
// read-only tools.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdeshmukh/farm-assistant/internal/model"
	"github.com/pdeshmukh/farm-assistant/internal/store"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	apiURL           = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
)

// StreamChunk represents a piece of the AI response being streamed back.
type StreamChunk struct {
	Text string
	Done bool
}

// ReminderLister exposes the current reminder list to the assistant.
type ReminderLister interface {
	Reminders() []model.Reminder
}

// Assistant is the chat service that communicates with the Claude API,
// manages conversation context, and handles tool use for dashboard queries.
type Assistant struct {
	apiKey    string
	reminders ReminderLister
	cache     store.Store
	context   *ConversationContext
	model     string
	maxTokens int
	client    *http.Client
}

// New creates a new assistant with the given configuration.
func New(
	apiKey string,
	reminders ReminderLister,
	cache store.Store,
	modelName string,
	maxTokens int,
) *Assistant {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Assistant{
		apiKey:    apiKey,
		reminders: reminders,
		cache:     cache,
		context:   NewConversationContext(),
		model:     modelName,
		maxTokens: maxTokens,
		client:    &http.Client{},
	}
}

// Reset clears the conversation history.
func (a *Assistant) Reset() {
	a.context.Reset()
}

// SendMessage sends a user message to the Claude API and returns a channel
// that receives response chunks. The channel is closed when the response
// is complete.
func (a *Assistant) SendMessage(
	ctx context.Context,
	userMsg string,
) (<-chan StreamChunk, error) {
	a.context.AddMessage(RoleUser, userMsg)

	ch := make(chan StreamChunk, 16)

	go func() {
		defer close(ch)
		a.processMessage(ctx, ch)
	}()

	return ch, nil
}

// processMessage handles the API call loop, including tool use iterations.
func (a *Assistant) processMessage(ctx context.Context, ch chan<- StreamChunk) {
	maxToolIterations := 5

	for i := 0; i < maxToolIterations; i++ {
		resp, err := a.callAPI(ctx)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error: %v", err),
				Done: true,
			}
			return
		}

		var textParts []string
		var toolUseBlocks []apiToolUse
		hasToolUse := false

		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textParts = append(textParts, block.Text)
			case "tool_use":
				hasToolUse = true
				toolUseBlocks = append(toolUseBlocks, apiToolUse{
					ID:    block.ID,
					Name:  block.Name,
					Input: block.Input,
				})
			}
		}

		if len(textParts) > 0 {
			combined := strings.Join(textParts, "")
			ch <- StreamChunk{Text: combined, Done: !hasToolUse}

			if !hasToolUse {
				a.context.AddMessage(RoleAssistant, combined)
				return
			}
		}

		if !hasToolUse {
			if len(textParts) == 0 {
				ch <- StreamChunk{Text: "", Done: true}
			}
			return
		}

		// Record the assistant's response (with tool use) in context
		assistantContent, err := json.Marshal(resp.Content)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error encoding response: %v", err),
				Done: true,
			}
			return
		}
		a.context.AddMessage(RoleAssistant, string(assistantContent))

		var toolResults []apiContentBlock
		for _, tu := range toolUseBlocks {
			result := a.executeToolUse(ctx, tu)
			toolResults = append(toolResults, apiContentBlock{
				Type:      "tool_result",
				ToolUseID: tu.ID,
				Content:   result,
			})
		}

		toolResultsJSON, err := json.Marshal(toolResults)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error encoding tool results: %v", err),
				Done: true,
			}
			return
		}
		a.context.AddMessage(RoleUser, string(toolResultsJSON))
	}

	ch <- StreamChunk{
		Text: "\n\n(Reached maximum tool use iterations)",
		Done: true,
	}
}

// callAPI makes a single request to the Claude Messages API.
func (a *Assistant) callAPI(ctx context.Context) (*apiResponse, error) {
	systemPrompt := a.buildSystemPrompt(ctx)
	messages := a.buildAPIMessages()

	reqBody := apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		Messages:  messages,
		Tools:     toolDefinitions(),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// buildSystemPrompt constructs the system prompt with farm context.
func (a *Assistant) buildSystemPrompt(ctx context.Context) string {
	var sb strings.Builder

	sb.WriteString("You are a farming assistant for smallholder farmers. ")
	sb.WriteString("You answer questions about crops, pests, weather ")
	sb.WriteString("precautions, and government schemes in simple language.\n\n")

	if summary := a.buildDashboardSummary(ctx); summary != "" {
		sb.WriteString("Current dashboard data:\n")
		sb.WriteString(summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("You have access to these tools:\n")
	sb.WriteString("- list_reminders: List the user's reminders with their ")
	sb.WriteString("remaining time\n")
	sb.WriteString("- market_quotes: Get today's crop market prices\n")
	sb.WriteString("- recent_alerts: Get recent crop advisories and warnings\n\n")

	sb.WriteString("IMPORTANT: You CANNOT add, change, or delete reminders. ")
	sb.WriteString("If asked to change a reminder, politely explain that you ")
	sb.WriteString("can only look things up, and suggest the keyboard shortcut ")
	sb.WriteString("instead:\n")
	sb.WriteString("- Press 'a' on the dashboard to add a reminder\n")
	sb.WriteString("- Press 'd' on a selected reminder to delete it\n\n")

	sb.WriteString("Keep responses short and practical.")

	return sb.String()
}

// buildDashboardSummary gathers reminder and advisory counts for the
// system prompt.
func (a *Assistant) buildDashboardSummary(ctx context.Context) string {
	var sb strings.Builder

	if a.reminders != nil {
		list := a.reminders.Reminders()
		sb.WriteString(fmt.Sprintf("Reminders: %d\n", len(list)))
	}

	if a.cache != nil {
		if alerts, err := a.cache.GetAlerts(ctx, 5); err == nil {
			sb.WriteString(fmt.Sprintf("Recent advisories: %d\n", len(alerts)))
		}
	}

	return sb.String()
}

// buildAPIMessages converts the conversation context into the Claude API
// message format. Messages with JSON content blocks (from tool use) are
// sent as structured content; plain text messages are sent as-is.
func (a *Assistant) buildAPIMessages() []apiMessage {
	contextMsgs := a.context.GetMessages()
	var messages []apiMessage

	for _, msg := range contextMsgs {
		if isJSONArray(msg.Content) {
			var blocks []apiContentBlock
			if err := json.Unmarshal(
				[]byte(msg.Content), &blocks,
			); err == nil {
				messages = append(messages, apiMessage{
					Role:    string(msg.Role),
					Content: blocks,
				})
				continue
			}
		}

		messages = append(messages, apiMessage{
			Role: string(msg.Role),
			Content: []apiContentBlock{
				{Type: "text", Text: msg.Content},
			},
		})
	}

	return messages
}

// executeToolUse runs a tool requested by the AI and returns the result.
func (a *Assistant) executeToolUse(
	ctx context.Context,
	tu apiToolUse,
) string {
	// Read-only guard: reject any write-like tool names
	writeTools := map[string]bool{
		"add_reminder":    true,
		"delete_reminder": true,
		"update_reminder": true,
		"update_profile":  true,
	}
	if writeTools[tu.Name] {
		return `{"error": "Write operations are not permitted. ` +
			`Please use the keyboard shortcuts instead: ` +
			`'a' to add a reminder, 'd' to delete one."}`
	}

	switch tu.Name {
	case "list_reminders":
		return a.handleListReminders()
	case "market_quotes":
		return a.handleMarketQuotes(ctx)
	case "recent_alerts":
		return a.handleRecentAlerts(ctx)
	default:
		return fmt.Sprintf(`{"error": "Unknown tool: %s"}`, tu.Name)
	}
}

// handleListReminders serializes the current reminder list.
func (a *Assistant) handleListReminders() string {
	if a.reminders == nil {
		return `{"error": "Reminders are not available"}`
	}

	type reminderSummary struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		RemainingTime string `json:"remaining_time"`
	}

	list := a.reminders.Reminders()
	summaries := make([]reminderSummary, 0, len(list))
	for _, r := range list {
		summaries = append(summaries, reminderSummary{
			ID:            r.ID,
			Title:         r.Title,
			Description:   r.Description,
			RemainingTime: r.RemainingTime,
		})
	}

	result, err := json.Marshal(map[string]interface{}{
		"count":     len(summaries),
		"reminders": summaries,
	})
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to encode results: %v"}`, err)
	}

	return string(result)
}

// handleMarketQuotes serializes the cached crop prices.
func (a *Assistant) handleMarketQuotes(ctx context.Context) string {
	quotes := model.SeedQuotes()
	if a.cache != nil {
		if cached, err := a.cache.GetQuotes(ctx); err == nil && len(cached) > 0 {
			quotes = cached
		}
	}

	type quoteSummary struct {
		Name  string `json:"name"`
		Price string `json:"price"`
		Note  string `json:"note,omitempty"`
	}

	summaries := make([]quoteSummary, 0, len(quotes))
	for _, q := range quotes {
		summaries = append(summaries, quoteSummary{
			Name:  q.Name,
			Price: q.Price,
			Note:  q.Note,
		})
	}

	result, err := json.Marshal(map[string]interface{}{
		"count":  len(summaries),
		"quotes": summaries,
	})
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to encode results: %v"}`, err)
	}

	return string(result)
}

// handleRecentAlerts serializes the cached advisory cards.
func (a *Assistant) handleRecentAlerts(ctx context.Context) string {
	alerts := model.BuiltinAlerts()
	if a.cache != nil {
		if cached, err := a.cache.GetAlerts(ctx, 10); err == nil && len(cached) > 0 {
			alerts = cached
		}
	}

	type alertSummary struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Region string `json:"region"`
	}

	summaries := make([]alertSummary, 0, len(alerts))
	for _, al := range alerts {
		summaries = append(summaries, alertSummary{
			Title:  al.Title,
			Detail: al.Detail,
			Region: al.Region,
		})
	}

	result, err := json.Marshal(map[string]interface{}{
		"count":  len(summaries),
		"alerts": summaries,
	})
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to encode results: %v"}`, err)
	}

	return string(result)
}

// isJSONArray returns true if the string starts with '['.
func isJSONArray(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
	Tools     []apiTool    `json:"tools,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	// Common fields
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// For tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type apiToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// toolDefinitions returns the tool specifications for the Claude API.
func toolDefinitions() []apiTool {
	return []apiTool{
		{
			Name: "list_reminders",
			Description: "List the user's helpful reminders with their " +
				"titles and remaining time until expiry.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		{
			Name: "market_quotes",
			Description: "Get the latest cached crop market prices shown " +
				"on the dashboard ticker.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		{
			Name: "recent_alerts",
			Description: "Get recent crop advisories, pest warnings, and " +
				"weather notices for the user's region.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
	}
}
