package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/serene/internal/errors"
	"github.com/hpungsan/serene/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// Request types for each tool

// AnswerRequest represents the arguments for assessment_answer.
type AnswerRequest struct {
	ItemID  *int `json:"item_id"`
	Value   *int `json:"value"`
	Advance bool `json:"advance,omitempty"`
}

// DateRequest represents tools addressed by a single date.
type DateRequest struct {
	Date string `json:"date,omitempty"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// MonthRequest represents the arguments for calendar_month.
type MonthRequest struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// JournalPutRequest represents the arguments for journal_put.
type JournalPutRequest struct {
	Date          string `json:"date,omitempty"`
	Note          string `json:"note,omitempty"`
	MoodIntensity int    `json:"mood_intensity,omitempty"`
	MoodTag       string `json:"mood_tag,omitempty"`
}

// HandleItems handles the assessment_items tool.
func (h *Handlers) HandleItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Items())
}

// HandleStatus handles the assessment_status tool.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Status(h.env))
}

// HandleAnswer handles the assessment_answer tool.
func (h *Handlers) HandleAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnswerRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ItemID == nil {
		return errorResult(errors.NewInvalidRequest("item_id is required")), nil
	}
	if input.Value == nil {
		return errorResult(errors.NewInvalidRequest("value is required")), nil
	}

	result, err := ops.Answer(ctx, h.env, ops.AnswerInput{
		ItemID:  *input.ItemID,
		Value:   *input.Value,
		Advance: input.Advance,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAdvance handles the assessment_advance tool.
func (h *Handlers) HandleAdvance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Advance(h.env)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRetreat handles the assessment_retreat tool.
func (h *Handlers) HandleRetreat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Retreat(h.env))
}

// HandleSubmit handles the assessment_submit tool.
func (h *Handlers) HandleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Submit(ctx, h.env, ops.SubmitInput{Date: strings.TrimSpace(input.Date)})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRetake handles the assessment_retake tool.
func (h *Handlers) HandleRetake(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Retake(ctx, h.env))
}

// HandleHistoryList handles the history_list tool.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.HistoryList(ctx, h.env, ops.HistoryListInput{
		From: strings.TrimSpace(input.From),
		To:   strings.TrimSpace(input.To),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryGet handles the history_get tool.
func (h *Handlers) HandleHistoryGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Date) == "" {
		return errorResult(errors.NewInvalidRequest("date is required")), nil
	}

	result, err := ops.HistoryGet(ctx, h.env, ops.HistoryGetInput{Date: strings.TrimSpace(input.Date)})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleMonth handles the calendar_month tool.
func (h *Handlers) HandleMonth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MonthRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Month(ctx, h.env, ops.MonthInput{Year: input.Year, Month: input.Month})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleWeek handles the calendar_week tool.
func (h *Handlers) HandleWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Week(ctx, h.env, ops.WeekInput{Date: strings.TrimSpace(input.Date)})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleJournalPut handles the journal_put tool.
func (h *Handlers) HandleJournalPut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[JournalPutRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.JournalPut(ctx, h.env, ops.JournalPutInput{
		Date:          strings.TrimSpace(input.Date),
		Note:          input.Note,
		MoodIntensity: input.MoodIntensity,
		MoodTag:       strings.TrimSpace(input.MoodTag),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleJournalGet handles the journal_get tool.
func (h *Handlers) HandleJournalGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Date) == "" {
		return errorResult(errors.NewInvalidRequest("date is required")), nil
	}

	result, err := ops.JournalGet(ctx, h.env, strings.TrimSpace(input.Date))
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.SereneError
	if stderrors.As(err, &sErr) {
		// Keep any wrapping context ("items[2]: ...") in front of the message
		message := sErr.Message
		if prefix := strings.TrimSuffix(err.Error(), sErr.Error()); prefix != err.Error() {
			message = prefix + message
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": message,
			"status":  sErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		if sErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
