package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/knelavan/skilltime/internal/config"
	"github.com/knelavan/skilltime/internal/errors"
	"github.com/knelavan/skilltime/internal/mirror"
	"github.com/knelavan/skilltime/internal/ops"
	"github.com/knelavan/skilltime/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	st     *store.Store
	cfg    *config.Config
	mirror *mirror.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, cfg *config.Config, svc *mirror.Service) *Handlers {
	return &Handlers{st: st, cfg: cfg, mirror: svc}
}

// Request types for each tool

// SealRequest represents the arguments for seal.
type SealRequest struct {
	SkillID         string `json:"skill_id"`
	Content         string `json:"content"`
	MessageToFuture string `json:"message_to_future"`
	DurationMonths  int    `json:"duration_months"`
}

// FetchRequest represents the arguments for fetch.
type FetchRequest struct {
	ID string `json:"id"`
}

// UnlockRequest represents the arguments for unlock.
type UnlockRequest struct {
	ID string `json:"id"`
}

// ReflectRequest represents the arguments for reflect.
type ReflectRequest struct {
	ID             string `json:"id"`
	PresentContent string `json:"present_content"`
}

// AddSkillRequest represents the arguments for add_skill.
type AddSkillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// Handler implementations

// HandleSeal handles the seal tool call.
func (h *Handlers) HandleSeal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SealRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Seal(h.st, ops.SealInput{
		SkillID:         input.SkillID,
		Content:         input.Content,
		MessageToFuture: input.MessageToFuture,
		DurationMonths:  input.DurationMonths,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.List(h.st, ops.ListInput{})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFetch handles the fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(h.st, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUnlock handles the unlock tool call.
func (h *Handlers) HandleUnlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UnlockRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Unlock(h.st, ops.UnlockInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReflect handles the reflect tool call.
func (h *Handlers) HandleReflect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReflectRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Reflect(ctx, h.st, h.mirror, ops.ReflectInput{
		ID:             input.ID,
		PresentContent: input.PresentContent,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSkills handles the skills tool call.
func (h *Handlers) HandleSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListSkills(h.st)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAddSkill handles the add_skill tool call.
func (h *Handlers) HandleAddSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddSkillRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddSkill(h.st, ops.AddSkillInput{
		Name:     input.Name,
		Category: input.Category,
		Icon:     input.Icon,
		Color:    input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(h.st, ops.ExportInput{Path: input.Path})
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

	if vErr, ok := err.(*errors.VaultError); ok {
		errorObj := map[string]any{
			"code":    vErr.Code,
			"message": vErr.Message,
			"status":  vErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if vErr.Code != errors.ErrInternal && vErr.Details != nil {
			errorObj["details"] = vErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
