package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/ops"
)

// Request types for each tool

// VisitAddRequest represents the arguments for visit_add.
type VisitAddRequest struct {
	SpecialistID int64   `json:"specialist_id"`
	Date         string  `json:"date"`
	Notes        string  `json:"notes,omitempty"`
	Cost         float64 `json:"cost,omitempty"`
}

// ListRequest represents the shared arguments of the list tools.
type ListRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// DeleteRequest represents the arguments of the delete tools.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// ExamAddRequest represents the arguments for exam_add.
type ExamAddRequest struct {
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	SpecialistID *int64  `json:"specialist_id,omitempty"`
	Results      string  `json:"results,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	Cost         float64 `json:"cost,omitempty"`
}

// SpecialistAddRequest represents the arguments for specialist_add.
type SpecialistAddRequest struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Interval int    `json:"interval"`
}

// ImportPreviewRequest represents the arguments for records_import_preview.
type ImportPreviewRequest struct {
	Path string `json:"path"`
}

// ImportCommitRequest represents the arguments for records_import_commit.
type ImportCommitRequest struct {
	SessionID string `json:"session_id"`
}

// ExportRequest represents the arguments for records_export.
type ExportRequest struct {
	Format string `json:"format,omitempty"`
	Path   string `json:"path,omitempty"`
}

// ReportRequest represents the arguments for records_report.
type ReportRequest struct {
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	WindowDays int    `json:"window_days,omitempty"`
}

// SearchRequest represents the arguments for records_search.
type SearchRequest struct {
	Query string `json:"query"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// Handler implementations

// HandleVisitAdd handles the visit_add tool call.
func (h *Handlers) HandleVisitAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VisitAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddVisit(h.db, h.gen, ops.VisitInput{
		SpecialistID: input.SpecialistID,
		Date:         input.Date,
		Notes:        input.Notes,
		Cost:         input.Cost,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleVisitList handles the visit_list tool call.
func (h *Handlers) HandleVisitList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListVisits(h.db, ops.ListVisitsInput{From: input.From, To: input.To})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleVisitDelete handles the visit_delete tool call.
func (h *Handlers) HandleVisitDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteVisit(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExamAdd handles the exam_add tool call.
func (h *Handlers) HandleExamAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExamAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddExam(h.db, h.gen, ops.ExamInput{
		Name:         input.Name,
		Date:         input.Date,
		SpecialistID: input.SpecialistID,
		Results:      input.Results,
		Notes:        input.Notes,
		Cost:         input.Cost,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExamList handles the exam_list tool call.
func (h *Handlers) HandleExamList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListExams(h.db, ops.ListExamsInput{From: input.From, To: input.To})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExamDelete handles the exam_delete tool call.
func (h *Handlers) HandleExamDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteExam(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSpecialistAdd handles the specialist_add tool call.
func (h *Handlers) HandleSpecialistAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SpecialistAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddSpecialist(h.db, h.gen, ops.SpecialistInput{
		Name:     input.Name,
		Icon:     input.Icon,
		Interval: input.Interval,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSpecialistList handles the specialist_list tool call.
func (h *Handlers) HandleSpecialistList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListSpecialists(h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSpecialistDelete handles the specialist_delete tool call.
func (h *Handlers) HandleSpecialistDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteSpecialist(h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImportPreview handles the records_import_preview tool call.
func (h *Handlers) HandleImportPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportPreviewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.StageImport(h.db, h.gen, h.reg, input.Path)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImportCommit handles the records_import_commit tool call.
func (h *Handlers) HandleImportCommit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportCommitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CommitStaged(h.db, h.reg, input.SessionID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the records_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(h.db, h.baseDir, ops.ExportInput{
		Format: input.Format,
		Path:   input.Path,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReport handles the records_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Report(h.db, h.cfg.CheckupWindowDays, ops.ReportInput{
		From:       input.From,
		To:         input.To,
		WindowDays: input.WindowDays,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the records_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(h.db, ops.SearchInput{
		Query: input.Query,
		From:  input.From,
		To:    input.To,
	})
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

	if trackErr, ok := err.(*errors.TrackError); ok {
		errorObj := map[string]any{
			"code":    trackErr.Code,
			"message": trackErr.Message,
			"status":  trackErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if trackErr.Code != errors.ErrInternal && trackErr.Details != nil {
			errorObj["details"] = trackErr.Details
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
