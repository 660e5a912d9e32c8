package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Descriptions are the contract surfaced to MCP
// clients; keep them in sync with the handlers.

var visitAddToolDef = mcp.NewTool("visit_add",
	mcp.WithDescription("Record a medical visit. The specialist must already exist; use specialist_list to find ids."),
	mcp.WithNumber("specialist_id",
		mcp.Required(),
		mcp.Description("Id of the specialist seen"),
	),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Visit date, ISO format (YYYY-MM-DD)"),
	),
	mcp.WithString("notes",
		mcp.Description("Free-form visit notes"),
	),
	mcp.WithNumber("cost",
		mcp.Description("Visit cost, non-negative"),
	),
)

var visitListToolDef = mcp.NewTool("visit_list",
	mcp.WithDescription("List recorded visits, newest first, optionally bounded by an inclusive date range."),
	mcp.WithString("from",
		mcp.Description("Earliest date to include (YYYY-MM-DD)"),
	),
	mcp.WithString("to",
		mcp.Description("Latest date to include (YYYY-MM-DD)"),
	),
)

var visitDeleteToolDef = mcp.NewTool("visit_delete",
	mcp.WithDescription("Delete a visit by id."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Id of the visit to delete"),
	),
)

var examAddToolDef = mcp.NewTool("exam_add",
	mcp.WithDescription("Record a medical exam. The prescribing specialist is optional; when given it must exist."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Exam name or title"),
	),
	mcp.WithString("date",
		mcp.Required(),
		mcp.Description("Exam date, ISO format (YYYY-MM-DD)"),
	),
	mcp.WithNumber("specialist_id",
		mcp.Description("Id of the prescribing specialist, if any"),
	),
	mcp.WithString("results",
		mcp.Description("Exam results"),
	),
	mcp.WithString("notes",
		mcp.Description("Free-form exam notes"),
	),
	mcp.WithNumber("cost",
		mcp.Description("Exam cost, non-negative"),
	),
)

var examListToolDef = mcp.NewTool("exam_list",
	mcp.WithDescription("List recorded exams, newest first, optionally bounded by an inclusive date range."),
	mcp.WithString("from",
		mcp.Description("Earliest date to include (YYYY-MM-DD)"),
	),
	mcp.WithString("to",
		mcp.Description("Latest date to include (YYYY-MM-DD)"),
	),
)

var examDeleteToolDef = mcp.NewTool("exam_delete",
	mcp.WithDescription("Delete an exam by id."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Id of the exam to delete"),
	),
)

var specialistAddToolDef = mcp.NewTool("specialist_add",
	mcp.WithDescription("Add a specialist with a display icon and a recommended check-up interval in months."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Specialist name"),
	),
	mcp.WithString("icon",
		mcp.Required(),
		mcp.Description("Display icon, typically an emoji"),
	),
	mcp.WithNumber("interval",
		mcp.Required(),
		mcp.Description("Recommended check-up interval in months, positive"),
	),
)

var specialistListToolDef = mcp.NewTool("specialist_list",
	mcp.WithDescription("List all specialists."),
)

var specialistDeleteToolDef = mcp.NewTool("specialist_delete",
	mcp.WithDescription("Delete a specialist by id. Fails if any visit or exam still references it."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Id of the specialist to delete"),
	),
)

var importPreviewToolDef = mcp.NewTool("records_import_preview",
	mcp.WithDescription("Parse an import file (JSON backup or CSV) and stage the reconciled delta. Returns a session_id and a preview of what records_import_commit would add; nothing is written yet."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the file to import"),
	),
)

var importCommitToolDef = mcp.NewTool("records_import_commit",
	mcp.WithDescription("Apply a staged import session. Each session can be committed at most once."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by records_import_preview"),
	),
)

var exportToolDef = mcp.NewTool("records_export",
	mcp.WithDescription("Export all records to a file, as a JSON backup or a CSV."),
	mcp.WithString("format",
		mcp.Description("Export format: json (default) or csv"),
	),
	mcp.WithString("path",
		mcp.Description("Destination path; defaults to the exports directory with a dated filename"),
	),
)

var reportToolDef = mcp.NewTool("records_report",
	mcp.WithDescription("Summarise counts, spending, and upcoming specialist check-ups."),
	mcp.WithString("from",
		mcp.Description("Earliest date for counts and costs (YYYY-MM-DD)"),
	),
	mcp.WithString("to",
		mcp.Description("Latest date for counts and costs (YYYY-MM-DD)"),
	),
	mcp.WithNumber("window_days",
		mcp.Description("How many days ahead to look for due check-ups; defaults to the configured window"),
	),
)

var searchToolDef = mcp.NewTool("records_search",
	mcp.WithDescription("Search visits and exams by text, case-insensitively, across notes, names, results, and specialist names."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to search for"),
	),
	mcp.WithString("from",
		mcp.Description("Earliest date to include (YYYY-MM-DD)"),
	),
	mcp.WithString("to",
		mcp.Description("Latest date to include (YYYY-MM-DD)"),
	),
)
