package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gmelani/medtrack/internal/config"
	"github.com/gmelani/medtrack/internal/reconcile"
	"github.com/gmelani/medtrack/internal/record"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"visit_add": {
		def:     visitAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVisitAdd },
	},
	"visit_list": {
		def:     visitListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVisitList },
	},
	"visit_delete": {
		def:     visitDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVisitDelete },
	},
	"exam_add": {
		def:     examAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExamAdd },
	},
	"exam_list": {
		def:     examListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExamList },
	},
	"exam_delete": {
		def:     examDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExamDelete },
	},
	"specialist_add": {
		def:     specialistAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSpecialistAdd },
	},
	"specialist_list": {
		def:     specialistListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSpecialistList },
	},
	"specialist_delete": {
		def:     specialistDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSpecialistDelete },
	},
	"records_import_preview": {
		def:     importPreviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportPreview },
	},
	"records_import_commit": {
		def:     importCommitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportCommit },
	},
	"records_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"records_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"records_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with medtrack tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"medtrack",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, baseDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, baseDir, version string) error {
	s := NewServer(db, cfg, baseDir, version)
	return server.ServeStdio(s)
}

// Handlers holds dependencies for MCP tool handlers. Staged import
// sessions live in the registry for the lifetime of the process.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
	gen     record.IDGenerator
	reg     *reconcile.Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{
		db:      db,
		cfg:     cfg,
		baseDir: baseDir,
		gen:     &record.ClockIDGenerator{},
		reg:     reconcile.NewRegistry(),
	}
}
