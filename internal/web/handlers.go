package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gmelani/medtrack/internal/config"
	"github.com/gmelani/medtrack/internal/errors"
	"github.com/gmelani/medtrack/internal/insights"
	"github.com/gmelani/medtrack/internal/ops"
	"github.com/gmelani/medtrack/internal/reconcile"
	"github.com/gmelani/medtrack/internal/record"
	"github.com/gmelani/medtrack/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	baseDir  string
	renderer *Renderer
	gen      record.IDGenerator
	reg      *reconcile.Registry
	insights *insights.Client
}

// HandleDashboard handles GET /dashboard — report, checkups, specialists,
// and inline search results.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := ops.Report(h.db, h.cfg.CheckupWindowDays, ops.ReportInput{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	snap, err := store.Load(h.db)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	data := DashboardPageData{
		PageData: PageData{
			Title:   "Dashboard",
			Version: h.renderer.version,
			Nav:     "dashboard",
		},
		Report:      report,
		Specialists: snap.Specialists,
		Query:       r.URL.Query().Get("q"),
	}

	if data.Query != "" {
		results, err := ops.Search(h.db, ops.SearchInput{Query: data.Query})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Results = results
	}

	h.renderer.renderPage(w, r, "dashboard", data)
}

// HandleVisits handles GET /visits — visit list with an add form.
func (h *Handlers) HandleVisits(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	result, err := ops.ListVisits(h.db, ops.ListVisitsInput{From: from, To: to})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	snap, err := store.Load(h.db)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	h.renderer.renderPage(w, r, "visits", VisitsPageData{
		PageData: PageData{
			Title:   "Visite",
			Version: h.renderer.version,
			Nav:     "visits",
		},
		Items:       result.Items,
		Specialists: snap.Specialists,
		From:        from,
		To:          to,
	})
}

// HandleVisitAdd handles POST /visits — create a visit from form data.
func (h *Handlers) HandleVisitAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	specialistID, err := strconv.ParseInt(r.FormValue("specialist_id"), 10, 64)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("specialist_id must be an integer"))
		return
	}

	_, err = ops.AddVisit(h.db, h.gen, ops.VisitInput{
		SpecialistID: specialistID,
		Date:         r.FormValue("date"),
		Notes:        r.FormValue("notes"),
		Cost:         parseCostField(r.FormValue("cost")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/visits", http.StatusFound)
}

// HandleVisitDelete handles DELETE /visits/{id}.
func (h *Handlers) HandleVisitDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.DeleteVisit(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.deleteResponse(w, r, "/visits", result)
}

// HandleExams handles GET /exams — exam list with an add form.
func (h *Handlers) HandleExams(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	result, err := ops.ListExams(h.db, ops.ListExamsInput{From: from, To: to})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	snap, err := store.Load(h.db)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	h.renderer.renderPage(w, r, "exams", ExamsPageData{
		PageData: PageData{
			Title:   "Esami",
			Version: h.renderer.version,
			Nav:     "exams",
		},
		Items:       result.Items,
		Specialists: snap.Specialists,
		From:        from,
		To:          to,
	})
}

// HandleExamAdd handles POST /exams — create an exam from form data.
func (h *Handlers) HandleExamAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.ExamInput{
		Name:    r.FormValue("name"),
		Date:    r.FormValue("date"),
		Results: r.FormValue("results"),
		Notes:   r.FormValue("notes"),
		Cost:    parseCostField(r.FormValue("cost")),
	}

	// Empty select option means no prescribing specialist.
	if raw := r.FormValue("specialist_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("specialist_id must be an integer"))
			return
		}
		input.SpecialistID = &id
	}

	if _, err := ops.AddExam(h.db, h.gen, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/exams", http.StatusFound)
}

// HandleExamDelete handles DELETE /exams/{id}.
func (h *Handlers) HandleExamDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.DeleteExam(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.deleteResponse(w, r, "/exams", result)
}

// HandleSpecialistAdd handles POST /specialists.
func (h *Handlers) HandleSpecialistAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	interval, err := strconv.Atoi(r.FormValue("interval"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("interval must be an integer"))
		return
	}

	_, err = ops.AddSpecialist(h.db, h.gen, ops.SpecialistInput{
		Name:     r.FormValue("name"),
		Icon:     r.FormValue("icon"),
		Interval: interval,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleSpecialistDelete handles DELETE /specialists/{id}. The
// referential guard in ops surfaces as a 409.
func (h *Handlers) HandleSpecialistDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.DeleteSpecialist(h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.deleteResponse(w, r, "/dashboard", result)
}

// HandleImportPreview handles POST /import/preview — stage an import
// session from an uploaded or server-side file path.
func (h *Handlers) HandleImportPreview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.StageImport(h.db, h.gen, h.reg, r.FormValue("path"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleImportCommit handles POST /import/commit — apply a staged session.
func (h *Handlers) HandleImportCommit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.CommitStaged(h.db, h.reg, r.FormValue("session_id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleExport handles POST /export — write a backup file and report
// where it landed.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Export(h.db, h.baseDir, ops.ExportInput{
		Format: r.FormValue("format"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleInsights handles GET /insights — render the Gemini analysis.
// A missing API key renders the setup page instead of an error.
func (h *Handlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	data := InsightsPageData{
		PageData: PageData{
			Title:   "Insights",
			Version: h.renderer.version,
			Nav:     "insights",
		},
	}

	snap, err := store.Load(h.db)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	text, err := h.insights.Generate(r.Context(), snap)
	if err != nil {
		if errors.Is(err, errors.ErrUnconfigured) {
			data.Unconfigured = true
			data.Message = "Set GEMINI_API_KEY to enable health insights."
			h.renderer.renderPage(w, r, "insights", data)
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}

	data.RenderedHTML = renderMarkdown(text)
	h.renderer.renderPage(w, r, "insights", data)
}

// deleteResponse answers a successful delete with content negotiation:
// JSON for API callers, redirect for browsers.
func (h *Handlers) deleteResponse(w http.ResponseWriter, r *http.Request, redirect string, result *ops.DeleteOutput) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// pathID parses the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("id must be an integer")
	}
	return id, nil
}

// parseCostField coerces a form cost to a non-negative number the same
// way the import parser does.
func parseCostField(s string) float64 {
	return record.ParseCost(s)
}
