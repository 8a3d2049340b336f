package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samber/mo"

	"incidentflow/core"
	"incidentflow/core/log"
	"incidentflow/models"
	"incidentflow/workflows"
)

// RunsReader is the read side of the run ledger
type RunsReader interface {
	GetRun(ctx context.Context, id string) (mo.Option[*models.Run], error)
	ListSteps(ctx context.Context, runID string) ([]*models.StepResult, error)
	ListRuns(ctx context.Context, workflow string, limit int) ([]*models.Run, error)
}

type WorkflowsHTTPHandler struct {
	runs RunsReader
}

// NewWorkflowsHTTPHandler accepts a nil runs reader, in which case run endpoints respond 404
func NewWorkflowsHTTPHandler(runs RunsReader) *WorkflowsHTTPHandler {
	return &WorkflowsHTTPHandler{runs: runs}
}

type WorkflowSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       int    `json:"steps"`
}

type RunDetails struct {
	Run   *models.Run          `json:"run"`
	Steps []*models.StepResult `json:"steps"`
}

func (h *WorkflowsHTTPHandler) SetupEndpoints(router *mux.Router) {
	log.Info("🚀 Registering workflow endpoints")

	router.HandleFunc("/workflows", h.HandleListWorkflows).Methods("GET")
	router.HandleFunc("/workflows/{name}", h.HandleGetWorkflow).Methods("GET")
	router.HandleFunc("/runs", h.HandleListRuns).Methods("GET")
	router.HandleFunc("/runs/{id}", h.HandleGetRun).Methods("GET")

	log.Info("✅ All workflow endpoints registered successfully")
}

func (h *WorkflowsHTTPHandler) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	summaries := make([]WorkflowSummary, 0)
	for _, name := range workflows.Names() {
		wf, err := workflows.Lookup(name)
		if err != nil {
			log.Error("❌ Failed to build workflow", "workflow", name, "error", err)
			http.Error(w, "failed to build workflows", http.StatusInternalServerError)
			return
		}
		summaries = append(summaries, WorkflowSummary{
			Name:        wf.Name,
			Description: wf.Description,
			Steps:       len(wf.Steps),
		})
	}

	writeJSONResponse(w, http.StatusOK, summaries)
}

// HandleGetWorkflow renders a workflow definition, as JSON by default or YAML with ?format=yaml
func (h *WorkflowsHTTPHandler) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	wf, err := workflows.Lookup(name)
	if err != nil {
		if core.IsNotFoundError(err) {
			http.Error(w, "workflow not found", http.StatusNotFound)
			return
		}
		log.Error("❌ Failed to build workflow", "workflow", name, "error", err)
		http.Error(w, "failed to build workflow", http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		out, err := wf.ToJSON()
		if err != nil {
			http.Error(w, "failed to render workflow", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(out))
	case "yaml":
		out, err := wf.ToYAML()
		if err != nil {
			http.Error(w, "failed to render workflow", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(out))
	default:
		http.Error(w, "unsupported format "+format, http.StatusBadRequest)
	}
}

func (h *WorkflowsHTTPHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "run history is not configured", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRuns(r.Context(), r.URL.Query().Get("workflow"), limit)
	if err != nil {
		log.Error("❌ Failed to list runs", "error", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, runs)
}

func (h *WorkflowsHTTPHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "run history is not configured", http.StatusNotFound)
		return
	}

	id := mux.Vars(r)["id"]
	maybeRun, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		log.Error("❌ Failed to get run", "run_id", id, "error", err)
		http.Error(w, "failed to get run", http.StatusInternalServerError)
		return
	}
	run, ok := maybeRun.Get()
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	steps, err := h.runs.ListSteps(r.Context(), id)
	if err != nil {
		log.Error("❌ Failed to list run steps", "run_id", id, "error", err)
		http.Error(w, "failed to list run steps", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, RunDetails{Run: run, Steps: steps})
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("❌ Failed to encode JSON response", "error", err)
	}
}
