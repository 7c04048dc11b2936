package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/dayboard/internal/importer"
	"github.com/kalambet/dayboard/internal/planner"
)

const maxRequestBodySize = 1 << 20 // 1MB

const maxImportBodySize = 10 << 20 // 10MB

// Datastore is the persistence surface the HTTP and MCP layers need.
// Implemented by storage.Store.
type Datastore interface {
	planner.DashboardStore
	planner.WeeklyStore
	planner.GoalsStore
	planner.JournalStore
	Check(ctx context.Context) error
	Driver() string
}

// Responder generates a reflection on a journal entry.
type Responder interface {
	Respond(ctx context.Context, entry string) (string, error)
}

// Deps holds the dependencies of the HTTP API.
type Deps struct {
	Store     Datastore
	Responder Responder     // optional; nil behaves like a missing API key
	Clock     planner.Clock // optional; defaults to the local wall clock
	Token     string        // optional bearer token for /api routes
}

func (d Deps) plannerOpts() []planner.Option {
	if d.Clock == nil {
		return nil
	}
	return []planner.Option{planner.WithClock(d.Clock)}
}

// NewHandler returns the dayboard HTTP API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Get("/datastore-check", handleDatastoreCheck(deps))
		r.Post("/generate-journal-response", handleGenerateResponse(deps))

		r.Get("/dashboard", handleDashboard(deps))
		r.Post("/dashboard/tasks/{id}/toggle", handleToggleTask(deps))

		r.Get("/daily-plan", handleGetDailyPlan(deps))
		r.Put("/daily-plan", handlePutDailyPlan(deps))
		r.Get("/weekly-plan", handleGetWeeklyPlan(deps))
		r.Put("/weekly-plan", handlePutWeeklyPlan(deps))
		r.Get("/six-week-goals", handleGetGoals(deps))
		r.Post("/six-week-goals", handlePostGoals(deps))

		r.Get("/journal/latest", handleLatestJournal(deps))
		r.Post("/journal", handlePostJournal(deps))
		r.Get("/journal/prompt", handleJournalPrompt)
		r.Post("/journal/import", handleImportJournal(deps, importer.New(deps.Store)))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// DatastoreStatus is the body of GET /api/datastore-check.
type DatastoreStatus struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func handleDatastoreCheck(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Check(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, DatastoreStatus{
				Status:  "error",
				Message: err.Error(),
				Details: map[string]string{"driver": deps.Store.Driver(), "error": err.Error()},
			})
			return
		}
		writeJSON(w, http.StatusOK, DatastoreStatus{Status: "ok", Message: "Datastore connection successful"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"error": fmt.Sprintf(format, args...)})
}
