package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/dayboard/internal/planner"
)

// WeeklyPlanBody is the request and response body of /api/weekly-plan.
type WeeklyPlanBody struct {
	Week  string              `json:"week,omitempty"`
	Tasks map[string][]string `json:"tasks"`
}

// GoalsBody is the request and response body of /api/six-week-goals.
type GoalsBody struct {
	Goals []string `json:"goals"`
}

// handleDashboard always answers 200; fetch failures are reported in the
// view's error fields so partial results are still shown.
func handleDashboard(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agg := planner.NewAggregator(deps.Store, deps.plannerOpts()...)
		agg.Refresh(r.Context())
		writeJSON(w, http.StatusOK, agg.View())
	}
}

func handleToggleTask(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		agg := planner.NewAggregator(deps.Store, deps.plannerOpts()...)
		agg.Refresh(r.Context())

		err := agg.Toggle(r.Context(), id)
		switch {
		case errors.Is(err, planner.ErrTaskNotFound):
			httpError(w, http.StatusNotFound, "task %q not found", id)
		case err != nil:
			httpError(w, http.StatusInternalServerError, "%s", agg.Err())
		default:
			writeJSON(w, http.StatusOK, agg.View())
		}
	}
}

func handleGetDailyPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ed := planner.NewDailyEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusOK, ed.Draft())
	}
}

func handlePutDailyPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft planner.DailyDraft
		if err := decodeBody(w, r, maxRequestBodySize, &draft); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		ed := planner.NewDailyEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		ed.SetDraft(draft)
		if err := ed.Save(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusOK, ed.Draft())
	}
}

func handleGetWeeklyPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ed := planner.NewWeeklyEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusOK, WeeklyPlanBody{Week: ed.Week(), Tasks: ed.Tasks()})
	}
}

func handlePutWeeklyPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body WeeklyPlanBody
		if err := decodeBody(w, r, maxRequestBodySize, &body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		ed := planner.NewWeeklyEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.SetDraft(body.Tasks); err != nil {
			httpError(w, http.StatusBadRequest, "invalid tasks: %v", err)
			return
		}
		if err := ed.Save(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusOK, WeeklyPlanBody{Week: ed.Week(), Tasks: ed.Tasks()})
	}
}

func handleGetGoals(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ed := planner.NewGoalsEditor(deps.Store, deps.plannerOpts()...)
		if err := ed.Load(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusOK, GoalsBody{Goals: ed.Goals()})
	}
}

func handlePostGoals(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body GoalsBody
		if err := decodeBody(w, r, maxRequestBodySize, &body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if body.Goals == nil {
			httpError(w, http.StatusBadRequest, "goals is required")
			return
		}

		ed := planner.NewGoalsEditor(deps.Store, deps.plannerOpts()...)
		ed.SetDraft(body.Goals)
		if err := ed.Save(r.Context()); err != nil {
			httpError(w, http.StatusInternalServerError, "%s", ed.Err())
			return
		}
		writeJSON(w, http.StatusCreated, GoalsBody{Goals: ed.Goals()})
	}
}
