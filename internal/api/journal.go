package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kalambet/dayboard/internal/importer"
	"github.com/kalambet/dayboard/internal/planner"
	"github.com/kalambet/dayboard/internal/responder"
	"github.com/kalambet/dayboard/internal/storage"
)

// GenerateRequest is the body of POST /api/generate-journal-response.
type GenerateRequest struct {
	JournalEntry string `json:"journalEntry"`
}

// GenerateResponse is the success body of POST /api/generate-journal-response.
type GenerateResponse struct {
	Response string `json:"response"`
}

// JournalBody is the request body of POST /api/journal.
type JournalBody struct {
	Content string `json:"content"`
}

// JournalResult wraps a journal entry and the composer's status message.
type JournalResult struct {
	Entry   *storage.JournalEntry `json:"entry"`
	Message string                `json:"message,omitempty"`
}

// ImportRequest is the body of POST /api/journal/import. Content is base64.
type ImportRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func handleGenerateResponse(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := decodeBody(w, r, maxRequestBodySize, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.JournalEntry == "" {
			httpError(w, http.StatusBadRequest, "Journal entry is required")
			return
		}
		if deps.Responder == nil {
			slog.Error("text generation requested but no API key is configured")
			httpError(w, http.StatusInternalServerError, "API key is not configured")
			return
		}

		text, err := deps.Responder.Respond(r.Context(), req.JournalEntry)
		if err != nil {
			writeResponderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GenerateResponse{Response: text})
	}
}

func writeResponderError(w http.ResponseWriter, err error) {
	var upErr *responder.UpstreamError
	switch {
	case errors.Is(err, responder.ErrEmptyEntry):
		httpError(w, http.StatusBadRequest, "Journal entry is required")
	case errors.Is(err, responder.ErrMissingAPIKey):
		slog.Error("text generation requested but no API key is configured")
		httpError(w, http.StatusInternalServerError, "API key is not configured")
	case errors.As(err, &upErr):
		httpError(w, upErr.StatusCode, "Failed to generate AI response: %d %s", upErr.StatusCode, upErr.Body)
	case errors.Is(err, responder.ErrMalformedResponse):
		slog.Error("unexpected response format from text generation", "error", err)
		httpError(w, http.StatusInternalServerError, "Unexpected response format from AI model")
	default:
		slog.Error("generating AI response", "error", err)
		httpError(w, http.StatusInternalServerError, "Failed to generate AI response. Please try again.")
	}
}

func handleLatestJournal(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := planner.NewComposer(deps.Store, deps.plannerOpts()...)
		e, err := c.Load(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "failed to fetch journal entry")
			return
		}
		res := JournalResult{}
		if e.ID != "" {
			res.Entry = &e
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handlePostJournal(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body JournalBody
		if err := decodeBody(w, r, maxRequestBodySize, &body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		c := planner.NewComposer(deps.Store, deps.plannerOpts()...)
		c.SetDraft(body.Content)
		e, err := c.Save(r.Context())
		switch {
		case errors.Is(err, planner.ErrEmptyEntry):
			httpError(w, http.StatusBadRequest, "%s", planner.MsgJournalEmpty)
		case err != nil:
			httpError(w, http.StatusInternalServerError, "%s", planner.MsgJournalSaveFailed)
		default:
			writeJSON(w, http.StatusCreated, JournalResult{Entry: &e, Message: c.Message()})
		}
	}
}

func handleJournalPrompt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"prompt": planner.RandomPrompt()})
}

func handleImportJournal(deps Deps, im *importer.Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportRequest
		if err := decodeBody(w, r, maxImportBodySize, &req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Filename == "" {
			httpError(w, http.StatusBadRequest, "filename is required")
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid base64 content")
			return
		}

		e, err := im.Import(r.Context(), req.Filename, data)
		switch {
		case errors.Is(err, importer.ErrUnsupportedType), errors.Is(err, importer.ErrNoText):
			httpError(w, http.StatusBadRequest, "%v", err)
		case errors.Is(err, importer.ErrUnreadable):
			httpError(w, http.StatusUnprocessableEntity, "%v", err)
		case err != nil:
			slog.Error("importing journal entry", "filename", req.Filename, "error", err)
			httpError(w, http.StatusInternalServerError, "%s", planner.MsgJournalSaveFailed)
		default:
			writeJSON(w, http.StatusCreated, JournalResult{Entry: &e})
		}
	}
}
