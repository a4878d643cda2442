package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opetrenko/vivavoce/internal/examiner"
	"github.com/opetrenko/vivavoce/internal/i18n"
	"github.com/opetrenko/vivavoce/internal/model"
	"github.com/opetrenko/vivavoce/internal/store"
	"github.com/opetrenko/vivavoce/internal/transcript"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	examiner *examiner.Examiner
	store    *store.Store
	config   model.ExamConfig
}

// New creates a new Handler.
func New(e *examiner.Examiner, s *store.Store, cfg model.ExamConfig) *Handler {
	return &Handler{examiner: e, store: s, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/api/info", h.handleInfo)
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/reset", h.handleReset)
	r.Get("/api/results", h.handleResults)
	r.Get("/api/results/{sessionID}", h.handleResult)
}

type chatRequest struct {
	Message string      `json:"message"`
	History [][2]string `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message cannot be empty", http.StatusBadRequest)
		return
	}

	history := make([]transcript.Pair, 0, len(req.History))
	for _, p := range req.History {
		history = append(history, transcript.Pair{User: p[0], Assistant: p[1]})
	}

	reply, err := h.examiner.ProcessMessage(r.Context(), req.Message, history)
	if err != nil {
		slog.Error("chat processing failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.examiner.Reset()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": i18n.T(r.Context(), "exam.reset_done"),
	})
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListSummaries()
	if err != nil {
		slog.Error("failed to list summaries", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	summary, err := h.store.GetSummary(sessionID)
	if err != nil {
		slog.Error("failed to get summary", "session_id", sessionID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"course":        h.config.Course,
		"num_questions": h.config.NumQuestions,
		"welcome":       i18n.T(r.Context(), "exam.welcome"),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
