package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/store"
)

// Presenter displays messages in chats.
type Presenter interface {
	Present(phone string, m store.Message) (store.Message, error)
}

type Handler struct {
	authToken string
	presenter Presenter
	store     store.Store
}

func NewHandler(authToken string, p Presenter, s store.Store) *Handler {
	return &Handler{authToken: authToken, presenter: p, store: s}
}

// Routes mounts the API under the caller's prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requireToken)
	r.Post("/chats/{phone}/messages", h.handlePresent)
	r.Get("/chats/{phone}/submissions", h.handleSubmissions)
	return r
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Auth-Token") != h.authToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type presentRequest struct {
	Text         string           `json:"text"`
	QuickReplies *quickreply.Spec `json:"quick_replies,omitempty"`
}

func (h *Handler) handlePresent(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	var req presentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.QuickReplies == nil {
		http.Error(w, "text or quick_replies is required", http.StatusBadRequest)
		return
	}

	m, err := h.presenter.Present(phone, store.Message{Text: req.Text, QuickReplies: req.QuickReplies})
	if err != nil {
		log.Printf("api: present to %s failed: %v", phone, err)
		http.Error(w, "failed to present message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	subs, err := h.store.ListSubmissions(phone)
	if err != nil {
		log.Printf("api: list submissions for %s failed: %v", phone, err)
		http.Error(w, "failed to list submissions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []store.Submission{}
	}

	writeJSON(w, http.StatusOK, subs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}
