// Package preview renders the quick replies displayed in a chat as an HTML page
// with tappable chips, for operators and local testing.
package preview

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojasmm/quickreplies/internal/bot"
	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/store"
)

//go:embed page.html
var pageFS embed.FS

var pageTmpl = template.Must(template.ParseFS(pageFS, "page.html"))

type pageData struct {
	Phone   string
	Text    string
	View    *quickreply.View
	Message string
}

// Chats is the host chat view the preview drives.
type Chats interface {
	View(phone string) (store.Message, *quickreply.View, error)
	Press(phone, id string) error
}

type Handler struct {
	chats Chats
}

func NewHandler(c Chats) *Handler {
	return &Handler{chats: c}
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	msg, view, err := h.chats.View(phone)
	if errors.Is(err, bot.ErrNoMessage) {
		w.WriteHeader(http.StatusNotFound)
		h.execute(w, pageData{Phone: phone, Message: "No message is displayed in this chat."})
		return
	}
	if err != nil {
		log.Printf("preview: view for %s failed: %v", phone, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.execute(w, pageData{Phone: phone, Text: msg.Text, View: view})
}

func (h *Handler) HandlePress(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	err := h.chats.Press(phone, id)
	if errors.Is(err, bot.ErrNoMessage) {
		http.Error(w, "no message displayed", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("preview: press %q for %s failed: %v", id, phone, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}

func (h *Handler) execute(w http.ResponseWriter, data pageData) {
	if err := pageTmpl.Execute(w, data); err != nil {
		log.Printf("preview: template: %v", err)
	}
}
