package whatsapp

import (
	"encoding/json"
	"log"
	"net/http"
)

// Incoming is a message received from a user. ReplyID is set when the user
// tapped a reply button or picked a list row; Text then holds its title.
type Incoming struct {
	Phone     string
	MessageID string
	Text      string
	ReplyID   string
}

// MessageHandler is called for each incoming message.
type MessageHandler func(in Incoming)

type WebhookHandler struct {
	verifyToken string
	onMessage   MessageHandler
}

func NewWebhookHandler(verifyToken string, onMessage MessageHandler) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: verifyToken,
		onMessage:   onMessage,
	}
}

// HandleVerify handles the GET webhook verification from Meta.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/get-started#webhook-verification
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleIncoming processes incoming webhook POST notifications.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks/components
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("webhook: failed to decode payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if in, ok := toIncoming(msg); ok {
					h.onMessage(in)
				}
			}
		}
	}

	w.WriteHeader(http.StatusOK)
}

func toIncoming(msg Message) (Incoming, bool) {
	in := Incoming{Phone: msg.From, MessageID: msg.ID}
	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return in, false
		}
		in.Text = msg.Text.Body
		return in, true
	case "interactive":
		if msg.Interactive == nil {
			return in, false
		}
		switch msg.Interactive.Type {
		case "button_reply":
			if msg.Interactive.ButtonReply != nil {
				in.ReplyID = msg.Interactive.ButtonReply.ID
				in.Text = msg.Interactive.ButtonReply.Title
				return in, true
			}
		case "list_reply":
			if msg.Interactive.ListReply != nil {
				in.ReplyID = msg.Interactive.ListReply.ID
				in.Text = msg.Interactive.ListReply.Title
				return in, true
			}
		}
	default:
		log.Printf("webhook: ignoring %s message from %s", msg.Type, msg.From)
	}
	return in, false
}
