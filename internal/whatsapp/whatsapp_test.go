package whatsapp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleVerify(t *testing.T) {
	h := NewWebhookHandler("secret", func(Incoming) {})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", nil)
	h.HandleVerify(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	h.HandleVerify(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

const incomingPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "5511", "id": "m1", "type": "text", "text": {"body": "hello"}},
          {"from": "5511", "id": "m2", "type": "interactive", "interactive": {"type": "button_reply", "button_reply": {"id": "y", "title": "Yes"}}},
          {"from": "5522", "id": "m3", "type": "interactive", "interactive": {"type": "list_reply", "list_reply": {"id": "__send__", "title": "Send"}}},
          {"from": "5522", "id": "m4", "type": "image"}
        ]
      }
    }]
  }]
}`

func TestHandleIncoming(t *testing.T) {
	var got []Incoming
	h := NewWebhookHandler("secret", func(in Incoming) { got = append(got, in) })

	rec := httptest.NewRecorder()
	h.HandleIncoming(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(incomingPayload)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []Incoming{
		{Phone: "5511", MessageID: "m1", Text: "hello"},
		{Phone: "5511", MessageID: "m2", Text: "Yes", ReplyID: "y"},
		{Phone: "5522", MessageID: "m3", Text: "Send", ReplyID: "__send__"},
	}, got)
}

func TestHandleIncomingBadPayload(t *testing.T) {
	called := false
	h := NewWebhookHandler("secret", func(Incoming) { called = true })

	rec := httptest.NewRecorder()
	h.HandleIncoming(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestClientSendInteractiveButtons(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "123", "token")
	err := c.SendInteractiveButtons("5511", "Pick one", []Button{
		{Type: "reply", Reply: ButtonReply{ID: "a", Title: "A"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "interactive", got.Type)
	require.NotNil(t, got.Interactive)
	assert.Equal(t, "button", got.Interactive.Type)
	assert.Equal(t, "Pick one", got.Interactive.Body.Text)
	assert.Equal(t, "a", got.Interactive.Action.Buttons[0].Reply.ID)
}

func TestClientSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "123", "token")
	err := c.SendText("5511", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
