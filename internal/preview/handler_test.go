package preview

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/lojasmm/quickreplies/internal/bot"
	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/store"
)

type fakeChats struct {
	sel     *quickreply.Selector
	pressed []string
	err     error
}

func (f *fakeChats) View(string) (store.Message, *quickreply.View, error) {
	if f.err != nil {
		return store.Message{}, nil, f.err
	}
	return store.Message{Text: "Do you agree?"}, f.sel.Render(), nil
}

func (f *fakeChats) Press(_ string, id string) error {
	if f.err != nil {
		return f.err
	}
	f.pressed = append(f.pressed, id)
	if id == quickreply.SendID {
		f.sel.Send()
		return nil
	}
	f.sel.TapValue(id)
	return nil
}

func newRouter(c Chats) http.Handler {
	h := NewHandler(c)
	r := chi.NewRouter()
	r.Get("/preview/{phone}", h.HandlePage)
	r.Post("/preview/{phone}", h.HandlePress)
	return r
}

func newChats() *fakeChats {
	return &fakeChats{sel: quickreply.New(&quickreply.Spec{
		Type:   quickreply.TypeCheckbox,
		Values: []quickreply.Reply{{Title: "Yes", Value: "y"}, {Title: "No", Value: "n"}},
	}, quickreply.Config{Logger: quickreply.DiscardLogger})}
}

func TestPageRendersChips(t *testing.T) {
	c := newChats()
	r := newRouter(c)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/5511", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Do you agree?")
	assert.Contains(t, body, "<span>Yes</span>")
	assert.Contains(t, body, quickreply.DefaultColor)
	assert.NotContains(t, body, "chip send")
	assert.NotContains(t, body, "ZgotmplZ")
}

func TestPressThenSendChipAppears(t *testing.T) {
	c := newChats()
	r := newRouter(c)

	rec := httptest.NewRecorder()
	form := url.Values{"id": {"y"}}
	req := httptest.NewRequest(http.MethodPost, "/preview/5511", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/preview/5511", rec.Header().Get("Location"))
	assert.Equal(t, []string{"y"}, c.pressed)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/5511", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "chip selected")
	assert.Contains(t, body, "chip send")
	assert.Contains(t, body, quickreply.DefaultSendText)
}

func TestPressRequiresID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/preview/5511", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	newRouter(newChats()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoMessage(t *testing.T) {
	r := newRouter(&fakeChats{err: bot.ErrNoMessage})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/5511", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No message is displayed")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/preview/5511", strings.NewReader("id=y"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeChats{err: errors.New("boom")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/5511", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
