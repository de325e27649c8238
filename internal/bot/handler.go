package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/session"
	"github.com/lojasmm/quickreplies/internal/store"
	"github.com/lojasmm/quickreplies/internal/whatsapp"
)

// ErrNoMessage is returned when a chat has no message with quick replies.
var ErrNoMessage = errors.New("no quick replies displayed")

// Sender delivers messages to a chat.
type Sender interface {
	SendText(to, body string) error
	SendInteractiveButtons(to, body string, buttons []whatsapp.Button) error
	SendList(to, body, buttonText string, sections []whatsapp.Section) error
}

// Options configures how quick replies look in every chat.
type Options struct {
	Color    string
	SendText string
	MenuText string // label of the button that opens a list
	// Logger is the diagnostic channel handed to every selector.
	Logger *log.Logger
}

type Handler struct {
	wa       Sender
	store    store.Store
	sessions *session.Manager
	opts     Options
}

func NewHandler(wa Sender, s store.Store, sessions *session.Manager, opts Options) *Handler {
	if opts.MenuText == "" {
		opts.MenuText = "Options"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Handler{wa: wa, store: s, sessions: sessions, opts: opts}
}

// Present displays m in the chat, replacing the previous message and its
// selection.
func (h *Handler) Present(phone string, m store.Message) (store.Message, error) {
	err := h.sessions.WithLock(phone, func(s *session.Session) error {
		saved, err := h.store.SaveMessage(phone, m)
		if err != nil {
			return fmt.Errorf("store.SaveMessage: %w", err)
		}
		m = saved
		h.mount(phone, s, saved)
		return h.render(phone, s)
	})
	return m, err
}

// HandleMessage routes an incoming WhatsApp message to the chat's selector.
func (h *Handler) HandleMessage(in whatsapp.Incoming) {
	err := h.sessions.WithLock(in.Phone, func(s *session.Session) error {
		if err := h.load(in.Phone, s); err != nil {
			return err
		}
		if !hasQuickReplies(s) {
			log.Printf("bot: message from %s without quick replies displayed: %q", in.Phone, in.Text)
			return nil
		}

		if in.ReplyID != "" {
			return h.press(in.Phone, s, in.ReplyID)
		}
		if s.Selector.TapTitle(in.Text) {
			return h.afterTap(in.Phone, s)
		}
		// Free text that matches nothing: show the options again.
		return h.render(in.Phone, s)
	})
	if err != nil {
		log.Printf("bot: failed to handle message from %s: %v", in.Phone, err)
		if sendErr := h.wa.SendText(in.Phone, "Sorry, something went wrong. Please try again."); sendErr != nil {
			log.Printf("bot: failed to send error reply to %s: %v", in.Phone, sendErr)
		}
	}
}

// Press taps the chip with the given id: an option value or quickreply.SendID.
func (h *Handler) Press(phone, id string) error {
	return h.sessions.WithLock(phone, func(s *session.Session) error {
		if err := h.load(phone, s); err != nil {
			return err
		}
		if !hasQuickReplies(s) {
			return ErrNoMessage
		}
		return h.press(phone, s, id)
	})
}

// View returns the displayed message and the current render of its quick
// replies. The view is nil when the message has none.
func (h *Handler) View(phone string) (store.Message, *quickreply.View, error) {
	var (
		msg  store.Message
		view *quickreply.View
	)
	err := h.sessions.WithLock(phone, func(s *session.Session) error {
		if err := h.load(phone, s); err != nil {
			return err
		}
		if s.Message == nil {
			return ErrNoMessage
		}
		msg = *s.Message
		view = s.Selector.Render()
		return nil
	})
	return msg, view, err
}

func hasQuickReplies(s *session.Session) bool {
	return s.Selector != nil && s.Selector.Spec() != nil
}

func (h *Handler) press(phone string, s *session.Session, id string) error {
	if id == quickreply.SendID {
		if !s.Selector.Send() {
			return h.render(phone, s)
		}
		return nil
	}
	if !s.Selector.TapValue(id) {
		log.Printf("bot: %s pressed unknown option %q", phone, id)
		return h.render(phone, s)
	}
	return h.afterTap(phone, s)
}

// afterTap re-sends the options when a checkbox toggle changed them. Radio
// taps have already been submitted and unmounted.
func (h *Handler) afterTap(phone string, s *session.Session) error {
	if s.Selector == nil || s.Selector.Spec().Type != quickreply.TypeCheckbox {
		return nil
	}
	return h.render(phone, s)
}

// load mounts the stored message when the session has none, e.g. after a
// restart or a cleanup. The selection starts empty.
func (h *Handler) load(phone string, s *session.Session) error {
	if s.Message != nil {
		return nil
	}
	m, err := h.store.GetMessage(phone)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store.GetMessage: %w", err)
	}
	h.mount(phone, s, m)
	return nil
}

func (h *Handler) mount(phone string, s *session.Session, m store.Message) {
	s.Message = &m
	s.Selector = quickreply.New(m.QuickReplies, quickreply.Config{
		Color:    h.opts.Color,
		SendText: h.opts.SendText,
		Logger:   h.opts.Logger,
		OnQuickReply: func(replies []quickreply.Reply) {
			h.submit(phone, s, m, replies)
		},
	})
}

// submit records the replies and takes the message off the chat: the next
// message the host presents replaces it.
func (h *Handler) submit(phone string, s *session.Session, m store.Message, replies []quickreply.Reply) {
	sub, err := h.store.AddSubmission(store.Submission{
		Phone:     phone,
		MessageID: m.ID,
		Replies:   replies,
	})
	if err != nil {
		log.Printf("bot: failed to save submission for %s: %v", phone, err)
	} else {
		log.Printf("bot: %s submitted %d replies for message %s (%s)", phone, len(replies), m.ID, sub.ID)
	}

	if err := h.store.DeleteMessage(phone); err != nil {
		log.Printf("bot: failed to delete message for %s: %v", phone, err)
	}
	s.Unmount()

	titles := make([]string, len(replies))
	for i, r := range replies {
		titles[i] = r.Title
	}
	if err := h.wa.SendText(phone, "✅ "+strings.Join(titles, ", ")); err != nil {
		log.Printf("bot: failed to acknowledge submission to %s: %v", phone, err)
	}
}

func (h *Handler) render(phone string, s *session.Session) error {
	if s.Message == nil {
		return ErrNoMessage
	}
	body := s.Message.Text
	if strings.TrimSpace(body) == "" {
		body = "Choose an option"
	}

	out := toWhatsApp(s.Selector.Render(), h.opts.MenuText)
	if out.dropped > 0 {
		log.Printf("bot: %d quick replies for %s do not fit in a list and were dropped", out.dropped, phone)
	}

	var err error
	switch {
	case len(out.buttons) > 0:
		err = h.wa.SendInteractiveButtons(phone, body, out.buttons)
	case len(out.sections) > 0:
		err = h.wa.SendList(phone, body, out.menu, out.sections)
	default:
		err = h.wa.SendText(phone, body)
	}
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}
