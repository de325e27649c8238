package quickreply

import "strings"

// Selector holds the transient selection for the quick replies of the message
// currently displayed. It is not safe for concurrent use; the host serializes
// events per chat.
type Selector struct {
	cfg       Config
	spec      *Spec
	selection []Reply
}

// New mounts spec (which may be nil) in a fresh Selector.
func New(spec *Spec, cfg Config) *Selector {
	return &Selector{cfg: cfg.withDefaults(), spec: spec}
}

// Mount replaces the displayed spec and resets the selection.
func (s *Selector) Mount(spec *Spec) {
	s.spec = spec
	s.selection = nil
}

// Spec returns the mounted spec, or nil.
func (s *Selector) Spec() *Spec { return s.spec }

// Selection returns a copy of the current selection in add order.
func (s *Selector) Selection() []Reply { return cloneReplies(s.selection) }

// Selected reports whether value is part of the selection.
func (s *Selector) Selected(value string) bool { return indexOf(s.selection, value) >= 0 }

// Tap handles a tap on r: radio submits [r] right away, checkbox toggles r in
// the selection. Without a mounted spec the tap is ignored.
func (s *Selector) Tap(r Reply) {
	if s.spec == nil {
		return
	}
	s.apply(event{kind: eventTap, reply: r})
}

// TapValue taps the first option whose value matches. It returns false when
// no such option is displayed.
func (s *Selector) TapValue(value string) bool {
	r, ok := s.find(func(r Reply) bool { return r.Value == value })
	if !ok {
		return false
	}
	s.Tap(r)
	return true
}

// TapTitle taps the first option whose title equals title, ignoring case and
// surrounding spaces.
func (s *Selector) TapTitle(title string) bool {
	title = strings.TrimSpace(title)
	r, ok := s.find(func(r Reply) bool { return strings.EqualFold(strings.TrimSpace(r.Title), title) })
	if !ok {
		return false
	}
	s.Tap(r)
	return true
}

// Send submits the selection. It returns false, without calling OnQuickReply,
// when nothing is selected. The selection is kept.
func (s *Selector) Send() bool {
	if s.spec == nil || len(s.selection) == 0 {
		return false
	}
	s.apply(event{kind: eventSend})
	return true
}

func (s *Selector) apply(ev event) {
	out := reduce(s.spec.Type, s.selection, ev)
	s.selection = out.selection
	if out.warning != "" {
		s.cfg.Logger.Printf("quickreply: %s", out.warning)
	}
	if len(out.submit) > 0 {
		s.cfg.OnQuickReply(out.submit)
	}
}

func (s *Selector) find(match func(Reply) bool) (Reply, bool) {
	if s.spec == nil {
		return Reply{}, false
	}
	for _, r := range s.spec.Values {
		if match(r) {
			return r, true
		}
	}
	return Reply{}, false
}
