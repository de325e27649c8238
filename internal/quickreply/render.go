package quickreply

import (
	"strings"
	"unicode/utf8"
)

const (
	// SendID identifies the send chip among the option values.
	SendID = "__send__"

	maxTitleLines = 2
	lineWidth     = 20 // runes
	ellipsis      = "…"
)

// Chip is one tappable element of a rendered View.
type Chip struct {
	ID       string // option value, or SendID
	Reply    Reply
	Lines    []string // title wrapped and truncated to two lines
	Selected bool

	BorderColor     string
	BackgroundColor string // empty when transparent
	TextColor       string
}

// Label joins the chip lines with a space.
func (c Chip) Label() string { return strings.Join(c.Lines, " ") }

// View is the rendered output of a Selector.
type View struct {
	Type  Type
	Chips []Chip
	Send  *Chip // nil while the selection is empty
}

// Render returns the current view, or nil when there is nothing to show.
func (s *Selector) Render() *View {
	if s.spec == nil || len(s.spec.Values) == 0 {
		return nil
	}

	v := &View{Type: s.spec.Type, Chips: make([]Chip, 0, len(s.spec.Values))}
	for _, r := range s.spec.Values {
		selected := s.spec.Type == TypeCheckbox && s.Selected(r.Value)
		chip := Chip{
			ID:          r.Value,
			Reply:       r,
			Lines:       wrapTitle(r.Title, lineWidth, maxTitleLines),
			Selected:    selected,
			BorderColor: s.cfg.Color,
			TextColor:   s.cfg.Color,
		}
		if selected {
			chip.BackgroundColor = s.cfg.Color
			chip.TextColor = colorWhite
		}
		v.Chips = append(v.Chips, chip)
	}

	if len(s.selection) > 0 {
		v.Send = &Chip{
			ID:        SendID,
			Lines:     []string{s.cfg.SendText},
			TextColor: colorDefaultBlue,
		}
	}
	return v
}

// wrapTitle breaks title into at most maxLines lines of width runes, breaking
// on spaces where possible. Overflow is cut at the tail with an ellipsis.
func wrapTitle(title string, width, maxLines int) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
	}
	for _, w := range words {
		for utf8.RuneCountInString(w) > width {
			if cur.Len() > 0 {
				flush()
			}
			runes := []rune(w)
			lines = append(lines, string(runes[:width]))
			w = string(runes[width:])
		}
		switch {
		case cur.Len() == 0:
			cur.WriteString(w)
		case utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(w) <= width:
			cur.WriteByte(' ')
			cur.WriteString(w)
		default:
			flush()
			cur.WriteString(w)
		}
	}
	if cur.Len() > 0 {
		flush()
	}

	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	if len(last) >= width {
		last = last[:width-1]
	}
	lines[maxLines-1] = string(last) + ellipsis
	return lines
}
