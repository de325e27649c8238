package quickreply

import "fmt"

type eventKind int

const (
	eventTap eventKind = iota
	eventSend
)

type event struct {
	kind  eventKind
	reply Reply
}

// outcome is what a single event produces: the next selection, an optional
// submission and an optional diagnostic.
type outcome struct {
	selection []Reply
	submit    []Reply
	warning   string
}

// reduce applies ev to the selection of a set with type typ. It never modifies
// selection in place.
func reduce(typ Type, selection []Reply, ev event) outcome {
	switch ev.kind {
	case eventSend:
		if len(selection) == 0 {
			return outcome{selection: selection}
		}
		return outcome{selection: selection, submit: cloneReplies(selection)}
	case eventTap:
		switch typ {
		case TypeRadio:
			return outcome{selection: selection, submit: []Reply{ev.reply}}
		case TypeCheckbox:
			return outcome{selection: toggle(selection, ev.reply)}
		default:
			return outcome{selection: selection, warning: fmt.Sprintf("unknown type: %s", typ)}
		}
	}
	return outcome{selection: selection}
}

// toggle removes every entry sharing r.Value, or appends r when none does.
func toggle(selection []Reply, r Reply) []Reply {
	if indexOf(selection, r.Value) < 0 {
		next := make([]Reply, 0, len(selection)+1)
		next = append(next, selection...)
		return append(next, r)
	}
	next := make([]Reply, 0, len(selection))
	for _, s := range selection {
		if s.Value != r.Value {
			next = append(next, s)
		}
	}
	return next
}

func indexOf(replies []Reply, value string) int {
	for i, r := range replies {
		if r.Value == value {
			return i
		}
	}
	return -1
}

func cloneReplies(replies []Reply) []Reply {
	out := make([]Reply, len(replies))
	copy(out, replies)
	return out
}
