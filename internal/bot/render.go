package bot

import (
	"unicode/utf8"

	"github.com/lojasmm/quickreplies/internal/quickreply"
	"github.com/lojasmm/quickreplies/internal/whatsapp"
)

const selectedMark = "✅ "

type waMessage struct {
	buttons  []whatsapp.Button
	menu     string
	sections []whatsapp.Section
	dropped  int
}

// toWhatsApp maps a view onto reply buttons when every chip fits, and onto a
// single-section list otherwise. A nil view maps to a plain text message.
func toWhatsApp(v *quickreply.View, menuText string) waMessage {
	if v == nil {
		return waMessage{}
	}

	chips := v.Chips
	if v.Send != nil {
		chips = append(chips[:len(chips):len(chips)], *v.Send)
	}

	if fitsButtons(chips) {
		buttons := make([]whatsapp.Button, len(chips))
		for i, c := range chips {
			buttons[i] = whatsapp.Button{
				Type:  "reply",
				Reply: whatsapp.ButtonReply{ID: c.ID, Title: chipTitle(c)},
			}
		}
		return waMessage{buttons: buttons}
	}

	options := v.Chips
	limit := whatsapp.MaxListRows
	if v.Send != nil {
		limit--
	}
	var dropped int
	if len(options) > limit {
		dropped = len(options) - limit
		options = options[:limit]
	}

	rows := make([]whatsapp.SectionRow, 0, len(options)+1)
	for _, c := range options {
		rows = append(rows, toRow(c))
	}
	if v.Send != nil {
		rows = append(rows, toRow(*v.Send))
	}
	return waMessage{
		menu:     truncateText(menuText, whatsapp.MaxListButton),
		sections: []whatsapp.Section{{Title: truncateText(menuText, whatsapp.MaxRowTitle), Rows: rows}},
		dropped:  dropped,
	}
}

func fitsButtons(chips []quickreply.Chip) bool {
	if len(chips) > whatsapp.MaxButtons {
		return false
	}
	for _, c := range chips {
		if utf8.RuneCountInString(chipTitle(c)) > whatsapp.MaxButtonTitle {
			return false
		}
	}
	return true
}

func chipTitle(c quickreply.Chip) string {
	if c.Selected {
		return selectedMark + c.Label()
	}
	return c.Label()
}

func toRow(c quickreply.Chip) whatsapp.SectionRow {
	title := chipTitle(c)
	row := whatsapp.SectionRow{ID: c.ID, Title: truncateText(title, whatsapp.MaxRowTitle)}
	if row.Title != title {
		row.Description = truncateText(c.Reply.Title, 72)
	}
	return row
}

func truncateText(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
