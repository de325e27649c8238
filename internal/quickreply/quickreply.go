// Package quickreply renders the quick-reply options attached to a chat message
// and reports the user's selection back to the host chat view.
package quickreply

import (
	"io"
	"log"
)

// Type is the selection policy of a quick-reply set.
type Type string

const (
	// TypeRadio submits a single option as soon as it is tapped.
	TypeRadio Type = "radio"
	// TypeCheckbox accumulates options until the send chip is tapped.
	TypeCheckbox Type = "checkbox"
)

// Display defaults.
const (
	DefaultColor    = "#3498db"
	DefaultSendText = "Send"

	colorWhite       = "#ffffff"
	colorDefaultBlue = "#0084ff"
)

// Reply is one selectable option.
type Reply struct {
	Title string `json:"title"`
	Value string `json:"value"` // unique within one Spec
}

// Spec is the quick-reply set attached to a message. Values are shown in order.
type Spec struct {
	Type   Type    `json:"type"`
	Values []Reply `json:"values"`
}

// Config configures a Selector. Zero fields fall back to the defaults of DefaultConfig.
type Config struct {
	Color        string
	SendText     string
	OnQuickReply func(replies []Reply)
	// Logger receives diagnostics such as unknown selection types.
	Logger *log.Logger
}

// DefaultConfig returns a fully populated Config.
func DefaultConfig() Config {
	return Config{
		Color:        DefaultColor,
		SendText:     DefaultSendText,
		OnQuickReply: func([]Reply) {},
		Logger:       log.Default(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Color == "" {
		c.Color = d.Color
	}
	if c.SendText == "" {
		c.SendText = d.SendText
	}
	if c.OnQuickReply == nil {
		c.OnQuickReply = d.OnQuickReply
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// DiscardLogger is a Logger that drops everything.
var DiscardLogger = log.New(io.Discard, "", 0)
