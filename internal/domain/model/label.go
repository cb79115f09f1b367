package model

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// defaultLabelColor is GitHub's default label color, used when the input
// color cannot be parsed.
const defaultLabelColor = "#ededed"

// Label is an issue or pull request label with a normalized color.
type Label struct {
	Name  string
	Color string // Lower-case "#rrggbb".
	// IsLight marks colors bright enough to need dark text on top of them.
	IsLight bool
}

// NewLabel normalizes color and derives IsLight from it. Accepted inputs are
// "rgb" and "rrggbb" hex forms, with or without a leading '#'.
func NewLabel(name, color string) Label {
	c := parseLabelColor(color)
	r, g, b := c.RGB255()
	return Label{
		Name:    name,
		Color:   c.Hex(),
		IsLight: (int(r)*299+int(g)*587+int(b)*114)/1000 >= 128,
	}
}

func parseLabelColor(color string) colorful.Color {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(color), "#"))
	if (len(hex) == 3 || len(hex) == 6) && isHex(hex) {
		if c, err := colorful.Hex("#" + hex); err == nil {
			return c
		}
	}

	c, _ := colorful.Hex(defaultLabelColor)
	return c
}

// isHex reports whether s holds hex digits only. colorful.Hex stops scanning
// at the first non-digit without failing.
func isHex(s string) bool {
	return strings.Trim(s, "0123456789abcdef") == ""
}
