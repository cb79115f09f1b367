package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

func TestNewLabel(t *testing.T) {
	tests := []struct {
		name      string
		color     string
		wantColor string
		wantLight bool
	}{
		{name: "github hex without hash", color: "d73a4a", wantColor: "#d73a4a", wantLight: false},
		{name: "upper case with hash", color: "#A2EEEF", wantColor: "#a2eeef", wantLight: true},
		{name: "short form", color: "fff", wantColor: "#ffffff", wantLight: true},
		{name: "black", color: "000000", wantColor: "#000000", wantLight: false},
		{name: "empty falls back", color: "", wantColor: "#ededed", wantLight: true},
		{name: "short form expands digits", color: "#abc", wantColor: "#aabbcc", wantLight: true},
		{name: "surrounding space", color: " 0e8a16 ", wantColor: "#0e8a16", wantLight: false},
		{name: "garbage falls back", color: "zzzzzz", wantColor: "#ededed", wantLight: true},
		{name: "trailing non-hex falls back", color: "12345g", wantColor: "#ededed", wantLight: true},
		{name: "wrong length falls back", color: "#12345", wantColor: "#ededed", wantLight: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := model.NewLabel("bug", tt.color)
			assert.Equal(t, "bug", l.Name)
			assert.Equal(t, tt.wantColor, l.Color)
			assert.Equal(t, tt.wantLight, l.IsLight)
		})
	}
}
