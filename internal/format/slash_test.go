package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/shrug", `¯\_(ツ)_/¯`},
		{"  /shrug  ", `¯\_(ツ)_/¯`},
		{"/tableflip", "(╯°□°)╯︵ ┻━┻"},
		{"/flip", "(╯°□°)╯︵ ┻━┻"},
		{"/unflip", "┬─┬ノ( º _ ºノ)"},
		{"/lenny", "( ͡° ͜ʖ ͡°)"},
		{"/shrug me", "/shrug me"},
		{"/unknown", "/unknown"},
		{"hello /shrug", "hello /shrug"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandSlash(tt.in), tt.in)
	}
}
