package format

import "strings"

var slashCommands = map[string]string{
	"/shrug":     `¯\_(ツ)_/¯`,
	"/tableflip": "(╯°□°)╯︵ ┻━┻",
	"/flip":      "(╯°□°)╯︵ ┻━┻",
	"/unflip":    "┬─┬ノ( º _ ºノ)",
	"/lenny":     "( ͡° ͜ʖ ͡°)",
}

// ExpandSlash replaces a body that consists of exactly one known slash
// command with its text. Everything else is returned unchanged.
func ExpandSlash(body string) string {
	if text, ok := slashCommands[strings.TrimSpace(body)]; ok {
		return text
	}
	return body
}
