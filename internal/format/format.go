// Package format turns raw message bodies into a tree of inline nodes.
//
// Parsing runs a fixed chain of stages, outermost first:
//
//	code  `x`
//	blockquote  lines starting with "> "
//	link / image  bare http(s):// tokens
//	mention  @handle
//	bold  *x*
//	italic  _x_
//	strikethrough  ~x~
//
// Each stage claims its matches left to right and hands the text between
// matches to the next stage, so a marker is never recognized inside a span
// already claimed by an earlier stage. Anything that does not form a
// complete, non-empty marker is kept as literal text.
package format

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	codeRe    = regexp.MustCompile("`[^`]+`")
	linkRe    = regexp.MustCompile(`(^|\s)(https?://\S+)`)
	imageRe   = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|svg)$`)
	mentionRe = regexp.MustCompile(`@[A-Za-z0-9_.\-]+`)
	boldRe    = regexp.MustCompile(`\*[^*]+\*`)
	italicRe  = regexp.MustCompile(`_[^_]+_`)
	strikeRe  = regexp.MustCompile(`~[^~]+~`)
)

const quotePrefix = "> "

// Parse formats raw. It never fails; an empty input yields no nodes.
func Parse(raw string) []Node {
	return mergeText(parseCode(raw))
}

func parseCode(s string) []Node {
	if s == "" {
		return nil
	}
	var out []Node
	last := 0
	for _, loc := range codeRe.FindAllStringIndex(s, -1) {
		out = append(out, parseQuotes(s[last:loc[0]], last == 0)...)
		out = append(out, Code(s[loc[0]+1:loc[1]-1]))
		last = loc[1]
	}
	return append(out, parseQuotes(s[last:], last == 0)...)
}

// parseQuotes groups contiguous "> " lines into blockquotes. atLineStart
// tells whether the first line of s begins a line of the original text;
// a fragment that follows a code span does not.
func parseQuotes(s string, atLineStart bool) []Node {
	if s == "" {
		return nil
	}
	var (
		out    []Node
		plain  strings.Builder
		quoted []string
		raw    strings.Builder
	)
	flushPlain := func() {
		if plain.Len() > 0 {
			out = append(out, parseLinks(plain.String())...)
			plain.Reset()
		}
	}
	flushQuote := func() {
		if len(quoted) == 0 {
			return
		}
		content := strings.Join(quoted, "\n")
		if strings.TrimSpace(content) == "" {
			plain.WriteString(raw.String())
		} else {
			flushPlain()
			out = append(out, Blockquote(mergeText(parseLinks(content))...))
		}
		quoted = quoted[:0]
		raw.Reset()
	}

	for i, line := range strings.SplitAfter(s, "\n") {
		if (i > 0 || atLineStart) && strings.HasPrefix(line, quotePrefix) {
			quoted = append(quoted, strings.TrimSuffix(strings.TrimPrefix(line, quotePrefix), "\n"))
			raw.WriteString(line)
			continue
		}
		flushQuote()
		plain.WriteString(line)
	}
	flushQuote()
	flushPlain()
	return out
}

func parseLinks(s string) []Node {
	if s == "" {
		return nil
	}
	var out []Node
	last := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[4], m[5]
		out = append(out, parseMentions(s[last:start])...)
		out = append(out, linkNode(s[start:end]))
		last = end
	}
	return append(out, parseMentions(s[last:])...)
}

func linkNode(raw string) Node {
	u, err := url.Parse(raw)
	if err == nil && imageRe.MatchString(u.Path) {
		return Image(raw)
	}
	return Link(raw)
}

func parseMentions(s string) []Node {
	return splitOn(mentionRe, s, Mention, parseBold)
}

func parseBold(s string) []Node {
	return splitOn(boldRe, s, func(m string) Node {
		return Bold(parseItalic(unwrap(m))...)
	}, parseItalic)
}

func parseItalic(s string) []Node {
	return splitOn(italicRe, s, func(m string) Node {
		return Italic(parseStrike(unwrap(m))...)
	}, parseStrike)
}

func parseStrike(s string) []Node {
	return splitOn(strikeRe, s, func(m string) Node {
		return Strike(literal(unwrap(m))...)
	}, literal)
}

func literal(s string) []Node {
	if s == "" {
		return nil
	}
	return []Node{Text(s)}
}

// splitOn claims every match of re in s via match and passes the gaps
// between matches to rest.
func splitOn(re *regexp.Regexp, s string, match func(string) Node, rest func(string) []Node) []Node {
	if s == "" {
		return nil
	}
	var out []Node
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		out = append(out, rest(s[last:loc[0]])...)
		out = append(out, match(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	return append(out, rest(s[last:])...)
}

// unwrap strips one delimiter character from each end.
func unwrap(m string) string {
	return m[1 : len(m)-1]
}

// mergeText joins adjacent text nodes at every level of the tree.
func mergeText(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		if len(n.Children) > 0 {
			n.Children = mergeText(n.Children)
		}
		if n.Kind == KindText && len(out) > 0 && out[len(out)-1].Kind == KindText {
			out[len(out)-1].Text += n.Text
			continue
		}
		out = append(out, n)
	}
	return out
}
