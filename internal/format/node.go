package format

import "strings"

// Kind identifies the variant carried by a Node.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindBlockquote
	KindLink
	KindImage
	KindMention
	KindBold
	KindItalic
	KindStrike
)

var kindNames = [...]string{
	KindText:       "text",
	KindCode:       "code",
	KindBlockquote: "blockquote",
	KindLink:       "link",
	KindImage:      "image",
	KindMention:    "mention",
	KindBold:       "bold",
	KindItalic:     "italic",
	KindStrike:     "strike",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one inline element of a formatted message. Which fields are
// meaningful depends on Kind:
//
//	KindText, KindCode                         Text
//	KindMention                                Handle (with the leading @)
//	KindLink, KindImage                        URL
//	KindBold, KindItalic, KindStrike, KindBlockquote  Children
type Node struct {
	Kind     Kind
	Text     string
	Handle   string
	URL      string
	Children []Node
}

func Text(s string) Node               { return Node{Kind: KindText, Text: s} }
func Code(s string) Node               { return Node{Kind: KindCode, Text: s} }
func Mention(handle string) Node       { return Node{Kind: KindMention, Handle: handle} }
func Link(url string) Node             { return Node{Kind: KindLink, URL: url} }
func Image(url string) Node            { return Node{Kind: KindImage, URL: url} }
func Bold(children ...Node) Node       { return Node{Kind: KindBold, Children: children} }
func Italic(children ...Node) Node     { return Node{Kind: KindItalic, Children: children} }
func Strike(children ...Node) Node     { return Node{Kind: KindStrike, Children: children} }
func Blockquote(children ...Node) Node { return Node{Kind: KindBlockquote, Children: children} }

// PlainText flattens nodes into the text a reader would see, without
// markup characters.
func PlainText(nodes []Node) string {
	var b strings.Builder
	writePlain(&b, nodes)
	return b.String()
}

func writePlain(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Kind {
		case KindText, KindCode:
			b.WriteString(n.Text)
		case KindMention:
			b.WriteString(n.Handle)
		case KindLink, KindImage:
			b.WriteString(n.URL)
		case KindBlockquote:
			writePlain(b, n.Children)
			b.WriteByte('\n')
		default:
			writePlain(b, n.Children)
		}
	}
}
