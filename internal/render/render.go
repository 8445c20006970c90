// Package render draws formatted chat messages for a terminal.
package render

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vedran77/lax/internal/chat"
	"github.com/vedran77/lax/internal/domain"
	"github.com/vedran77/lax/internal/format"
)

const (
	unknownAuthor = "Unknown Operator"
	timeLayout    = "3:04 PM"
	quoteBar      = "│ "
)

// nameColors is the palette author names are drawn from.
var nameColors = []lipgloss.Color{"1", "4", "2", "3", "5", "13", "12"}

// Renderer turns messages into styled text. The color profile follows
// the writer it was created for; a non-terminal writer gets plain text.
type Renderer struct {
	base    lipgloss.Style
	code    lipgloss.Style
	mention lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style

	loc *time.Location

	mu      sync.RWMutex
	users   map[string]domain.User
	handles map[string]string
}

func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		base:    r.NewStyle(),
		code:    r.NewStyle().Foreground(lipgloss.Color("9")).Background(lipgloss.Color("236")),
		mention: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		link:    r.NewStyle().Foreground(lipgloss.Color("6")).Underline(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		loc:     time.Local,
		users:   map[string]domain.User{},
		handles: map[string]string{},
	}
}

// SetLocation changes the zone message times are shown in.
func (r *Renderer) SetLocation(loc *time.Location) {
	r.loc = loc
}

// SetUsers replaces the directory used for author names and mentions.
// A mention matches a user by display name with spaces removed or by the
// local part of the email, ignoring case.
func (r *Renderer) SetUsers(users []domain.User) {
	byID := make(map[string]domain.User, len(users))
	handles := make(map[string]string, 2*len(users))
	for _, u := range users {
		byID[u.ID] = u
		if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
			handles[strings.ToLower(local)] = u.DisplayName
		}
		if h := strings.ToLower(strings.ReplaceAll(u.DisplayName, " ", "")); h != "" {
			handles[h] = u.DisplayName
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users, r.handles = byID, handles
}

// View renders a whole display list, one entry after another.
func (r *Renderer) View(entries []chat.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, r.Entry(e))
	}
	return strings.Join(parts, "\n")
}

// Entry renders one message. Sequential entries skip the author header.
func (r *Renderer) Entry(e chat.Entry) string {
	var b strings.Builder
	if !e.Sequential {
		b.WriteString(r.header(e.Message))
		b.WriteString("\n")
	}

	body := r.Nodes(format.Parse(e.Message.Body))
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(line)
	}

	switch {
	case e.Pending:
		b.WriteString(" " + r.muted.Render("(sending)"))
	case e.Message.EditedAt != nil:
		b.WriteString(" " + r.muted.Render("(edited)"))
	}
	return b.String()
}

func (r *Renderer) header(m domain.Message) string {
	r.mu.RLock()
	u, ok := r.users[m.AuthorID]
	r.mu.RUnlock()

	name := unknownAuthor
	if ok {
		name = u.DisplayName
	}
	author := r.base.Bold(true).Foreground(NameColor(m.AuthorID)).Render(name)
	return author + " " + r.muted.Render(m.CreatedAt.In(r.loc).Format(timeLayout))
}

// Nodes renders a formatted body.
func (r *Renderer) Nodes(nodes []format.Node) string {
	var b strings.Builder
	r.nodes(&b, nodes, r.base)
	return b.String()
}

func (r *Renderer) nodes(b *strings.Builder, nodes []format.Node, style lipgloss.Style) {
	for i, n := range nodes {
		switch n.Kind {
		case format.KindText:
			b.WriteString(paint(style, n.Text))
		case format.KindCode:
			b.WriteString(paint(r.code, n.Text))
		case format.KindBold:
			r.nodes(b, n.Children, style.Bold(true))
		case format.KindItalic:
			r.nodes(b, n.Children, style.Italic(true))
		case format.KindStrike:
			r.nodes(b, n.Children, style.Strikethrough(true).Foreground(lipgloss.Color("8")))
		case format.KindMention:
			b.WriteString(r.mention.Render(r.resolve(n.Handle)))
		case format.KindLink:
			b.WriteString(r.link.Render(n.URL))
		case format.KindImage:
			b.WriteString(r.muted.Render("[image]") + " " + r.link.Render(n.URL))
		case format.KindBlockquote:
			var inner strings.Builder
			r.nodes(&inner, n.Children, style.Italic(true))
			lines := strings.Split(inner.String(), "\n")
			for j, line := range lines {
				if j > 0 {
					b.WriteString("\n")
				}
				b.WriteString(r.muted.Render(quoteBar) + line)
			}
			// the quote swallowed the newline of its last line
			if i < len(nodes)-1 {
				b.WriteString("\n")
			}
		}
	}
}

// resolve maps "@handle" to "@Display Name" when the handle names a
// known user.
func (r *Renderer) resolve(handle string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.handles[strings.ToLower(strings.TrimPrefix(handle, "@"))]; ok {
		return "@" + name
	}
	return handle
}

// paint styles s line by line so multi-line text is not padded into a
// block.
func paint(style lipgloss.Style, s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// NameColor picks a stable palette color for a user id.
func NameColor(userID string) lipgloss.Color {
	var hash int32
	for _, c := range userID {
		hash = int32(c) + (hash << 5) - hash
	}
	idx := int(hash) % len(nameColors)
	if idx < 0 {
		idx = -idx
	}
	return nameColors[idx]
}
