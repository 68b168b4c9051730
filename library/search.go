package library

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchByTitle returns titles whose title contains q, ignoring case.
// A blank query matches nothing.
func (l *Library) SearchByTitle(q string) []*Book {
	return l.searchBooks(q, func(b *Book) string { return b.Title })
}

// SearchByAuthor returns titles whose author contains q, ignoring case.
func (l *Library) SearchByAuthor(q string) []*Book {
	return l.searchBooks(q, func(b *Book) string { return b.Author })
}

// SearchByCategory returns the titles tagged with the named category.
func (l *Library) SearchByCategory(name string) []*Book {
	var out []*Book
	for _, isbn := range l.bookOrder {
		if b := l.books[isbn]; b.HasCategory(name) {
			out = append(out, b)
		}
	}
	return out
}

// Search matches q against title or author.
func (l *Library) Search(q string) []*Book {
	return l.searchBooks(q, func(b *Book) string { return b.Title + "\x00" + b.Author })
}

func (l *Library) searchBooks(q string, field func(*Book) string) []*Book {
	if strings.TrimSpace(q) == "" {
		return []*Book{}
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q))

	out := []*Book{}
	for _, isbn := range l.bookOrder {
		b := l.books[isbn]
		if strings.Contains(fold.String(field(b)), needle) {
			out = append(out, b)
		}
	}
	return out
}
