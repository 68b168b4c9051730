package library

import (
	"iter"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

// AddBook registers a title. Incoming Copies are ignored; use AddCopy.
// Categories named on the book must already exist.
func (l *Library) AddBook(b Book) (*Book, error) {
	b.ISBN = strings.TrimSpace(b.ISBN)
	if err := l.check("book", b); err != nil {
		return nil, err
	}
	if _, ok := l.books[b.ISBN]; ok {
		return nil, withMetadata(CodeDuplicateIdentifier, "book "+b.ISBN+" already exists", map[string]string{"isbn": b.ISBN})
	}

	tags := make([]string, 0, len(b.Categories))
	for _, name := range b.Categories {
		if _, ok := l.categories[name]; !ok {
			return nil, notFound("category", name)
		}
		if !contains(tags, name) {
			tags = append(tags, name)
		}
	}

	book := b
	book.Categories = tags
	book.Copies = nil
	l.books[book.ISBN] = &book
	l.bookOrder = append(l.bookOrder, book.ISBN)
	return &book, nil
}

// Book looks up a title by ISBN.
func (l *Library) Book(isbn string) (*Book, error) {
	b, ok := l.books[isbn]
	if !ok {
		return nil, notFound("book", isbn)
	}
	return b, nil
}

// Books returns all titles in the order they were added.
func (l *Library) Books() []*Book {
	out := make([]*Book, 0, len(l.bookOrder))
	for _, isbn := range l.bookOrder {
		out = append(out, l.books[isbn])
	}
	return out
}

// UpdateBookInfo replaces the descriptive fields of a title.
func (l *Library) UpdateBookInfo(isbn, title, author, publisher string, year int) error {
	b, err := l.Book(isbn)
	if err != nil {
		return err
	}
	updated := *b
	updated.Title, updated.Author, updated.Publisher, updated.Year = title, author, publisher, year
	if err := l.check("book", updated); err != nil {
		return err
	}
	b.Title, b.Author, b.Publisher, b.Year = title, author, publisher, year
	return nil
}

// RemoveBook deletes a title with all its copies. It is refused while a copy
// is on loan or a reservation on the title is pending.
func (l *Library) RemoveBook(isbn string) error {
	b, err := l.Book(isbn)
	if err != nil {
		return err
	}
	for _, barcode := range b.Copies {
		if c := l.copies[barcode]; c != nil && c.Status == CopyLoaned {
			return newError(CodeInvalidOperation, "book %s has copy %s on loan", isbn, barcode)
		}
	}
	if l.HasPendingReservation(isbn) {
		return newError(CodeInvalidOperation, "book %s has pending reservations", isbn)
	}
	for _, barcode := range b.Copies {
		delete(l.copies, barcode)
	}
	delete(l.books, isbn)
	l.bookOrder = removeString(l.bookOrder, isbn)
	l.logger.Info("book removed", slog.String("isbn", isbn))
	return nil
}

// ---------------------------------------------------------------------------
// Copies
// ---------------------------------------------------------------------------

// CopyOption sets optional attributes on a new copy.
type CopyOption func(*Copy)

// AtLocation records the shelf location of a copy.
func AtLocation(location string) CopyOption {
	return func(c *Copy) { c.Location = location }
}

// WithPrice records the acquisition price of a copy.
func WithPrice(price decimal.Decimal) CopyOption {
	return func(c *Copy) { c.Price = price }
}

// AsReferenceOnly marks a new copy for in-library use only.
func AsReferenceOnly() CopyOption {
	return func(c *Copy) { c.ReferenceOnly = true }
}

// AddCopy attaches a new AVAILABLE copy to a title. Barcodes are unique
// across the whole library.
func (l *Library) AddCopy(isbn, barcode string, opts ...CopyOption) (*Copy, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, newError(CodeInvalidArgument, "barcode is required")
	}
	b, err := l.Book(isbn)
	if err != nil {
		return nil, err
	}
	if _, ok := l.copies[barcode]; ok {
		return nil, withMetadata(CodeDuplicateBarcode, "barcode "+barcode+" already in use", map[string]string{"barcode": barcode})
	}

	c := &Copy{Barcode: barcode, ISBN: b.ISBN, Status: CopyAvailable, Price: decimal.Zero}
	for _, opt := range opts {
		opt(c)
	}
	l.copies[barcode] = c
	b.Copies = append(b.Copies, barcode)
	return c, nil
}

// Copy looks up a copy by barcode.
func (l *Library) Copy(barcode string) (*Copy, error) {
	c, ok := l.copies[barcode]
	if !ok {
		return nil, notFound("copy", barcode)
	}
	return c, nil
}

// Copies returns the copies of a title in catalog order.
func (l *Library) Copies(isbn string) ([]*Copy, error) {
	b, err := l.Book(isbn)
	if err != nil {
		return nil, err
	}
	out := make([]*Copy, 0, len(b.Copies))
	for _, barcode := range b.Copies {
		out = append(out, l.copies[barcode])
	}
	return out, nil
}

// AvailableCopies yields the copies of a title that can be issued, in catalog
// order. The sequence is evaluated lazily and may be ranged over repeatedly.
func (l *Library) AvailableCopies(isbn string) iter.Seq[*Copy] {
	return func(yield func(*Copy) bool) {
		b, ok := l.books[isbn]
		if !ok {
			return
		}
		for _, barcode := range b.Copies {
			c := l.copies[barcode]
			if c == nil || !c.Loanable() {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// AvailableCount counts the loanable copies of a title.
func (l *Library) AvailableCount(isbn string) int {
	n := 0
	for range l.AvailableCopies(isbn) {
		n++
	}
	return n
}

// SetReferenceOnly flags or unflags a copy as reference-only. A copy on loan
// cannot be flagged.
func (l *Library) SetReferenceOnly(barcode string, referenceOnly bool) error {
	c, err := l.Copy(barcode)
	if err != nil {
		return err
	}
	if referenceOnly && c.Status == CopyLoaned {
		return withMetadata(CodeCopyUnavailable, "copy "+barcode+" is on loan", map[string]string{"barcode": barcode})
	}
	c.ReferenceOnly = referenceOnly
	return nil
}

// RemoveCopy withdraws a copy from the catalog. Copies on loan stay.
// Loan history keeps the barcode and ISBN as plain values.
func (l *Library) RemoveCopy(barcode string) error {
	c, err := l.Copy(barcode)
	if err != nil {
		return err
	}
	if c.Status == CopyLoaned {
		return newError(CodeInvalidOperation, "copy %s is on loan", barcode)
	}
	if b, ok := l.books[c.ISBN]; ok {
		b.Copies = removeString(b.Copies, barcode)
	}
	delete(l.copies, barcode)
	l.logger.Info("copy removed", slog.String("barcode", barcode), slog.String("isbn", c.ISBN))
	return nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// AddCategory registers a category. Names are unique.
func (l *Library) AddCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(CodeInvalidArgument, "category name is required")
	}
	if _, ok := l.categories[name]; ok {
		return nil, withMetadata(CodeDuplicateIdentifier, "category "+name+" already exists", map[string]string{"category": name})
	}
	c := &Category{Name: name, Description: description}
	l.categories[name] = c
	l.categoryOrder = append(l.categoryOrder, name)
	return c, nil
}

// Category looks up a category by name.
func (l *Library) Category(name string) (*Category, error) {
	c, ok := l.categories[name]
	if !ok {
		return nil, notFound("category", name)
	}
	return c, nil
}

// Categories returns all categories in the order they were added.
func (l *Library) Categories() []*Category {
	out := make([]*Category, 0, len(l.categoryOrder))
	for _, name := range l.categoryOrder {
		out = append(out, l.categories[name])
	}
	return out
}

// TagBook adds a title to a category. Tagging twice is a no-op.
func (l *Library) TagBook(isbn, category string) error {
	b, err := l.Book(isbn)
	if err != nil {
		return err
	}
	if _, err := l.Category(category); err != nil {
		return err
	}
	if !b.HasCategory(category) {
		b.Categories = append(b.Categories, category)
	}
	return nil
}

// UntagBook removes a title from a category.
func (l *Library) UntagBook(isbn, category string) error {
	b, err := l.Book(isbn)
	if err != nil {
		return err
	}
	b.Categories = removeString(b.Categories, category)
	return nil
}

// RemoveCategory deletes a category and untags every title in it.
func (l *Library) RemoveCategory(name string) error {
	if _, err := l.Category(name); err != nil {
		return err
	}
	for _, b := range l.books {
		b.Categories = removeString(b.Categories, name)
	}
	delete(l.categories, name)
	l.categoryOrder = removeString(l.categoryOrder, name)
	l.logger.Info("category removed", slog.String("category", name))
	return nil
}

// HasPendingReservation reports whether any reservation on the title is PENDING.
func (l *Library) HasPendingReservation(isbn string) bool {
	for _, r := range l.reservations {
		if r.ISBN == isbn && r.Status == ReservationPending {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
