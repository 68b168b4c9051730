package library

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBook(t *testing.T) {
	l, _ := newTestLibrary(t)
	_, err := l.AddCategory("Fiction", "")
	require.NoError(t, err)

	b, err := l.AddBook(Book{
		ISBN:       " 978-1 ",
		Title:      "Dune",
		Author:     "Frank Herbert",
		Year:       1965,
		Format:     FormatPaperback,
		Categories: []string{"Fiction", "Fiction"},
		Copies:     []string{"ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, "978-1", b.ISBN)
	assert.Equal(t, []string{"Fiction"}, b.Categories)
	assert.Empty(t, b.Copies)

	_, err = l.AddBook(Book{ISBN: "978-1", Title: "Other", Author: "Someone"})
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Len(t, l.Books(), 1)
}

func TestAddBookValidation(t *testing.T) {
	l, _ := newTestLibrary(t)

	tests := []struct {
		name  string
		book  Book
		field string
	}{
		{"missing isbn", Book{Title: "T", Author: "A"}, "ISBN"},
		{"missing title", Book{ISBN: "1", Author: "A"}, "Title"},
		{"bad year", Book{ISBN: "1", Title: "T", Author: "A", Year: 12}, "Year"},
		{"bad format", Book{ISBN: "1", Title: "T", Author: "A", Format: "SCROLL"}, "Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddBook(tt.book)
			require.ErrorIs(t, err, ErrInvalidArgument)
			var de *Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Metadata["field"])
		})
	}
	assert.Empty(t, l.Books())
}

func TestAddBookUnknownCategory(t *testing.T) {
	l, _ := newTestLibrary(t)
	_, err := l.AddBook(Book{ISBN: "1", Title: "T", Author: "A", Categories: []string{"Poetry"}})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = l.Book("1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookInfoLeavesBookOnFailure(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Original")

	require.ErrorIs(t, l.UpdateBookInfo("1", "", "A", "P", 2001), ErrInvalidArgument)
	b, _ := l.Book("1")
	assert.Equal(t, "Original", b.Title)

	require.NoError(t, l.UpdateBookInfo("1", "Renamed", "New Author", "Pub", 2001))
	assert.Equal(t, "Renamed", b.Title)
	assert.Equal(t, "New Author", b.Author)
	assert.Equal(t, 2001, b.Year)
}

func TestAddCopy(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "First")
	addBook(t, l, "2", "Second")

	c, err := l.AddCopy("1", "B1", AtLocation("Shelf A"), WithPrice(decimal.RequireFromString("12.50")))
	require.NoError(t, err)
	assert.Equal(t, CopyAvailable, c.Status)
	assert.Equal(t, "Shelf A", c.Location)
	assert.True(t, c.Price.Equal(decimal.RequireFromString("12.5")))

	_, err = l.AddCopy("2", "B1")
	require.ErrorIs(t, err, ErrDuplicateBarcode)
	_, err = l.AddCopy("1", "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = l.AddCopy("missing", "B9")
	require.ErrorIs(t, err, ErrNotFound)

	second, _ := l.Book("2")
	assert.Empty(t, second.Copies)
}

func TestAvailableCopies(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1", "B2")
	_, err := l.AddCopy("1", "B3", AsReferenceOnly())
	require.NoError(t, err)
	_, err = l.AddCopy("1", "B4")
	require.NoError(t, err)
	m := addMember(t, l, "Reader", RegularProfile{})

	_, err = l.Issue(m.ID, "B2")
	require.NoError(t, err)

	seq := l.AvailableCopies("1")
	var first, second []string
	for c := range seq {
		first = append(first, c.Barcode)
	}
	for c := range seq {
		second = append(second, c.Barcode)
	}
	assert.Equal(t, []string{"B1", "B4"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, l.AvailableCount("1"))
	assert.Zero(t, l.AvailableCount("missing"))
}

func TestCopiesPartitionAcrossStates(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1", "B2", "B3")
	require.NoError(t, l.SetReferenceOnly("B3", true))
	m := addMember(t, l, "Reader", RegularProfile{})
	_, err := l.Issue(m.ID, "B1")
	require.NoError(t, err)
	_, err = l.Issue(m.ID, "B3")
	require.ErrorIs(t, err, ErrReferenceOnly)

	copies, err := l.Copies("1")
	require.NoError(t, err)
	for _, c := range copies {
		assert.Contains(t, []CopyStatus{CopyAvailable, CopyLoaned}, c.Status)
		if c.ReferenceOnly {
			assert.Equal(t, CopyAvailable, c.Status)
		}
	}
}

func TestSetReferenceOnlyRefusesLoanedCopy(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	m := addMember(t, l, "Reader", RegularProfile{})
	_, err := l.Issue(m.ID, "B1")
	require.NoError(t, err)

	require.ErrorIs(t, l.SetReferenceOnly("B1", true), ErrCopyUnavailable)
	c, _ := l.Copy("B1")
	assert.False(t, c.ReferenceOnly)
}

func TestRemoveCopyAndBook(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1", "B2")
	m := addMember(t, l, "Reader", RegularProfile{})
	loan, err := l.Issue(m.ID, "B1")
	require.NoError(t, err)

	require.ErrorIs(t, l.RemoveCopy("B1"), ErrInvalidOperation)
	require.ErrorIs(t, l.RemoveBook("1"), ErrInvalidOperation)

	require.NoError(t, l.RemoveCopy("B2"))
	b, _ := l.Book("1")
	assert.Equal(t, []string{"B1"}, b.Copies)

	_, _, err = l.Return(loan.ID)
	require.NoError(t, err)
	require.NoError(t, l.RemoveBook("1"))
	_, err = l.Copy("B1")
	require.ErrorIs(t, err, ErrNotFound)

	// history survives the catalog entry
	kept, err := l.Loan(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1", kept.Barcode)
}

func TestRemoveBookWithPendingReservation(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title")
	m := addMember(t, l, "Reader", RegularProfile{})
	_, err := l.Reserve(m.ID, "1")
	require.NoError(t, err)

	require.ErrorIs(t, l.RemoveBook("1"), ErrInvalidOperation)
	assert.Len(t, l.Books(), 1)
}

func TestCategories(t *testing.T) {
	l, _ := newTestLibrary(t)
	_, err := l.AddCategory("Science", "")
	require.NoError(t, err)
	_, err = l.AddCategory("Science", "again")
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	_, err = l.AddCategory(" ", "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	addBook(t, l, "1", "Physics")
	addBook(t, l, "2", "Chemistry")
	require.NoError(t, l.TagBook("1", "Science"))
	require.NoError(t, l.TagBook("1", "Science"))
	require.NoError(t, l.TagBook("2", "Science"))
	require.ErrorIs(t, l.TagBook("1", "Poetry"), ErrNotFound)

	b, _ := l.Book("1")
	assert.Equal(t, []string{"Science"}, b.Categories)
	assert.Len(t, l.SearchByCategory("Science"), 2)

	require.NoError(t, l.UntagBook("2", "Science"))
	assert.Len(t, l.SearchByCategory("Science"), 1)

	require.NoError(t, l.RemoveCategory("Science"))
	assert.Empty(t, b.Categories)
	assert.False(t, slices.ContainsFunc(l.Categories(), func(c *Category) bool { return c.Name == "Science" }))
}
