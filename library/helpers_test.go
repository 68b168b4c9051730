package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) AdvanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newTestLibrary(t *testing.T, opts ...Option) (*Library, *testClock) {
	t.Helper()
	clk := &testClock{now: epoch}
	opts = append([]Option{WithClock(clk.Now), WithPasswordCost(bcrypt.MinCost)}, opts...)
	return New("Test Library", "1 Test Street", opts...), clk
}

func addBook(t *testing.T, l *Library, isbn, title string, barcodes ...string) *Book {
	t.Helper()
	b, err := l.AddBook(Book{ISBN: isbn, Title: title, Author: "Test Author", Year: 2020})
	require.NoError(t, err)
	for _, bc := range barcodes {
		_, err := l.AddCopy(isbn, bc)
		require.NoError(t, err)
	}
	return b
}

func addMember(t *testing.T, l *Library, name string, p Profile) *Member {
	t.Helper()
	m, err := l.AddMember(Member{Name: name, Profile: p})
	require.NoError(t, err)
	return m
}

func addLibrarian(t *testing.T, l *Library, staffID string, p Permission) *Session {
	t.Helper()
	_, err := l.AddLibrarian(Librarian{StaffID: staffID, Name: "Staff " + staffID, Permission: p}, "secret-"+staffID)
	require.NoError(t, err)
	s, err := NewSession(l, staffID)
	require.NoError(t, err)
	return s
}
