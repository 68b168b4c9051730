package library

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Library owns the whole in-memory object graph: books, copies, categories,
// members, loans, reservations and librarians. Cross references between
// records are ids resolved through the store.
//
// A Library is not safe for concurrent use.
type Library struct {
	Name    string
	Address string

	books            map[string]*Book
	bookOrder        []string
	copies           map[string]*Copy
	categories       map[string]*Category
	categoryOrder    []string
	members          map[string]*Member
	memberOrder      []string
	loans            map[string]*Loan
	loanOrder        []string
	reservations     map[string]*Reservation
	reservationOrder []string
	librarians       map[string]*Librarian
	librarianOrder   []string
	seq              uint64

	now              func() time.Time
	logger           *slog.Logger
	validate         *validator.Validate
	enforceLoanLimit bool
	passwordCost     int
}

// Option configures a Library.
type Option func(*Library)

// WithClock replaces time.Now. Tests and demos use it to move time forward
// or to backdate loans.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLoanLimit toggles enforcement of the per-member concurrent loan cap at issue time.
func WithLoanLimit(enforce bool) Option {
	return func(l *Library) { l.enforceLoanLimit = enforce }
}

// WithPasswordCost sets the bcrypt cost for librarian passwords.
func WithPasswordCost(cost int) Option {
	return func(l *Library) { l.passwordCost = cost }
}

// New creates an empty library. The caller seeds librarians and data.
func New(name, address string, opts ...Option) *Library {
	l := &Library{
		Name:             name,
		Address:          address,
		books:            make(map[string]*Book),
		copies:           make(map[string]*Copy),
		categories:       make(map[string]*Category),
		members:          make(map[string]*Member),
		loans:            make(map[string]*Loan),
		reservations:     make(map[string]*Reservation),
		librarians:       make(map[string]*Librarian),
		now:              time.Now,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate:         validator.New(),
		enforceLoanLimit: true,
		passwordCost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the library clock's current time.
func (l *Library) Now() time.Time { return l.now() }

// newID returns prefix plus eight hex characters of a random UUID, retrying
// until the id is not taken.
func newID(prefix string, taken func(string) bool) string {
	for {
		id := prefix + uuid.NewString()[:8]
		if !taken(id) {
			return id
		}
	}
}

// check runs struct validation and converts the first failure into an
// InvalidArgument error naming the field and rule.
func (l *Library) check(kind string, v any) error {
	err := l.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &Error{
			Code:     CodeInvalidArgument,
			Message:  "invalid " + kind + ": " + strings.ToLower(fe.Field()) + " fails " + fe.Tag(),
			Metadata: map[string]string{"field": fe.Field(), "rule": fe.Tag()},
		}
	}
	return wrap(CodeInvalidArgument, "invalid "+kind, err)
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
