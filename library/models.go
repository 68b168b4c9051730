package library

import (
	"time"

	"github.com/shopspring/decimal"
)

// Format is the physical or digital form a title is published in.
type Format string

const (
	FormatHardcover Format = "HARDCOVER"
	FormatPaperback Format = "PAPERBACK"
	FormatEbook     Format = "EBOOK"
	FormatAudiobook Format = "AUDIOBOOK"
)

// Language is the language a title is written in.
type Language string

const (
	LanguageEnglish    Language = "ENGLISH"
	LanguageIndonesian Language = "INDONESIAN"
	LanguageFrench     Language = "FRENCH"
	LanguageGerman     Language = "GERMAN"
	LanguageSpanish    Language = "SPANISH"
	LanguageOther      Language = "OTHER"
)

// Book represents catalog metadata for one title.
// Physical copies are tracked separately and referenced by barcode.
type Book struct {
	ISBN        string   `json:"isbn" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Publisher   string   `json:"publisher"`
	Year        int      `json:"year" validate:"omitempty,min=1000,max=9999"`
	Description string   `json:"description"`
	Pages       int      `json:"pages" validate:"gte=0"`
	Format      Format   `json:"format" validate:"omitempty,oneof=HARDCOVER PAPERBACK EBOOK AUDIOBOOK"`
	Language    Language `json:"language" validate:"omitempty,oneof=ENGLISH INDONESIAN FRENCH GERMAN SPANISH OTHER"`
	Categories  []string `json:"categories"`
	Copies      []string `json:"copies"` // barcodes in catalog order
}

// HasCategory reports whether the book is tagged with the named category.
func (b *Book) HasCategory(name string) bool {
	return contains(b.Categories, name)
}

// CopyStatus is the circulation state of a single copy.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyLoaned    CopyStatus = "LOANED"
)

// Copy is one barcoded unit of a Book. It belongs to the same book for its lifetime.
type Copy struct {
	Barcode       string          `json:"barcode"`
	ISBN          string          `json:"isbn"`
	Status        CopyStatus      `json:"status"`
	ReferenceOnly bool            `json:"reference_only"`
	Location      string          `json:"location"`
	Price         decimal.Decimal `json:"price"`
}

// Loanable reports whether the copy can be issued right now.
func (c *Copy) Loanable() bool {
	return c.Status == CopyAvailable && !c.ReferenceOnly
}

// Category groups books by subject.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MemberStatus is the standing of a member with the library.
type MemberStatus string

const (
	MemberActive      MemberStatus = "ACTIVE"
	MemberInactive    MemberStatus = "INACTIVE"
	MemberBlacklisted MemberStatus = "BLACKLISTED"
)

// Member represents a registered borrower. Profile carries the variant-specific
// data (RegularProfile or StudentProfile) which decides the borrowing policy.
type Member struct {
	ID           string          `json:"id"`
	Name         string          `json:"name" validate:"required"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email" validate:"omitempty,email"`
	RegisteredAt time.Time       `json:"registered_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Active       bool            `json:"active"`
	Status       MemberStatus    `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLACKLISTED"`
	FinesPaid    decimal.Decimal `json:"fines_paid"`
	Profile      Profile         `json:"profile"`
}

// Eligible reports whether the member may receive new loans.
func (m *Member) Eligible() bool {
	return m.Active && m.Status == MemberActive
}

// LoanStatus is the lifecycle state of a Loan. Only LoanActive and
// LoanReturned are stored; LoanOverdue is derived from the clock.
type LoanStatus string

const (
	LoanActive   LoanStatus = "ACTIVE"
	LoanOverdue  LoanStatus = "OVERDUE"
	LoanReturned LoanStatus = "RETURNED"
)

// Loan is the join record of a copy checked out by a member. Loans are never
// deleted.
type Loan struct {
	ID         string          `json:"id"`
	MemberID   string          `json:"member_id"`
	Barcode    string          `json:"barcode"`
	ISBN       string          `json:"isbn"`
	IssuedAt   time.Time       `json:"issued_at"`
	DueAt      time.Time       `json:"due_at"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty"`
	Fine       decimal.Decimal `json:"fine"`
	FinePaid   decimal.Decimal `json:"fine_paid"`
	Status     LoanStatus      `json:"status"`
}

// ReservationStatus is the lifecycle state of a Reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a member's queued interest in a title (not a specific copy).
type Reservation struct {
	ID         string            `json:"id"`
	MemberID   string            `json:"member_id"`
	ISBN       string            `json:"isbn"`
	ReservedAt time.Time         `json:"reserved_at"`
	Status     ReservationStatus `json:"status"`
	LoanID     string            `json:"loan_id,omitempty"`

	seq uint64
}

// AwaitingPickup reports whether a return flagged this reservation as
// fulfilled but no copy has been issued to the member yet.
func (r *Reservation) AwaitingPickup() bool {
	return r.Status == ReservationFulfilled && r.LoanID == ""
}

// Librarian is a staff actor. Permission gates which operations a session may run.
type Librarian struct {
	StaffID      string          `json:"staff_id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"omitempty,email"`
	Phone        string          `json:"phone"`
	Position     string          `json:"position"`
	Salary       decimal.Decimal `json:"salary"`
	JoinedAt     time.Time       `json:"joined_at"`
	Permission   Permission      `json:"permission" validate:"min=1,max=3"`
	PasswordHash string          `json:"-"` // Don't serialize password hash
}
