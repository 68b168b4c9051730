package library

import "github.com/shopspring/decimal"

// Stats is a point-in-time summary of the library.
type Stats struct {
	Books               int
	Copies              int
	Categories          int
	Members             int
	Librarians          int
	ActiveLoans         int
	OverdueLoans        int
	PendingReservations int
	FinesCollected      decimal.Decimal
}

// Stats counts the collection, circulation and fines collected.
func (l *Library) Stats() Stats {
	now := l.now()
	s := Stats{
		Books:          len(l.books),
		Copies:         len(l.copies),
		Categories:     len(l.categories),
		Members:        len(l.members),
		Librarians:     len(l.librarians),
		FinesCollected: decimal.Zero,
	}
	for _, ln := range l.loans {
		if ln.Status == LoanReturned {
			continue
		}
		s.ActiveLoans++
		if ln.OverdueAt(now) {
			s.OverdueLoans++
		}
	}
	for _, r := range l.reservations {
		if r.Status == ReservationPending {
			s.PendingReservations++
		}
	}
	for _, m := range l.members {
		s.FinesCollected = s.FinesCollected.Add(m.FinesPaid)
	}
	return s
}
