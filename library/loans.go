package library

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FinePerDay is charged for every full day a loan runs past its due date.
var FinePerDay = decimal.NewFromInt(1)

const day = 24 * time.Hour

// OverdueAt reports whether the loan is still out and past due at now.
func (ln *Loan) OverdueAt(now time.Time) bool {
	return ln.Status == LoanActive && now.After(ln.DueAt)
}

// StatusAt returns the observed status, deriving OVERDUE from the clock.
func (ln *Loan) StatusAt(now time.Time) LoanStatus {
	if ln.OverdueAt(now) {
		return LoanOverdue
	}
	return ln.Status
}

// FineAt computes the fine owed for the loan as of now. Returned loans are
// measured at their return date. Partial days are not charged.
func (ln *Loan) FineAt(now time.Time) decimal.Decimal {
	effective := now
	if ln.ReturnedAt != nil {
		effective = *ln.ReturnedAt
	}
	daysLate := int64(effective.Sub(ln.DueAt) / day)
	if daysLate <= 0 {
		return decimal.Zero
	}
	return FinePerDay.Mul(decimal.NewFromInt(daysLate))
}

// Issue lends a copy to a member starting now.
func (l *Library) Issue(memberID, barcode string) (*Loan, error) {
	return l.IssueAt(memberID, barcode, l.now())
}

// IssueAt lends a copy to a member with an explicit issue instant. The due
// date is the issue date plus the member's loan period in calendar days.
//
// Checks run in order and fail without touching any state:
// member eligibility, reference-only copy, copy availability, loan limit.
func (l *Library) IssueAt(memberID, barcode string, issuedAt time.Time) (*Loan, error) {
	m, err := l.Member(memberID)
	if err != nil {
		return nil, err
	}
	c, err := l.Copy(barcode)
	if err != nil {
		return nil, err
	}

	if !m.Eligible() {
		return nil, withMetadata(CodeMemberNotEligible, "member "+m.ID+" is not eligible for loans",
			map[string]string{"member_id": m.ID, "status": string(m.Status)})
	}
	if c.ReferenceOnly {
		return nil, withMetadata(CodeReferenceOnly, "copy "+c.Barcode+" is reference only",
			map[string]string{"barcode": c.Barcode})
	}
	if c.Status != CopyAvailable {
		return nil, withMetadata(CodeCopyUnavailable, "copy "+c.Barcode+" is not available",
			map[string]string{"barcode": c.Barcode, "status": string(c.Status)})
	}
	if l.enforceLoanLimit {
		if held, limit := l.CurrentLoanCount(m.ID), MaxBooks(m); held >= limit {
			return nil, newError(CodeLoanLimitExceeded, "member %s already holds %d of %d loans", m.ID, held, limit)
		}
	}

	loan := &Loan{
		ID:       newID("L", func(id string) bool { _, ok := l.loans[id]; return ok }),
		MemberID: m.ID,
		Barcode:  c.Barcode,
		ISBN:     c.ISBN,
		IssuedAt: issuedAt,
		DueAt:    issuedAt.AddDate(0, 0, MaxLoanDays(m)),
		Fine:     decimal.Zero,
		FinePaid: decimal.Zero,
		Status:   LoanActive,
	}
	c.Status = CopyLoaned
	l.loans[loan.ID] = loan
	l.loanOrder = append(l.loanOrder, loan.ID)

	l.logger.Info("loan issued",
		slog.String("loan_id", loan.ID),
		slog.String("member_id", m.ID),
		slog.String("barcode", c.Barcode),
		slog.Time("due_at", loan.DueAt),
	)
	return loan, nil
}

// IsOverdue reports whether the loan is still out and past due.
func (l *Library) IsOverdue(loan *Loan) bool { return loan.OverdueAt(l.now()) }

// CalculateFine recomputes the fine for a loan against the library clock.
func (l *Library) CalculateFine(loan *Loan) decimal.Decimal { return loan.FineAt(l.now()) }

// OutstandingFine is what the member still owes on a loan.
func (l *Library) OutstandingFine(loan *Loan) decimal.Decimal {
	fine := loan.Fine
	if loan.Status != LoanReturned {
		fine = l.CalculateFine(loan)
	}
	owed := fine.Sub(loan.FinePaid)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}

// Return checks a loan back in. It records the return date and final fine
// and frees the copy. If the title has pending reservations, the earliest is
// flagged FULFILLED; issuing a copy to that member is a separate step
// (Process or Issue).
func (l *Library) Return(loanID string) (*Loan, *Reservation, error) {
	loan, err := l.Loan(loanID)
	if err != nil {
		return nil, nil, err
	}
	if loan.Status == LoanReturned {
		return nil, nil, withMetadata(CodeInvalidLoanState, "loan "+loan.ID+" is already returned",
			map[string]string{"loan_id": loan.ID, "status": string(loan.Status)})
	}

	now := l.now()
	loan.ReturnedAt = &now
	loan.Fine = loan.FineAt(now)
	loan.Status = LoanReturned
	if c, ok := l.copies[loan.Barcode]; ok {
		c.Status = CopyAvailable
	}

	l.logger.Info("loan returned",
		slog.String("loan_id", loan.ID),
		slog.String("member_id", loan.MemberID),
		slog.String("fine", loan.Fine.StringFixed(2)),
	)

	next := l.nextPending(loan.ISBN)
	if next != nil {
		next.Status = ReservationFulfilled
		l.logger.Info("reservation fulfilled",
			slog.String("reservation_id", next.ID),
			slog.String("member_id", next.MemberID),
			slog.String("isbn", next.ISBN),
		)
	}
	return loan, next, nil
}

// Extend pushes the due date back by days. It reports false, changing
// nothing, when the loan is overdue or the title has a pending reservation.
func (l *Library) Extend(loanID string, days int) (bool, error) {
	if days <= 0 {
		return false, newError(CodeInvalidArgument, "extension must be a positive number of days, got %d", days)
	}
	loan, err := l.Loan(loanID)
	if err != nil {
		return false, err
	}
	if loan.Status == LoanReturned {
		return false, withMetadata(CodeInvalidLoanState, "loan "+loan.ID+" is already returned",
			map[string]string{"loan_id": loan.ID, "status": string(loan.Status)})
	}
	if l.IsOverdue(loan) || l.HasPendingReservation(loan.ISBN) {
		return false, nil
	}
	loan.DueAt = loan.DueAt.AddDate(0, 0, days)
	l.logger.Info("loan extended", slog.String("loan_id", loan.ID), slog.Time("due_at", loan.DueAt))
	return true, nil
}

// PayLoanFine records a payment against a loan and the member's running total.
// Overpayment is accepted.
func (l *Library) PayLoanFine(loanID string, amount decimal.Decimal) error {
	loan, err := l.Loan(loanID)
	if err != nil {
		return err
	}
	if err := l.PayMemberFine(loan.MemberID, amount); err != nil {
		return err
	}
	loan.FinePaid = loan.FinePaid.Add(amount)
	return nil
}

// Loan looks up a loan by id.
func (l *Library) Loan(id string) (*Loan, error) {
	loan, ok := l.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	return loan, nil
}

// Loans returns the full loan history in issue order.
func (l *Library) Loans() []*Loan {
	return l.filterLoans(func(*Loan) bool { return true })
}

// ActiveLoans returns loans that are not returned, overdue ones included.
func (l *Library) ActiveLoans() []*Loan {
	return l.filterLoans(func(ln *Loan) bool { return ln.Status != LoanReturned })
}

// OverdueLoans returns loans that are out and past due, oldest due date first.
func (l *Library) OverdueLoans() []*Loan {
	now := l.now()
	out := l.filterLoans(func(ln *Loan) bool { return ln.OverdueAt(now) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

// LoansOf returns a member's loan history in issue order.
func (l *Library) LoansOf(memberID string) []*Loan {
	return l.filterLoans(func(ln *Loan) bool { return ln.MemberID == memberID })
}

func (l *Library) filterLoans(keep func(*Loan) bool) []*Loan {
	var out []*Loan
	for _, id := range l.loanOrder {
		if ln := l.loans[id]; keep(ln) {
			out = append(out, ln)
		}
	}
	return out
}
