package library

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Session is a thin wrapper over the Library bound to one logged-in librarian.
// Every mutator checks the librarian's permission before touching state.
type Session struct {
	lib   *Library
	actor *Librarian
}

// NewSession binds an existing librarian to the library without a password
// check. Used by seeding code that already holds the account.
func NewSession(l *Library, staffID string) (*Session, error) {
	actor, err := l.Librarian(staffID)
	if err != nil {
		return nil, err
	}
	return &Session{lib: l, actor: actor}, nil
}

// Librarian returns the acting librarian.
func (s *Session) Librarian() *Librarian { return s.actor }

// Library returns the underlying store for read-only queries.
func (s *Session) Library() *Library { return s.lib }

// Can reports whether the acting librarian may perform op.
func (s *Session) Can(op Operation) bool { return Require(s.actor, op) == nil }

func (s *Session) guard(op Operation) error {
	if err := Require(s.actor, op); err != nil {
		s.lib.logger.Warn("permission denied",
			slog.String("staff_id", s.actor.StaffID),
			slog.String("operation", string(op)),
			slog.String("required", RequiredPermission(op).String()),
		)
		return err
	}
	return nil
}

// ------------------ Book helpers ------------------

func (s *Session) AddBook(b Book) (*Book, error) {
	if err := s.guard(OpAddBook); err != nil {
		return nil, err
	}
	return s.lib.AddBook(b)
}

func (s *Session) UpdateBookInfo(isbn, title, author, publisher string, year int) error {
	if err := s.guard(OpUpdateBook); err != nil {
		return err
	}
	return s.lib.UpdateBookInfo(isbn, title, author, publisher, year)
}

func (s *Session) RemoveBook(isbn string) error {
	if err := s.guard(OpRemoveBook); err != nil {
		return err
	}
	return s.lib.RemoveBook(isbn)
}

func (s *Session) AddCopy(isbn, barcode string, opts ...CopyOption) (*Copy, error) {
	if err := s.guard(OpAddCopy); err != nil {
		return nil, err
	}
	return s.lib.AddCopy(isbn, barcode, opts...)
}

func (s *Session) SetReferenceOnly(barcode string, referenceOnly bool) error {
	if err := s.guard(OpSetReferenceOnly); err != nil {
		return err
	}
	return s.lib.SetReferenceOnly(barcode, referenceOnly)
}

func (s *Session) RemoveCopy(barcode string) error {
	if err := s.guard(OpRemoveCopy); err != nil {
		return err
	}
	return s.lib.RemoveCopy(barcode)
}

// ------------------ Category helpers ------------------

func (s *Session) AddCategory(name, description string) (*Category, error) {
	if err := s.guard(OpAddCategory); err != nil {
		return nil, err
	}
	return s.lib.AddCategory(name, description)
}

func (s *Session) TagBook(isbn, category string) error {
	if err := s.guard(OpTagBook); err != nil {
		return err
	}
	return s.lib.TagBook(isbn, category)
}

func (s *Session) UntagBook(isbn, category string) error {
	if err := s.guard(OpTagBook); err != nil {
		return err
	}
	return s.lib.UntagBook(isbn, category)
}

func (s *Session) RemoveCategory(name string) error {
	if err := s.guard(OpRemoveCategory); err != nil {
		return err
	}
	return s.lib.RemoveCategory(name)
}

// ------------------ Member helpers ------------------

// AddMember registers a member. Registering with any status other than
// ACTIVE also needs the permission for setting member status.
func (s *Session) AddMember(m Member) (*Member, error) {
	if err := s.guard(OpAddMember); err != nil {
		return nil, err
	}
	if m.Status != "" && m.Status != MemberActive {
		if err := s.guard(OpSetMemberStatus); err != nil {
			return nil, err
		}
	}
	return s.lib.AddMember(m)
}

func (s *Session) Renew(memberID string, months int) error {
	if err := s.guard(OpRenewMember); err != nil {
		return err
	}
	return s.lib.Renew(memberID, months)
}

func (s *Session) SetActive(memberID string, active bool) error {
	if err := s.guard(OpToggleMember); err != nil {
		return err
	}
	return s.lib.SetActive(memberID, active)
}

func (s *Session) SetStatus(memberID string, status MemberStatus) error {
	if err := s.guard(OpSetMemberStatus); err != nil {
		return err
	}
	return s.lib.SetStatus(memberID, status)
}

// Blacklist marks a member BLACKLISTED and inactive in one step.
func (s *Session) Blacklist(memberID string) error {
	return s.SetStatus(memberID, MemberBlacklisted)
}

func (s *Session) PayMemberFine(memberID string, amount decimal.Decimal) error {
	if err := s.guard(OpPayFine); err != nil {
		return err
	}
	return s.lib.PayMemberFine(memberID, amount)
}

// ------------------ Circulation ------------------

func (s *Session) Issue(memberID, barcode string) (*Loan, error) {
	if err := s.guard(OpIssue); err != nil {
		return nil, err
	}
	return s.lib.Issue(memberID, barcode)
}

// Return checks a loan in and yields the reservation the return flagged, if any.
func (s *Session) Return(loanID string) (*Loan, *Reservation, error) {
	if err := s.guard(OpReturn); err != nil {
		return nil, nil, err
	}
	return s.lib.Return(loanID)
}

func (s *Session) Extend(loanID string, days int) (bool, error) {
	if err := s.guard(OpExtend); err != nil {
		return false, err
	}
	return s.lib.Extend(loanID, days)
}

func (s *Session) PayLoanFine(loanID string, amount decimal.Decimal) error {
	if err := s.guard(OpPayFine); err != nil {
		return err
	}
	return s.lib.PayLoanFine(loanID, amount)
}

// ------------------ Reservation helpers ------------------

func (s *Session) Reserve(memberID, isbn string) (*Reservation, error) {
	if err := s.guard(OpReserve); err != nil {
		return nil, err
	}
	return s.lib.Reserve(memberID, isbn)
}

func (s *Session) Cancel(reservationID string) error {
	if err := s.guard(OpCancelReservation); err != nil {
		return err
	}
	return s.lib.Cancel(reservationID)
}

func (s *Session) Process(reservationID string) (*Loan, error) {
	if err := s.guard(OpProcess); err != nil {
		return nil, err
	}
	return s.lib.Process(reservationID)
}

// ------------------ Librarian helpers ------------------

func (s *Session) AddLibrarian(lib Librarian, password string) (*Librarian, error) {
	if err := s.guard(OpManageLibrarians); err != nil {
		return nil, err
	}
	return s.lib.AddLibrarian(lib, password)
}

func (s *Session) SetPermission(staffID string, p Permission) error {
	if err := s.guard(OpManageLibrarians); err != nil {
		return err
	}
	if p < PermissionBasic || p > PermissionAdmin {
		return newError(CodeInvalidArgument, "unknown permission %d", int(p))
	}
	lib, err := s.lib.Librarian(staffID)
	if err != nil {
		return err
	}
	if lib.Permission == PermissionAdmin && p != PermissionAdmin && s.lib.adminCount() == 1 {
		return newError(CodeInvalidOperation, "librarian %s is the last ADMIN", staffID)
	}
	lib.Permission = p
	s.lib.logger.Info("permission changed", slog.String("staff_id", staffID), slog.String("permission", p.String()))
	return nil
}

// SetPassword changes a password. Librarians may change their own; changing
// someone else's requires ADMIN.
func (s *Session) SetPassword(staffID, password string) error {
	if staffID != s.actor.StaffID {
		if err := s.guard(OpManageLibrarians); err != nil {
			return err
		}
	}
	return s.lib.setPassword(staffID, password)
}

// RemoveLibrarian deletes a staff account. A session cannot remove its own account.
func (s *Session) RemoveLibrarian(staffID string) error {
	if err := s.guard(OpManageLibrarians); err != nil {
		return err
	}
	if staffID == s.actor.StaffID {
		return newError(CodeInvalidOperation, "librarian %s cannot remove their own account", staffID)
	}
	if _, err := s.lib.Librarian(staffID); err != nil {
		return err
	}
	delete(s.lib.librarians, staffID)
	s.lib.librarianOrder = removeString(s.lib.librarianOrder, staffID)
	s.lib.logger.Info("librarian removed", slog.String("staff_id", staffID))
	return nil
}
