package library

import (
	"log/slog"
	"sort"
)

// Reserve queues a member's interest in a title. Availability is not checked
// here; callers offer reservations only when no copy is free. A member holds
// at most one open reservation per title, pending or awaiting pickup.
func (l *Library) Reserve(memberID, isbn string) (*Reservation, error) {
	m, err := l.Member(memberID)
	if err != nil {
		return nil, err
	}
	if _, err := l.Book(isbn); err != nil {
		return nil, err
	}
	if !m.Eligible() {
		return nil, withMetadata(CodeMemberNotEligible, "member "+m.ID+" is not eligible to reserve",
			map[string]string{"member_id": m.ID, "status": string(m.Status)})
	}
	for _, r := range l.reservations {
		if r.MemberID == memberID && r.ISBN == isbn && (r.Status == ReservationPending || r.AwaitingPickup()) {
			return nil, newError(CodeInvalidOperation, "member %s already has reservation %s for %s", memberID, r.ID, isbn)
		}
	}

	l.seq++
	r := &Reservation{
		ID:         newID("R", func(id string) bool { _, ok := l.reservations[id]; return ok }),
		MemberID:   memberID,
		ISBN:       isbn,
		ReservedAt: l.now(),
		Status:     ReservationPending,
		seq:        l.seq,
	}
	l.reservations[r.ID] = r
	l.reservationOrder = append(l.reservationOrder, r.ID)
	l.logger.Info("reservation placed", slog.String("reservation_id", r.ID), slog.String("member_id", memberID), slog.String("isbn", isbn))
	return r, nil
}

// Cancel withdraws a pending reservation.
func (l *Library) Cancel(reservationID string) error {
	r, err := l.Reservation(reservationID)
	if err != nil {
		return err
	}
	if r.Status != ReservationPending {
		return withMetadata(CodeInvalidOperation, "reservation "+r.ID+" is "+string(r.Status),
			map[string]string{"reservation_id": r.ID, "status": string(r.Status)})
	}
	r.Status = ReservationCancelled
	l.logger.Info("reservation cancelled", slog.String("reservation_id", r.ID))
	return nil
}

// Process issues a copy of the reserved title to the reserving member. It
// accepts pending reservations and reservations a return flagged as fulfilled
// that have no loan yet. Available copies are tried in catalog order and the
// first successful issue fulfils the reservation. When every attempt fails
// the reservation is left as it was.
func (l *Library) Process(reservationID string) (*Loan, error) {
	r, err := l.Reservation(reservationID)
	if err != nil {
		return nil, err
	}
	if r.Status != ReservationPending && !r.AwaitingPickup() {
		return nil, withMetadata(CodeInvalidOperation, "reservation "+r.ID+" cannot be processed in state "+string(r.Status),
			map[string]string{"reservation_id": r.ID, "status": string(r.Status)})
	}

	var lastErr error
	for c := range l.AvailableCopies(r.ISBN) {
		loan, err := l.Issue(r.MemberID, c.Barcode)
		if err != nil {
			lastErr = err
			continue
		}
		r.Status = ReservationFulfilled
		r.LoanID = loan.ID
		l.logger.Info("reservation processed", slog.String("reservation_id", r.ID), slog.String("loan_id", loan.ID))
		return loan, nil
	}

	e := withMetadata(CodeNoAvailableCopy, "no copy of "+r.ISBN+" could be issued for reservation "+r.ID,
		map[string]string{"reservation_id": r.ID, "isbn": r.ISBN})
	e.Cause = lastErr
	return nil, e
}

// Reservation looks up a reservation by id.
func (l *Library) Reservation(id string) (*Reservation, error) {
	r, ok := l.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return r, nil
}

// Reservations returns every reservation in the order it was placed.
func (l *Library) Reservations() []*Reservation {
	out := make([]*Reservation, 0, len(l.reservationOrder))
	for _, id := range l.reservationOrder {
		out = append(out, l.reservations[id])
	}
	return out
}

// PendingReservations returns the queue for a title, earliest first.
func (l *Library) PendingReservations(isbn string) []*Reservation {
	var out []*Reservation
	for _, id := range l.reservationOrder {
		if r := l.reservations[id]; r.ISBN == isbn && r.Status == ReservationPending {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReservedAt.Equal(out[j].ReservedAt) {
			return out[i].ReservedAt.Before(out[j].ReservedAt)
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// ReservationsOf returns a member's reservations in the order they were placed.
func (l *Library) ReservationsOf(memberID string) []*Reservation {
	var out []*Reservation
	for _, id := range l.reservationOrder {
		if r := l.reservations[id]; r.MemberID == memberID {
			out = append(out, r)
		}
	}
	return out
}

// ReservationsAwaitingPickup returns the reservations on a title that a return
// flagged as fulfilled but that have no loan yet, in the order they were placed.
func (l *Library) ReservationsAwaitingPickup(isbn string) []*Reservation {
	var out []*Reservation
	for _, id := range l.reservationOrder {
		if r := l.reservations[id]; r.ISBN == isbn && r.AwaitingPickup() {
			out = append(out, r)
		}
	}
	return out
}

func (l *Library) nextPending(isbn string) *Reservation {
	if queue := l.PendingReservations(isbn); len(queue) > 0 {
		return queue[0]
	}
	return nil
}
