package library

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier selects a row of the borrowing policy table.
type Tier string

const (
	TierRegular Tier = "REGULAR"
	TierPremium Tier = "PREMIUM"
	TierStudent Tier = "STUDENT"
)

// Policy fixes how many books a member may hold and for how long.
type Policy struct {
	MaxBooks    int
	MaxLoanDays int
}

var policies = map[Tier]Policy{
	TierRegular: {MaxBooks: 5, MaxLoanDays: 14},
	TierPremium: {MaxBooks: 10, MaxLoanDays: 30},
	TierStudent: {MaxBooks: 8, MaxLoanDays: 21},
}

// Profile is the variant part of a Member: RegularProfile or StudentProfile.
type Profile interface {
	tier() Tier
}

// RegularProfile describes a member from the general public.
type RegularProfile struct {
	Occupation string `json:"occupation"`
	Employer   string `json:"employer"`
	Premium    bool   `json:"premium"`
}

func (p RegularProfile) tier() Tier {
	if p.Premium {
		return TierPremium
	}
	return TierRegular
}

// StudentProfile describes a member enrolled at an academic institution.
type StudentProfile struct {
	StudentID   string `json:"student_id"`
	Faculty     string `json:"faculty"`
	Department  string `json:"department"`
	YearOfStudy int    `json:"year_of_study"`
}

func (StudentProfile) tier() Tier { return TierStudent }

// TierOf returns the policy tier of a member. Members without a profile are
// treated as regular.
func TierOf(m *Member) Tier {
	switch p := m.Profile.(type) {
	case RegularProfile:
		return p.tier()
	case StudentProfile:
		return p.tier()
	case nil:
		return TierRegular
	default:
		return p.tier()
	}
}

// PolicyOf returns the borrowing limits for a member.
func PolicyOf(m *Member) Policy { return policies[TierOf(m)] }

// MaxBooks is the number of concurrent loans a member may hold.
func MaxBooks(m *Member) int { return PolicyOf(m).MaxBooks }

// MaxLoanDays is the loan period granted to a member.
func MaxLoanDays(m *Member) int { return PolicyOf(m).MaxLoanDays }

// AddMember registers a member. An empty ID is generated; registration and
// expiry default to now and one year from now; status defaults to ACTIVE.
// The active flag always follows the status.
func (l *Library) AddMember(m Member) (*Member, error) {
	m.ID = strings.TrimSpace(m.ID)
	if err := l.check("member", m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = newID("M", func(id string) bool { _, ok := l.members[id]; return ok })
	} else if _, ok := l.members[m.ID]; ok {
		return nil, withMetadata(CodeDuplicateIdentifier, "member "+m.ID+" already exists", map[string]string{"member_id": m.ID})
	}

	if m.RegisteredAt.IsZero() {
		m.RegisteredAt = l.now()
	}
	if m.ExpiresAt.IsZero() {
		m.ExpiresAt = m.RegisteredAt.AddDate(1, 0, 0)
	}
	if m.Status == "" {
		m.Status = MemberActive
	}
	m.Active = m.Status == MemberActive
	if m.Profile == nil {
		m.Profile = RegularProfile{}
	}
	m.FinesPaid = decimal.Zero

	member := m
	l.members[member.ID] = &member
	l.memberOrder = append(l.memberOrder, member.ID)
	return &member, nil
}

// Member looks up a member by id.
func (l *Library) Member(id string) (*Member, error) {
	m, ok := l.members[id]
	if !ok {
		return nil, notFound("member", id)
	}
	return m, nil
}

// Members returns all members in registration order.
func (l *Library) Members() []*Member {
	out := make([]*Member, 0, len(l.memberOrder))
	for _, id := range l.memberOrder {
		out = append(out, l.members[id])
	}
	return out
}

// CurrentLoanCount counts the member's loans that are not yet returned.
func (l *Library) CurrentLoanCount(memberID string) int {
	n := 0
	for _, loan := range l.loans {
		if loan.MemberID == memberID && loan.Status != LoanReturned {
			n++
		}
	}
	return n
}

// Renew extends membership by months counted from the current expiry date.
func (l *Library) Renew(memberID string, months int) error {
	if months <= 0 {
		return withMetadata(CodeInvalidArgument, "months must be positive", map[string]string{"months": strconv.Itoa(months)})
	}
	m, err := l.Member(memberID)
	if err != nil {
		return err
	}
	m.ExpiresAt = m.ExpiresAt.AddDate(0, months, 0)
	l.logger.Info("membership renewed", slog.String("member_id", memberID), slog.Time("expires_at", m.ExpiresAt))
	return nil
}

// SetStatus moves a member to the given status. Only ACTIVE keeps the member
// active; INACTIVE and BLACKLISTED both clear the active flag.
func (l *Library) SetStatus(memberID string, status MemberStatus) error {
	switch status {
	case MemberActive, MemberInactive, MemberBlacklisted:
	default:
		return newError(CodeInvalidArgument, "unknown member status %q", status)
	}
	m, err := l.Member(memberID)
	if err != nil {
		return err
	}
	m.Status = status
	m.Active = status == MemberActive
	l.logger.Info("member status changed", slog.String("member_id", memberID), slog.String("status", string(status)))
	return nil
}

// SetActive toggles a member between ACTIVE and INACTIVE. Blacklisted members
// can only be reinstated through SetStatus.
func (l *Library) SetActive(memberID string, active bool) error {
	m, err := l.Member(memberID)
	if err != nil {
		return err
	}
	if m.Status == MemberBlacklisted {
		return newError(CodeInvalidOperation, "member %s is blacklisted", memberID)
	}
	if active {
		return l.SetStatus(memberID, MemberActive)
	}
	return l.SetStatus(memberID, MemberInactive)
}

// PayMemberFine adds a payment to the member's cumulative total. Payments are
// not capped by any outstanding amount.
func (l *Library) PayMemberFine(memberID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return newError(CodeInvalidArgument, "payment must be positive, got %s", amount.StringFixed(2))
	}
	m, err := l.Member(memberID)
	if err != nil {
		return err
	}
	m.FinesPaid = m.FinesPaid.Add(amount)
	l.logger.Info("fine paid", slog.String("member_id", memberID), slog.String("amount", amount.StringFixed(2)))
	return nil
}
