package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicCannotRemoveCategory(t *testing.T) {
	l, _ := newTestLibrary(t)
	_, err := l.AddCategory("Science", "")
	require.NoError(t, err)
	basic := addLibrarian(t, l, "B01", PermissionBasic)

	err = basic.RemoveCategory("Science")
	require.ErrorIs(t, err, ErrInsufficientPermission)
	var pe *PermissionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PermissionAdmin, pe.Required)
	assert.Equal(t, PermissionBasic, pe.Actual)
	assert.Equal(t, OpRemoveCategory, pe.Operation)
	assert.Equal(t, CodeInsufficientPermission, CodeOf(err))

	_, err = l.Category("Science")
	require.NoError(t, err)
}

func TestPermissionGates(t *testing.T) {
	l, _ := newTestLibrary(t)
	addBook(t, l, "1", "Title", "B1")
	m := addMember(t, l, "Reader", nil)
	basic := addLibrarian(t, l, "B01", PermissionBasic)
	full := addLibrarian(t, l, "F01", PermissionFull)

	_, err := basic.AddCopy("1", "B2")
	require.ErrorIs(t, err, ErrInsufficientPermission)
	_, err = basic.Issue(m.ID, "B1")
	require.ErrorIs(t, err, ErrInsufficientPermission)
	_, err = basic.AddMember(Member{Name: "New"})
	require.ErrorIs(t, err, ErrInsufficientPermission)
	require.ErrorIs(t, basic.UpdateBookInfo("1", "T", "A", "", 2000), ErrInsufficientPermission)

	require.ErrorIs(t, full.RemoveCopy("B1"), ErrInsufficientPermission)
	require.ErrorIs(t, full.RemoveBook("1"), ErrInsufficientPermission)
	require.ErrorIs(t, full.Blacklist(m.ID), ErrInsufficientPermission)
	_, err = full.AddLibrarian(Librarian{StaffID: "X", Name: "X"}, "pw")
	require.ErrorIs(t, err, ErrInsufficientPermission)

	assert.Len(t, l.Librarians(), 2)
	assert.True(t, m.Eligible())
	c, _ := l.Copy("B1")
	assert.Equal(t, CopyAvailable, c.Status)

	// BASIC can still serve members at the desk
	_, err = basic.Reserve(m.ID, "1")
	require.NoError(t, err)
	assert.True(t, basic.Can(OpBrowse))
	assert.False(t, basic.Can(OpIssue))
}

func TestPermissionMonotonic(t *testing.T) {
	levels := []Permission{PermissionBasic, PermissionFull, PermissionAdmin}
	ops := []Operation{
		OpAddBook, OpUpdateBook, OpRemoveBook, OpAddCopy, OpRemoveCopy, OpSetReferenceOnly,
		OpAddCategory, OpTagBook, OpRemoveCategory, OpAddMember, OpRenewMember, OpToggleMember,
		OpSetMemberStatus, OpIssue, OpReturn, OpExtend, OpPayFine, OpReserve, OpCancelReservation,
		OpProcess, OpManageLibrarians, OpBrowse, Operation("unlisted"),
	}
	for _, op := range ops {
		allowed := false
		for _, p := range levels {
			err := Require(&Librarian{StaffID: "S", Permission: p}, op)
			if allowed {
				assert.NoError(t, err, "%s at %s", op, p)
			}
			if err == nil {
				allowed = true
			}
		}
		assert.True(t, allowed, "%s is not allowed for ADMIN", op)
	}
	assert.Equal(t, PermissionAdmin, RequiredPermission("unlisted"))
	require.Error(t, Require(nil, OpBrowse))
}

func TestSessionFlowForEveryLevelAtOrAboveFull(t *testing.T) {
	for _, p := range []Permission{PermissionFull, PermissionAdmin} {
		t.Run(p.String(), func(t *testing.T) {
			l, _ := newTestLibrary(t)
			s := addLibrarian(t, l, "S01", p)

			_, err := s.AddBook(Book{ISBN: "1", Title: "Title", Author: "Author"})
			require.NoError(t, err)
			_, err = s.AddCopy("1", "B1")
			require.NoError(t, err)
			m, err := s.AddMember(Member{Name: "Reader"})
			require.NoError(t, err)
			loan, err := s.Issue(m.ID, "B1")
			require.NoError(t, err)
			ok, err := s.Extend(loan.ID, 3)
			require.NoError(t, err)
			assert.True(t, ok)
			_, _, err = s.Return(loan.ID)
			require.NoError(t, err)
			require.NoError(t, s.Renew(m.ID, 12))
		})
	}
}

func TestParsePermission(t *testing.T) {
	for in, want := range map[string]Permission{"basic": PermissionBasic, " Full ": PermissionFull, "ADMIN": PermissionAdmin} {
		got, err := ParsePermission(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePermission("root")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "Permission(9)", Permission(9).String())
}

func TestErrorCodes(t *testing.T) {
	err := notFound("book", "42")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))

	cause := errors.New("disk on fire")
	wrapped := wrap(CodeInvalidArgument, "hash password", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "hash password: disk on fire", wrapped.Error())
}

func TestAddMemberWithStatusNeedsAdmin(t *testing.T) {
	l, _ := newTestLibrary(t)
	full := addLibrarian(t, l, "F01", PermissionFull)
	admin := addLibrarian(t, l, "A01", PermissionAdmin)

	_, err := full.AddMember(Member{Name: "Blocked", Status: MemberBlacklisted})
	require.ErrorIs(t, err, ErrInsufficientPermission)
	_, err = full.AddMember(Member{Name: "Away", Status: MemberInactive})
	require.ErrorIs(t, err, ErrInsufficientPermission)
	assert.Empty(t, l.Members())

	_, err = full.AddMember(Member{Name: "Reader", Status: MemberActive})
	require.NoError(t, err)
	m, err := admin.AddMember(Member{Name: "Blocked", Status: MemberBlacklisted})
	require.NoError(t, err)
	assert.Equal(t, MemberBlacklisted, m.Status)
}
