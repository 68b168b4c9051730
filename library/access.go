package library

import (
	"fmt"
	"strings"
)

// Permission is a librarian's access level. Levels are totally ordered:
// BASIC < FULL < ADMIN.
type Permission int

const (
	PermissionBasic Permission = iota + 1
	PermissionFull
	PermissionAdmin
)

func (p Permission) String() string {
	switch p {
	case PermissionBasic:
		return "BASIC"
	case PermissionFull:
		return "FULL"
	case PermissionAdmin:
		return "ADMIN"
	default:
		return fmt.Sprintf("Permission(%d)", int(p))
	}
}

// ParsePermission reads BASIC, FULL or ADMIN, case-insensitively.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BASIC":
		return PermissionBasic, nil
	case "FULL":
		return PermissionFull, nil
	case "ADMIN":
		return PermissionAdmin, nil
	}
	return 0, newError(CodeInvalidArgument, "unknown permission %q", s)
}

// Operation names a gated librarian action.
type Operation string

const (
	OpAddBook           Operation = "add book"
	OpUpdateBook        Operation = "update book"
	OpRemoveBook        Operation = "remove book"
	OpAddCopy           Operation = "add copy"
	OpRemoveCopy        Operation = "remove copy"
	OpSetReferenceOnly  Operation = "set reference only"
	OpAddCategory       Operation = "add category"
	OpTagBook           Operation = "tag book"
	OpRemoveCategory    Operation = "remove category"
	OpAddMember         Operation = "add member"
	OpRenewMember       Operation = "renew membership"
	OpToggleMember      Operation = "toggle member"
	OpSetMemberStatus   Operation = "set member status"
	OpIssue             Operation = "issue book"
	OpReturn            Operation = "return book"
	OpExtend            Operation = "extend loan"
	OpPayFine           Operation = "pay fine"
	OpReserve           Operation = "reserve book"
	OpCancelReservation Operation = "cancel reservation"
	OpProcess           Operation = "process reservation"
	OpManageLibrarians  Operation = "manage librarians"
	OpBrowse            Operation = "browse"
)

var requiredPermissions = map[Operation]Permission{
	OpBrowse:            PermissionBasic,
	OpExtend:            PermissionBasic,
	OpPayFine:           PermissionBasic,
	OpReserve:           PermissionBasic,
	OpCancelReservation: PermissionBasic,

	OpAddBook:          PermissionFull,
	OpUpdateBook:       PermissionFull,
	OpAddCopy:          PermissionFull,
	OpSetReferenceOnly: PermissionFull,
	OpAddCategory:      PermissionFull,
	OpTagBook:          PermissionFull,
	OpAddMember:        PermissionFull,
	OpRenewMember:      PermissionFull,
	OpToggleMember:     PermissionFull,
	OpIssue:            PermissionFull,
	OpReturn:           PermissionFull,
	OpProcess:          PermissionFull,

	OpRemoveBook:       PermissionAdmin,
	OpRemoveCopy:       PermissionAdmin,
	OpRemoveCategory:   PermissionAdmin,
	OpSetMemberStatus:  PermissionAdmin,
	OpManageLibrarians: PermissionAdmin,
}

// RequiredPermission returns the minimum level for op. Unknown operations
// require ADMIN.
func RequiredPermission(op Operation) Permission {
	if p, ok := requiredPermissions[op]; ok {
		return p
	}
	return PermissionAdmin
}

// Require checks that the librarian may perform op. It has no side effects.
func Require(actor *Librarian, op Operation) error {
	required := RequiredPermission(op)
	if actor == nil {
		return &PermissionError{Operation: op, Required: required}
	}
	if actor.Permission < required {
		return &PermissionError{Operation: op, Required: required, Actual: actor.Permission, StaffID: actor.StaffID}
	}
	return nil
}
