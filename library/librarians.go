package library

import (
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AddLibrarian registers a staff account with a bcrypt-hashed password.
// It is ungated so the bootstrap administrator can be created; sessions go
// through Session.AddLibrarian.
func (l *Library) AddLibrarian(lib Librarian, password string) (*Librarian, error) {
	lib.StaffID = strings.TrimSpace(lib.StaffID)
	if lib.Permission == 0 {
		lib.Permission = PermissionBasic
	}
	if err := l.check("librarian", lib); err != nil {
		return nil, err
	}
	if _, ok := l.librarians[lib.StaffID]; ok {
		return nil, withMetadata(CodeDuplicateIdentifier, "librarian "+lib.StaffID+" already exists", map[string]string{"staff_id": lib.StaffID})
	}
	hash, err := l.hashPassword(password)
	if err != nil {
		return nil, err
	}
	if lib.JoinedAt.IsZero() {
		lib.JoinedAt = l.now()
	}
	lib.PasswordHash = hash

	stored := lib
	l.librarians[stored.StaffID] = &stored
	l.librarianOrder = append(l.librarianOrder, stored.StaffID)
	l.logger.Info("librarian added", slog.String("staff_id", stored.StaffID), slog.String("permission", stored.Permission.String()))
	return &stored, nil
}

// Librarian looks up a staff account.
func (l *Library) Librarian(staffID string) (*Librarian, error) {
	lib, ok := l.librarians[staffID]
	if !ok {
		return nil, notFound("librarian", staffID)
	}
	return lib, nil
}

// Librarians returns all staff accounts in the order they were added.
func (l *Library) Librarians() []*Librarian {
	out := make([]*Librarian, 0, len(l.librarianOrder))
	for _, id := range l.librarianOrder {
		out = append(out, l.librarians[id])
	}
	return out
}

// Authenticate verifies a staff password and opens a session for that librarian.
// Unknown ids and wrong passwords fail the same way.
func (l *Library) Authenticate(staffID, password string) (*Session, error) {
	lib, ok := l.librarians[strings.TrimSpace(staffID)]
	if !ok {
		l.logger.Warn("login failed", slog.String("staff_id", staffID))
		return nil, newError(CodeAuthentication, "invalid staff id or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(lib.PasswordHash), []byte(password)); err != nil {
		l.logger.Warn("login failed", slog.String("staff_id", staffID))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, newError(CodeAuthentication, "invalid staff id or password")
		}
		return nil, wrap(CodeAuthentication, "verify password", err)
	}
	l.logger.Info("login", slog.String("staff_id", lib.StaffID))
	return &Session{lib: l, actor: lib}, nil
}

func (l *Library) adminCount() int {
	n := 0
	for _, lib := range l.librarians {
		if lib.Permission == PermissionAdmin {
			n++
		}
	}
	return n
}

func (l *Library) setPassword(staffID, password string) error {
	lib, err := l.Librarian(staffID)
	if err != nil {
		return err
	}
	hash, err := l.hashPassword(password)
	if err != nil {
		return err
	}
	lib.PasswordHash = hash
	return nil
}

func (l *Library) hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", newError(CodeInvalidArgument, "password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.passwordCost)
	if err != nil {
		return "", wrap(CodeInvalidArgument, "hash password", err)
	}
	return string(hash), nil
}
