// Package seed provides the startup identity and the demonstration dataset.
// The library core never seeds itself.
package seed

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lendify/config"
	"lendify/library"
)

// Admin registers the bootstrap administrator described by cfg.
func Admin(lib *library.Library, cfg config.Config) (*library.Librarian, error) {
	admin, err := lib.AddLibrarian(library.Librarian{
		StaffID:    cfg.AdminID,
		Name:       cfg.AdminName,
		Position:   "Head Librarian",
		Permission: library.PermissionAdmin,
	}, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return admin, nil
}

// Dataset names the records Demo created, for scripted walkthroughs.
type Dataset struct {
	Assistant *library.Librarian

	Fiction, NonFiction, Science *library.Category

	Adventure, History, Programming *library.Book

	AdventureCopy   *library.Copy // B1001
	HistoryRefCopy  *library.Copy // B2003, reference only
	ProgrammingCopy *library.Copy // B3001

	Regular *library.Member // premium regular member
	Student *library.Member
}

// AssistantPassword is the password of the FULL-permission assistant created by Demo.
const AssistantPassword = "assistant123"

// Demo fills the library with a small catalog, an assistant librarian and two
// members. s must be an ADMIN session.
func Demo(s *library.Session) (*Dataset, error) {
	var (
		d   Dataset
		err error
	)

	if d.Assistant, err = s.AddLibrarian(library.Librarian{
		StaffID:    "L002",
		Name:       "Sari Wijaya",
		Email:      "sari.wijaya@library.example",
		Phone:      "555-5678",
		Position:   "Assistant Librarian",
		Salary:     decimal.NewFromInt(35000),
		Permission: library.PermissionFull,
	}, AssistantPassword); err != nil {
		return nil, fmt.Errorf("seed assistant: %w", err)
	}

	categories := []struct {
		dst         **library.Category
		name, about string
	}{
		{&d.Fiction, "Fiction", "Novels, short stories and other fiction"},
		{&d.NonFiction, "Non-Fiction", "Factual works, biographies and educational material"},
		{&d.Science, "Science", "Books on the scientific disciplines"},
	}
	for _, c := range categories {
		if *c.dst, err = s.AddCategory(c.name, c.about); err != nil {
			return nil, fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	books := []struct {
		dst  **library.Book
		book library.Book
	}{
		{&d.Adventure, library.Book{
			ISBN: "978-1234567897", Title: "The Great Adventure", Author: "Alice Writer", Publisher: "Books Inc.",
			Year: 2022, Description: "A gripping adventure story", Pages: 320,
			Format: library.FormatPaperback, Language: library.LanguageEnglish, Categories: []string{"Fiction"},
		}},
		{&d.History, library.Book{
			ISBN: "978-9876543210", Title: "A History of Science", Author: "Bob Historian", Publisher: "Academic Press",
			Year: 2021, Description: "A comprehensive history of scientific discovery", Pages: 450,
			Format: library.FormatHardcover, Language: library.LanguageEnglish, Categories: []string{"Non-Fiction", "Science"},
		}},
		{&d.Programming, library.Book{
			ISBN: "978-5678901234", Title: "Programming Fundamentals", Author: "Charlie Coder", Publisher: "Tech Books",
			Year: 2023, Description: "An introduction to programming concepts", Pages: 280,
			Format: library.FormatPaperback, Language: library.LanguageEnglish, Categories: []string{"Non-Fiction", "Science"},
		}},
	}
	for _, b := range books {
		if *b.dst, err = s.AddBook(b.book); err != nil {
			return nil, fmt.Errorf("seed book %s: %w", b.book.ISBN, err)
		}
	}

	price := decimal.RequireFromString("24.50")
	copies := []struct {
		isbn, barcode string
		dst           **library.Copy
		opts          []library.CopyOption
	}{
		{d.Adventure.ISBN, "B1001", &d.AdventureCopy, nil},
		{d.Adventure.ISBN, "B1002", nil, nil},
		{d.History.ISBN, "B2001", nil, nil},
		{d.History.ISBN, "B2002", nil, nil},
		{d.History.ISBN, "B2003", &d.HistoryRefCopy, []library.CopyOption{library.AsReferenceOnly(), library.AtLocation("Reference Desk")}},
		{d.Programming.ISBN, "B3001", &d.ProgrammingCopy, nil},
	}
	for _, c := range copies {
		opts := append([]library.CopyOption{library.WithPrice(price), library.AtLocation("Main Stacks")}, c.opts...)
		cp, err := s.AddCopy(c.isbn, c.barcode, opts...)
		if err != nil {
			return nil, fmt.Errorf("seed copy %s: %w", c.barcode, err)
		}
		if c.dst != nil {
			*c.dst = cp
		}
	}

	if d.Regular, err = s.AddMember(library.Member{
		Name:    "Dimas Wicaksono",
		Address: "101 Elm Street",
		Phone:   "555-9012",
		Email:   "dimas.wicaksono@mail.example",
		Profile: library.RegularProfile{Occupation: "Engineer", Employer: "Tech Company", Premium: true},
	}); err != nil {
		return nil, fmt.Errorf("seed regular member: %w", err)
	}
	if d.Student, err = s.AddMember(library.Member{
		Name:    "Eni Permata",
		Address: "202 Cedar Street",
		Phone:   "555-3456",
		Email:   "eni.permata@university.example",
		Profile: library.StudentProfile{StudentID: "S12345", Faculty: "Engineering", Department: "Computer Science", YearOfStudy: 3},
	}); err != nil {
		return nil, fmt.Errorf("seed student member: %w", err)
	}

	return &d, nil
}
