package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lendify/config"
	"lendify/library"
	"lendify/seed"
)

func main() {
	var envFile string
	cmd := &cobra.Command{
		Use:          "seed_demo",
		Short:        "Seed a library and walk through loans, fines, reservations and permissions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			lib := library.New(cfg.LibraryName, cfg.LibraryAddress,
				library.WithLogger(logger),
				library.WithLoanLimit(cfg.EnforceLoanLimit),
			)
			return walkthrough(cmd.OutOrStdout(), lib, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func walkthrough(w io.Writer, lib *library.Library, cfg config.Config) error {
	p := cfg.Printer()
	step := func(format string, args ...any) { fmt.Fprintf(w, "\n== "+format+"\n", args...) }
	say := func(format string, args ...any) { fmt.Fprintf(w, "   "+format+"\n", args...) }

	if _, err := seed.Admin(lib, cfg); err != nil {
		return err
	}
	admin, err := lib.Authenticate(cfg.AdminID, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin login: %w", err)
	}
	data, err := seed.Demo(admin)
	if err != nil {
		return err
	}
	step("Seeded %s with %d books, %d members and %d librarians",
		lib.Name, len(lib.Books()), len(lib.Members()), len(lib.Librarians()))

	desk, err := lib.Authenticate(data.Assistant.StaffID, seed.AssistantPassword)
	if err != nil {
		return fmt.Errorf("assistant login: %w", err)
	}

	step("Overdue loan for %s", data.Regular.Name)
	// IssueAt backdates the loan so it is already five days late.
	issued := lib.Now().Add(-35 * 24 * time.Hour)
	loan, err := lib.IssueAt(data.Regular.ID, data.AdventureCopy.Barcode, issued)
	if err != nil {
		return err
	}
	say("loan %s due %s, overdue=%t, fine so far %s",
		loan.ID, loan.DueAt.Format("02-01-2006"), lib.IsOverdue(loan), p.Sprintf("%.2f", lib.CalculateFine(loan).InexactFloat64()))
	if ok, err := desk.Extend(loan.ID, 7); err != nil {
		return err
	} else if !ok {
		say("extension refused: loan is overdue")
	}
	if loan, _, err = desk.Return(loan.ID); err != nil {
		return err
	}
	say("returned with fine %s", p.Sprintf("%.2f", loan.Fine.InexactFloat64()))
	if err := desk.PayLoanFine(loan.ID, loan.Fine); err != nil {
		return err
	}
	say("fine paid, outstanding %s", p.Sprintf("%.2f", lib.OutstandingFine(loan).InexactFloat64()))

	step("Reference-only copy %s", data.HistoryRefCopy.Barcode)
	if _, err := desk.Issue(data.Regular.ID, data.HistoryRefCopy.Barcode); errors.Is(err, library.ErrReferenceOnly) {
		say("refused: %v", err)
	} else if err != nil {
		return err
	}

	step("Reservation queue for %q", data.History.Title)
	var held []*library.Loan
	for c := range lib.AvailableCopies(data.History.ISBN) {
		ln, err := desk.Issue(data.Regular.ID, c.Barcode)
		if err != nil {
			return err
		}
		held = append(held, ln)
	}
	say("%s holds %d copies, %d left on the shelf", data.Regular.Name, len(held), lib.AvailableCount(data.History.ISBN))
	r, err := desk.Reserve(data.Student.ID, data.History.ISBN)
	if err != nil {
		return err
	}
	say("%s reserved it as %s", data.Student.Name, r.ID)
	if len(held) > 0 {
		_, flagged, err := desk.Return(held[0].ID)
		if err != nil {
			return err
		}
		if flagged != nil {
			say("return of %s flagged reservation %s as %s", held[0].Barcode, flagged.ID, flagged.Status)
		}
	}
	loan, err = desk.Process(r.ID)
	if err != nil {
		return err
	}
	say("processed: %s got copy %s until %s", data.Student.Name, loan.Barcode, loan.DueAt.Format("02-01-2006"))

	step("Permissions")
	if _, err := admin.AddLibrarian(library.Librarian{
		StaffID:  "L003",
		Name:     "Intern",
		Position: "Library Intern",
	}, "intern123"); err != nil {
		return err
	}
	intern, err := lib.Authenticate("L003", "intern123")
	if err != nil {
		return err
	}
	if _, err := intern.AddBook(library.Book{ISBN: "978-0000000001", Title: "Draft", Author: "Nobody"}); err != nil {
		say("BASIC librarian refused: %v", err)
	}

	step("Search")
	for _, b := range lib.SearchByTitle("history") {
		say("title match: %s by %s", b.Title, b.Author)
	}
	for _, b := range lib.SearchByCategory(data.Science.Name) {
		say("in %s: %s", data.Science.Name, b.Title)
	}

	step("Statistics")
	s := lib.Stats()
	say("books %d, copies %d, members %d", s.Books, s.Copies, s.Members)
	say("active loans %d, overdue %d, pending reservations %d", s.ActiveLoans, s.OverdueLoans, s.PendingReservations)
	say("fines collected %s", p.Sprintf("%.2f", s.FinesCollected.InexactFloat64()))
	return nil
}
