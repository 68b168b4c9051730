package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/message"

	"lendify/config"
	"lendify/library"
	"lendify/seed"
)

const dateLayout = "02-01-2006"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		demo    bool
	)
	cmd := &cobra.Command{
		Use:          "lendify",
		Short:        "Library desk for loans, reservations and fines",
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
			admin, err := seed.Admin(lib, cfg)
			if err != nil {
				return err
			}
			if demo {
				s, err := library.NewSession(lib, admin.StaffID)
				if err != nil {
					return err
				}
				if _, err := seed.Demo(s); err != nil {
					return err
				}
			}

			in := cmd.InOrStdin()
			d := &desk{
				lib: lib,
				in:  in,
				sc:  bufio.NewScanner(in),
				out: cmd.OutOrStdout(),
				p:   cfg.Printer(),
			}
			return d.run()
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed the demonstration catalog, members and assistant librarian")
	return cmd
}

// desk is one interactive terminal session.
type desk struct {
	lib     *library.Library
	session *library.Session
	in      io.Reader
	sc      *bufio.Scanner
	out     io.Writer
	p       *message.Printer
}

func (d *desk) printf(format string, args ...any) { fmt.Fprintf(d.out, format, args...) }

func (d *desk) println(args ...any) { fmt.Fprintln(d.out, args...) }

func (d *desk) money(v decimal.Decimal) string {
	return d.p.Sprintf("%.2f", v.InexactFloat64())
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (d *desk) prompt(label string) (string, bool) {
	d.printf("%s", label)
	if !d.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(d.sc.Text()), true
}

func (d *desk) promptInt(label string) (int, bool) {
	s, ok := d.prompt(label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d.printf("Invalid number: %s\n", s)
		return 0, false
	}
	return n, true
}

func (d *desk) promptAmount(label string) (decimal.Decimal, bool) {
	s, ok := d.prompt(label)
	if !ok {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		d.printf("Invalid amount: %s\n", s)
		return decimal.Zero, false
	}
	return v, true
}

// readPassword reads a password with masking when attached to a terminal,
// falling back to a plain line otherwise.
func (d *desk) readPassword(label string) (string, bool) {
	f, ok := d.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return d.prompt(label)
	}
	fd := int(f.Fd())
	d.printf("%s", label)
	b, err := term.ReadPassword(fd)
	d.println()
	if err != nil {
		d.printf("Error reading password: %v\n", err)
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func (d *desk) fail(action string, err error) {
	var pe *library.PermissionError
	if errors.As(err, &pe) {
		d.printf("Permission denied: %s requires %s (you have %s)\n", pe.Operation, pe.Required, pe.Actual)
		return
	}
	d.printf("Error %s: %v\n", action, err)
}

func (d *desk) login() bool {
	for {
		id, ok := d.prompt("Staff ID: ")
		if !ok {
			return false
		}
		pw, ok := d.readPassword("Password: ")
		if !ok {
			return false
		}
		s, err := d.lib.Authenticate(id, pw)
		if err != nil {
			d.printf("Login failed: %v\n", err)
			continue
		}
		d.session = s
		lib := s.Librarian()
		d.printf("Welcome, %s (%s, %s permission)\n", lib.Name, lib.Position, lib.Permission)
		return true
	}
}

func (d *desk) run() error {
	d.printf("Welcome to %s, %s\n", d.lib.Name, d.lib.Address)
	if !d.login() {
		return nil
	}
	d.printHelp()

	for {
		cmd, ok := d.prompt("\n> ")
		if !ok {
			return nil
		}

		switch cmd {
		case "add book":
			d.handleAddBook()
		case "add copy":
			d.handleAddCopy()
		case "list books":
			d.handleListBooks()
		case "show book":
			d.handleShowBook()
		case "search book":
			d.handleSearchBooks()
		case "update book":
			d.handleUpdateBook()
		case "reference only":
			d.handleReferenceOnly()
		case "remove book":
			d.handleRemoveBook()
		case "remove copy":
			d.handleRemoveCopy()
		case "add category":
			d.handleAddCategory()
		case "tag book":
			d.handleTagBook()
		case "untag book":
			d.handleUntagBook()
		case "list categories":
			d.handleListCategories()
		case "remove category":
			d.handleRemoveCategory()
		case "add member":
			d.handleAddMember()
		case "list members":
			d.handleListMembers()
		case "member loans":
			d.handleMemberLoans()
		case "renew member":
			d.handleRenewMember()
		case "toggle member":
			d.handleToggleMember()
		case "blacklist member":
			d.handleBlacklistMember()
		case "issue":
			d.handleIssue()
		case "return":
			d.handleReturn()
		case "extend":
			d.handleExtend()
		case "pay fine":
			d.handlePayFine()
		case "pay member fine":
			d.handlePayMemberFine()
		case "list loans":
			d.handleListLoans(false)
		case "overdue":
			d.handleListLoans(true)
		case "reserve":
			d.handleReserve()
		case "list reservations":
			d.handleListReservations()
		case "cancel reservation":
			d.handleCancelReservation()
		case "process reservation":
			d.handleProcessReservation()
		case "add librarian":
			d.handleAddLibrarian()
		case "list librarians":
			d.handleListLibrarians()
		case "set permission":
			d.handleSetPermission()
		case "remove librarian":
			d.handleRemoveLibrarian()
		case "change password":
			d.handleChangePassword()
		case "stats":
			d.handleStats()
		case "help":
			d.printHelp()
		case "logout":
			d.session = nil
			d.println("Logged out.")
			if !d.login() {
				return nil
			}
		case "exit":
			d.println("Goodbye!")
			return nil
		case "":
		default:
			d.println("Unknown command. Type 'help' to see the available commands.")
		}
	}
}

func (d *desk) printHelp() {
	d.println("Available commands:")
	d.println("  Books: add book, add copy, list books, show book, search book, update book, reference only, remove book, remove copy")
	d.println("  Categories: add category, tag book, untag book, list categories, remove category")
	d.println("  Members: add member, list members, member loans, renew member, toggle member, blacklist member")
	d.println("  Circulation: issue, return, extend, pay fine, pay member fine, list loans, overdue")
	d.println("  Reservations: reserve, list reservations, cancel reservation, process reservation")
	d.println("  Librarians: add librarian, list librarians, set permission, remove librarian, change password")
	d.println("  System: stats, help, logout, exit")
}

// ------------------ Books ------------------

func (d *desk) handleAddBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	title, ok := d.prompt("Title: ")
	if !ok {
		return
	}
	author, ok := d.prompt("Author: ")
	if !ok {
		return
	}
	publisher, ok := d.prompt("Publisher: ")
	if !ok {
		return
	}
	year, ok := d.promptInt("Year: ")
	if !ok {
		return
	}
	format, ok := d.prompt("Format (HARDCOVER/PAPERBACK/EBOOK/AUDIOBOOK, optional): ")
	if !ok {
		return
	}

	b, err := d.session.AddBook(library.Book{
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Publisher: publisher,
		Year:      year,
		Format:    library.Format(strings.ToUpper(format)),
	})
	if err != nil {
		d.fail("adding book", err)
		return
	}
	d.printf("Added book '%s' (%s). Use 'add copy' to register copies.\n", b.Title, b.ISBN)
}

func (d *desk) handleAddCopy() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	barcode, ok := d.prompt("Barcode: ")
	if !ok {
		return
	}
	location, ok := d.prompt("Location (optional): ")
	if !ok {
		return
	}
	ref, ok := d.prompt("Reference only? (y/N): ")
	if !ok {
		return
	}

	opts := []library.CopyOption{library.AtLocation(location)}
	if strings.EqualFold(ref, "y") {
		opts = append(opts, library.AsReferenceOnly())
	}
	c, err := d.session.AddCopy(isbn, barcode, opts...)
	if err != nil {
		d.fail("adding copy", err)
		return
	}
	d.printf("Added copy %s of %s\n", c.Barcode, c.ISBN)
}

func (d *desk) handleListBooks() {
	books := d.lib.Books()
	if len(books) == 0 {
		d.println("No books in library.")
		return
	}
	d.printBooks(books)
}

func (d *desk) printBooks(books []*library.Book) {
	d.printf("%-16s %-30s %-22s %-7s %-9s %s\n", "ISBN", "Title", "Author", "Copies", "Available", "Reservations")
	d.println(strings.Repeat("-", 100))
	for _, b := range books {
		d.printf("%-16s %-30s %-22s %-7d %-9d %d\n",
			b.ISBN,
			truncateString(b.Title, 30),
			truncateString(b.Author, 22),
			len(b.Copies),
			d.lib.AvailableCount(b.ISBN),
			len(d.lib.PendingReservations(b.ISBN)))
	}
}

func (d *desk) handleShowBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	b, err := d.lib.Book(isbn)
	if err != nil {
		d.fail("showing book", err)
		return
	}
	d.printf("%s by %s (%s, %d)\n", b.Title, b.Author, b.Publisher, b.Year)
	d.printf("Format: %s | Language: %s | Pages: %d\n", b.Format, b.Language, b.Pages)
	d.printf("Categories: %s\n", strings.Join(b.Categories, ", "))

	copies, _ := d.lib.Copies(isbn)
	d.printf("%-10s %-10s %-10s %s\n", "Barcode", "Status", "Reference", "Location")
	for _, c := range copies {
		d.printf("%-10s %-10s %-10t %s\n", c.Barcode, c.Status, c.ReferenceOnly, c.Location)
	}
}

func (d *desk) handleSearchBooks() {
	by, ok := d.prompt("Search by (title/author/category): ")
	if !ok {
		return
	}
	query, ok := d.prompt("Query: ")
	if !ok {
		return
	}

	var books []*library.Book
	switch strings.ToLower(by) {
	case "title":
		books = d.lib.SearchByTitle(query)
	case "author":
		books = d.lib.SearchByAuthor(query)
	case "category":
		books = d.lib.SearchByCategory(query)
	default:
		books = d.lib.Search(query)
	}

	if len(books) == 0 {
		d.printf("No books found matching '%s'.\n", query)
		return
	}
	d.printf("Found %d book(s) matching '%s':\n", len(books), query)
	d.printBooks(books)
}

func (d *desk) handleUpdateBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	b, err := d.lib.Book(isbn)
	if err != nil {
		d.fail("updating book", err)
		return
	}
	title, ok := d.prompt(fmt.Sprintf("Title [%s]: ", b.Title))
	if !ok {
		return
	}
	author, ok := d.prompt(fmt.Sprintf("Author [%s]: ", b.Author))
	if !ok {
		return
	}
	publisher, ok := d.prompt(fmt.Sprintf("Publisher [%s]: ", b.Publisher))
	if !ok {
		return
	}
	yearStr, ok := d.prompt(fmt.Sprintf("Year [%d]: ", b.Year))
	if !ok {
		return
	}

	year := b.Year
	if yearStr != "" {
		if year, err = strconv.Atoi(yearStr); err != nil {
			d.printf("Invalid year: %s\n", yearStr)
			return
		}
	}
	if err := d.session.UpdateBookInfo(isbn, orDefault(title, b.Title), orDefault(author, b.Author), orDefault(publisher, b.Publisher), year); err != nil {
		d.fail("updating book", err)
		return
	}
	d.println("Book updated.")
}

func (d *desk) handleReferenceOnly() {
	barcode, ok := d.prompt("Barcode: ")
	if !ok {
		return
	}
	flag, ok := d.prompt("Reference only? (y/n): ")
	if !ok {
		return
	}
	if err := d.session.SetReferenceOnly(barcode, strings.EqualFold(flag, "y")); err != nil {
		d.fail("updating copy", err)
		return
	}
	d.printf("Copy %s updated.\n", barcode)
}

func (d *desk) handleRemoveBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	if err := d.session.RemoveBook(isbn); err != nil {
		d.fail("removing book", err)
		return
	}
	d.printf("Book %s removed.\n", isbn)
}

func (d *desk) handleRemoveCopy() {
	barcode, ok := d.prompt("Barcode: ")
	if !ok {
		return
	}
	if err := d.session.RemoveCopy(barcode); err != nil {
		d.fail("removing copy", err)
		return
	}
	d.printf("Copy %s removed.\n", barcode)
}

// ------------------ Categories ------------------

func (d *desk) handleAddCategory() {
	name, ok := d.prompt("Name: ")
	if !ok {
		return
	}
	about, ok := d.prompt("Description: ")
	if !ok {
		return
	}
	if _, err := d.session.AddCategory(name, about); err != nil {
		d.fail("adding category", err)
		return
	}
	d.printf("Category '%s' added.\n", name)
}

func (d *desk) handleTagBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	name, ok := d.prompt("Category: ")
	if !ok {
		return
	}
	if err := d.session.TagBook(isbn, name); err != nil {
		d.fail("tagging book", err)
		return
	}
	d.printf("Book %s tagged with '%s'.\n", isbn, name)
}

func (d *desk) handleUntagBook() {
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	name, ok := d.prompt("Category: ")
	if !ok {
		return
	}
	if err := d.session.UntagBook(isbn, name); err != nil {
		d.fail("untagging book", err)
		return
	}
	d.printf("Book %s removed from '%s'.\n", isbn, name)
}

func (d *desk) handleListCategories() {
	cats := d.lib.Categories()
	if len(cats) == 0 {
		d.println("No categories.")
		return
	}
	d.printf("%-20s %-7s %s\n", "Name", "Books", "Description")
	d.println(strings.Repeat("-", 70))
	for _, c := range cats {
		d.printf("%-20s %-7d %s\n", truncateString(c.Name, 20), len(d.lib.SearchByCategory(c.Name)), c.Description)
	}
}

func (d *desk) handleRemoveCategory() {
	name, ok := d.prompt("Category: ")
	if !ok {
		return
	}
	if err := d.session.RemoveCategory(name); err != nil {
		d.fail("removing category", err)
		return
	}
	d.printf("Category '%s' removed.\n", name)
}

// ------------------ Members ------------------

func (d *desk) handleAddMember() {
	name, ok := d.prompt("Name: ")
	if !ok {
		return
	}
	email, ok := d.prompt("Email (optional): ")
	if !ok {
		return
	}
	phone, ok := d.prompt("Phone (optional): ")
	if !ok {
		return
	}
	kind, ok := d.prompt("Type (regular/premium/student): ")
	if !ok {
		return
	}

	m := library.Member{Name: name, Email: email, Phone: phone}
	switch strings.ToLower(kind) {
	case "student":
		studentID, ok := d.prompt("Student ID: ")
		if !ok {
			return
		}
		faculty, ok := d.prompt("Faculty: ")
		if !ok {
			return
		}
		m.Profile = library.StudentProfile{StudentID: studentID, Faculty: faculty}
	case "premium", "regular", "":
		occupation, ok := d.prompt("Occupation: ")
		if !ok {
			return
		}
		m.Profile = library.RegularProfile{Occupation: occupation, Premium: strings.EqualFold(kind, "premium")}
	default:
		d.printf("Unknown member type: %s\n", kind)
		return
	}

	added, err := d.session.AddMember(m)
	if err != nil {
		d.fail("adding member", err)
		return
	}
	policy := library.PolicyOf(added)
	d.printf("Added member '%s' with ID %s (%d books, %d days)\n", added.Name, added.ID, policy.MaxBooks, policy.MaxLoanDays)
}

func (d *desk) handleListMembers() {
	members := d.lib.Members()
	if len(members) == 0 {
		d.println("No members registered.")
		return
	}
	d.printf("%-10s %-25s %-8s %-12s %-12s %-6s %s\n", "ID", "Name", "Tier", "Status", "Expires", "Loans", "Details")
	d.println(strings.Repeat("-", 110))
	for _, m := range members {
		d.printf("%-10s %-25s %-8s %-12s %-12s %-6s %s\n",
			m.ID,
			truncateString(m.Name, 25),
			library.TierOf(m),
			m.Status,
			m.ExpiresAt.Format(dateLayout),
			fmt.Sprintf("%d/%d", d.lib.CurrentLoanCount(m.ID), library.MaxBooks(m)),
			describeProfile(m.Profile))
	}
}

func describeProfile(p library.Profile) string {
	switch p := p.(type) {
	case library.RegularProfile:
		if p.Employer != "" {
			return fmt.Sprintf("%s at %s", p.Occupation, p.Employer)
		}
		return p.Occupation
	case library.StudentProfile:
		return fmt.Sprintf("student %s, %s", p.StudentID, p.Faculty)
	default:
		return ""
	}
}

func (d *desk) handleMemberLoans() {
	id, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	m, err := d.lib.Member(id)
	if err != nil {
		d.fail("finding member", err)
		return
	}
	d.printf("%s: %d active loan(s), fines paid %s\n", m.Name, d.lib.CurrentLoanCount(m.ID), d.money(m.FinesPaid))
	d.printLoans(d.lib.LoansOf(m.ID))
}

func (d *desk) handleRenewMember() {
	id, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	months, ok := d.promptInt("Months: ")
	if !ok {
		return
	}
	if err := d.session.Renew(id, months); err != nil {
		d.fail("renewing membership", err)
		return
	}
	m, _ := d.lib.Member(id)
	d.printf("Membership of %s now expires %s\n", m.Name, m.ExpiresAt.Format(dateLayout))
}

func (d *desk) handleToggleMember() {
	id, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	m, err := d.lib.Member(id)
	if err != nil {
		d.fail("finding member", err)
		return
	}
	if err := d.session.SetActive(id, !m.Active); err != nil {
		d.fail("updating member", err)
		return
	}
	d.printf("Member %s is now %s\n", m.Name, m.Status)
}

func (d *desk) handleBlacklistMember() {
	id, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	if err := d.session.Blacklist(id); err != nil {
		d.fail("blacklisting member", err)
		return
	}
	d.printf("Member %s blacklisted.\n", id)
}

// ------------------ Circulation ------------------

func (d *desk) handleIssue() {
	memberID, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	barcode, ok := d.prompt("Copy barcode: ")
	if !ok {
		return
	}
	if r := pickupConflict(d.lib, memberID, barcode); r != nil {
		d.printf("Reservation %s by %s is awaiting pickup for this title; issuing here leaves it without a copy.\n", r.ID, r.MemberID)
		confirm, ok := d.prompt("Issue anyway? (y/N): ")
		if !ok || !strings.EqualFold(confirm, "y") {
			d.println("Issue cancelled.")
			return
		}
	}
	loan, err := d.session.Issue(memberID, barcode)
	if err != nil {
		d.fail("issuing book", err)
		return
	}
	d.printf("Loan %s issued. Due %s\n", loan.ID, loan.DueAt.Format(dateLayout))
}

func (d *desk) handleReturn() {
	loanID, ok := d.prompt("Loan ID: ")
	if !ok {
		return
	}
	loan, flagged, err := d.session.Return(loanID)
	if err != nil {
		d.fail("returning book", err)
		return
	}
	d.printf("Copy %s returned on %s\n", loan.Barcode, loan.ReturnedAt.Format(dateLayout))
	if loan.Fine.IsPositive() {
		d.printf("Late fine: %s\n", d.money(loan.Fine))
		pay, ok := d.prompt("Pay now? (y/N): ")
		if ok && strings.EqualFold(pay, "y") {
			if err := d.session.PayLoanFine(loan.ID, loan.Fine); err != nil {
				d.fail("paying fine", err)
			} else {
				d.println("Fine paid.")
			}
		}
	}
	if flagged != nil {
		m, _ := d.lib.Member(flagged.MemberID)
		name := flagged.MemberID
		if m != nil {
			name = m.Name
		}
		d.printf("Reservation %s for %s is ready; use 'process reservation' to issue a copy.\n", flagged.ID, name)
	}
}

func (d *desk) handleExtend() {
	loanID, ok := d.prompt("Loan ID: ")
	if !ok {
		return
	}
	days, ok := d.promptInt("Days: ")
	if !ok {
		return
	}
	extended, err := d.session.Extend(loanID, days)
	if err != nil {
		d.fail("extending loan", err)
		return
	}
	if !extended {
		d.println("Loan cannot be extended: it is overdue or the book has pending reservations.")
		return
	}
	loan, _ := d.lib.Loan(loanID)
	d.printf("New due date: %s\n", loan.DueAt.Format(dateLayout))
}

func (d *desk) handlePayFine() {
	loanID, ok := d.prompt("Loan ID: ")
	if !ok {
		return
	}
	loan, err := d.lib.Loan(loanID)
	if err != nil {
		d.fail("finding loan", err)
		return
	}
	d.printf("Outstanding: %s\n", d.money(d.lib.OutstandingFine(loan)))
	amount, ok := d.promptAmount("Amount: ")
	if !ok {
		return
	}
	if err := d.session.PayLoanFine(loanID, amount); err != nil {
		d.fail("paying fine", err)
		return
	}
	d.printf("Paid %s on loan %s\n", d.money(amount), loanID)
}

// handlePayMemberFine records a payment that is not tied to one loan.
func (d *desk) handlePayMemberFine() {
	memberID, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	amount, ok := d.promptAmount("Amount: ")
	if !ok {
		return
	}
	if err := d.session.PayMemberFine(memberID, amount); err != nil {
		d.fail("paying fine", err)
		return
	}
	m, _ := d.lib.Member(memberID)
	d.printf("%s has now paid %s in fines\n", m.Name, d.money(m.FinesPaid))
}

func (d *desk) handleListLoans(overdueOnly bool) {
	loans := d.lib.ActiveLoans()
	if overdueOnly {
		loans = d.lib.OverdueLoans()
	}
	if len(loans) == 0 {
		d.println("No loans.")
		return
	}
	d.printLoans(loans)
}

func (d *desk) printLoans(loans []*library.Loan) {
	now := d.lib.Now()
	d.printf("%-10s %-10s %-9s %-12s %-12s %-9s %s\n", "Loan", "Member", "Copy", "Issued", "Due", "Status", "Fine")
	d.println(strings.Repeat("-", 80))
	for _, ln := range loans {
		fine := ln.Fine
		if ln.Status != library.LoanReturned {
			fine = ln.FineAt(now)
		}
		d.printf("%-10s %-10s %-9s %-12s %-12s %-9s %s\n",
			ln.ID, ln.MemberID, ln.Barcode,
			ln.IssuedAt.Format(dateLayout), ln.DueAt.Format(dateLayout),
			ln.StatusAt(now), d.money(fine))
	}
}

// ------------------ Reservations ------------------

func (d *desk) handleReserve() {
	memberID, ok := d.prompt("Member ID: ")
	if !ok {
		return
	}
	isbn, ok := d.prompt("ISBN: ")
	if !ok {
		return
	}
	if n := d.lib.AvailableCount(isbn); n > 0 {
		d.printf("%d copy(ies) available; issue one instead of reserving.\n", n)
		return
	}
	r, err := d.session.Reserve(memberID, isbn)
	if err != nil {
		d.fail("reserving book", err)
		return
	}
	for i, q := range d.lib.PendingReservations(isbn) {
		if q.ID == r.ID {
			d.printf("Reservation %s placed. Position in queue: %d\n", r.ID, i+1)
			return
		}
	}
}

func (d *desk) handleListReservations() {
	isbn, ok := d.prompt("ISBN (or press Enter for all): ")
	if !ok {
		return
	}
	rs := d.lib.Reservations()
	if isbn != "" {
		rs = d.lib.PendingReservations(isbn)
	}
	if len(rs) == 0 {
		d.println("No reservations.")
		return
	}
	d.printf("%-10s %-10s %-16s %-12s %s\n", "ID", "Member", "ISBN", "Reserved", "Status")
	d.println(strings.Repeat("-", 65))
	for _, r := range rs {
		status := string(r.Status)
		if r.AwaitingPickup() {
			status += " (awaiting pickup)"
		}
		d.printf("%-10s %-10s %-16s %-12s %s\n", r.ID, r.MemberID, r.ISBN, r.ReservedAt.Format(dateLayout), status)
	}
}

func (d *desk) handleCancelReservation() {
	id, ok := d.prompt("Reservation ID: ")
	if !ok {
		return
	}
	if err := d.session.Cancel(id); err != nil {
		d.fail("cancelling reservation", err)
		return
	}
	d.printf("Reservation %s cancelled.\n", id)
}

func (d *desk) handleProcessReservation() {
	id, ok := d.prompt("Reservation ID: ")
	if !ok {
		return
	}
	loan, err := d.session.Process(id)
	if err != nil {
		d.fail("processing reservation", err)
		return
	}
	d.printf("Copy %s issued as loan %s, due %s\n", loan.Barcode, loan.ID, loan.DueAt.Format(dateLayout))
}

// ------------------ Librarians ------------------

func (d *desk) handleAddLibrarian() {
	staffID, ok := d.prompt("Staff ID: ")
	if !ok {
		return
	}
	name, ok := d.prompt("Name: ")
	if !ok {
		return
	}
	position, ok := d.prompt("Position: ")
	if !ok {
		return
	}
	level, ok := d.prompt("Permission (BASIC/FULL/ADMIN): ")
	if !ok {
		return
	}
	perm, err := library.ParsePermission(level)
	if err != nil {
		d.fail("adding librarian", err)
		return
	}
	pw, ok := d.readPassword(fmt.Sprintf("Password for %s: ", name))
	if !ok {
		return
	}
	if _, err := d.session.AddLibrarian(library.Librarian{StaffID: staffID, Name: name, Position: position, Permission: perm}, pw); err != nil {
		d.fail("adding librarian", err)
		return
	}
	d.printf("Librarian %s added with %s permission.\n", staffID, perm)
}

func (d *desk) handleListLibrarians() {
	d.printf("%-8s %-25s %-22s %s\n", "Staff", "Name", "Position", "Permission")
	d.println(strings.Repeat("-", 70))
	for _, l := range d.lib.Librarians() {
		d.printf("%-8s %-25s %-22s %s\n", l.StaffID, truncateString(l.Name, 25), truncateString(l.Position, 22), l.Permission)
	}
}

func (d *desk) handleSetPermission() {
	staffID, ok := d.prompt("Staff ID: ")
	if !ok {
		return
	}
	level, ok := d.prompt("Permission (BASIC/FULL/ADMIN): ")
	if !ok {
		return
	}
	perm, err := library.ParsePermission(level)
	if err != nil {
		d.fail("setting permission", err)
		return
	}
	if err := d.session.SetPermission(staffID, perm); err != nil {
		d.fail("setting permission", err)
		return
	}
	d.printf("Librarian %s now has %s permission.\n", staffID, perm)
}

func (d *desk) handleRemoveLibrarian() {
	staffID, ok := d.prompt("Staff ID: ")
	if !ok {
		return
	}
	if err := d.session.RemoveLibrarian(staffID); err != nil {
		d.fail("removing librarian", err)
		return
	}
	d.printf("Librarian %s removed.\n", staffID)
}

func (d *desk) handleChangePassword() {
	staffID, ok := d.prompt(fmt.Sprintf("Staff ID [%s]: ", d.session.Librarian().StaffID))
	if !ok {
		return
	}
	staffID = orDefault(staffID, d.session.Librarian().StaffID)
	pw, ok := d.readPassword("New password: ")
	if !ok {
		return
	}
	if err := d.session.SetPassword(staffID, pw); err != nil {
		d.fail("changing password", err)
		return
	}
	d.printf("Password changed for %s.\n", staffID)
}

// ------------------ System ------------------

func (d *desk) handleStats() {
	s := d.lib.Stats()
	d.printf("%s, %s\n", d.lib.Name, d.lib.Address)
	d.printf("  Books: %d (%d copies) in %d categories\n", s.Books, s.Copies, s.Categories)
	d.printf("  Members: %d | Librarians: %d\n", s.Members, s.Librarians)
	d.printf("  Active loans: %d (%d overdue)\n", s.ActiveLoans, s.OverdueLoans)
	d.printf("  Pending reservations: %d\n", s.PendingReservations)
	d.printf("  Fines collected: %s\n", d.money(s.FinesCollected))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// pickupConflict returns the earliest reservation awaiting pickup on the
// copy's title that belongs to someone other than memberID.
func pickupConflict(lib *library.Library, memberID, barcode string) *library.Reservation {
	c, err := lib.Copy(barcode)
	if err != nil {
		return nil
	}
	for _, r := range lib.ReservationsAwaitingPickup(c.ISBN) {
		if r.MemberID != memberID {
			return r
		}
	}
	return nil
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
