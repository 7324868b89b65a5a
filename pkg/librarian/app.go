package librarian

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/i18n"
	"github.com/shishobooks/circulation/pkg/lending"
	"github.com/shishobooks/circulation/pkg/members"
	"github.com/urfave/cli/v2"
)

type Options struct {
	Books   *books.Service
	Members *members.Service
	Lending *lending.Service
	Trans   *i18n.Translator

	// DefaultLoanDays is used by borrow when --days isn't given.
	DefaultLoanDays int
	Out             io.Writer
	ErrOut          io.Writer
	// Width is the terminal width used to truncate tables. Zero disables
	// truncation.
	Width int
}

// App is the librarian's command line front end to the lending engine.
type App struct {
	opts   Options
	cli    *cli.App
	now    func() time.Time
	asJSON bool
}

func New(opts Options) *App {
	a := &App{opts: opts, now: time.Now}

	a.cli = &cli.App{
		Name:                 "librarian",
		Usage:                opts.Trans.T("library_management_system"),
		Writer:               opts.Out,
		ErrWriter:            opts.ErrOut,
		HideVersion:          true,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "add-book",
				Usage: opts.Trans.T("add_book"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "author", Required: true},
					jsonFlag(),
				},
				Action: a.action(a.addBook),
			},
			{
				Name:  "books",
				Usage: opts.Trans.T("view_books"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: opts.Trans.T("search_by_title")},
					&cli.BoolFlag{Name: "available", Usage: "only list books with a copy on the shelf"},
					jsonFlag(),
				},
				Action: a.action(a.listBooks),
			},
			{
				Name:  "add-member",
				Usage: opts.Trans.T("add_member"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					jsonFlag(),
				},
				Action: a.action(a.addMember),
			},
			{
				Name:   "members",
				Usage:  opts.Trans.T("select_member"),
				Flags:  []cli.Flag{jsonFlag()},
				Action: a.action(a.listMembers),
			},
			{
				Name:  "borrow",
				Usage: opts.Trans.T("borrow_book"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "book", Required: true},
					&cli.StringFlag{Name: "member", Required: true},
					&cli.StringFlag{Name: "days", Usage: opts.Trans.T("borrowing_period")},
					jsonFlag(),
				},
				Action: a.action(a.borrow),
			},
			{
				Name:  "return",
				Usage: opts.Trans.T("return_book"),
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "book", Required: true},
					jsonFlag(),
				},
				Action: a.action(a.giveBack),
			},
			{
				Name:  "loans",
				Usage: "list outstanding loans",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: opts.Trans.T("search_by_title")},
					&cli.StringFlag{Name: "member"},
					jsonFlag(),
				},
				Action: a.action(a.listLoans),
			},
		},
	}

	return a
}

// Run executes the command in args and returns the process exit code. Errors
// are reported on ErrOut in the configured language, or as a JSON error
// payload on Out when --json was given.
func (a *App) Run(ctx context.Context, args []string) int {
	log := logger.FromContext(ctx).Data(logger.Data{"invocation_id": uuid.NewString()})
	ctx = log.WithContext(ctx)

	err := a.cli.RunContext(ctx, args)
	if err == nil {
		return 0
	}

	log.Err(err).Warn("command failed")
	if a.asJSON {
		_, payload := errcodes.Payload(err)
		if werr := writeJSON(a.opts.Out, payload); werr != nil {
			fmt.Fprintln(a.opts.ErrOut, a.opts.Trans.Error(err))
		}
		return 1
	}
	fmt.Fprintln(a.opts.ErrOut, a.opts.Trans.Error(err))
	return 1
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print results as JSON"}
}

func (a *App) action(fn func(c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a.asJSON = c.Bool("json")
		return fn(c)
	}
}

func (a *App) addBook(c *cli.Context) error {
	book, err := a.opts.Books.AddBook(c.Context, c.String("title"), c.String("author"))
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, book)
	}
	return a.println(a.opts.Trans.T("book_added"), fmt.Sprintf("(%s %d)", a.opts.Trans.T("id"), book.ID))
}

func (a *App) listBooks(c *cli.Context) error {
	list, err := a.opts.Books.SearchBooks(c.Context, books.SearchBooksOptions{
		Query:         c.String("search"),
		AvailableOnly: c.Bool("available"),
	})
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, list)
	}
	if len(list) == 0 {
		return a.println(a.opts.Trans.T("no_results"))
	}

	rows := make([][]string, 0, len(list))
	for _, b := range list {
		rows = append(rows, []string{strconv.Itoa(b.ID), b.Title, b.Author, strconv.Itoa(b.Available)})
	}
	return writeTable(a.opts.Out, a.opts.Width, a.headers("id", "title", "author", "available"), rows)
}

func (a *App) addMember(c *cli.Context) error {
	member, err := a.opts.Members.AddMember(c.Context, c.String("name"), c.String("email"))
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, member)
	}
	return a.println(a.opts.Trans.T("member_added"), fmt.Sprintf("(%s %d)", a.opts.Trans.T("id"), member.ID))
}

func (a *App) listMembers(c *cli.Context) error {
	list, err := a.opts.Members.ListMembers(c.Context)
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, list)
	}
	if len(list) == 0 {
		return a.println(a.opts.Trans.T("no_results"))
	}

	rows := make([][]string, 0, len(list))
	for _, m := range list {
		rows = append(rows, []string{strconv.Itoa(m.ID), m.Name})
	}
	return writeTable(a.opts.Out, a.opts.Width, a.headers("id", "name"), rows)
}

func (a *App) borrow(c *cli.Context) error {
	bookID, err := lending.ParseID("book_id", c.String("book"))
	if err != nil {
		return err
	}
	memberID, err := lending.ParseID("member_id", c.String("member"))
	if err != nil {
		return err
	}
	days := a.opts.DefaultLoanDays
	if c.IsSet("days") {
		days, err = lending.ParseDays(c.String("days"))
		if err != nil {
			return err
		}
	}

	result, err := a.opts.Lending.Borrow(c.Context, bookID, memberID, days)
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, result)
	}
	return a.println(a.opts.Trans.T("book_borrowed", a.opts.Trans.Date(result.Borrow.ReturnDate)))
}

func (a *App) giveBack(c *cli.Context) error {
	bookID, err := lending.ParseID("book_id", c.String("book"))
	if err != nil {
		return err
	}

	result, err := a.opts.Lending.Return(c.Context, bookID)
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, result)
	}
	return a.println(a.opts.Trans.T("book_returned", strconv.Itoa(result.Available)))
}

func (a *App) listLoans(c *cli.Context) error {
	opts := lending.ListOutstandingOptions{Query: c.String("search")}
	if c.IsSet("member") {
		memberID, err := lending.ParseID("member_id", c.String("member"))
		if err != nil {
			return err
		}
		opts.MemberID = memberID
	}

	loans, err := a.opts.Lending.ListOutstanding(c.Context, opts)
	if err != nil {
		return err
	}
	if a.asJSON {
		return writeJSON(a.opts.Out, loans)
	}
	if len(loans) == 0 {
		return a.println(a.opts.Trans.T("no_results"))
	}

	now := a.now()
	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		status := ""
		if l.IsOverdue(now) {
			status = a.opts.Trans.T("overdue")
		}
		rows = append(rows, []string{
			strconv.Itoa(l.BookID),
			l.BookTitle,
			l.BookAuthor,
			fmt.Sprintf("%s <%s>", l.MemberName, l.MemberEmail),
			a.opts.Trans.Date(l.ReturnDate),
			status,
		})
	}
	return writeTable(a.opts.Out, a.opts.Width, a.headers("id", "title", "author", "borrowed_by", "return_date", "overdue"), rows)
}

func (a *App) headers(keys ...string) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = a.opts.Trans.T(key)
	}
	return out
}

func (a *App) println(parts ...interface{}) error {
	_, err := fmt.Fprintln(a.opts.Out, parts...)
	return errors.WithStack(err)
}
