// Command contactbook is the terminal client for the contact book server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/satheeshds/contactbook/client"
	"github.com/satheeshds/contactbook/config"
	"github.com/satheeshds/contactbook/form"
	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/tui"
	"github.com/satheeshds/contactbook/validation"
)

var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Server   string        `help:"Contact book server URL." default:"http://localhost:5000" env:"CONTACTBOOK_SERVER"`
	Timeout  time.Duration `help:"Request timeout, 0 for none." default:"0s"`
	User     string        `help:"Basic auth user." env:"CONTACTBOOK_USER"`
	Password string        `help:"Basic auth password." env:"CONTACTBOOK_PASSWORD"`
	LogLevel string        `help:"Log level for diagnostics on stderr." default:"warn" enum:"debug,info,warn,error"`
}

// CLI is the top-level command structure for contactbook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	TUI     TUICmd           `cmd:"" name:"tui" default:"1" help:"Open the interactive contact book."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	List    ListCmd          `cmd:"" help:"List contacts."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	Health  HealthCmd        `cmd:"" help:"Check that the server is up."`
}

func (g *Globals) client() *client.Client {
	return client.New(client.Config{
		BaseURL:  g.Server,
		Timeout:  g.Timeout,
		Username: g.User,
		Password: g.Password,
	})
}

// TUICmd opens the Bubble Tea front end.
type TUICmd struct{}

// Run launches the TUI.
func (c *TUICmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("tui: requires a terminal (TTY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := form.New(g.client())
	p := tea.NewProgram(tui.NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// AddCmd creates a contact.
type AddCmd struct {
	Name  string `help:"Contact name." required:""`
	Email string `help:"Contact email." required:""`
	Phone string `help:"Ten digit phone number." required:""`
}

// Run submits the contact through the form controller so local validation
// applies before any request is made.
func (c *AddCmd) Run(g *Globals) error {
	return c.run(context.Background(), form.New(g.client()), os.Stdout)
}

func (c *AddCmd) run(ctx context.Context, ctrl *form.Controller, w io.Writer) error {
	ctrl.SetField(validation.FieldName, c.Name)
	ctrl.SetField(validation.FieldEmail, c.Email)
	ctrl.SetField(validation.FieldPhone, c.Phone)

	err := ctrl.Submit(ctx)
	state := ctrl.Snapshot()
	switch {
	case errors.Is(err, form.ErrInvalid):
		return &fieldErrors{errs: state.Errors}
	case err != nil:
		return &requestError{op: "add", msg: state.Status.Message, err: err}
	}

	added := state.Contacts[0]
	_, _ = fmt.Fprintf(w, "%s (id %d)\n", state.Status.Message, added.ID)
	return nil
}

// requestError carries the status message the controller chose for a failed
// request, which is what the user should see.
type requestError struct {
	op  string
	msg string
	err error
}

func (e *requestError) Error() string { return e.op + ": " + e.msg }

func (e *requestError) Unwrap() error { return e.err }

// fieldErrors reports local validation failures, one line per field.
type fieldErrors struct {
	errs map[string]string
}

func (e *fieldErrors) Error() string {
	fields := make([]string, 0, len(e.errs))
	for f := range e.errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, f+": "+e.errs[f])
	}
	return "add: " + strings.Join(lines, "; ")
}

// ListCmd prints one page of contacts.
type ListCmd struct {
	Page   int    `help:"Page number." default:"1"`
	Limit  int    `help:"Contacts per page." default:"10"`
	Format string `help:"Output format." default:"table" enum:"table,json,yaml"`
}

func (c *ListCmd) Run(g *Globals) error {
	return c.run(context.Background(), g.client(), os.Stdout)
}

type lister interface {
	ListContacts(ctx context.Context, page, limit int) (*models.ContactPage, error)
}

func (c *ListCmd) run(ctx context.Context, api lister, w io.Writer) error {
	page, err := api.ListContacts(ctx, c.Page, c.Limit)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	switch c.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toYAML(page)); err != nil {
			return fmt.Errorf("list: %w", err)
		}
		return enc.Close()
	default:
		return writeTable(w, page)
	}
}

type yamlContact struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	CreatedAt string `yaml:"created_at,omitempty"`
}

type yamlPage struct {
	Contacts   []yamlContact     `yaml:"contacts"`
	Pagination models.Pagination `yaml:"pagination"`
}

func toYAML(p *models.ContactPage) yamlPage {
	out := yamlPage{Contacts: make([]yamlContact, 0, len(p.Contacts)), Pagination: p.Pagination}
	for _, c := range p.Contacts {
		yc := yamlContact{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
		if !c.CreatedAt.IsZero() {
			yc.CreatedAt = c.CreatedAt.Format(time.RFC3339)
		}
		out.Contacts = append(out.Contacts, yc)
	}
	return out
}

func writeTable(w io.Writer, p *models.ContactPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range p.Contacts {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, tui.PageLabel(p.Pagination))
	return err
}

// DeleteCmd removes a contact by id.
type DeleteCmd struct {
	ID  int64 `arg:"" help:"Contact ID."`
	Yes bool  `help:"Do not ask for confirmation." short:"y"`
}

func (c *DeleteCmd) Run(g *Globals) error {
	return c.run(context.Background(), form.New(g.client()), os.Stdin, os.Stdout)
}

func (c *DeleteCmd) run(ctx context.Context, ctrl *form.Controller, in io.Reader, w io.Writer) error {
	var confirm form.Confirmer = form.ConfirmFunc(func(models.Contact) bool { return true })
	if !c.Yes {
		confirm = promptConfirmer(in, w)
	}

	err := ctrl.Delete(ctx, c.ID, confirm)
	switch {
	case errors.Is(err, form.ErrDeclined):
		_, _ = fmt.Fprintln(w, "Cancelled")
		return nil
	case err != nil:
		return &requestError{op: "delete", msg: ctrl.Snapshot().Status.Message, err: err}
	}
	_, _ = fmt.Fprintln(w, ctrl.Snapshot().Status.Message)
	return nil
}

// promptConfirmer asks on w and reads a y/N answer from in.
func promptConfirmer(in io.Reader, w io.Writer) form.Confirmer {
	return form.ConfirmFunc(func(c models.Contact) bool {
		_, _ = fmt.Fprintf(w, "Are you sure you want to delete contact %d? [y/N] ", c.ID)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

// HealthCmd calls the health endpoint.
type HealthCmd struct{}

func (c *HealthCmd) Run(g *Globals) error {
	h, err := g.client().Health(context.Background())
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "%s: %s\n", h.Status, h.Message)
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitRequest = 1
	exitUsage   = 2
)

// exitCode maps rejected input and server errors to exitRequest and
// everything else (unreachable server, bad flags) to exitUsage.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var apiErr *client.APIError
	var fe *fieldErrors
	if errors.As(err, &apiErr) || errors.As(err, &fe) {
		return exitRequest
	}
	return exitUsage
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactbook"),
		kong.Description("Add, list and delete contacts on a contact book server."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	slog.SetDefault(config.NewLogger(os.Stderr, config.LogConfig{Level: cli.LogLevel, Format: "text"}))

	if err := ctx.Run(&cli.Globals); err != nil {
		slog.Debug("command failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
