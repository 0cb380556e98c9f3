// Package console is an interactive client for the job board API.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"go-jobboard-backend/internal/domain"
)

// API is the server surface the console drives.
type API interface {
	Signup(ctx context.Context, username, email, password string, roles []string) (string, error)
	Signin(ctx context.Context, username, password string) (*domain.SigninResult, error)
	Me(ctx context.Context) (*domain.User, error)
	Jobs(ctx context.Context, page int) (*domain.JobPage, error)
	Job(ctx context.Context, id string) (*domain.Job, error)
	Apply(ctx context.Context, jobID, coverLetter string) (*domain.Application, error)
	MyApplications(ctx context.Context) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, appID, status, notes string) (*domain.Application, error)
	Withdraw(ctx context.Context, appID string) (string, error)
	Stats(ctx context.Context, jobID string) (*domain.ApplicationStats, error)
	SetToken(token string)
}

const helpText = `Commands:
  signup                          create an account
  signin                          sign in (password is not echoed)
  me                              show the signed in user
  jobs [page]                     list open jobs
  job <id>                        show a job
  apply <jobId>                   apply to a job
  my-applications                 list my applications
  status <appId> <STATUS> [notes] move an application (recruiter)
  withdraw <appId>                withdraw an application
  stats <jobId>                   application counts for a job (recruiter)
  logout                          forget the token
  help                            show this text
  quit                            leave`

type App struct {
	api      API
	reader   *bufio.Reader
	out      io.Writer
	username string
}

func NewApp(api API, in io.Reader, out io.Writer) *App {
	return &App{api: api, reader: bufio.NewReader(in), out: out}
}

// Run reads commands until EOF, quit or ctx cancellation. Command errors are
// printed and never end the loop.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Job board console (type 'help' for commands)")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintf(a.out, "jobboard%s> ", a.status())

		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			fmt.Fprintln(a.out, "Bye!")
			return nil
		}
		if err := a.Exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(a.out, "error:", err)
		}
	}
}

func (a *App) status() string {
	if a.username == "" {
		return ""
	}
	return "(" + a.username + ")"
}

// Exec runs a single command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "signup":
		return a.signup(ctx)
	case "signin", "login":
		return a.signin(ctx)
	case "logout":
		a.api.SetToken("")
		a.username = ""
		fmt.Fprintln(a.out, "Signed out")
		return nil
	case "me":
		return a.me(ctx)
	case "jobs":
		page := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("page must be a non-negative number")
			}
			page = n
		}
		return a.jobs(ctx, page)
	case "job":
		if len(args) != 1 {
			return fmt.Errorf("usage: job <id>")
		}
		return a.job(ctx, args[0])
	case "apply":
		if len(args) != 1 {
			return fmt.Errorf("usage: apply <jobId>")
		}
		return a.apply(ctx, args[0])
	case "my-applications":
		return a.myApplications(ctx)
	case "status":
		if len(args) < 2 {
			return fmt.Errorf("usage: status <appId> <STATUS> [notes]")
		}
		return a.updateStatus(ctx, args[0], args[1], strings.Join(args[2:], " "))
	case "withdraw":
		if len(args) != 1 {
			return fmt.Errorf("usage: withdraw <appId>")
		}
		msg, err := a.api.Withdraw(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, msg)
		return nil
	case "stats":
		if len(args) != 1 {
			return fmt.Errorf("usage: stats <jobId>")
		}
		return a.stats(ctx, args[0])
	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

func (a *App) signup(ctx context.Context) error {
	username, err := prompt(a.reader, a.out, "Username")
	if err != nil {
		return err
	}
	email, err := prompt(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out)
	if err != nil {
		return err
	}
	rolesLine, err := prompt(a.reader, a.out, "Roles (comma separated, empty for candidate)")
	if err != nil {
		return err
	}

	var roles []string
	for _, r := range strings.Split(rolesLine, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}

	msg, err := a.api.Signup(ctx, username, email, password, roles)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) signin(ctx context.Context) error {
	username, err := prompt(a.reader, a.out, "Username")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out)
	if err != nil {
		return err
	}

	result, err := a.api.Signin(ctx, username, password)
	if err != nil {
		return err
	}
	a.username = result.Username
	fmt.Fprintf(a.out, "Signed in as %s %v\n", result.Username, result.Roles)
	return nil
}

func (a *App) me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> %v (id %s)\n", user.Username, user.Email, domain.Authorities(user.Roles), user.ID)
	return nil
}

func (a *App) jobs(ctx context.Context, page int) error {
	result, err := a.api.Jobs(ctx, page)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE")
	for _, j := range result.Jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Title, j.Company, j.Location, j.EmploymentType)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d (%d jobs)\n", result.CurrentPage+1, max(result.TotalPages, 1), result.TotalItems)
	return nil
}

func (a *App) job(ctx context.Context, id string) error {
	j, err := a.api.Job(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s at %s (%s, %s)\n", j.Title, j.Company, j.Location, j.EmploymentType)
	if j.SalaryMin != nil || j.SalaryMax != nil {
		fmt.Fprintf(a.out, "Salary: %s - %s\n", money(j.SalaryMin), money(j.SalaryMax))
	}
	fmt.Fprintln(a.out, j.Description)
	for _, r := range j.Requirements {
		fmt.Fprintln(a.out, "  -", r)
	}
	if !j.Active {
		fmt.Fprintln(a.out, "(not accepting applications)")
	}
	return nil
}

func (a *App) apply(ctx context.Context, jobID string) error {
	cover, err := prompt(a.reader, a.out, "Cover letter (one line)")
	if err != nil {
		return err
	}
	app, err := a.api.Apply(ctx, jobID, cover)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Application %s is %s\n", app.ID, app.Status)
	return nil
}

func (a *App) myApplications(ctx context.Context) error {
	apps, err := a.api.MyApplications(ctx)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Fprintln(a.out, "No applications yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tAPPLIED")
	for _, app := range apps {
		title := app.JobID
		if app.JobTitle != nil {
			title = *app.JobTitle
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", app.ID, title, app.Status, app.AppliedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

func (a *App) updateStatus(ctx context.Context, appID, status, notes string) error {
	app, err := a.api.UpdateStatus(ctx, appID, status, notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Application %s is now %s\n", app.ID, app.Status)
	return nil
}

func (a *App) stats(ctx context.Context, jobID string) error {
	s, err := a.api.Stats(ctx, jobID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "total %d: applied %d, reviewing %d, shortlisted %d, accepted %d, rejected %d\n",
		s.Total, s.Applied, s.Reviewing, s.Shortlisted, s.Accepted, s.Rejected)
	return nil
}

func money(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
