package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/proposal-review/advisor/internal/agent/briefing"
	"github.com/proposal-review/advisor/internal/agent/dataset"
	"github.com/proposal-review/advisor/internal/agent/model"
	"github.com/proposal-review/advisor/internal/agent/session"
)

const helpText = `Commands:
  <text>            ask the assistant
  /open, /close     show or hide the chat surface
  /auto <prompt>    submit a prompt from outside the chat surface
  /budget [value]   show or set the total budget
  /records          list candidate records
  /briefing         print the dataset context sent to the assistant
  /help             show this help
  /quit             exit`

// Console is a line-oriented chat surface over one session.
type Console struct {
	session *session.Session
	dataset *dataset.Dataset
	in      io.Reader
	out     io.Writer
	printed int
}

func New(s *session.Session, ds *dataset.Dataset, in io.Reader, out io.Writer) *Console {
	return &Console{session: s, dataset: ds, in: in, out: out}
}

// Run reads commands until /quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	c.println(helpText)
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		c.printf("> ")
		if !scanner.Scan() {
			c.println("")
			return scanner.Err()
		}
		quit, err := c.handle(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Console) handle(ctx context.Context, line string) (quit bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		if !c.session.Dispatch(line) {
			c.println("(a reply is still pending)")
			return false, nil
		}
		return false, c.flush(ctx)
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		c.println(helpText)
	case "/open":
		c.session.SetOpen(true)
		c.println("(chat open)")
		return false, c.flush(ctx)
	case "/close":
		c.session.SetOpen(false)
		c.println("(chat closed)")
	case "/auto":
		if arg == "" {
			c.println("usage: /auto <prompt>")
			return false, nil
		}
		if !c.session.TriggerExternal(arg) {
			c.println("(prompt held: chat closed, reply pending or already submitted)")
			return false, nil
		}
		return false, c.flush(ctx)
	case "/budget":
		return false, c.budget(arg)
	case "/records":
		c.records()
	case "/briefing":
		c.println(strings.TrimRight(briefing.Serialize(c.dataset.Records()), "\n"))
	default:
		c.printf("unknown command %s (try /help)\n", cmd)
	}
	return false, nil
}

// flush waits for the pending reply and prints every turn not shown yet.
func (c *Console) flush(ctx context.Context) error {
	if err := c.session.Wait(ctx); err != nil {
		return err
	}
	turns := c.session.Transcript()
	for _, t := range turns[min(c.printed, len(turns)):] {
		if t.Role == model.RoleAssistant {
			c.printf("assistant: %s\n", t.Text)
		} else {
			c.printf("you: %s\n", t.Text)
		}
	}
	c.printed = len(turns)
	return nil
}

func (c *Console) budget(arg string) error {
	if arg != "" {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			c.printf("invalid budget %q\n", arg)
			return nil
		}
		c.dataset.SetTotalBudget(v)
	}
	total := c.dataset.TotalBudget()
	shares := dataset.SharesOf(total)
	c.printf("total %s | enterprise %.1f%% %s | government %.1f%% %s\n",
		formatAmount(total),
		dataset.EnterprisePercent, formatAmount(shares.Enterprise),
		dataset.GovernmentPercent, formatAmount(shares.Government))
	return nil
}

func (c *Console) records() {
	for _, r := range c.dataset.Records() {
		doc := "-"
		if r.Assets.Document != nil {
			doc = r.Assets.Document.Name
		}
		c.printf("%-6s %-40s %-5s images=%d document=%s\n", r.ID, r.Name, r.Abbr, len(r.Assets.Images), doc)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
