package interactive

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledgerimport/journal"
	"github.com/robinvdvleuten/ledgerimport/record"
	"github.com/robinvdvleuten/ledgerimport/rules"
)

const (
	actionClassify = "classify"
	actionSkip     = "skip"

	kindSingle = "single"
	kindRule   = "rule"

	// entryTextWidth bounds the rendered description so the entry card
	// stays on one line each.
	entryTextWidth = 76
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	sourceStyle  = lipgloss.NewStyle().Faint(true)
	accountStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
)

// Run drives the disambiguation loop on a terminal until the pending queue
// empties or the operator aborts. Appended rules live in the session's
// store; persisting the store is the caller's responsibility and must also
// happen on abort.
func Run(session *Session, format journal.Format, out io.Writer) error {
	for !session.Done() {
		entry, _ := session.Current()
		printEntryCard(out, session, entry, format)

		action, err := promptAction(session, entry)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		if action.skip {
			session.Skip()
			continue
		}

		dest, ok := resolveDestination(session, action.destination)
		if !ok {
			fmt.Fprintln(out, "No account matches; prefix with '=' to use the input verbatim.")
			continue
		}

		applied, err := session.Confirm(dest, action.draft)
		if err != nil {
			fmt.Fprintln(out, err.Error())
			continue
		}

		fmt.Fprintln(out, ruleStyle.Render(fmt.Sprintf("Booked against %s (rule #%d)", dest, applied.RuleNum)))
	}
	return nil
}

// operatorAction is the outcome of one prompt round.
type operatorAction struct {
	skip        bool
	destination string
	draft       rules.Rule
}

// promptAction collects the operator's decision for the current entry.
func promptAction(session *Session, entry record.Entry) (operatorAction, error) {
	var (
		action   = actionClassify
		dest     string
		kind     = kindSingle
		pattern  string
		onlyFrom = true
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Entry").
				Options(
					huh.NewOption("Classify", actionClassify),
					huh.NewOption("Skip (stays unassigned)", actionSkip),
				).
				Value(&action),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Destination account").
				Description("Start typing for suggestions, or prefix with '=' for a verbatim account.").
				SuggestionsFunc(func() []string {
					suggestions := session.Suggest(dest)
					out := make([]string, 0, len(suggestions))
					for _, s := range suggestions {
						out = append(out, s.Account)
					}
					return out
				}, &dest).
				Value(&dest),
			huh.NewSelect[string]().
				Title("Scope").
				Options(
					huh.NewOption("Apply to this entry only", kindSingle),
					huh.NewOption("Create rule", kindRule),
				).
				Value(&kind),
		).WithHideFunc(func() bool { return action == actionSkip }),
		huh.NewGroup(
			huh.NewInput().
				Title("Regular expression").
				Description("Matched case-insensitively against the entry text.").
				Validate(func(s string) error {
					_, err := regexp.Compile("(?i)" + s)
					if err != nil {
						return fmt.Errorf("error in rule expression: %w", err)
					}
					return nil
				}).
				Value(&pattern),
			huh.NewConfirm().
				Title(fmt.Sprintf("Only from %s", entry.Account)).
				Value(&onlyFrom),
		).WithHideFunc(func() bool { return action == actionSkip || kind != kindRule }),
	)

	if err := form.Run(); err != nil {
		return operatorAction{}, err
	}

	if action == actionSkip {
		return operatorAction{skip: true}, nil
	}

	draft := rules.Rule{}
	if kind == kindSingle {
		draft.Hash = record.ContentHash(entry)
	} else {
		if pattern != "" {
			draft.Regex = pattern
		}
		if onlyFrom {
			draft.Account = entry.Account
		}
	}
	return operatorAction{destination: dest, draft: draft}, nil
}

// resolveDestination maps the operator's input to a concrete account: a
// verbatim "=" override, an exact known account, or the top suggestion.
func resolveDestination(session *Session, input string) (string, bool) {
	if strings.HasPrefix(input, "=") {
		dest := strings.TrimPrefix(input, "=")
		return dest, dest != ""
	}
	for _, account := range session.Accounts() {
		if account == input {
			return account, true
		}
	}
	suggestions := session.Suggest(input)
	if len(suggestions) == 0 {
		return "", false
	}
	return suggestions[0].Account, true
}

// printEntryCard shows the entry under classification with loop progress.
func printEntryCard(out io.Writer, session *Session, entry record.Entry, format journal.Format) {
	done, total, percent := session.Progress()

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Rules %d/%d (%d%%)", done+1, total, percent)))
	fmt.Fprintln(out, sourceStyle.Render(fmt.Sprintf("From %s:", entry.Source)))
	fmt.Fprintf(out, "%s  %s\n",
		entry.Date.Format("2006-01-02"),
		runewidth.Truncate(journal.Sanitize(entry.Text), entryTextWidth, "…"),
	)
	fmt.Fprintf(out, "  %s  %s\n",
		accountStyle.Render(entry.Account),
		format.Exact(entry.Amount, record.Plain(entry.Currency)),
	)
}
