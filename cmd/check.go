package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/shiftclaim/internal/calendar"
	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/intent"
	"github.com/teemow/shiftclaim/internal/interval"
	"github.com/teemow/shiftclaim/internal/logging"
)

func newCheckCmd() *cobra.Command {
	var (
		timezone     string
		at           string
		withCalendar bool
		calendarID   string
		account      string
		debug        bool
	)

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Show how a single message would be handled",
		Long: `Classify a message and extract its time range without replying or writing
to the calendar. The message is taken from the arguments, or read from stdin
when no arguments are given.

With --with-calendar the extracted range is also checked against your Google
Calendar.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(b)
			}

			cfg := claim.DefaultConfig()
			cfg.Timezone = timezone
			loc, err := cfg.Location()
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			now := time.Now().In(loc)
			if at != "" {
				now, err = time.ParseInLocation(time.RFC3339, at, loc)
				if err != nil {
					return fmt.Errorf("invalid --at %q (expected RFC3339): %w", at, err)
				}
				now = now.In(loc)
			}

			logger := logging.New(cmd.ErrOrStderr(), debug)
			ev := &claim.Evaluator{
				Classifier: intent.Default(),
				Parser:     interval.NewParser(loc, interval.WithLogger(logger)),
				Logger:     logger,
			}
			if withCalendar {
				cal, err := calendar.NewClient(cmd.Context(), google.NewFileTokenProvider(),
					calendar.WithCalendarID(calendarID),
					calendar.WithAccount(account),
				)
				if err != nil {
					return fmt.Errorf("failed to create calendar client: %w", err)
				}
				ev.Schedule = cal
			}

			return runCheck(cmd.Context(), cmd.OutOrStdout(), ev, text, now)
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", claim.DefaultTimezone, "IANA time zone message times are read in")
	cmd.Flags().StringVar(&at, "at", "", "Reference time as RFC3339 (default: now)")
	cmd.Flags().BoolVar(&withCalendar, "with-calendar", false, "Also check the range against Google Calendar")
	cmd.Flags().StringVar(&calendarID, "calendar", calendar.DefaultCalendarID, "Google Calendar ID to check")
	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name to use")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

// runCheck evaluates text and prints one line per stage.
func runCheck(ctx context.Context, out io.Writer, ev *claim.Evaluator, text string, now time.Time) error {
	res := ev.Evaluate(ctx, text, now)

	if !res.Signal.Detected {
		fmt.Fprintln(out, "cancellation: no")
		return nil
	}
	fmt.Fprintf(out, "cancellation: yes (%s %s)\n", res.Signal.Word, res.Signal.Topic)

	if res.Outcome == claim.OutcomeUnparseable {
		fmt.Fprintln(out, "interval: none")
		_, rejected, _ := ev.Parser.Parse(text, now)
		for _, r := range rejected {
			fmt.Fprintf(out, "  rejected %q: %v\n", r.Candidate.Text, r.Err)
		}
		return nil
	}
	fmt.Fprintf(out, "interval: %s\n", res.Interval)

	switch {
	case res.Outcome == claim.OutcomeQueryFailed:
		return fmt.Errorf("schedule query failed: %w", res.Err)
	case ev.Schedule == nil:
		return nil
	case res.Decision.Free():
		fmt.Fprintln(out, "availability: free")
	default:
		fmt.Fprintf(out, "availability: conflict with %q\n", res.Decision.Label())
	}
	return nil
}
