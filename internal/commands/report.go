package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/serenify-journal/internal/analytics"
	"github.com/AnshRaj112/serenify-journal/internal/models"
)

func addReport(topLevel *cobra.Command, e *env) {
	var user, month, tz string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's mood analytics for one month.",
		Long: `Report prints the mood frequency table, emotional balance, weekly
breakdown and insights for a month.

Examples:
  serenify report --user <uuid>
  serenify report --user <uuid> --month 2024-01 --tz Europe/Berlin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			cmd.SilenceUsage = true
			loc := e.cfg.Location()
			if tz != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					return err
				}
				loc = l
			}
			if month == "" {
				month = time.Now().In(loc).Format("2006-01")
			}

			ctx := cmd.Context()
			st, err := openStores(ctx, e.cfg, e.log, need{})
			if err != nil {
				return err
			}
			defer st.close(e.log)

			entries, err := st.entryService(e.log).ListMonth(ctx, user, month, loc)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), analytics.Analyze(entries, analytics.Options{Month: month, Location: loc}))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "id of the user to report on")
	cmd.Flags().StringVar(&month, "month", "", "month to report on (yyyy-MM, default current)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone for dates (default DEFAULT_TIMEZONE)")
	topLevel.AddCommand(cmd)
}

var heading = color.New(color.Bold, color.Underline).SprintFunc()

func renderReport(w io.Writer, r analytics.Report) {
	title := r.Label
	if title == "" {
		title = r.Month
	}
	_, _ = fmt.Fprintf(w, "%s · %d %s\n", heading(title), r.TotalEntries, plural(r.TotalEntries, "entry", "entries"))
	if r.TotalEntries == 0 {
		_, _ = fmt.Fprintln(w, "  No entries this month.")
		return
	}

	moods := uitable.New()
	moods.Separator = "  "
	moods.AddRow(color.New(color.Bold).Sprint("Mood"), color.New(color.Bold).Sprint("Entries"), color.New(color.Bold).Sprint("Share"))
	for _, m := range r.MoodCounts {
		moods.AddRow(m.Label, m.Count, strconv.Itoa(m.Percent)+"%")
	}
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n", heading("Moods"), moods)

	b := r.Balance
	balance := uitable.New()
	balance.Separator = "  "
	balance.AddRow(color.GreenString("Positive"), b.Positive, strconv.Itoa(b.PositivePercent)+"%")
	balance.AddRow(color.RedString("Challenging"), b.Challenging, strconv.Itoa(b.ChallengingPercent)+"%")
	balance.AddRow(color.YellowString("Neutral"), b.Neutral, strconv.Itoa(b.NeutralPercent)+"%")
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n", heading("Emotional Balance"), balance)

	if len(r.Weeks) > 0 {
		weeks := uitable.New()
		weeks.Separator = "  "
		for _, wk := range r.Weeks {
			dominant := "-"
			if wk.DominantMood != "" {
				dominant = models.MoodLabel(wk.DominantMood)
			}
			weeks.AddRow(wk.Label, wk.Total, dominant)
		}
		_, _ = fmt.Fprintf(w, "\n%s\n%s\n", heading("Weeks"), weeks)
	}

	if len(r.Insights) > 0 {
		_, _ = fmt.Fprintf(w, "\n%s\n", heading("Insights"))
		for _, s := range r.Insights {
			_, _ = fmt.Fprintf(w, "  • %s\n", s)
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
