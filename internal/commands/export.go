package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/pdfexport"
)

type exportOptions struct {
	User  string
	Month string
	Entry string
	Out   string
	Title string
	TZ    string
}

func (o *exportOptions) validate() error {
	switch {
	case o.User == "":
		return errors.New("--user is required")
	case o.Month == "" && o.Entry == "":
		return errors.New("one of --month or --entry is required")
	case o.Month != "" && o.Entry != "":
		return errors.New("--month and --entry are mutually exclusive")
	}
	if o.Month != "" {
		if _, err := time.Parse("2006-01", o.Month); err != nil {
			return fmt.Errorf("--month must look like 2024-01: %q", o.Month)
		}
	}
	return nil
}

// location resolves --tz, falling back to def.
func (o *exportOptions) location(def *time.Location) (*time.Location, error) {
	if o.TZ == "" {
		return def, nil
	}
	return time.LoadLocation(o.TZ)
}

func addExport(topLevel *cobra.Command, e *env) {
	o := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's entries to a PDF file.",
		Long: `Export renders one entry, or every entry of a month, as a PDF.

Examples:
  serenify export --user <uuid> --month 2024-01
  serenify export --user <uuid> --entry 65a1f0c2e4b0a1b2c3d4e5f6 --out ./exports`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			cmd.SilenceUsage = true
			loc, err := o.location(e.cfg.Location())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := openStores(ctx, e.cfg, e.log, need{})
			if err != nil {
				return err
			}
			defer st.close(e.log)
			entries := st.entryService(e.log)
			x := pdfexport.NewExporter(loc)

			var f *pdfexport.File
			if o.Entry != "" {
				entry, err := entries.Get(ctx, o.User, o.Entry)
				if err != nil {
					return fmt.Errorf("load entry %s: %w", o.Entry, err)
				}
				f, err = x.Entry(entry)
				if err != nil {
					return err
				}
			} else {
				list, err := entries.ListMonth(ctx, o.User, o.Month, loc)
				if err != nil {
					return err
				}
				f, err = x.Entries(list, o.Title)
				if err != nil {
					return err
				}
			}

			if err := os.MkdirAll(o.Out, 0o755); err != nil {
				return err
			}
			path := filepath.Join(o.Out, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return err
			}
			e.log.Info("pdf written", zap.String("path", path), zap.Int("bytes", len(f.Data)))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.User, "user", "", "id of the user whose entries are exported")
	cmd.Flags().StringVar(&o.Month, "month", "", "export every entry of this month (yyyy-MM)")
	cmd.Flags().StringVar(&o.Entry, "entry", "", "export a single entry by id")
	cmd.Flags().StringVar(&o.Out, "out", ".", "directory the PDF is written to")
	cmd.Flags().StringVar(&o.Title, "title", "", "collection title (month exports only)")
	cmd.Flags().StringVar(&o.TZ, "tz", "", "IANA timezone for dates (default DEFAULT_TIMEZONE)")
	topLevel.AddCommand(cmd)
}
