package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pdfsummarizer/core"
	"pdfsummarizer/db"
	"pdfsummarizer/ocrprocessor"
	"pdfsummarizer/pdfprocessor"
)

// appLoader builds the app lazily so version and help work without config.
type appLoader func() (*app, error)

func newRootCmd(load appLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "pdfsummarizer",
		Short:         "Summarize folders of PDF documents with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		runCmd(load),
		summarizeCmd(load),
		historyCmd(load),
		settingsCmd(load),
		versionCmd(),
	)
	return root
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVarP(&f.instruction, "instruction", "i", "", "summary instruction (default: last used)")
	cmd.Flags().BoolVar(&f.ocr, "ocr", false, "extract text from images on selected pages")
	cmd.Flags().BoolVar(&f.noOCR, "no-ocr", false, "disable OCR even if enabled in settings")
	cmd.Flags().BoolVar(&f.ocrAll, "ocr-all", false, "OCR every page")
	cmd.Flags().StringVar(&f.ocrPages, "ocr-pages", "", "0-based pages to OCR, e.g. 0,1,5-8")
	cmd.Flags().StringVar(&f.ocrLang, "ocr-lang", "", "OCR language (tesseract code, e.g. eng)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "directory for saved summaries (default: the PDF folder)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "summary file format: txt, md or html")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not write summary files")
}

func runCmd(load appLoader) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run [folder]",
		Short: "Summarize every PDF in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			folder := a.settings.LastFolder
			if len(args) == 1 {
				folder = args[0]
			}
			if folder == "" {
				return core.ErrMissingFolder()
			}

			opts, err := resolveOptions(f, a.settings, a.cfg.OCREngine)
			if err != nil {
				return err
			}

			batch, err := a.runBatch(cmd.Context(), folder, opts)
			if err != nil {
				return err
			}
			a.rememberRun(folder, opts)
			if batch.Canceled {
				return context.Canceled
			}
			return nil
		},
	}
	addRunFlags(cmd, &f)
	return cmd
}

func summarizeCmd(load appLoader) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "summarize <file.pdf>",
		Short: "Summarize one PDF and print the summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			opts, err := resolveOptions(f, a.settings, a.cfg.OCREngine)
			if err != nil {
				return err
			}
			// Only save when asked to.
			opts.OutDir = f.out

			doc, err := a.summarizeOne(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if cmd.Context().Err() != nil {
				return context.Canceled
			}
			if doc.Status == pdfprocessor.StatusFailed {
				return fmt.Errorf("%s", doc.Message())
			}
			return nil
		},
	}
	addRunFlags(cmd, &f)
	return cmd
}

func historyCmd(load appLoader) *cobra.Command {
	var limit, pruneDays int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent summary outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			database, err := db.Open(a.cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer database.Close()
			repo := db.NewRepository(database)

			if cmd.Flags().Changed("prune-days") {
				n, err := repo.Prune(cmd.Context(), pruneDays)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Removed %d record(s) older than %d day(s).\n", n, pruneDays)
			}

			records, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(a, records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "delete records older than this many days first")
	return cmd
}

func printHistory(a *app, records []db.SummaryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No history yet.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFILE\tSTATUS\tDETAIL\tCHUNKS\tDURATION")
	for _, r := range records {
		detail := r.FailureKind
		if r.SkipReason != "" {
			detail = "skipped synthesis: " + r.SkipReason
		}
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, r.Status, detail,
			r.ChunkCount, r.Duration.Round(100*time.Millisecond))
	}
	tw.Flush()
}

func settingsCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(a.settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "# %s\n%s\n", a.cfg.SettingsFile, data)

			key := "not set"
			if a.cfg.HasAPIKey() {
				key = ocrprocessor.MaskAPIKey(a.cfg.DeepSeekAPIKey)
			}
			fmt.Fprintf(a.out, "# environment\nmodel: %s\nbase_url: %s\napi_key: %s\nocr_engine: %s\nhistory_db: %s\n",
				a.cfg.Model, a.cfg.BaseLLMURL, key, a.cfg.OCREngine, a.cfg.HistoryDB)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pdfsummarizer "+core.GetVersionInfo())
		},
	}
}
