package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paper-sorts/interaction"
	"paper-sorts/providers/bibtex"
	"paper-sorts/server"
	"paper-sorts/services"
)

func (a *app) runInteractive(cmd *cobra.Command, _ []string) error {
	return interaction.NewSession(a.conn, cmd.InOrStdin(), cmd.OutOrStdout(), a.log).Run(cmd.Context())
}

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Search, add and update entries in a dialog",
		RunE:  a.runInteractive,
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search papers by exact title or author name",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case title != "":
				records, err := a.conn.SearchByTitle(ctx, title)
				if err != nil {
					return err
				}
				for _, rec := range records {
					bib, err := a.conn.BibEntry(ctx, rec.BibtexID)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, services.FormatRecord(rec, bib))
				}
			case author != "":
				hits, err := a.conn.SearchByAuthor(ctx, author)
				if err != nil {
					return err
				}
				for _, h := range hits {
					rec, err := a.conn.PaperByID(ctx, h.PaperID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%d: %s\n", h.PaperID, services.FormatReference(rec))
				}
			default:
				return fmt.Errorf("--title or --author is required")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "exact paper title")
	cmd.Flags().StringVar(&author, "author", "", "exact author name, e.g. \"Lee, Ann\"")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var bibFile, summary, authors, title, key, entry string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a paper from a single-entry .bib file or from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := services.NewPaper{
				BibtexID: key,
				Bibtex:   entry,
				Title:    title,
				Contents: summary,
				Authors:  services.SplitAuthors(authors),
			}
			if bibFile != "" {
				f, err := os.Open(bibFile)
				if err != nil {
					return err
				}
				defer f.Close()
				e, err := bibtex.ParseSingle(f)
				if err != nil {
					return fmt.Errorf("%s: %w", bibFile, err)
				}
				p.BibtexID, p.Bibtex, p.Authors = e.Key, e.Text, e.Authors
				if p.Title == "" {
					p.Title = e.Title
				}
			}
			if p.Bibtex == "" {
				return fmt.Errorf("--bib-file or --entry is required")
			}

			id, err := a.conn.AddPaper(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q as paper %d\n", p.Title, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&bibFile, "bib-file", "", "file containing exactly one BibTeX entry")
	cmd.Flags().StringVar(&summary, "summary", "", "short summary of the paper")
	cmd.Flags().StringVar(&authors, "authors", "", "authors separated by \";\", \" and \" or \",\"")
	cmd.Flags().StringVar(&title, "title", "", "paper title")
	cmd.Flags().StringVar(&key, "key", "", "citation key")
	cmd.Flags().StringVar(&entry, "entry", "", "BibTeX entry text")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var title, authors string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a paper with its bibliography entry and orphaned authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title is required")
			}
			if err := a.conn.DeletePaper(cmd.Context(), title, services.SplitAuthors(authors)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "exact paper title")
	cmd.Flags().StringVar(&authors, "authors", "", "authors to unlink first")
	return cmd
}

func newIngestCmd(a *app) *cobra.Command {
	var literatureFile, bibFile string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a LaTeX literature overview and its .bib file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if literatureFile == "" {
				literatureFile = a.cfg.LiteratureFile
			}
			if bibFile == "" {
				bibFile = a.cfg.BibFile
			}
			if literatureFile == "" || bibFile == "" {
				return fmt.Errorf("--literature-file and --bib-file are required")
			}
			report, err := services.NewLoader(a.conn, a.log).LoadFiles(cmd.Context(), literatureFile, bibFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d\n", report.Added, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&literatureFile, "literature-file", "l", "", "LaTeX literature overview (default LITERATURE_FILE)")
	cmd.Flags().StringVarP(&bibFile, "bib-file", "b", "", "BibTeX file (default BIB_FILE)")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run scheduled ingestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler, err := a.scheduleIngest()
			if err != nil {
				return err
			}
			if scheduler != nil {
				scheduler.Start()
				defer scheduler.Stop()
			}

			router := server.NewRouter(a.cfg, a.conn, a.registry, a.log)
			srv := &http.Server{
				Addr:              ":" + a.cfg.HTTPPort,
				Handler:           router,
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 15 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("Starting server", zap.String("port", a.cfg.HTTPPort))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.log.Info("Server wird beendet")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

// scheduleIngest registriert die periodische Übernahme der Literaturdateien, falls konfiguriert.
func (a *app) scheduleIngest() (*cron.Cron, error) {
	if a.cfg.IngestSchedule == "" || a.cfg.LiteratureFile == "" || a.cfg.BibFile == "" {
		return nil, nil
	}
	loader := services.NewLoader(a.conn, a.log)
	scheduler := cron.New()
	_, err := scheduler.AddFunc(a.cfg.IngestSchedule, func() {
		a.log.Info("Running scheduled ingest job...")
		report, err := loader.LoadFiles(context.Background(), a.cfg.LiteratureFile, a.cfg.BibFile)
		if err != nil {
			a.log.Error("Cron job failed", zap.Error(err))
			return
		}
		a.log.Info("Cron job completed", zap.Int("added", report.Added), zap.Int("skipped", report.Skipped))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_SCHEDULE %q: %w", a.cfg.IngestSchedule, err)
	}
	return scheduler, nil
}
