package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paper-sorts/config"
	"paper-sorts/services"
	"paper-sorts/storage"
)

// app hält die Abhängigkeiten, die alle Kommandos teilen. Sie werden erst beim Ausführen aufgebaut.
type app struct {
	configFile string
	section    string
	keyFile    string

	cfg      *config.Config
	log      *zap.Logger
	db       *storage.DB
	registry *prometheus.Registry
	conn     *services.Connector
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configFile != "" && a.keyFile != "" {
		return config.LoadEncrypted(a.configFile, a.section, a.keyFile)
	}
	return config.Load()
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg, logging)
	if err != nil {
		_ = logging.Sync()
		return err
	}

	a.cfg, a.log, a.db = cfg, logging, db
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.conn = services.NewConnector(db, logging, services.NewMetrics(a.registry))
	return a.conn.CreateTables(cmd.Context())
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Datenbankverbindung konnte nicht geschlossen werden", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "papersorts",
		Short:             "Personal reference manager for papers, authors and BibTeX entries",
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		RunE:              a.runInteractive,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "encrypted database configuration file")
	root.PersistentFlags().StringVar(&a.section, "section", config.DefaultSection, "section of the config file to use")
	root.PersistentFlags().StringVarP(&a.keyFile, "key", "k", "", "decryption key file")

	root.AddCommand(newInteractiveCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newIngestCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

func execute(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	a := &app{}
	defer a.close()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
