package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/sdo-timeline/internal/config"
	"github.com/pfrederiksen/sdo-timeline/internal/dataset"
	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/filter"
	"github.com/pfrederiksen/sdo-timeline/internal/logger"
	"github.com/pfrederiksen/sdo-timeline/internal/normalize"
	"github.com/pfrederiksen/sdo-timeline/internal/scraper"
	"github.com/pfrederiksen/sdo-timeline/internal/server"
	"github.com/pfrederiksen/sdo-timeline/internal/storage"
	"github.com/pfrederiksen/sdo-timeline/internal/timeline"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// errNewEvents signals a successful --new-only run that found new events
var errNewEvents = errors.New("new events found")

// buildOptions holds the build flags that are not configuration keys
type buildOptions struct {
	newOnly    bool
	noSave     bool
	exportDB   bool
	instrument string
	dateRange  string
	text       []string
	sortOrder  string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "sdo-timeline",
		Short: "Build a merged timeline of SDO observatory operations",
		Long: `A CLI tool that collects the Solar Dynamics Observatory operations logs,
normalizes their timestamps, and merges them into one deduplicated timeline.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file (default ~/.sdo-timeline.yaml or ./.sdo-timeline.yaml)")
	flags.String("data-dir", "~/.local/share/sdo-timeline", "Data directory for the timeline snapshot")
	flags.String("datasets-file", "", "Dataset catalogue YAML (default: built-in catalogue)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", logger.FormatJSON, "Log format: json or console")
	bindFlags(v, flags, map[string]string{
		config.KeyConfig:       "config",
		config.KeyDataDir:      "data-dir",
		config.KeyDatasetsFile: "datasets-file",
		config.KeyLogLevel:     "log-level",
		config.KeyLogFormat:    "log-format",
	})

	cmd.AddCommand(newBuildCmd(v), newDatasetsCmd(v), newCodesCmd(), newServeCmd(v))

	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		// Lookup only fails on a typo in the map above
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// setup resolves configuration and installs the configured logger
func setup(v *viper.Viper) (*config.Config, *logger.Logger, error) {
	config.LoadEnvFiles()

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, fmt.Errorf("configuring logger: %w", err)
	}
	logger.SetDefault(log)

	if cfg.ConfigFile != "" {
		log.Debug("using config file", logger.Fields{"file": cfg.ConfigFile})
	}

	return cfg, log, nil
}

func loadCatalogue(cfg *config.Config) (*dataset.Catalogue, error) {
	if cfg.DatasetsFile == "" {
		return dataset.Default()
	}
	path, err := storage.ExpandHome(cfg.DatasetsFile)
	if err != nil {
		return nil, err
	}
	return dataset.Load(path)
}

func newBuildCmd(v *viper.Viper) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch every dataset and write the merged timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, v, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("datasets", nil, "Datasets to build (default: all)")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("format", "f", "csv", "Output format: csv, tsv, json, table or ics")
	flags.Duration("merge-window", event.MergeWindow, "Merge events starting within this window")
	flags.Duration("http-timeout", scraper.Timeout, "Per-request HTTP timeout")
	flags.Int("retries", scraper.Retries, "Retries for failed HTTP requests")
	flags.String("database-url", "", "Postgres URL for --export-db")
	bindFlags(v, flags, map[string]string{
		config.KeyDatasets:    "datasets",
		config.KeyOutput:      "output",
		config.KeyFormat:      "format",
		config.KeyMergeWindow: "merge-window",
		config.KeyHTTPTimeout: "http-timeout",
		config.KeyRetries:     "retries",
		config.KeyDatabaseURL: "database-url",
	})

	flags.BoolVar(&opts.newOnly, "new-only", false, "Only output events not in the previous snapshot")
	flags.BoolVar(&opts.noSave, "no-save", false, "Do not replace the stored snapshot")
	flags.BoolVar(&opts.exportDB, "export-db", false, "Upsert the timeline into Postgres")
	flags.StringVar(&opts.instrument, "instrument", "", "Only output these instruments (e.g. AIA,HMI)")
	flags.StringVar(&opts.dateRange, "range", "", "Only output events starting in this period (e.g. 2014, 2014-03..2014-05)")
	flags.StringSliceVar(&opts.text, "q", nil, "Only output events whose comment or source contains this text")
	flags.StringVar(&opts.sortOrder, "sort", string(SortByStart), "Sort order: start, instrument or source")

	return cmd
}

// runBuild is the main command logic
func runBuild(cmd *cobra.Command, v *viper.Viper, opts *buildOptions) error {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}

	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	sortOrder, err := ParseSortOrder(opts.sortOrder)
	if err != nil {
		return err
	}
	f, err := buildFilter(opts)
	if err != nil {
		return err
	}
	if opts.exportDB && cfg.DatabaseURL == "" {
		return fmt.Errorf("--export-db requires --database-url or %s_DATABASE_URL", config.EnvPrefix)
	}

	catalogue, err := loadCatalogue(cfg)
	if err != nil {
		return fmt.Errorf("loading datasets: %w", err)
	}
	datasets, err := catalogue.Select(cfg.Datasets)
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := scraper.New(
		scraper.WithTimeout(cfg.HTTPTimeout),
		scraper.WithRetries(cfg.Retries),
		scraper.WithLogger(log),
	)
	builder := timeline.NewBuilder(sc,
		timeline.WithWindow(cfg.MergeWindow),
		timeline.WithLogger(log),
	)

	result, err := builder.Build(ctx, datasets)
	if err != nil {
		return fmt.Errorf("building timeline: %w", err)
	}
	logCounters(log, logger.DefaultMetrics())

	events := result.Events
	if opts.newOnly {
		previous, err := store.LoadSnapshot()
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		diff := event.Diff(previous, result.Events, "")
		log.Info("compared with previous snapshot", logger.Fields{
			"previous_updated_at": previous.UpdatedAt,
			"new":                 len(diff.NewEvents),
			"removed":             len(diff.RemovedEvents),
		})
		events = diff.NewEvents
	}

	if !opts.noSave {
		if err := store.SaveEvents(result.Events); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		log.Debug("saved snapshot", logger.Fields{"path": store.SnapshotPath()})
	}

	if opts.exportDB {
		if err := exportEvents(ctx, cfg.DatabaseURL, result.Events); err != nil {
			return err
		}
		log.Info("exported timeline", logger.Fields{"events": len(result.Events)})
	}

	events = f.Apply(events)
	sortEvents(events, sortOrder)

	if err := writeTo(cfg.Output, events, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.newOnly && len(events) > 0 {
		return errNewEvents
	}
	return nil
}

// logCounters reports every counter the build touched in one line
func logCounters(log *logger.Logger, metrics *logger.Metrics) {
	fields := logger.Fields{}
	for _, name := range metrics.CounterNames() {
		fields[name] = metrics.Counter(name)
	}
	log.Debug("build counters", fields)
}

func buildFilter(opts *buildOptions) (*filter.Filter, error) {
	f := filter.NewFilter()

	instruments, err := filter.ParseInstruments(opts.instrument)
	if err != nil {
		return nil, err
	}
	f.Instruments = instruments

	if opts.dateRange != "" {
		from, to, err := filter.ParseRange(opts.dateRange)
		if err != nil {
			return nil, err
		}
		f.From, f.To = from, to
	}

	f.Text = append(f.Text, opts.text...)
	return f, nil
}

func exportEvents(ctx context.Context, databaseURL string, events []*event.Event) error {
	db, err := storage.OpenPostgres(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return db.UpsertEvents(ctx, events)
}

// writeTo writes to path, or to stdout when path is empty
func writeTo(path string, events []*event.Event, format OutputFormat) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		file, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		w = file
	}
	return WriteOutput(w, events, format)
}

func newDatasetsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the dataset catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(v)
			if err != nil {
				return err
			}
			catalogue, err := loadCatalogue(cfg)
			if err != nil {
				return fmt.Errorf("loading datasets: %w", err)
			}
			return WriteDatasets(cmd.OutOrStdout(), catalogue.Datasets, time.Now())
		},
	}
}

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the maneuver log event codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return WriteCodes(cmd.OutOrStdout(), normalize.Codes())
		},
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the last built timeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(v)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(store, log).Run(ctx, cfg.ServeAddr)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	bindFlags(v, cmd.Flags(), map[string]string{config.KeyServeAddr: "addr"})

	return cmd
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.Is(err, errNewEvents):
		os.Exit(ExitNewEvents)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
