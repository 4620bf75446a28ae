package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"listing-etl/config"
	"listing-etl/models"
	"listing-etl/services"
	"listing-etl/storage"
	"listing-etl/utils"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitLoadError   = 2
	ExitSchemaError = 3
	ExitWriteError  = 4
)

var (
	criteriaPath string
	inputPath    string
	outputPath   string
	allowedTypes string
	minPrice     float64
	maxPrice     float64
	dateLayout   string
	dbSink       string
	verbose      bool
	quiet        bool
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout))
}

// execute runs the command with args, reporting to out, and returns the
// process exit status.
func execute(args []string, out io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(out, "Operation failed with error: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

var rootCmd = &cobra.Command{
	Use:   "listing-etl",
	Short: "Clean, filter and export a JSON dump of real-estate listings to CSV",
	Long: `listing-etl loads a double-encoded JSON listing dump, extracts numeric
prices and living areas, drops incomplete rows, converts prices from cents,
keeps the allowed property types within a price range and writes a CSV.

Examples:
  listing-etl --input resources/sample.json --output resources/sample_clean.csv
  listing-etl --types apartment,house,studio --min-price 800 --max-price 9000
  listing-etl --criteria criteria.yaml --db-sink sqlite`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(criteriaPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return run(cfg, cmd.OutOrStdout())
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&criteriaPath, "criteria", "", "YAML file with allowed_types, min_price, max_price")
	f.StringVarP(&inputPath, "input", "i", "", "input JSON file (default resources/sample.json)")
	f.StringVarP(&outputPath, "output", "o", "", "output CSV file (default resources/sample_clean.csv)")
	f.StringVar(&allowedTypes, "types", "", "comma-separated allowed property types (default apartment,house)")
	f.Float64Var(&minPrice, "min-price", 0, "minimum price, inclusive (default 500)")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum price, inclusive (default 15000)")
	f.StringVar(&dateLayout, "date-layout", "", "Go time layout of scraping_date (default 2006-01-02)")
	f.StringVar(&dbSink, "db-sink", "", "also store listings in a database: postgres or sqlite")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.InputPath = inputPath
	}
	if f.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if f.Changed("types") {
		cfg.AllowedTypes = config.SplitList(allowedTypes)
	}
	if f.Changed("min-price") {
		cfg.MinPrice = minPrice
	}
	if f.Changed("max-price") {
		cfg.MaxPrice = maxPrice
	}
	if f.Changed("date-layout") {
		cfg.DateLayout = dateLayout
	}
	if f.Changed("db-sink") {
		cfg.DBSink = strings.ToLower(dbSink)
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}
}

func run(cfg *config.Config, out io.Writer) error {
	logger := utils.NewLoggerTo(os.Stderr, cfg.LogLevel)
	logger.Info("=== Listing ETL starting ===")
	logger.Info("Criteria — types: %v | price: [%.2f, %.2f]", cfg.AllowedTypes, cfg.MinPrice, cfg.MaxPrice)

	// the database is only opened once the CSV is written, so load and
	// schema failures are reported before any connection attempt
	var sinks []storage.TableWriter
	db := dbSinkFor(cfg)
	if db != nil {
		defer db.Close()
		sinks = append(sinks, db)
	}

	pipeline := services.NewPipeline(logger, services.PipelineOptions{
		Criteria: services.Criteria{
			AllowedTypes: cfg.AllowedTypes,
			MinPrice:     cfg.MinPrice,
			MaxPrice:     cfg.MaxPrice,
		},
		DateLayout:   cfg.DateLayout,
		PriceDivisor: cfg.PriceDivisor,
	}, sinks...)

	table, err := pipeline.Run(cfg.InputPath, cfg.OutputPath)
	if err != nil {
		return err
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(out, insightSvc.Generate(table))

	if db != nil {
		stored, err := db.FetchAll()
		if err != nil {
			logger.Warn("Failed to read back listings from %s: %v", cfg.DBSink, err)
		} else {
			logger.Info("%d listings stored in %s (table: listings)", len(stored), cfg.DBSink)
		}
	}

	fmt.Fprintln(out, "\nOperation succeeded!")
	return nil
}

func dbSinkFor(cfg *config.Config) *storage.LazyDBWriter {
	switch cfg.DBSink {
	case "postgres":
		return storage.NewLazyDBWriter("postgres", func() (storage.DBWriter, error) {
			pw, err := storage.NewPostgresWriter(cfg.DSN())
			if err != nil {
				return nil, err
			}
			return pw, nil
		})
	case "sqlite":
		return storage.NewLazyDBWriter("sqlite", func() (storage.DBWriter, error) {
			sw, err := storage.NewSQLiteWriter(cfg.SQLitePath)
			if err != nil {
				return nil, err
			}
			return sw, nil
		})
	default:
		return nil
	}
}

// exitCode maps a pipeline failure to the process exit status.
func exitCode(err error) int {
	var (
		loadErr   *models.LoadError
		schemaErr *models.SchemaError
		writeErr  *models.WriteError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &loadErr):
		return ExitLoadError
	case errors.As(err, &schemaErr):
		return ExitSchemaError
	case errors.As(err, &writeErr):
		return ExitWriteError
	default:
		return ExitConfigError
	}
}
