package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/articlemetrics/internal/config"
	"github.com/amosWeiskopf/articlemetrics/internal/models"
	"github.com/amosWeiskopf/articlemetrics/pkg/fetcher"
	"github.com/amosWeiskopf/articlemetrics/pkg/lexicon"
	"github.com/amosWeiskopf/articlemetrics/pkg/metrics"
	"github.com/amosWeiskopf/articlemetrics/pkg/pipeline"
	"github.com/amosWeiskopf/articlemetrics/pkg/reporter"
	"github.com/amosWeiskopf/articlemetrics/pkg/server"
	"github.com/amosWeiskopf/articlemetrics/pkg/spreadsheet"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "articlemetrics",
	Short: "ArticleMetrics - sentiment and readability scores for web articles",
	Long: `ArticleMetrics fetches every URL listed in an input sheet, extracts the
article text and scores it for sentiment and readability.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every article listed in an input sheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		report, _ := cmd.Flags().GetString("report")

		logger, closer, err := cfg.NewLogger()
		if err != nil {
			return err
		}
		defer closer.Close()

		calc, err := loadCalculator(cmd)
		if err != nil {
			return err
		}

		rows, err := spreadsheet.ReadInput(input)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		logger.Printf("Loaded %d URLs from %s", len(rows), input)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		f, err := fetcher.New(ctx, fetcherOptions(cfg, logger))
		if err != nil {
			return fmt.Errorf("failed to start fetcher: %w", err)
		}
		defer f.Close()

		opts := pipeline.Options{
			SummarySentences: cfg.Analysis.SummarySentences,
			RecordFailures:   cfg.Analysis.RecordFailures,
		}
		if cfg.Logging.Verbose {
			opts.OnRow = func(row models.MetricsRow) {
				m := row.Metrics
				logger.Printf("  %s: polarity=%.3f subjectivity=%.3f fog=%.2f words=%d",
					row.ID, m.PolarityScore, m.SubjectivityScore, m.FogIndex, m.WordCount)
			}
		}

		result, runErr := pipeline.New(f, calc, opts, logger).Run(ctx, rows)
		if result == nil {
			return fmt.Errorf("analysis failed: %w", runErr)
		}

		// Partial results of an interrupted run are still written.
		if err := spreadsheet.WriteResultsFile(cfg.Output.Path, result.Rows); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		logger.Printf("Scored %d of %d URLs, results saved to %s", result.Succeeded(), result.Total, cfg.Output.Path)

		if report != "" {
			if err := writeReport(result, cfg.Output.Report, report); err != nil {
				return err
			}
			logger.Printf("Report saved to %s", report)
		}

		if runErr != nil {
			return fmt.Errorf("analysis interrupted: %w", runErr)
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [FILE]",
	Short: "Score a single text file and print its metrics as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		calc, err := loadCalculator(cmd)
		if err != nil {
			return err
		}

		text, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}

		return printScore(cmd.OutOrStdout(), calc, string(text), cfg.Analysis.SummarySentences)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload-and-download web dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, closer, err := cfg.NewLogger()
		if err != nil {
			return err
		}
		defer closer.Close()

		if cfg.Logging.Verbose {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		newFetcher := func(ctx context.Context) (fetcher.Fetcher, error) {
			return fetcher.New(ctx, fetcherOptions(cfg, logger))
		}
		return server.New(cfg, newFetcher, logger).Run(ctx)
	},
}

func init() {
	// Analyze command flags
	analyzeCmd.Flags().String("input", "Input.xlsx", "Input sheet (.xlsx or .csv) with URL_ID and URL columns")
	analyzeCmd.Flags().String("output", "", "Output file for the results sheet")
	analyzeCmd.Flags().String("format", "", "Results format (xlsx, csv), defaults to the output file extension")
	analyzeCmd.Flags().String("report", "", "Also write a report to this file")
	analyzeCmd.Flags().String("report-format", "", "Report format (json, yaml, html, markdown), defaults to the report file extension")
	analyzeCmd.Flags().String("driver", "", "Fetcher driver (browser, http)")
	analyzeCmd.Flags().Bool("record-failures", false, "Keep rows for failed URLs with an Error column")

	// Lexicon flags shared by analyze and score
	for _, cmd := range []*cobra.Command{analyzeCmd, scoreCmd} {
		cmd.Flags().String("positive", "positive-words.txt", "Positive words list")
		cmd.Flags().String("negative", "negative-words.txt", "Negative words list")
		cmd.Flags().String("stopwords", "", "Custom stop words list, one word per line")
	}

	// Serve command flags
	serveCmd.Flags().String("addr", "", "Listen address (host:port)")

	// Add commands to root
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(serveCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
}

// loadConfig loads the configuration and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("verbose") {
		cfg.Logging.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("driver") {
		cfg.Fetcher.Driver, _ = flags.GetString("driver")
	}
	if flags.Changed("record-failures") {
		cfg.Analysis.RecordFailures, _ = flags.GetBool("record-failures")
	}
	if flags.Changed("output") {
		cfg.Output.Path, _ = flags.GetString("output")
	}
	if flags.Changed("report-format") {
		cfg.Output.Report, _ = flags.GetString("report-format")
	}

	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if cfg.Output.Format != "" {
		cfg.Output.Path = withExtension(cfg.Output.Path, cfg.Output.Format)
	}

	if flags.Changed("addr") {
		addr, _ := flags.GetString("addr")
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid address %q, expected host:port: %w", addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port in %q: %w", addr, err)
		}
		cfg.Server.Host, cfg.Server.Port = host, p
	}

	return nil
}

// withExtension replaces the extension of path with format
func withExtension(path, format string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
}

func fetcherOptions(cfg *config.Config, logger *log.Logger) fetcher.Options {
	opts := fetcher.Options{
		Driver:            cfg.Fetcher.Driver,
		RenderWait:        cfg.Fetcher.RenderWait,
		Timeout:           cfg.Fetcher.Timeout,
		UserAgent:         cfg.Fetcher.UserAgent,
		Headless:          cfg.Fetcher.Headless,
		ChromePath:        cfg.Fetcher.ChromePath,
		WindowWidth:       cfg.Fetcher.WindowWidth,
		WindowHeight:      cfg.Fetcher.WindowHeight,
		FollowRobotsTxt:   cfg.Fetcher.FollowRobotsTxt,
		RequestsPerSecond: cfg.Fetcher.RequestsPerSecond,
	}
	if cfg.Logging.Verbose {
		opts.Logger = logger
	}
	return opts
}

func loadCalculator(cmd *cobra.Command) (*metrics.Calculator, error) {
	positivePath, _ := cmd.Flags().GetString("positive")
	negativePath, _ := cmd.Flags().GetString("negative")
	stopWordsPath, _ := cmd.Flags().GetString("stopwords")

	positive, err := lexicon.Load(positivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load positive words: %w", err)
	}
	negative, err := lexicon.Load(negativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load negative words: %w", err)
	}

	var opts []metrics.Option
	if stopWordsPath != "" {
		stopWords, err := lexicon.Load(stopWordsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load stop words: %w", err)
		}
		opts = append(opts, metrics.WithStopWords(stopWords.Words()))
	}

	return metrics.New(positive, negative, opts...)
}

// scoreOutput is the JSON document printed by the score command
type scoreOutput struct {
	Summary string         `json:"summary,omitempty"`
	Metrics models.Metrics `json:"metrics"`
}

func printScore(w io.Writer, calc *metrics.Calculator, text string, summarySentences int) error {
	out := scoreOutput{
		Summary: calc.Summarize(text, summarySentences),
		Metrics: calc.Analyze(text),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeReport renders result to path. An empty format is taken from the
// file extension.
func writeReport(result *models.RunResult, format, path string) error {
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}

	out, err := reporter.New().Generate(result, format)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
