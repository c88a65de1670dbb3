package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/v0xg/resultfetch/internal/assist"
	"github.com/v0xg/resultfetch/internal/browser"
	"github.com/v0xg/resultfetch/internal/challenge"
	"github.com/v0xg/resultfetch/internal/config"
	"github.com/v0xg/resultfetch/internal/extract"
	"github.com/v0xg/resultfetch/internal/fetch"
	"github.com/v0xg/resultfetch/internal/locator"
	"github.com/v0xg/resultfetch/internal/logging"
	"github.com/v0xg/resultfetch/internal/output"
	"github.com/v0xg/resultfetch/internal/portal"
	"github.com/v0xg/resultfetch/internal/prompt"
	"github.com/v0xg/resultfetch/internal/result"
	"github.com/v0xg/resultfetch/internal/roster"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var version = "dev"

var configFile string

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "resultfetch",
		Short: "Fetch board exam results for a list of roll numbers",
		Long: `resultfetch opens the results portal in a browser, fills in each roll number
from the roster file, asks you to type the security key shown in the saved
image, and collects every result into a spreadsheet.

Example:
  resultfetch --rolls rolls.txt --output results.xlsx`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	d := config.Default()
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file (default: ./resultfetch.yaml if present)")
	f.String("url", d.URL, "Results page URL")
	f.StringP("rolls", "r", d.RollsFile, "Roster file, one roll (or roll,reg) per line")
	f.StringP("output", "o", d.Output, "Output file (.xlsx or .csv)")
	f.Bool("headless", d.Headless, "Run the browser without a window")
	f.Duration("load-delay", d.LoadDelay, "Wait after the form page loads")
	f.Duration("submit-delay", d.SubmitDelay, "Wait after submitting")
	f.Duration("between-delay", d.BetweenDelay, "Minimum spacing between rolls")
	f.String("capture-dir", d.CaptureDir, "Directory for security key and diagnostic images")
	f.Float64("challenge-scale", d.ChallengeScale, "Enlarge the security key image by this factor")
	f.Int("fail-threshold", d.FailThreshold, "Page length below which a page without GPA counts as not found")
	f.String("browser", d.BrowserBin, "Chrome/Chromium binary (default: auto-detect)")
	f.String("assist", d.Assist.Provider, "LLM fallback for pages where GPA is not found: claude, openai (default: off)")
	f.String("assist-model", d.Assist.Model, "Specific model override for --assist")
	f.Bool("no-robots", false, "Skip the robots.txt check")
	f.BoolP("verbose", "v", d.Verbose, "Show detailed progress")

	rootCmd.AddCommand(newParseCmd(), newConfigCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := loadRoster(cfg.RollsFile)
	if err != nil {
		return err
	}

	between := cfg.BetweenDelay
	if cfg.RespectRobots {
		between = checkRobots(ctx, cfg, between, logger)
	}

	var opts []fetch.Option
	if cfg.Assist.Provider != "" {
		p, err := assist.NewProvider(cfg.Assist.Provider, cfg.Assist.Model)
		if err != nil {
			return fmt.Errorf("assist provider init failed: %w", err)
		}
		opts = append(opts, fetch.WithAssist(p))
	}

	if err := os.MkdirAll(cfg.CaptureDir, 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}

	fmt.Print("→ Launching browser... ")
	b, err := browser.Launch(browser.Options{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Headless:  cfg.Headless,
		Bin:       cfg.BrowserBin,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		fmt.Println("failed")
		return fmt.Errorf("browser could not be started, check your Chrome installation: %w", err)
	}
	defer b.Close()
	fmt.Println("done")

	opts = append(opts,
		fetch.WithLocator(locator.New(locator.DefaultTable(), logger)),
		fetch.WithCapturer(challenge.NewCapturer(cfg.ChallengeScale, logger)),
		fetch.WithPacer(portal.NewPacer(between)),
		fetch.WithProgress(os.Stdout),
	)
	fetcher := fetch.New(b.Page(), prompt.NewTerminal(os.Stdin, os.Stdout), fetch.Options{
		URL:           cfg.URL,
		LoadDelay:     cfg.LoadDelay,
		SubmitDelay:   cfg.SubmitDelay,
		CaptureDir:    cfg.CaptureDir,
		FailThreshold: cfg.FailThreshold,
	}, logger, opts...)

	fmt.Printf("\n--- Fetching results for %d rolls ---\n", len(entries))
	fmt.Println("The portal uses a security key, so you will be asked to type it for each roll.")

	return save(fetcher.Run(ctx, entries), cfg.Output)
}

func loadRoster(path string) ([]roster.Entry, error) {
	entries, err := roster.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := roster.Bootstrap(path); err != nil {
			return nil, err
		}
		fmt.Printf("Created %s with the default rolls. Add your own rolls (one per line) there.\n", path)
		return roster.Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no rolls found in %s", path)
	}
	return entries, nil
}

// checkRobots warns on a disallow and returns the spacing to use
func checkRobots(ctx context.Context, cfg config.Config, between time.Duration, logger *zap.Logger) time.Duration {
	verdict, err := portal.Check(ctx, &http.Client{Timeout: 10 * time.Second}, cfg.URL, cfg.UserAgent)
	if err != nil {
		logger.Debug("robots.txt check skipped", zap.Error(err))
		return between
	}
	if !verdict.Allowed {
		logger.Warn("robots.txt disallows the results page; continuing at your discretion", zap.String("url", cfg.URL))
	}
	if verdict.CrawlDelay > between {
		logger.Info("using robots.txt crawl-delay", zap.Duration("delay", verdict.CrawlDelay))
		return verdict.CrawlDelay
	}
	return between
}

func save(run result.Run, path string) error {
	n, err := output.Write(run, path)
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	fmt.Println()
	output.Summary(run, os.Stdout)
	fmt.Printf("\n✓ Saved %d result rows to %s\n", n, path)
	return nil
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE.html...",
		Short: "Extract results from saved result pages without a browser",
		Long: `parse runs the result extractor over HTML files saved from the portal. The
roll column is taken from each file name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ex := extract.New(logger)
			run := make(result.Run, 0, len(args))
			for _, path := range args {
				id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				data, err := os.ReadFile(path)
				if err != nil {
					run = append(run, result.Failed(id, err))
					continue
				}
				rec := ex.ExtractHTML(string(data))
				rec.Set(result.KeyIdentifier, id)
				run = append(run, rec)
			}
			return save(run, cfg.Output)
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Println("resultfetch", version)
		},
	}
}
