package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/qaforge/healrunner/pkg/config"
	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/driver/chrome"
	"github.com/qaforge/healrunner/pkg/driver/mock"
	"github.com/qaforge/healrunner/pkg/element"
	"github.com/qaforge/healrunner/pkg/executor"
	"github.com/qaforge/healrunner/pkg/logger"
	"github.com/qaforge/healrunner/pkg/report"
	"github.com/qaforge/healrunner/pkg/validator"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run test cases against a live page",
	ArgsUsage: "<case-file-or-folder>...",
	Description: `Run one or more YAML test cases.

Element descriptors are loaded from the inventory file (--elements or
the config's elements key). Each element step resolves its target
through the ranked candidate list, healing broken selectors via
fallback candidates when needed.

Examples:
  healrunner run cases/
  healrunner run login.yaml --elements elements.yaml --repeats 3
  healrunner run cases/ --driver mock --output report.json`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "elements",
			Aliases: []string{"e"},
			Usage:   "Element inventory file (YAML)",
		},
		&cli.IntFlag{
			Name:    "repeats",
			Aliases: []string{"r"},
			Usage:   "Replay the whole suite N times to confirm flakiness",
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Max test cases running concurrently",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report artifact path (default: report.json)",
		},
		&cli.StringFlag{
			Name:  "evidence-dir",
			Usage: "Directory for failure screenshots (default: evidence)",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the browser headless (chrome driver only)",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "no-fallbacks",
			Usage: "Disable the built-in fallback selector pools",
		},
	},
	Action: runAction,
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Validate test cases without running them",
	ArgsUsage: "<case-file-or-folder>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "elements",
			Aliases: []string{"e"},
			Usage:   "Element inventory file (YAML)",
		},
	},
	Action: validateAction,
}

// RunOptions is the merged configuration for one run invocation, built
// from the config file with CLI flags taking precedence.
type RunOptions struct {
	Config      *config.Config
	CasePaths   []string
	Elements    string
	Driver      string
	Repeats     int
	Output      string
	EvidenceDir string
	Headless    bool
	NoFallbacks bool
	Verbose     bool
}

func buildRunOptions(c *cli.Context) (*RunOptions, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	opts := &RunOptions{
		Config:      cfg,
		CasePaths:   c.Args().Slice(),
		Elements:    cfg.Elements,
		Driver:      cfg.Driver,
		Repeats:     cfg.Repeats,
		Output:      cfg.Output,
		EvidenceDir: cfg.EvidenceDir,
		Headless:    c.Bool("headless"),
		NoFallbacks: c.Bool("no-fallbacks"),
		Verbose:     globalBool(c, "verbose"),
	}

	if len(opts.CasePaths) == 0 {
		opts.CasePaths = cfg.Cases
	}
	if v := c.String("elements"); v != "" {
		opts.Elements = v
	}
	if v := globalString(c, "driver"); c.IsSet("driver") || opts.Driver == "" {
		opts.Driver = v
	}
	if c.IsSet("repeats") {
		opts.Repeats = c.Int("repeats")
	}
	if c.IsSet("parallel") {
		opts.Config.Engine.MaxConcurrentTestCases = c.Int("parallel")
	}
	if v := c.String("output"); v != "" {
		opts.Output = v
	}
	if v := c.String("evidence-dir"); v != "" {
		opts.EvidenceDir = v
	}

	if opts.Repeats < 1 {
		opts.Repeats = 1
	}
	if opts.Output == "" {
		opts.Output = "report.json"
	}
	if opts.EvidenceDir == "" {
		opts.EvidenceDir = "evidence"
	}
	if len(opts.CasePaths) == 0 {
		return nil, fmt.Errorf("at least one case file or folder is required")
	}
	if opts.Elements == "" {
		return nil, fmt.Errorf("an element inventory is required (--elements or the config's elements key)")
	}
	if err := opts.Config.Engine.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

// loadConfig loads the workspace config from --config, or falls back to
// healrunner.yaml in the working directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := globalString(c, "config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromDir(".")
}

// globalString reads a flag from the command or its parent context;
// global flags live in the parent when run as a subcommand.
func globalString(c *cli.Context, name string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if lin := c.Lineage(); len(lin) > 1 && lin[1] != nil {
		return lin[1].String(name)
	}
	return c.String(name)
}

func globalBool(c *cli.Context, name string) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	if lin := c.Lineage(); len(lin) > 1 && lin[1] != nil {
		return lin[1].Bool(name)
	}
	return c.Bool(name)
}

func runAction(c *cli.Context) error {
	opts, err := buildRunOptions(c)
	if err != nil {
		return err
	}

	if globalBool(c, "no-ansi") {
		colorsEnabled = false
	}

	if opts.Verbose {
		logger.InitWriter(os.Stderr)
	} else if err := logger.Init("healrunner.log"); err != nil {
		fmt.Printf("Warning: failed to initialize logger: %v\n", err)
	}
	defer logger.Close()

	logger.Info("=== Run started ===")
	logger.Info("Driver: %s", opts.Driver)
	logger.Info("Repeats: %d", opts.Repeats)

	// Load element inventory.
	store, err := element.ParseFile(opts.Elements)
	if err != nil {
		logger.Error("Inventory load failed: %v", err)
		return err
	}
	if !opts.NoFallbacks {
		store.ExpandFallbacks()
	}
	printSetupSuccess(fmt.Sprintf("Loaded %d element(s) from %s", store.Len(), opts.Elements))

	// Validate and collect cases.
	cases, err := validateCases(store, opts.CasePaths)
	if err != nil {
		return err
	}
	printSetupSuccess(fmt.Sprintf("Found %d test case(s)", len(cases.Cases)))

	// Create the driver.
	drv, cleanup, err := createDriver(opts)
	if err != nil {
		logger.Error("Driver creation failed: %v", err)
		return fmt.Errorf("failed to create driver: %w", err)
	}
	defer cleanup()

	// Cancel in-flight cases on Ctrl+C; the report still covers every
	// submitted case.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := executor.New(drv, store, executor.RunnerConfig{
		Engine:      opts.Config.Engine,
		Repeats:     opts.Repeats,
		OnCaseStart: onCaseStart,
		OnCaseEnd:   onCaseEnd,
	})

	rep := runner.Run(ctx, cases.Cases)

	printSummary(rep)

	if err := report.Write(opts.Output, rep); err != nil {
		logger.Error("Report write failed: %v", err)
		return err
	}
	fmt.Printf("\n  Report: %s\n\n", filepath.Clean(opts.Output))
	logger.Info("=== Run finished: %d passed, %d failed, %d flaky ===",
		rep.Passed, rep.Failed, rep.Flaky)

	if !rep.Success() {
		return cli.Exit("", 1)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one case file or folder is required")
	}

	elementsPath := c.String("elements")
	if elementsPath == "" {
		return fmt.Errorf("an element inventory is required (--elements)")
	}

	store, err := element.ParseFile(elementsPath)
	if err != nil {
		return err
	}
	store.ExpandFallbacks()

	result, err := validateCases(store, c.Args().Slice())
	if err != nil {
		return err
	}

	printSetupSuccess(fmt.Sprintf("%d test case(s) valid", len(result.Cases)))
	return nil
}

// validateCases runs the validator and surfaces all errors at once.
func validateCases(store *element.Store, paths []string) (*validator.Result, error) {
	result := validator.New(store).Validate(paths...)
	if !result.IsValid() {
		fmt.Fprintf(os.Stderr, "Validation errors:\n")
		for _, err := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", err)
		}
		return nil, fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
	}
	if len(result.Cases) == 0 {
		return nil, fmt.Errorf("no test cases found")
	}
	return result, nil
}

// createDriver creates the selected backend. The cleanup function is
// safe to call exactly once.
func createDriver(opts *RunOptions) (core.Driver, func(), error) {
	switch strings.ToLower(opts.Driver) {
	case "mock":
		return mock.New(mock.Config{}), func() {}, nil
	case "chrome", "":
		drv, err := chrome.New(chrome.Config{
			Headless:    opts.Headless,
			Stealth:     true,
			EvidenceDir: opts.EvidenceDir,
		})
		if err != nil {
			return nil, nil, err
		}
		return drv, func() {
			if err := drv.Close(); err != nil {
				logger.Warn("driver close: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver: %s", opts.Driver)
	}
}

// Live progress callbacks.

func onCaseStart(run, idx, total int, id string) {
	fmt.Printf("  %s[%d/%d]%s %s%s\n",
		color(colorCyan), idx+1, total, color(colorReset), id, runSuffix(run))
}

func onCaseEnd(run int, id string, status core.VerdictStatus, durationMs int64) {
	switch status {
	case core.VerdictFail:
		fmt.Printf("  %s✗%s %s%s %s%s%s\n",
			color(colorRed), color(colorReset), id, runSuffix(run),
			color(colorGray), formatDuration(durationMs), color(colorReset))
	case core.VerdictFlaky:
		fmt.Printf("  %s⚠%s %s%s %s%s%s\n",
			color(colorYellow), color(colorReset), id, runSuffix(run),
			color(colorGray), formatDuration(durationMs), color(colorReset))
	default:
		fmt.Printf("  %s✓%s %s%s %s%s%s\n",
			color(colorGreen), color(colorReset), id, runSuffix(run),
			color(colorGray), formatDuration(durationMs), color(colorReset))
	}
}

func runSuffix(run int) string {
	if run == 0 {
		return ""
	}
	return fmt.Sprintf(" (run %d)", run+1)
}

func printSummary(rep *report.SessionReport) {
	fmt.Println()
	tableWidth := 78
	fmt.Println(strings.Repeat("═", tableWidth))
	fmt.Printf("  %-32s %8s %5s %5s %5s %7s %9s\n", "Case", "Status", "Runs", "Pass", "Fail", "Healed", "Duration")
	fmt.Println(strings.Repeat("─", tableWidth))

	for _, cr := range rep.Cases {
		var status string
		var statusColor string
		switch {
		case cr.Flaky:
			status = "⚠ FLAKY"
			statusColor = color(colorYellow)
		case cr.Fails > 0:
			status = "✗ FAIL"
			statusColor = color(colorRed)
		default:
			status = "✓ PASS"
			statusColor = color(colorGreen)
		}

		name := cr.ID
		if len(name) > 32 {
			name = name[:29] + "..."
		}

		fmt.Printf("  %-32s %s%8s%s %5d %5d %5d %7d %9s\n",
			name, statusColor, status, color(colorReset),
			cr.Runs, cr.Passes, cr.Fails, cr.HealedResolutions,
			formatDuration(cr.TotalDurationMs))
	}

	fmt.Println(strings.Repeat("─", tableWidth))
	statusColor := color(colorGreen)
	if rep.Failed > 0 {
		statusColor = color(colorRed)
	}
	fmt.Printf("  %s%-32s%s %s%8s%s  %d passed, %d failed, %d flaky\n",
		color(colorBold), "TOTAL", color(colorReset),
		statusColor, fmt.Sprintf("%d/%d", rep.Passed, rep.TotalCases), color(colorReset),
		rep.Passed, rep.Failed, rep.Flaky)
	fmt.Println(strings.Repeat("═", tableWidth))
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func printSetupSuccess(msg string) {
	fmt.Printf("  %s✓%s %s\n", color(colorGreen), color(colorReset), msg)
}

// formatDuration formats milliseconds to a human-readable string.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
