package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/adapters/browser"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ConfigPath string
	Tree       string
	Root       string
	Seed       *uint64
	LogLevel   string
	JSON       bool
	Quiet      bool
	Reports    string
	// Driver replaces the Playwright driver of the browser provider.
	Driver browser.Driver
}

// LoadConfig reads the config file and applies command-line overrides.
func LoadConfig(path, tree string, seed *uint64) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if tree != "" {
		cfg.Tree = tree
	}
	if seed != nil {
		cfg.Seed = seed
	}
	return cfg, nil
}

// Run executes one search and prints its report to stdout.
// An exhausted search is a normal result; the returned error is reserved for
// faults and invalid input.
func Run(ctx context.Context, opts RunOptions, stdout, stderr io.Writer) (*domain.Report, error) {
	cfg, err := LoadConfig(opts.ConfigPath, opts.Tree, opts.Seed)
	if err != nil {
		return nil, err
	}
	if opts.Reports != "" {
		cfg.Reports = opts.Reports
	}
	logger, err := NewLogger(stderr, cfg.Log, opts.LogLevel)
	if err != nil {
		return nil, err
	}

	app, err := NewApp(ctx, cfg, logger, AppOptions{Driver: opts.Driver})
	if err != nil {
		return nil, err
	}
	defer app.Close()

	root := opts.Root
	if root == "" {
		roots, err := app.Finder.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if len(roots) == 0 {
			return nil, fmt.Errorf("menu has no root categories")
		}
		root = roots[0]
		logger.Info("No root given, starting from the first category", "root", root)
	}

	if !opts.JSON && !opts.Quiet {
		printSystemMessage(stdout, "Searching from '%s' (canopy %s)...", root, canopy.Version)
	}

	report, runErr := app.Finder.Run(ctx, root)
	if report != nil {
		if err := printReport(stdout, report, opts.JSON); err != nil {
			return report, err
		}
		if !opts.JSON && !opts.Quiet {
			printSystemMessage(stdout, "Run %s %s.", report.ID, tui.Status(stdout, status(report)))
		}
	}
	return report, handleExecutionError(runErr)
}

func printReport(w io.Writer, report *domain.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	plain := true
	if f, ok := w.(*os.File); ok {
		plain = !tui.IsTerminal(f)
	}
	out, err := tui.NewRenderer(plain)(tui.ReportMarkdown(report))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
