package app

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	// Drivers for the plan capability.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/sondelabs/querywatch/internal/config"
	"github.com/sondelabs/querywatch/internal/diag"
	"github.com/sondelabs/querywatch/internal/engine"
	"github.com/sondelabs/querywatch/internal/issue"
	"github.com/sondelabs/querywatch/internal/logger"
	"github.com/sondelabs/querywatch/internal/output"
	"github.com/sondelabs/querywatch/internal/source"
	"github.com/sondelabs/querywatch/internal/trace"
)

var (
	analyzeFlagSource   string
	analyzeFlagJSON     bool
	analyzeFlagFailWarn bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture-file>...",
	Short: "Analyze capture files and report issues",
	Long: `Analyze runs the full analyzer pipeline over one or more capture
files. Each file is one unit of work: a JSON array of operation records,
or an object with an "operations" array.

With --source, Go files under the given directory are checked for
sensitive field exposure alongside the query analysis.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlagSource, "source", "", "Directory of Go source files to inspect")
	analyzeCmd.Flags().BoolVar(&analyzeFlagJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeFlagFailWarn, "fail-on-warning", false, "Exit non-zero on warnings, not just criticals")

	rootCmd.AddCommand(analyzeCmd)
}

// captureFile matches the object form of a capture file.
type captureFile struct {
	Operations []trace.RawRecord `json:"operations"`
}

// fileReport pairs a capture file with its analysis result.
type fileReport struct {
	File   string        `json:"file"`
	Report *issue.Report `json:"report"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := buildLogger(cfg)
	defer log.Sync()

	var fragments []*source.Fragment
	if analyzeFlagSource != "" {
		var errs []error
		fragments, errs = source.LoadDir(analyzeFlagSource)
		for _, e := range errs {
			log.Warnf("skipping source file: %v", e)
		}
	}

	eng := engine.New(cfg, log)
	if cfg.Diagnostic.DSN != "" {
		db, err := sql.Open(cfg.Diagnostic.Driver, cfg.Diagnostic.DSN)
		if err != nil {
			return fmt.Errorf("opening diagnostic connection: %w", err)
		}
		defer db.Close()
		timeout := time.Duration(cfg.Diagnostic.TimeoutMs) * time.Millisecond
		eng.SetExplainer(diag.NewSQLExplainer(db, cfg.Diagnostic.Driver, timeout))
	}

	// One pass per capture file; passes share the engine's plan cache.
	reports := make([]fileReport, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range args {
		g.Go(func() error {
			records, err := loadRecords(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			report, err := eng.Run(ctx, records, fragments)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = fileReport{File: path, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if analyzeFlagJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, fr := range reports {
			fmt.Println(output.StyleBold.Render(fr.File))
			fmt.Println(output.RenderReport(fr.Report))
		}
	}

	return exitStatus(reports)
}

// loadRecords reads a capture file in either of its two accepted forms.
func loadRecords(path string) ([]trace.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []trace.RawRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var file captureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("not a capture file: %w", err)
	}
	return file.Operations, nil
}

// exitStatus turns severities into a process exit decision.
func exitStatus(reports []fileReport) error {
	for _, fr := range reports {
		if fr.Report.HasCritical() {
			return fmt.Errorf("critical issues found in %s", fr.File)
		}
		if analyzeFlagFailWarn && len(fr.Report.Issues) > 0 {
			return fmt.Errorf("issues found in %s", fr.File)
		}
	}
	return nil
}

// buildLogger derives the logger from configuration; --verbose forces
// debug level.
func buildLogger(cfg *config.Config) *logger.Logger {
	level := cfg.Logging.Level
	if flagVerbose {
		level = "debug"
	}
	return logger.New(level, cfg.Logging.Format, cfg.Logging.Output)
}
