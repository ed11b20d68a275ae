package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sondelabs/querywatch/internal/config"
	"github.com/sondelabs/querywatch/internal/output"
	"github.com/sondelabs/querywatch/internal/source"
)

var inspectFlagJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "Check source files for sensitive field exposure",
	Long: `Inspect parses the Go files under a directory and reports every
place a configured sensitive field is exposed: serialization map keys,
accessor calls, and direct field reads.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectFlagJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := buildLogger(cfg)
	defer log.Sync()

	fragments, errs := source.LoadDir(args[0])
	for _, e := range errs {
		log.Warnf("skipping source file: %v", e)
	}

	visitor := source.NewSensitiveFieldVisitor(cfg.SensitiveFields)
	for _, frag := range fragments {
		visitor.Walk(frag)
	}
	matches := visitor.Matches()

	if inspectFlagJSON || flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Printf("No sensitive field exposure in %d file(s).\n", len(fragments))
		return nil
	}

	tbl := output.NewTable("FIELD", "LOCATION")
	for _, m := range matches {
		tbl.AddRow(m.Field, fmt.Sprintf("%s:%d", m.File, m.Line))
	}
	tbl.Print()

	return fmt.Errorf("%d sensitive field(s) exposed", len(matches))
}
