package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/diagfmt"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/driver"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] DIR",
	Short: "Reduce every AsciiDoc document under a directory",
	Long: `Batch reduces every *.adoc and *.asciidoc file under DIR in parallel and
writes each flattened document under the output directory, preserving the
relative layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("out-dir", "out", "directory for the flattened documents")
	batchCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	batchCmd.Flags().StringArrayP("attribute", "a", nil, "set a document attribute (name, name=value, name!)")
	batchCmd.Flags().StringP("safe-mode", "S", "unsafe", "include containment (unsafe|safe|secure)")
	batchCmd.Flags().Bool("preserve-conditionals", false, "keep conditional directive lines in the output")
	batchCmd.Flags().Bool("ignore-missing", false, "downgrade missing includes and jail violations to warnings")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return fmt.Errorf("failed to get out-dir flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	var opts reduce.Options
	attrArgs, _ := cmd.Flags().GetStringArray("attribute")
	opts.Attributes = make(map[string]string, len(attrArgs))
	for _, arg := range attrArgs {
		name, value := parseAttributeArg(arg)
		opts.Attributes[name] = value
	}
	modeName, _ := cmd.Flags().GetString("safe-mode")
	opts.SafeMode, err = reduce.ParseSafeMode(modeName)
	if err != nil {
		return err
	}
	opts.PreserveConditionals, _ = cmd.Flags().GetBool("preserve-conditionals")
	opts.RelaxResolution, _ = cmd.Flags().GetBool("ignore-missing")
	opts.MaxDiagnostics, _ = cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	results, err := driver.ReduceDir(cmd.Context(), dir, opts, jobs)
	if err != nil {
		return fmt.Errorf("adocreduce: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "adocreduce: no AsciiDoc files under %s\n", dir)
		return nil
	}

	failed := 0
	combined := diag.NewBag(0)
	for _, br := range results {
		if br.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "adocreduce: %s: %v\n", br.Path, br.Err)
			continue
		}
		if br.Result.Bag.Len() > 0 {
			br.Result.Bag.Sort()
			br.Result.Bag.Dedup()
			diagfmt.Pretty(os.Stderr, br.Result.Bag, br.Result.FileSet, diagfmt.PrettyOpts{
				Color:    useColor(cmd, os.Stderr),
				Context:  true,
				PathMode: "auto",
			})
			combined.Merge(br.Result.Bag)
		}
		if br.Result.Failed() {
			failed++
			continue
		}

		dest := filepath.Join(outDir, br.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("adocreduce: %w", err)
		}
		if err := br.Result.WriteText(dest); err != nil {
			return fmt.Errorf("adocreduce: %w", err)
		}
	}

	if combined.Len() > 0 {
		fmt.Fprintf(os.Stderr, "adocreduce: %d diagnostics across %d documents\n",
			combined.Len(), len(results))
	}
	if failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("adocreduce: %d of %d documents failed", failed, len(results))
	}
	return nil
}
