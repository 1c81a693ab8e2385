package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/diagfmt"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/driver"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/sourcemap"
)

func init() {
	rootCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	rootCmd.Flags().StringArrayP("attribute", "a", nil, "set a document attribute (name, name=value, name!)")
	rootCmd.Flags().Bool("preserve-conditionals", false, "keep conditional directive lines in the output")
	rootCmd.Flags().StringP("safe-mode", "S", "unsafe", "include containment (unsafe|safe|secure)")
	rootCmd.Flags().String("include-root", "", "alternate include root permitted in safe mode")
	rootCmd.Flags().Bool("placeholders", false, "splice a placeholder line for unresolvable includes")
	rootCmd.Flags().Bool("ignore-missing", false, "downgrade missing includes and jail violations to warnings")
	rootCmd.Flags().String("log-level", "warn", "diagnostic display threshold (info|warn|error|fatal)")
	rootCmd.Flags().String("source-map", "", "write a source map sidecar (.json or .msgpack)")
}

func runReduce(cmd *cobra.Command, args []string) error {
	input := "-"
	if len(args) == 1 {
		input = args[0]
	}

	opts, err := reduceOptionsFromFlags(cmd, input)
	if err != nil {
		return err
	}

	var result *driver.Result
	if input == "-" {
		result, err = driver.Reduce(os.Stdin, "<stdin>", opts)
	} else {
		result, err = driver.ReduceFile(input, opts)
	}
	if err != nil {
		return fmt.Errorf("adocreduce: %w", err)
	}

	if err := printDiagnostics(cmd, result); err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if err := result.WriteText(output); err != nil {
		return fmt.Errorf("adocreduce: %w", err)
	}

	mapPath, err := cmd.Flags().GetString("source-map")
	if err != nil {
		return fmt.Errorf("failed to get source-map flag: %w", err)
	}
	if mapPath != "" {
		m, err := sourcemap.Build(result.Lines, result.FileSet, result.Root)
		if err != nil {
			return fmt.Errorf("adocreduce: %w", err)
		}
		if err := m.WriteFile(mapPath); err != nil {
			return fmt.Errorf("adocreduce: %w", err)
		}
	}

	if result.Failed() {
		first, _ := result.Bag.FirstFatal()
		trace, _ := cmd.Root().PersistentFlags().GetBool("trace")
		if trace {
			return fmt.Errorf("adocreduce: %s %s: %s (at %s:%d)", first.Severity, first.Code,
				first.Message, result.FileSet.Get(first.Primary.File).Path, first.Primary.Line)
		}
		cmd.SilenceUsage = true
		return fmt.Errorf("adocreduce: %s", first.Message)
	}
	return nil
}

// reduceOptionsFromFlags merges the discovered TOML config with flag values;
// flags win.
func reduceOptionsFromFlags(cmd *cobra.Command, input string) (reduce.Options, error) {
	var opts reduce.Options

	cfg, found, err := loadProjectConfig(configStartDir(input))
	if err != nil {
		return opts, fmt.Errorf("adocreduce: %w", err)
	}
	if found {
		opts = cfg.apply(opts)
	}

	attrArgs, err := cmd.Flags().GetStringArray("attribute")
	if err != nil {
		return opts, fmt.Errorf("failed to get attribute flag: %w", err)
	}
	if opts.Attributes == nil {
		opts.Attributes = make(map[string]string)
	}
	for _, arg := range attrArgs {
		name, value := parseAttributeArg(arg)
		opts.Attributes[name] = value
	}

	if cmd.Flags().Changed("preserve-conditionals") || !found {
		opts.PreserveConditionals, _ = cmd.Flags().GetBool("preserve-conditionals")
	}
	if cmd.Flags().Changed("placeholders") || !found {
		opts.Placeholders, _ = cmd.Flags().GetBool("placeholders")
	}
	if cmd.Flags().Changed("ignore-missing") || !found {
		opts.RelaxResolution, _ = cmd.Flags().GetBool("ignore-missing")
	}
	if cmd.Flags().Changed("include-root") || !found {
		opts.IncludeRoot, _ = cmd.Flags().GetString("include-root")
	}

	if cmd.Flags().Changed("safe-mode") || opts.SafeMode == reduce.ModeUnconstrained {
		modeName, _ := cmd.Flags().GetString("safe-mode")
		mode, err := reduce.ParseSafeMode(modeName)
		if err != nil {
			return opts, err
		}
		opts.SafeMode = mode
	}

	opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return opts, nil
}

// parseAttributeArg splits one -a argument. "name" alone sets an empty
// value; a trailing "!" unsets the attribute and locks it.
func parseAttributeArg(arg string) (name, value string) {
	if name, value, found := strings.Cut(arg, "="); found {
		return strings.TrimSpace(name), value
	}
	return strings.TrimSpace(arg), ""
}

func printDiagnostics(cmd *cobra.Command, result *driver.Result) error {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		levelName = "warn"
	}
	threshold, err := diag.ParseSeverity(levelName)
	if err != nil {
		return fmt.Errorf("adocreduce: %w", err)
	}
	if quiet {
		threshold = diag.SevError
	}

	if result.Bag.Len() == 0 {
		return nil
	}
	result.Bag.Sort()
	result.Bag.Dedup()
	diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
		Color:       useColor(cmd, os.Stderr),
		Context:     true,
		PathMode:    "auto",
		MinSeverity: threshold,
	})
	return nil
}
