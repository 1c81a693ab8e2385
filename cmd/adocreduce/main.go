package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "adocreduce [flags] FILE",
	Short: "Flatten an AsciiDoc document into a single file",
	Long: `adocreduce resolves include directives and preprocessor conditionals in a
composite AsciiDoc document and writes the flattened result, preserving an
exact mapping from every output line back to its originating file and line.

FILE may be - to read the document from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReduce,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostics (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress diagnostics below the error level")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	rootCmd.PersistentFlags().Bool("trace", false, "let the underlying error propagate with full detail")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}
