package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/dsl"
)

var fmtCmd = &cobra.Command{
	Use:     "fmt [files or dirs...]",
	Aliases: []string{"format"},
	Short:   "Rewrite schema files in canonical form",
	Long: `Rewrite schema files in canonical form.

With --check nothing is written; the command fails if any file is not
already canonical.`,
	RunE: runFmt,
}

var fmtCheck bool

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "fail if a file is not canonically formatted")

	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	sources, err := readSources(args)
	if err != nil {
		return err
	}

	var unformatted []string
	failed := false
	for _, src := range sources {
		formatted, diags := dsl.Format(src.text)
		if diags.HasErrors() {
			fmt.Fprintln(os.Stderr, diags.ToPrettyString(src.path, src.text))
			failed = true
			continue
		}
		if formatted == src.text {
			continue
		}
		unformatted = append(unformatted, src.path)
		if fmtCheck {
			continue
		}
		if err := writeFile(src.path, []byte(formatted)); err != nil {
			return fmt.Errorf("failed to write formatted schema: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "formatted %s\n", src.path)
	}
	if failed {
		return errSyntax
	}

	if fmtCheck {
		for _, path := range unformatted {
			fmt.Fprintf(cmd.OutOrStdout(), "would reformat %s\n", path)
		}
		if len(unformatted) > 0 {
			return fmt.Errorf("%d file(s) are not canonically formatted", len(unformatted))
		}
	}
	if len(unformatted) == 0 {
		ui.PrintSuccess("%d file(s) already canonical", len(sources))
	}
	return nil
}
