package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/cli/internal/watch"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files or dirs...]",
	Short: "Validate schema files",
	Long: `Validate schema files for syntax and semantic errors.

Every violation in the batch is reported. With --watch the files are
validated again whenever they change, until interrupted.`,
	RunE: runValidate,
}

var validateWatch bool

func init() {
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-validate when files change")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if !validateWatch {
		return validateOnce(args)
	}

	files, err := schemaFiles(args)
	if err != nil {
		return err
	}
	w, err := watch.NewWatcher(files, func() error {
		if err := validateOnce(args); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return err
	}

	ui.PrintInfo("Watching %d file(s) for changes, press Ctrl+C to stop", len(files))
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}

func validateOnce(args []string) error {
	batch, err := loadBatch(args)
	if err != nil {
		return err
	}
	names := make([]string, len(batch))
	for i, def := range batch {
		names[i] = fmt.Sprintf("%s (v%d, %d fields)", def.Name, def.Version, len(def.Fields))
	}
	ui.PrintSuccess("%d schema(s) valid", len(batch))
	ui.PrintList(names)
	return nil
}
