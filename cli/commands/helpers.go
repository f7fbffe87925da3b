package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/satishbabariya/schema-forge/cli/internal/config"
	"github.com/satishbabariya/schema-forge/cli/internal/ui"
	"github.com/satishbabariya/schema-forge/dsl"
	"github.com/satishbabariya/schema-forge/schema"
	"github.com/satishbabariya/schema-forge/schema/validation"
)

// SchemaExt is the extension of schema source files.
const SchemaExt = ".schema"

var (
	errSyntax  = errors.New("schema has syntax errors")
	errInvalid = errors.New("schema is invalid")
)

type source struct {
	path string
	text string
}

// schemaFiles expands directories to the schema files they contain.
// With no paths the configured schema_dir is used.
func schemaFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{cfg.SchemaDir}
	}
	var files []string
	for _, p := range paths {
		info, err := config.AppFs.Stat(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("schema file not found: %s", p)
			}
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := afero.Glob(config.AppFs, filepath.Join(p, "*"+SchemaExt))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", SchemaExt, paths)
	}
	return files, nil
}

func readSources(paths []string) ([]source, error) {
	files, err := schemaFiles(paths)
	if err != nil {
		return nil, err
	}
	sources := make([]source, 0, len(files))
	for _, f := range files {
		content, err := afero.ReadFile(config.AppFs, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		sources = append(sources, source{path: f, text: string(content)})
	}
	return sources, nil
}

// parseSources parses every source, printing diagnostics for each file
// that fails.
func parseSources(sources []source) ([]schema.SchemaDefinition, error) {
	var batch []schema.SchemaDefinition
	failed := false
	for _, src := range sources {
		defs, diags := dsl.Parse(src.text)
		if diags.HasErrors() {
			fmt.Fprintln(os.Stderr, diags.ToPrettyString(src.path, src.text))
			failed = true
			continue
		}
		batch = append(batch, defs...)
	}
	if failed {
		return nil, errSyntax
	}
	return batch, nil
}

// loadBatch parses and validates the schemas under paths.
func loadBatch(paths []string) ([]schema.SchemaDefinition, error) {
	sources, err := readSources(paths)
	if err != nil {
		return nil, err
	}
	batch, err := parseSources(sources)
	if err != nil {
		return nil, err
	}
	if violations := validation.ValidateBatch(batch); len(violations) > 0 {
		printViolations(violations)
		return nil, fmt.Errorf("%w: %d violation(s)", errInvalid, len(violations))
	}
	return batch, nil
}

func printViolations(violations []validation.ValidationError) {
	for _, v := range violations {
		ui.PrintError("[%s] %s: %s", v.RuleID, v.Location(), v.Message)
	}
}

func lookup(batch []schema.SchemaDefinition, name schema.SchemaName) *schema.SchemaDefinition {
	def, ok := schema.Lookup(batch, name)
	if !ok {
		return nil
	}
	return &def
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := config.AppFs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(config.AppFs, path, data, 0o644)
}
