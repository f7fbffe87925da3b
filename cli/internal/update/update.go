// Package update compares the running CLI version against the minimum a
// project requires.
package update

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"
)

// ErrOutdated is returned when the CLI is older than a project requires.
var ErrOutdated = errors.New("schemaforge is older than the project requires")

// CheckMinimum fails with ErrOutdated when current is older than minimum.
// An empty minimum accepts every version.
func CheckMinimum(current, minimum string) error {
	if minimum == "" {
		return nil
	}
	cur, err := version.NewVersion(current)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}
	constraint, err := version.NewConstraint(">= " + minimum)
	if err != nil {
		return fmt.Errorf("invalid min_version %q: %w", minimum, err)
	}
	if !constraint.Check(cur) {
		return fmt.Errorf("%w: running %s, need %s or newer", ErrOutdated, cur, minimum)
	}
	return nil
}
