package jobs

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// RemoveFiles deletes each non-empty path, ignoring files that are already
// gone. It attempts every path and joins the failures.
func RemoveFiles(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}
