package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyOutput indicates a missing manifest output path
	ErrEmptyOutput = errors.New("empty output path")

	// ErrInvalidPattern indicates a file pattern that cannot be compiled
	ErrInvalidPattern = errors.New("invalid file pattern")

	// ErrEmptyCategoryDir indicates a category without a directory
	ErrEmptyCategoryDir = errors.New("empty category directory")

	// ErrAbsolutePath indicates a path that is not relative to the root
	ErrAbsolutePath = errors.New("path must be relative to the root")

	// ErrOutsideRoot indicates a relative path that escapes the root
	ErrOutsideRoot = errors.New("path escapes the root")

	// ErrOutputInCategory indicates an output the scan would list as a data file
	ErrOutputInCategory = errors.New("output would be listed as a data file")

	// ErrInvalidDebounce indicates a non-positive watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidLockTimeout indicates a negative lock timeout
	ErrInvalidLockTimeout = errors.New("invalid lock timeout")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateOutput(cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validatePattern(cfg.Pattern); err != nil {
		errs = append(errs, err)
	}

	if err := validateCategories(&cfg.Categories); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutputPlacement(cfg); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%w: debounce must be positive, got %s", ErrInvalidDebounce, cfg.Watch.Debounce))
	}

	if cfg.Lock.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout cannot be negative, got %s", ErrInvalidLockTimeout, cfg.Lock.Timeout))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(output string) error {
	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("%w: output is required", ErrEmptyOutput)
	}
	return validateRelative("output", output)
}

func validatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: pattern is required", ErrInvalidPattern)
	}
	// Patterns select base names; listing never descends into subdirectories.
	if strings.Contains(pattern, "/") {
		return fmt.Errorf("%w: pattern %q must not contain '/'", ErrInvalidPattern, pattern)
	}
	if _, err := glob.Compile(pattern, '/'); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return nil
}

func validateCategories(cfg *CategoriesConfig) error {
	var errs []error

	dirs := []struct {
		key string
		dir string
	}{
		{"lus", cfg.LUs},
		{"frames", cfg.Frames},
		{"constructions", cfg.Constructions},
	}

	for _, d := range dirs {
		if strings.TrimSpace(d.dir) == "" {
			errs = append(errs, fmt.Errorf("%w: categories.%s is required", ErrEmptyCategoryDir, d.key))
			continue
		}
		if err := validateRelative("categories."+d.key, d.dir); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// validateOutputPlacement rejects an output that sits directly in a category
// directory and matches the pattern, since the next scan would list it.
func validateOutputPlacement(cfg *Config) error {
	if strings.TrimSpace(cfg.Output) == "" {
		return nil
	}
	g, err := glob.Compile(cfg.Pattern, '/')
	if err != nil {
		return nil
	}

	out := path.Clean(filepath.ToSlash(cfg.Output))
	outDir, outName := path.Dir(out), path.Base(out)
	if !g.Match(outName) {
		return nil
	}

	for _, d := range []struct {
		key string
		dir string
	}{
		{"lus", cfg.Categories.LUs},
		{"frames", cfg.Categories.Frames},
		{"constructions", cfg.Categories.Constructions},
	} {
		if strings.TrimSpace(d.dir) == "" {
			continue
		}
		if path.Clean(filepath.ToSlash(d.dir)) == outDir {
			return fmt.Errorf("%w: output %q is inside categories.%s", ErrOutputInCategory, cfg.Output, d.key)
		}
	}
	return nil
}

// validateRelative rejects absolute paths and paths leaving the root, since
// every manifest entry is written relative to the root.
func validateRelative(key, p string) error {
	if filepath.IsAbs(p) || path.IsAbs(filepath.ToSlash(p)) {
		return fmt.Errorf("%w: %s is %q", ErrAbsolutePath, key, p)
	}
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %s is %q", ErrOutsideRoot, key, p)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every joined sentinel with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{
		msg:  fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")),
		errs: errs,
	}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
