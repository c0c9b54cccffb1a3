package walker

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SupportedExtensions are the file types indexed when no include patterns
// are configured.
var SupportedExtensions = []string{".md", ".mdx", ".txt", ".pdf", ".json", ".yaml", ".yml", ".xml", ".csv"}

// DefaultIncludes holds one "**/*<ext>" pattern per supported extension.
var DefaultIncludes = func() []string {
	patterns := make([]string, len(SupportedExtensions))
	for i, ext := range SupportedExtensions {
		patterns[i] = "**/*" + ext
	}
	return patterns
}()

// skippedDirs are never descended into, in addition to hidden directories.
var skippedDirs = []string{"node_modules"}

func shouldSkipDir(name string) bool {
	if isHidden(name) {
		return true
	}
	for _, d := range skippedDirs {
		if strings.EqualFold(name, d) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// MatchesInclude returns true if the given relative path matches any of the
// include patterns. If patterns is empty, everything is included.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns. If patterns is empty, nothing is excluded.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny checks the slash-separated relPath, and then its base name,
// against each doublestar pattern.
func matchesAny(relPath string, patterns []string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// ValidatePatterns reports the first syntactically invalid glob.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}
