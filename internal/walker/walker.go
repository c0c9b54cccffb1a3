package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DocumentFile is a file selected for indexing.
type DocumentFile struct {
	Path      string    // Absolute path on disk.
	RelPath   string    // Slash-separated path relative to the root.
	LibraryID string    // First segment of RelPath.
	TopicName string    // Second segment, only when RelPath has three or more segments.
	Size      int64     // File size in bytes.
	ModTime   time.Time // Modification time at discovery.
}

// Config controls the behaviour of Discover.
type Config struct {
	RootDir string   // Root of the documentation tree.
	Include []string // Glob patterns; empty means DefaultIncludes.
	Exclude []string // Glob patterns applied after Include.

	// SkipDirs are absolute directories never descended into, such as the
	// index directory when it lives inside the tree.
	SkipDirs []string

	// RespectGitignore drops paths matched by the root .gitignore.
	RespectGitignore bool
}

// ErrInvalidRoot is returned when the root is missing or not a directory.
var ErrInvalidRoot = errors.New("invalid root directory")

// Discover walks the tree rooted at config.RootDir and returns every file
// that passes filtering, in lexical path order.
func Discover(config Config) ([]DocumentFile, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("walker: %w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("walker: %w: %s is not a directory", ErrInvalidRoot, root)
	}

	include := config.Include
	if len(include) == 0 {
		include = DefaultIncludes
	}

	skip := make(map[string]bool, len(config.SkipDirs))
	for _, d := range config.SkipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			skip[abs] = true
		}
	}

	var gitignorePatterns []string
	if config.RespectGitignore {
		gitignorePatterns = loadGitignore(filepath.Join(root, ".gitignore"))
	}

	var files []DocumentFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Skip entries we cannot read instead of aborting.
			return nil
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if shouldSkipDir(name) || skip[path] {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(name) || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if matchesGitignore(relPath, gitignorePatterns) {
			return nil
		}
		if !MatchesInclude(relPath, include) || MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		library, topic := Classify(relPath)
		files = append(files, DocumentFile{
			Path:      path,
			RelPath:   relPath,
			LibraryID: library,
			TopicName: topic,
			Size:      fi.Size(),
			ModTime:   fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// Classify derives the library and topic of a slash-separated relative
// path. The topic is only set when the file sits at least two directories
// deep, so "lib/page.md" has no topic.
func Classify(relPath string) (libraryID, topicName string) {
	parts := strings.Split(relPath, "/")
	libraryID = parts[0]
	if len(parts) > 2 {
		topicName = parts[1]
	}
	return libraryID, topicName
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks a slash-separated relative path against
// gitignore patterns. Patterns without a slash match any path segment;
// directory patterns (trailing slash) match any parent directory.
func matchesGitignore(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	parts := strings.Split(relPath, "/")
	dirs := parts[:len(parts)-1]

	for _, pattern := range patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.Trim(pattern, "/")

		if strings.Contains(pattern, "/") {
			if MatchesExclude(relPath, []string{pattern, pattern + "/**"}) {
				return true
			}
			continue
		}

		candidates := parts
		if dirOnly {
			candidates = dirs
		}
		for _, part := range candidates {
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}
