package handlers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileMatch is a single file found for a spoken query.
type FileMatch struct {
	Path string
	Name string
	Size int64
}

// FileSearcher finds files whose names contain a spoken query. It
// shells out to the fastest tool the host has (mdfind on macOS, find
// elsewhere) and falls back to a directory walk.
type FileSearcher struct {
	root       string
	maxResults int
	ignoreDirs []string
	hasMdfind  bool
	hasFind    bool
}

// FileOption configures a FileSearcher.
type FileOption func(*FileSearcher)

// WithSearchRoot sets the directory searches start from.
func WithSearchRoot(root string) FileOption {
	return func(f *FileSearcher) { f.root = root }
}

// WithMaxResults caps how many matches a search returns.
func WithMaxResults(n int) FileOption {
	return func(f *FileSearcher) { f.maxResults = n }
}

// NewFileSearcher creates a FileSearcher rooted at the user's home
// directory.
func NewFileSearcher(opts ...FileOption) *FileSearcher {
	home, _ := os.UserHomeDir()
	f := &FileSearcher{
		root:       home,
		maxResults: 25,
		ignoreDirs: []string{
			"node_modules", "vendor", ".git", "__pycache__",
			".cache", ".venv", "venv", ".local",
		},
		hasMdfind: runtime.GOOS == "darwin" && commandExists("mdfind"),
		hasFind:   runtime.GOOS != "windows" && commandExists("find"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Handle runs a search for the spoken query and logs the matches.
func (f *FileSearcher) Handle(ctx context.Context, query string) error {
	matches, err := f.Search(ctx, query)
	if err != nil {
		return err
	}
	log.Info().
		Str("query", query).
		Int("matches", len(matches)).
		Msg("[Handlers] File search complete")
	for _, m := range matches {
		log.Info().Str("path", m.Path).Int64("size", m.Size).Msg("[Handlers] Match")
	}
	return nil
}

// Search finds files whose names contain the query, case-insensitive.
func (f *FileSearcher) Search(ctx context.Context, query string) ([]FileMatch, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, fmt.Errorf("files: empty query")
	}

	if f.hasMdfind {
		if matches, err := f.searchMdfind(ctx, query); err == nil {
			return matches, nil
		}
	}
	if f.hasFind {
		if matches, err := f.searchFind(ctx, query); err == nil {
			return matches, nil
		}
	}
	return f.searchWalk(ctx, query)
}

func (f *FileSearcher) searchMdfind(ctx context.Context, query string) ([]FileMatch, error) {
	cmd := exec.CommandContext(ctx, "mdfind", "-onlyin", f.root, "-name", query)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("files: mdfind: %w", err)
	}
	return f.parseFileList(ctx, output)
}

func (f *FileSearcher) searchFind(ctx context.Context, query string) ([]FileMatch, error) {
	args := []string{f.root}
	if len(f.ignoreDirs) > 0 {
		args = append(args, "(")
		for i, ignore := range f.ignoreDirs {
			if i > 0 {
				args = append(args, "-o")
			}
			args = append(args, "-name", ignore)
		}
		args = append(args, ")", "-prune", "-o")
	}
	args = append(args, "-type", "f", "-iname", "*"+query+"*", "-print")

	cmd := exec.CommandContext(ctx, "find", args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("files: find: %w", err)
	}
	return f.parseFileList(ctx, output)
}

func (f *FileSearcher) searchWalk(ctx context.Context, query string) ([]FileMatch, error) {
	var matches []FileMatch
	errLimit := fmt.Errorf("limit reached")

	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			for _, ignore := range f.ignoreDirs {
				if d.Name() == ignore {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.Contains(strings.ToLower(d.Name()), query) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		matches = append(matches, FileMatch{Path: path, Name: d.Name(), Size: info.Size()})
		if len(matches) >= f.maxResults {
			return errLimit
		}
		return nil
	})
	if err != nil && err != errLimit {
		return matches, err
	}
	return matches, nil
}

func (f *FileSearcher) parseFileList(ctx context.Context, output []byte) ([]FileMatch, error) {
	var matches []FileMatch
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return matches, ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		info, err := os.Stat(line)
		if err != nil || info.IsDir() {
			continue
		}
		matches = append(matches, FileMatch{Path: line, Name: filepath.Base(line), Size: info.Size()})
		if len(matches) >= f.maxResults {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return matches, fmt.Errorf("files: parse output: %w", err)
	}
	return matches, nil
}

// commandExists reports whether a command is on PATH.
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
