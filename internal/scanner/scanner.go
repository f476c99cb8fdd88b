package scanner

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/reviewlens/reviewlens/internal/config"
	"github.com/reviewlens/reviewlens/internal/githubapi"
)

// languageByExtension maps supported source file extensions to language
// names. Files outside this map are not worth embedding.
var languageByExtension = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".rb":    "Ruby",
	".rs":    "Rust",
	".c":     "C",
	".h":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".scala": "Scala",
	".sh":    "Shell",
	".sql":   "SQL",
}

// File is one repository file selected for indexing.
type File struct {
	Path     string
	Size     int64
	Language string
}

// Stats summarizes one scan of a repository tree.
type Stats struct {
	TotalFiles      int
	SupportedFiles  int
	IgnoredFiles    int
	SkippedOversize int
	TotalBytes      int64
	SupportedBytes  int64
	Languages       map[string]int
}

// Scanner selects the indexable subset of a repository's file tree:
// supported extension, not matching an ignore pattern, within the size
// cap.
type Scanner struct {
	provider    githubapi.Provider
	ignore      []Pattern
	maxFileSize int64
	log         *slog.Logger
}

// New builds a Scanner from settings. Invalid ignore patterns fail
// construction rather than being skipped silently.
func New(provider githubapi.Provider, cfg config.ScannerSettings, log *slog.Logger) (*Scanner, error) {
	patterns, err := CompilePatterns(cfg.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		provider:    provider,
		ignore:      patterns,
		maxFileSize: cfg.MaxFileSize,
		log:         log,
	}, nil
}

// Scan lists the repository tree and returns the indexable files in
// deterministic path order.
func (s *Scanner) Scan(ctx context.Context, owner, repo string) ([]File, error) {
	files, _, err := s.ScanWithStats(ctx, owner, repo)
	return files, err
}

// ScanWithStats is Scan plus a summary of what was kept and why the rest
// was dropped. Both outputs come from a single tree listing.
func (s *Scanner) ScanWithStats(ctx context.Context, owner, repo string) ([]File, *Stats, error) {
	listing, err := s.provider.ListFiles(ctx, owner, repo)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{Languages: make(map[string]int)}
	var selected []File

	for _, rf := range listing {
		stats.TotalFiles++
		stats.TotalBytes += rf.Size

		if s.ignored(rf.Path) {
			stats.IgnoredFiles++
			continue
		}

		lang, ok := languageByExtension[strings.ToLower(path.Ext(rf.Path))]
		if !ok {
			continue
		}

		if s.maxFileSize > 0 && rf.Size > s.maxFileSize {
			stats.SkippedOversize++
			s.log.Debug("skipping oversized file",
				"path", rf.Path, "size", rf.Size, "limit", s.maxFileSize)
			continue
		}

		stats.SupportedFiles++
		stats.SupportedBytes += rf.Size
		stats.Languages[lang]++
		selected = append(selected, File{Path: rf.Path, Size: rf.Size, Language: lang})
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Path < selected[j].Path })

	s.log.Info("scanned repository tree",
		"owner", owner, "repo", repo,
		"total", stats.TotalFiles, "supported", stats.SupportedFiles,
		"ignored", stats.IgnoredFiles, "oversize", stats.SkippedOversize)

	return selected, stats, nil
}

func (s *Scanner) ignored(filePath string) bool {
	for _, p := range s.ignore {
		if p.Match(filePath) {
			return true
		}
	}
	return false
}

// SupportedExtensions returns the extensions the scanner keeps, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageByExtension))
	for ext := range languageByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
