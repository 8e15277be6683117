package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// skippedDirectories are never offered in the directory browser
var skippedDirectories = map[string]bool{
	"System":       true,
	"Library":      true,
	"Applications": true,
	"bin":          true,
	"sbin":         true,
	"dev":          true,
	"proc":         true,
	"sys":          true,
}

// PathManager handles directory navigation under the download root and the
// short-id encoding used to fit paths into Telegram callback data (64 byte
// limit). Encodings are process-scoped and not persisted.
type PathManager struct {
	root    string
	codes   map[string]string // path -> code
	paths   map[string]string // code -> path
	counter int
	mu      sync.Mutex
}

// NewPathManager creates a path manager rooted at the download location
func NewPathManager(root string) *PathManager {
	return &PathManager{
		root:  root,
		codes: make(map[string]string),
		paths: make(map[string]string),
	}
}

// Root returns the download root
func (p *PathManager) Root() string {
	return p.root
}

// EncodePath returns a short stable identifier for a path
func (p *PathManager) EncodePath(path string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if code, ok := p.codes[path]; ok {
		return code
	}
	code := strconv.Itoa(p.counter)
	p.counter++
	p.codes[path] = code
	p.paths[code] = path
	return code
}

// DecodePath resolves a short identifier back to its path, falling back to
// the root for unknown codes
func (p *PathManager) DecodePath(code string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path, ok := p.paths[code]; ok {
		return path
	}
	return p.root
}

// WithinRoot reports whether path resolves inside the download root
func (p *PathManager) WithinRoot(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		return false
	}
	return absPath == absRoot || strings.HasPrefix(absPath, absRoot+string(os.PathSeparator))
}

// ListSubdirectories returns the browsable directories under current,
// sorted by name. Hidden and system directories are skipped.
func (p *PathManager) ListSubdirectories(current string) ([]string, error) {
	if current == "" || !p.WithinRoot(current) {
		current = p.root
	}

	entries, err := os.ReadDir(current)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || skippedDirectories[name] {
			continue
		}
		dirs = append(dirs, name)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ParentDirectory returns the parent of path, clamped to the root
func (p *PathManager) ParentDirectory(path string) string {
	parent := filepath.Dir(path)
	if !p.WithinRoot(parent) {
		return p.root
	}
	return parent
}

// JoinWithinRoot joins path components, falling back to the root when the
// result would escape it
func (p *PathManager) JoinWithinRoot(parts ...string) string {
	joined := filepath.Join(parts...)
	if !p.WithinRoot(joined) {
		log.Printf("Path %s is outside the download root, using root instead", joined)
		return p.root
	}
	return joined
}

// SanitizeFilename makes a filename safe for filesystem operations
func (p *PathManager) SanitizeFilename(name string) string {
	safe := strings.ReplaceAll(name, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.TrimSpace(safe)
	if safe == "" {
		safe = "unknown_file"
	}
	return safe
}

// EnsureDirectory creates dir if it does not exist
func (p *PathManager) EnsureDirectory(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// UniqueSavePath returns a path under dir for filename that does not collide
// with an existing file, suffixing name_1, name_2, ... as needed
func (p *PathManager) UniqueSavePath(dir, filename string) string {
	safe := p.SanitizeFilename(filename)
	ext := filepath.Ext(safe)
	base := strings.TrimSuffix(safe, ext)

	candidate := filepath.Join(dir, safe)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
}
