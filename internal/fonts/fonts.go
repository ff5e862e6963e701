package fonts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Exts are the file extensions treated as fonts.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns the default font directories (relative to process cwd), used when a
// Finder has none configured.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// Finder looks up font files under a list of directories, in order.
type Finder struct {
	Dirs []string
}

// NewFinder returns a Finder over dirs, or BaseDirs when dirs is empty.
func NewFinder(dirs []string) *Finder {
	if len(dirs) == 0 {
		dirs = BaseDirs()
	}
	return &Finder{Dirs: dirs}
}

// ScanDir lists font files under dir as slash-separated relative paths
// ("Inter/Inter-Regular.ttf"). A missing dir yields nothing.
func ScanDir(dir string) ([]string, error) {
	dir = filepath.Clean(dir)
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil:
			return err
		case d.IsDir() || !isFontFile(path):
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFontFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

var matchReplacer = strings.NewReplacer(" ", "", "-", "", "_", "")

// normalizeForMatch folds case and drops separators, so "Inter Regular" matches "inter-regular".
func normalizeForMatch(s string) string {
	return matchReplacer.Replace(strings.ToLower(s))
}

// SearchCandidates returns search terms to try in order.
// Example: "Inter/Inter-Regular.ttf" -> ["Inter/Inter-Regular.ttf", "Inter"].
func SearchCandidates(pathOrName string) []string {
	seen := map[string]bool{pathOrName: true}
	candidates := []string{pathOrName}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}
	// first path segment
	if i := strings.IndexAny(pathOrName, "/\\"); i > 0 {
		add(pathOrName[:i])
	}
	// family before the style suffix
	if i := strings.Index(pathOrName, "-"); i > 0 {
		add(pathOrName[:i])
	}
	base := pathOrName
	for _, ext := range Exts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			add(strings.TrimSpace(base))
			break
		}
	}
	return candidates
}

// Find searches the dirs for a font whose path matches search, trying SearchCandidates in order.
// An empty search matches any font. Returns the full path, or os.ErrNotExist.
// When several files match, one whose path contains "Regular" wins.
func (f *Finder) Find(search string) (string, error) {
	terms := []string{""}
	if strings.TrimSpace(search) != "" {
		terms = SearchCandidates(search)
	}
	for _, term := range terms {
		if full, ok := f.match(normalizeForMatch(term)); ok {
			return full, nil
		}
	}
	return "", os.ErrNotExist
}

func (f *Finder) match(norm string) (string, bool) {
	first := ""
	for _, base := range f.Dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			n := normalizeForMatch(rel)
			if !strings.Contains(n, norm) {
				continue
			}
			full := filepath.Join(base, filepath.FromSlash(rel))
			if strings.Contains(n, "regular") {
				return full, true
			}
			if first == "" {
				first = full
			}
		}
	}
	return first, first != ""
}
