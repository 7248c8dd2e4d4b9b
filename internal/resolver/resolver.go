// Package resolver maps wiki link targets onto files of a content tree.
//
// An Index keeps two views of the tree: every normalized path, and every
// normalized basename with the paths sharing it. Resolution is deterministic:
// ties between files with the same basename go to the lexicographically
// smallest path.
package resolver

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Entry describes one indexed file.
type Entry struct {
	Path     string
	Basename string
	Ext      string
}

// Index is a concurrency-safe content index.
type Index struct {
	mu        sync.RWMutex
	root      string
	paths     map[string]Entry
	basenames map[string][]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		paths:     make(map[string]Entry),
		basenames: make(map[string][]string),
	}
}

// BuildIndex indexes the given file paths.
func BuildIndex(paths []string) *Index {
	idx := NewIndex()
	for _, p := range paths {
		idx.AddFile(p)
	}
	return idx
}

// BuildIndexFromRoot indexes every regular file below root. A missing root
// yields an empty index.
func BuildIndexFromRoot(root string) (*Index, error) {
	root = strings.TrimSuffix(NormalizePath(root), "/")
	idx := NewIndex()
	idx.root = root

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return idx, nil
	}

	err = fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			idx.AddFile(root + "/" + p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Root returns the directory the index was built from, or "".
func (idx *Index) Root() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.root
}

// SetRoot records the directory relative hints are tried against.
func (idx *Index) SetRoot(root string) {
	idx.mu.Lock()
	idx.root = strings.TrimSuffix(NormalizePath(root), "/")
	idx.mu.Unlock()
}

// AddFile indexes p. Adding an indexed path is a no-op.
func (idx *Index) AddFile(p string) {
	np := NormalizePath(p)
	basename, ext := splitBasename(path.Base(np))
	key := NormalizeName(basename)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.paths[np] = Entry{Path: np, Basename: basename, Ext: ext}
	if !slices.Contains(idx.basenames[key], np) {
		idx.basenames[key] = append(idx.basenames[key], np)
	}
}

// RemoveFile drops p from the index. Unknown paths are ignored.
func (idx *Index) RemoveFile(p string) {
	np := NormalizePath(p)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.paths[np]
	if !ok {
		return
	}
	delete(idx.paths, np)

	key := NormalizeName(entry.Basename)
	bucket := slices.DeleteFunc(idx.basenames[key], func(s string) bool { return s == np })
	if len(bucket) == 0 {
		delete(idx.basenames, key)
		return
	}
	idx.basenames[key] = bucket
}

// Has reports whether p is indexed.
func (idx *Index) Has(p string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.paths[NormalizePath(p)]
	return ok
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.paths)
}

// Siblings returns the other indexed paths sharing p's basename, sorted.
// A new file can take over links that resolved to any of them.
func (idx *Index) Siblings(p string) []string {
	np := NormalizePath(p)
	basename, _ := splitBasename(path.Base(np))

	idx.mu.RLock()
	bucket := idx.basenames[NormalizeName(basename)]
	out := make([]string, 0, len(bucket))
	for _, b := range bucket {
		if b != np {
			out = append(out, b)
		}
	}
	idx.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Paths returns all indexed paths in sorted order.
func (idx *Index) Paths() []string {
	idx.mu.RLock()
	out := make([]string, 0, len(idx.paths))
	for p := range idx.paths {
		out = append(out, p)
	}
	idx.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Resolve returns the path link points at.
func (idx *Index) Resolve(link Link) (string, bool) {
	c := idx.Candidates(link)
	if len(c) == 0 {
		return "", false
	}
	return c[0], true
}

// Candidates returns every path link could refer to, best match first.
// An exact hinted match is returned alone.
func (idx *Index) Candidates(link Link) []string {
	if link.Name == "" {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if link.PathHint != "" {
		if p, ok := idx.hinted(link); ok {
			return []string{p}
		}
	}

	found := idx.byName(link.Name, link.Ext)
	if len(found) == 0 && link.Ext != "" {
		// "config.local" names a file, not a "local" extension.
		found = idx.byName(link.Name+"."+link.Ext, "")
	}
	if len(found) > 1 && link.PathHint != "" {
		suffix := "/" + strings.Trim(NormalizeName(link.PathHint), "/") + "/"
		narrowed := slices.DeleteFunc(slices.Clone(found), func(p string) bool {
			return !strings.Contains("/"+strings.ToLower(p), suffix)
		})
		if len(narrowed) > 0 {
			found = narrowed
		}
	}
	sort.Strings(found)
	return found
}

func (idx *Index) hinted(link Link) (string, bool) {
	exts := []string{link.Ext}
	if link.Ext == "" {
		exts = []string{"mdx", "md"}
	}
	for _, ext := range exts {
		rel := NormalizePath(link.PathHint + "/" + link.Name + "." + ext)
		if _, ok := idx.paths[rel]; ok {
			return rel, true
		}
		if idx.root != "" {
			abs := NormalizePath(idx.root + "/" + strings.TrimPrefix(rel, "/"))
			if _, ok := idx.paths[abs]; ok {
				return abs, true
			}
		}
	}
	return "", false
}

func (idx *Index) byName(name, ext string) []string {
	bucket := idx.basenames[NormalizeName(name)]
	out := make([]string, 0, len(bucket))
	for _, p := range bucket {
		if ext != "" && !strings.EqualFold(idx.paths[p].Ext, ext) {
			continue
		}
		out = append(out, p)
	}
	return out
}

var multiSlash = regexp.MustCompile(`/+`)

// NormalizePath converts backslashes to slashes, collapses repeated slashes
// and trims surrounding whitespace.
func NormalizePath(p string) string {
	return strings.TrimSpace(multiSlash.ReplaceAllString(strings.ReplaceAll(p, `\`, "/"), "/"))
}

// NormalizeName folds a basename for case-insensitive, Unicode-stable
// comparison.
func NormalizeName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// splitBasename splits a file name at its last dot. Only alphanumeric
// suffixes count as extensions, so "v1.2 notes" keeps its dot.
func splitBasename(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || !isExt(name[i+1:]) {
		return name, ""
	}
	return name[:i], name[i+1:]
}

func isExt(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
