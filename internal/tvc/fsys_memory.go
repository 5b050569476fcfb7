package tvc

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFileSystem is an in-memory FileSystem, used by tests and by the
// WASM-facing room client analogue. Grounded on
// original_source/meltos_tvc/src/file_system/memory.rs: a flat map keyed
// by normalized path is sufficient because TVC never needs real
// directory listings beyond prefix matching.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	times map[string]time.Time
}

// NewMemoryFileSystem constructs an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files: make(map[string][]byte),
		times: make(map[string]time.Time),
	}
}

func normPath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	return p
}

func (m *MemoryFileSystem) Stat(path string) (*Stat, error) {
	path = normPath(path)
	m.mu.RLock()
	defer m.mu.RUnlock()

	if buf, ok := m.files[path]; ok {
		t := m.times[path]
		return &Stat{Kind: StatFile, Size: int64(len(buf)), CreateTime: t, UpdateTime: t}, nil
	}

	prefix := path + "/"
	count := 0
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			count++
		}
	}
	if count == 0 && path != "" {
		return nil, nil
	}
	return &Stat{Kind: StatDir, Size: int64(count)}, nil
}

func (m *MemoryFileSystem) WriteFile(path string, buf []byte) error {
	path = normPath(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	m.files[path] = cp
	m.times[path] = time.Now()
	return nil
}

func (m *MemoryFileSystem) CreateDir(path string) error {
	// Directories are implicit in the flat-map model; nothing to persist.
	return nil
}

func (m *MemoryFileSystem) ReadFile(path string) ([]byte, error) {
	path = normPath(path)
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return cp, nil
}

func (m *MemoryFileSystem) ReadDir(path string) ([]string, error) {
	path = normPath(path)
	prefix := path
	if prefix != "" {
		prefix += "/"
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" {
			continue
		}
		if idx := strings.Index(rest, "/"); idx >= 0 {
			seen[prefix+rest[:idx]] = struct{}{}
		} else {
			seen[p] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, nil
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryFileSystem) AllFilesIn(path string) ([]string, error) {
	path = normPath(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[path]; ok {
		return []string{path}, nil
	}

	prefix := path
	if prefix != "" {
		prefix += "/"
	}
	var out []string
	for p := range m.files {
		if prefix == "" || strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryFileSystem) Delete(path string) error {
	path = normPath(path)
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.files, path)
	delete(m.times, path)

	prefix := path + "/"
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			delete(m.files, p)
			delete(m.times, p)
		}
	}
	return nil
}

// ForceWrite writes buf at path unconditionally, bypassing no validation
// (there is none to bypass) — kept to mirror the original's
// MockFileSystem::force_write, used pervasively by tests that seed
// workspace content before calling Stage.
func (m *MemoryFileSystem) ForceWrite(path string, buf []byte) {
	_ = m.WriteFile(path, buf)
}
