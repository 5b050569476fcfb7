package tvc

import "strings"

// ClipFileSystem rewrites every path passed through it by prefixing a
// fixed base before delegating to an inner FileSystem, and strips that
// same prefix back off paths the inner FileSystem returns. Grounded on
// original_source/meltos_tvc/src/file_system/clip.rs's ClipPathFileSystem,
// used there to let a Repository address ".meltos/..." paths while the
// underlying filesystem is rooted one level above the workspace.
type ClipFileSystem struct {
	inner FileSystem
	base  string
}

// NewClipFileSystem wraps inner so every path is resolved under base.
func NewClipFileSystem(inner FileSystem, base string) *ClipFileSystem {
	return &ClipFileSystem{inner: inner, base: normPath(base)}
}

func (c *ClipFileSystem) join(path string) string {
	path = normPath(path)
	if c.base == "" {
		return path
	}
	if path == "" {
		return c.base
	}
	return c.base + "/" + path
}

func (c *ClipFileSystem) unclip(path string) string {
	path = normPath(path)
	prefix := c.base + "/"
	if c.base != "" && strings.HasPrefix(path, prefix) {
		return path[len(prefix):]
	}
	if path == c.base {
		return ""
	}
	return path
}

func (c *ClipFileSystem) Stat(path string) (*Stat, error) {
	return c.inner.Stat(c.join(path))
}

func (c *ClipFileSystem) WriteFile(path string, buf []byte) error {
	return c.inner.WriteFile(c.join(path), buf)
}

func (c *ClipFileSystem) CreateDir(path string) error {
	return c.inner.CreateDir(c.join(path))
}

func (c *ClipFileSystem) ReadFile(path string) ([]byte, error) {
	return c.inner.ReadFile(c.join(path))
}

func (c *ClipFileSystem) ReadDir(path string) ([]string, error) {
	entries, err := c.inner.ReadDir(c.join(path))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = c.unclip(e)
	}
	return out, nil
}

func (c *ClipFileSystem) AllFilesIn(path string) ([]string, error) {
	entries, err := c.inner.AllFilesIn(c.join(path))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = c.unclip(e)
	}
	return out, nil
}

func (c *ClipFileSystem) Delete(path string) error {
	return c.inner.Delete(c.join(path))
}
