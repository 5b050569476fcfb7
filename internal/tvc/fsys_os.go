package tvc

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem anchors a FileSystem at a real directory on disk,
// grounded on original_source/meltos_tvc/src/file_system/std_fs.rs
// (create-parents-on-write, recursive delete, recursive all-files-in).
type OSFileSystem struct {
	root string
}

// NewOSFileSystem anchors paths passed to the returned FileSystem under root.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

func (o *OSFileSystem) resolve(path string) string {
	return filepath.Join(o.root, filepath.FromSlash(normPath(path)))
}

func (o *OSFileSystem) Stat(path string) (*Stat, error) {
	full := o.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errIO(err)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(full)
		if err != nil {
			return nil, errIO(err)
		}
		return &Stat{Kind: StatDir, Size: int64(len(entries)), UpdateTime: info.ModTime()}, nil
	}
	return &Stat{Kind: StatFile, Size: info.Size(), UpdateTime: info.ModTime()}, nil
}

func (o *OSFileSystem) WriteFile(path string, buf []byte) error {
	full := o.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return errIO(err)
	}
	if err := os.WriteFile(full, buf, 0o640); err != nil {
		return errIO(err)
	}
	return nil
}

func (o *OSFileSystem) CreateDir(path string) error {
	if err := os.MkdirAll(o.resolve(path), 0o750); err != nil {
		return errIO(err)
	}
	return nil
}

func (o *OSFileSystem) ReadFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(o.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errIO(err)
	}
	return buf, nil
}

func (o *OSFileSystem) ReadDir(path string) ([]string, error) {
	full := o.resolve(path)
	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errIO(err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, normPath(path)+"/"+e.Name())
	}
	return out, nil
}

func (o *OSFileSystem) AllFilesIn(path string) ([]string, error) {
	full := o.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errIO(err)
	}

	if !info.IsDir() {
		return []string{normPath(path)}, nil
	}

	var out []string
	err = filepath.WalkDir(full, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(o.root, p)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errIO(err)
	}
	return out, nil
}

func (o *OSFileSystem) Delete(path string) error {
	if err := os.RemoveAll(o.resolve(path)); err != nil {
		return errIO(err)
	}
	return nil
}
