package tvc

const workspaceDir = "workspace"

// Workspace reads and writes the tracked working directory, converting
// between on-disk files and File/Delete objects. Grounded on
// original_source's WorkspaceIo (io/workspace.rs) and Unzip's unpack
// logic (operation/unzip.rs).
type Workspace struct {
	fs FileSystem
}

// NewWorkspace wraps fs as a workspace, scoped to the workspace/ prefix.
func NewWorkspace(fs FileSystem) *Workspace {
	return &Workspace{fs: fs}
}

func (w *Workspace) resolve(p FilePath) string {
	return workspaceDir + "/" + p.String()
}

// Files lists every tracked path currently present under dir, relative
// to the workspace root.
func (w *Workspace) Files(dir FilePath) ([]FilePath, error) {
	all, err := w.fs.AllFilesIn(w.resolve(dir))
	if err != nil {
		return nil, err
	}
	prefix := workspaceDir + "/"
	out := make([]FilePath, 0, len(all))
	for _, f := range all {
		if len(f) > len(prefix) && f[:len(prefix)] == prefix {
			out = append(out, NewFilePath(f[len(prefix):]))
		}
	}
	return out, nil
}

// ConvertToObjs reads every file under dir and wraps it as a File
// object, paired with its workspace-relative path.
func (w *Workspace) ConvertToObjs(dir FilePath) (map[FilePath]Obj, error) {
	paths, err := w.Files(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[FilePath]Obj, len(paths))
	for _, p := range paths {
		buf, err := w.fs.ReadFile(w.resolve(p))
		if err != nil {
			return nil, err
		}
		if buf == nil {
			continue
		}
		out[p] = NewFileObj(buf)
	}
	return out, nil
}

// ReadFile returns the current on-disk content at p, or nil if absent.
func (w *Workspace) ReadFile(p FilePath) ([]byte, error) {
	return w.fs.ReadFile(w.resolve(p))
}

// WriteFile materializes buf at p.
func (w *Workspace) WriteFile(p FilePath, buf []byte) error {
	return w.fs.WriteFile(w.resolve(p), buf)
}

// Delete removes p from the workspace.
func (w *Workspace) Delete(p FilePath) error {
	return w.fs.Delete(w.resolve(p))
}

// Unpack materializes every entry of tree into the workspace: a File
// hash is resolved from the object store and written out, a Delete hash
// causes the path to be removed (spec.md §4.12's "skip on unpack" rule
// for tombstones means nothing is written, only a removal).
func (w *Workspace) Unpack(store *ObjStore, tree TreeObj) error {
	for p, hash := range tree {
		obj, err := store.TryReadObj(hash)
		if err != nil {
			return err
		}
		switch obj.Kind {
		case KindFile:
			if err := w.WriteFile(p, obj.File.Buf); err != nil {
				return err
			}
		case KindDelete:
			if err := w.Delete(p); err != nil {
				return err
			}
		default:
			return &Error{Kind: ErrInvalidWorkspaceObj, Path: p}
		}
	}
	return nil
}
