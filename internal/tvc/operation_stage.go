package tvc

// Stage scans workspace/<scope> for content that differs from the
// branch's trace tree and/or the current staging tree, writing new File
// objects for additions/changes and Delete tombstones for paths that
// vanished from the workspace. Fails with ErrChangedFileNotExits if
// nothing changed. Grounded on original_source's operation/stage.rs.
func Stage(repo *Repository, branch BranchName, scope FilePath) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return stageLocked(repo, branch, scope)
}

func stageLocked(repo *Repository, branch BranchName, scope FilePath) error {
	stageTree, err := repo.staging.Read()
	if err != nil {
		return err
	}
	if stageTree == nil {
		stageTree = TreeObj{}
	}

	traceTree := TreeObj{}
	head, err := repo.refs.ReadHead(branch)
	if err != nil {
		return err
	}
	if !head.IsZero() {
		traceTree, err = repo.trace.Read(head)
		if err != nil {
			return err
		}
	}

	changed := false

	objs, err := repo.workspace.ConvertToObjs(scope)
	if err != nil {
		return err
	}
	for path, obj := range objs {
		file, _ := obj.AsFile()
		meta, err := NewMeta(NewFileObj(file.Buf))
		if err != nil {
			return err
		}
		if !traceTree.ChangedHash(path, meta.Hash) {
			continue
		}
		if stageTree.ChangedHash(path, meta.Hash) {
			changed = true
			if _, err := repo.store.Write(NewFileObj(file.Buf)); err != nil {
				return err
			}
			stageTree[path] = meta.Hash
		}
	}

	deleted, err := scanDeletedFiles(repo, traceTree, scope)
	if err != nil {
		return err
	}
	for path, priorHash := range deleted {
		changed = true
		meta, err := repo.store.Write(NewDeleteObj(priorHash))
		if err != nil {
			return err
		}
		stageTree[path] = meta.Hash
	}

	if !changed {
		return newErr(ErrChangedFileNotExits)
	}

	return repo.staging.WriteTree(stageTree)
}

// scanDeletedFiles returns every path present in traceTree but no
// longer present anywhere in the workspace, paired with the hash it had
// before deletion.
func scanDeletedFiles(repo *Repository, traceTree TreeObj, scope FilePath) (map[FilePath]ObjHash, error) {
	present, err := repo.workspace.Files("")
	if err != nil {
		return nil, err
	}
	presentSet := make(map[FilePath]struct{}, len(present))
	for _, p := range present {
		presentSet[p] = struct{}{}
	}

	out := make(map[FilePath]ObjHash)
	for path, hash := range traceTree {
		if scope != "" && scope != "." && !hasPrefixPath(path, scope) {
			continue
		}
		if _, ok := presentSet[path]; !ok {
			out[path] = hash
		}
	}
	return out, nil
}

func hasPrefixPath(path, scope FilePath) bool {
	p, s := path.String(), scope.String()
	return p == s || (len(p) > len(s) && p[:len(s)+1] == s+"/")
}
