package room

import (
	"context"

	"github.com/meltosdev/meltos/internal/difftext"
	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/tvc"
)

// Push installs a client-submitted bundle into the room's repository,
// rejecting it with ExceedRepositorySize if doing so would grow the
// repository past sizeLimit, and broadcasts Pushed{bundle} to every
// connected participant, the pusher included, on success (spec.md §6's push operation
// — the room is the remote a client's tvc.Push talks to).
func (r *Room) Push(bundle tvc.Bundle) error {
	if r.sizeLimit > 0 {
		current, err := r.repo.TotalSize()
		if err != nil {
			return err
		}
		if projected := current + bundle.ObjDataSize(); projected > r.sizeLimit {
			return errExceedRepositorySize(r.sizeLimit, projected)
		}
	}

	if err := tvc.Save(r.repo, bundle); err != nil {
		return err
	}

	r.SendAll(Message{Kind: MessagePushed, Bundle: &bundle})
	return nil
}

// Fetch snapshots the room's entire repository for a client that has
// none yet, or that is resynchronizing from scratch (spec.md §6's
// fetch operation).
func (r *Room) Fetch() (tvc.Bundle, error) {
	return tvc.CreateBundle(r.repo)
}

// SyncBundle pairs the repository snapshot with every open discussion's
// full transcript, the payload spec.md §6's sync operation hands a
// freshly-joined participant so they need neither a separate fetch nor
// a discussion-by-discussion replay.
type SyncBundle struct {
	Repository  tvc.Bundle
	Discussions []discussion.Bundle
}

// Sync builds the combined repository-and-discussion snapshot.
func (r *Room) Sync(ctx context.Context) (SyncBundle, error) {
	repoBundle, err := tvc.CreateBundle(r.repo)
	if err != nil {
		return SyncBundle{}, err
	}
	discussions, err := r.discussions.AllDiscussions(ctx)
	if err != nil {
		return SyncBundle{}, err
	}
	return SyncBundle{Repository: repoBundle, Discussions: discussions}, nil
}

// Diff renders a unified line diff between two file objects in the
// room's repository, for a discussion participant previewing a change
// inline rather than fetching the whole bundle. Purely informational —
// TVC's own Merge never consults it (source-wins, per the dormant
// Conflicted variant).
func (r *Room) Diff(path string, oldHash, newHash tvc.ObjHash) (*difftext.FileDiff, error) {
	var oldContent, newContent []byte

	if oldHash != "" {
		obj, ok, err := r.repo.ReadObj(oldHash)
		if err != nil {
			return nil, err
		}
		if ok {
			if file, err := obj.AsFile(); err == nil {
				oldContent = file.Buf
			}
		}
	}
	if newHash != "" {
		obj, ok, err := r.repo.ReadObj(newHash)
		if err != nil {
			return nil, err
		}
		if ok {
			if file, err := obj.AsFile(); err == nil {
				newContent = file.Buf
			}
		}
	}

	return difftext.Unified(path, oldContent, newContent, difftext.DefaultContextLines), nil
}
