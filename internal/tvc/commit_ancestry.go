package tvc

import "container/heap"

// ancestryNode is one entry in the bidirectional merge-base search,
// ordered by the sequence number it was discovered at (higher = more
// recently reached, so a max-heap visits the most recent frontier
// first) — the tvc equivalent of a committer-date ordered heap, since
// CommitObj carries no timestamp of its own.
type ancestryNode struct {
	hash CommitHash
	seq  int
}

// commitHeap is a max-heap of ancestry search frontier nodes, grounded
// on internal/gitcore/merge.go's commitHeap (rybkr-gitvista): a
// bidirectional BFS walks outward from both sides until a commit has
// been reached from both, which is the merge base.
type commitHeap []ancestryNode

func (h commitHeap) Len() int            { return len(h) }
func (h commitHeap) Less(i, j int) bool  { return h[i].seq > h[j].seq }
func (h commitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *commitHeap) Push(x any)         { *h = append(*h, x.(ancestryNode)) }
func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

const (
	sideOurs   = 1
	sideTheirs = 2
)

// mergeBase finds the best common ancestor of ours and theirs by
// walking CommitObj.Parents through store, breaking ties toward the
// commit discovered most recently on either side.
func mergeBase(store *ObjStore, ours, theirs CommitHash) (CommitHash, error) {
	if ours == theirs {
		return ours, nil
	}

	visited := make(map[CommitHash]int)
	visited[ours] |= sideOurs
	visited[theirs] |= sideTheirs

	h := &commitHeap{}
	heap.Init(h)
	heap.Push(h, ancestryNode{hash: ours, seq: 1})
	heap.Push(h, ancestryNode{hash: theirs, seq: 1})
	seq := 1

	for h.Len() > 0 {
		node := heap.Pop(h).(ancestryNode)
		side := visited[node.hash]
		if side == sideOurs|sideTheirs {
			return node.hash, nil
		}

		commit, err := store.ReadCommit(node.hash)
		if err != nil {
			return CommitHash{}, err
		}

		for _, parent := range commit.Parents {
			prevSide := visited[parent]
			newSide := prevSide | side
			if newSide == sideOurs|sideTheirs {
				return parent, nil
			}
			if newSide != prevSide {
				visited[parent] = newSide
				seq++
				heap.Push(h, ancestryNode{hash: parent, seq: seq})
			}
		}
	}

	return CommitHash{}, errMalformed("no common ancestor between " + ours.String() + " and " + theirs.String())
}

// ancestorHashes returns every commit reachable from head by walking
// Parents, in discovery order, stopping at (and including) stopAt if it
// is ever reached. Grounded on original_source's CommitHashIo::read_all.
func ancestorHashes(store *ObjStore, head CommitHash, stopAt *CommitHash) ([]CommitHash, error) {
	var out []CommitHash
	var walk func(hash CommitHash) error
	walk = func(hash CommitHash) error {
		commit, err := store.ReadCommit(hash)
		if err != nil {
			return err
		}
		out = append(out, hash)
		if stopAt != nil && *stopAt == hash {
			return nil
		}
		for _, parent := range commit.Parents {
			if err := walk(parent); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(head); err != nil {
		return nil, err
	}
	return out, nil
}

// containsCommit reports whether hash appears in hashes.
func containsCommit(hashes []CommitHash, hash CommitHash) bool {
	for _, h := range hashes {
		if h == hash {
			return true
		}
	}
	return false
}
