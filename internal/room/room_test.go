package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meltosdev/meltos/internal/discussion"
	"github.com/meltosdev/meltos/internal/session"
	"github.com/meltosdev/meltos/internal/tvc"
)

type fakeSender struct {
	fail     bool
	received []Message
}

func (f *fakeSender) Send(msg Message) error {
	if f.fail {
		return errors.New("send failed")
	}
	f.received = append(f.received, msg)
	return nil
}

func testRoom(t *testing.T, capacity uint64) *Room {
	t.Helper()
	repo := tvc.OpenRepository(tvc.NewMemoryFileSystem())
	if _, err := tvc.Init(repo, tvc.Owner); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	r, owner, _, err := Open(
		context.Background(),
		Config{Capacity: capacity, ConnectTimeout: time.Hour},
		session.NewMemoryStore(),
		discussion.NewMemoryStore(),
		repo,
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(r.Close)

	owned := &fakeSender{}
	r.OnChannelConnect(owner, owned)
	return r
}

func TestJoin_ReachedCapacityOnceFull(t *testing.T) {
	r := testRoom(t, 1)

	if _, _, err := r.Join(context.Background(), nil); !errors.Is(err, &Error{Kind: ErrReachedCapacity}) {
		t.Fatalf("Join() on full room error = %v, want ErrReachedCapacity", err)
	}
}

func TestJoin_AllowsUpToCapacity(t *testing.T) {
	r := testRoom(t, 2)

	userId, sessionId, err := r.Join(context.Background(), nil)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if userId == "" || sessionId == "" {
		t.Fatalf("Join() returned empty ids")
	}
}

func TestKick_OwnerCannotBeKicked(t *testing.T) {
	r := testRoom(t, 3)

	err := r.Kick(context.Background(), r.Owner(), []session.UserId{r.Owner()})
	if !errors.Is(err, &Error{Kind: ErrOwnerCannotKick}) {
		t.Fatalf("Kick(owner) error = %v, want ErrOwnerCannotKick", err)
	}
}

func TestKick_NonOwnerCallerRejected(t *testing.T) {
	r := testRoom(t, 3)

	userId, _, err := r.Join(context.Background(), nil)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}

	if err := r.Kick(context.Background(), userId, []session.UserId{userId}); !errors.Is(err, &Error{Kind: ErrOwnerCannotKick}) {
		t.Fatalf("Kick() by non-owner error = %v, want ErrOwnerCannotKick", err)
	}
}

func TestKick_RemovesUserAndBroadcastsLeft(t *testing.T) {
	r := testRoom(t, 3)

	userId, _, err := r.Join(context.Background(), nil)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	sender := &fakeSender{}
	r.OnChannelConnect(userId, sender)

	if err := r.Kick(context.Background(), r.Owner(), []session.UserId{userId}); err != nil {
		t.Fatalf("Kick() error: %v", err)
	}

	count, err := r.sessions.UserCount(context.Background())
	if err != nil {
		t.Fatalf("UserCount() error: %v", err)
	}
	if count != 1 {
		t.Fatalf("UserCount() after kick = %d, want 1", count)
	}
}

func TestSendToOwner_FailsWhenOwnerDisconnected(t *testing.T) {
	repo := tvc.OpenRepository(tvc.NewMemoryFileSystem())
	if _, err := tvc.Init(repo, tvc.Owner); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	r, _, _, err := Open(
		context.Background(),
		Config{Capacity: 1, ConnectTimeout: time.Hour},
		session.NewMemoryStore(),
		discussion.NewMemoryStore(),
		repo,
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(r.Close)

	if err := r.SendToOwner(Message{Kind: MessagePushed}); !errors.Is(err, &Error{Kind: ErrRoomOwnerDisconnected}) {
		t.Fatalf("SendToOwner() error = %v, want ErrRoomOwnerDisconnected", err)
	}
}

func TestLeave_OwnerLeavingClosesRoom(t *testing.T) {
	r := testRoom(t, 3)
	owner := r.Owner()

	if err := r.Leave(context.Background(), owner); err != nil {
		t.Fatalf("Leave() error: %v", err)
	}

	select {
	case <-r.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("room did not close after owner left")
	}
}

func TestOpen_RejectsInitialBundleExceedingBundleSize(t *testing.T) {
	seed := tvc.OpenRepository(tvc.NewMemoryFileSystem())
	if _, err := tvc.Init(seed, tvc.Owner); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	bundle, err := tvc.CreateBundle(seed)
	if err != nil {
		t.Fatalf("CreateBundle() error: %v", err)
	}

	repo := tvc.OpenRepository(tvc.NewMemoryFileSystem())

	// RepositorySizeLimit is left generous; only BundleSizeLimit is tight,
	// proving Open gates the initial bundle against a distinct ceiling
	// from the one Push later checks.
	_, _, _, err = Open(
		context.Background(),
		Config{Capacity: 3, ConnectTimeout: time.Hour, BundleSizeLimit: 1, RepositorySizeLimit: 1 << 30},
		session.NewMemoryStore(),
		discussion.NewMemoryStore(),
		repo,
		nil,
		&bundle,
	)
	if !errors.Is(err, &Error{Kind: ErrExceedBundleSize}) {
		t.Fatalf("Open() error = %v, want ErrExceedBundleSize", err)
	}
}

func TestPush_RejectsBundleExceedingRepositorySize(t *testing.T) {
	repo := tvc.OpenRepository(tvc.NewMemoryFileSystem())
	if _, err := tvc.Init(repo, tvc.Owner); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	r, _, _, err := Open(
		context.Background(),
		Config{Capacity: 3, ConnectTimeout: time.Hour, RepositorySizeLimit: 1},
		session.NewMemoryStore(),
		discussion.NewMemoryStore(),
		repo,
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(r.Close)

	bundle, err := tvc.CreateBundle(repo)
	if err != nil {
		t.Fatalf("CreateBundle() error: %v", err)
	}

	if err := r.Push(bundle); !errors.Is(err, &Error{Kind: ErrExceedRepositorySize}) {
		t.Fatalf("Push() error = %v, want ErrExceedRepositorySize", err)
	}
}

func TestOpenDiscussion_BroadcastsCreated(t *testing.T) {
	r := testRoom(t, 3)

	userId, _, err := r.Join(context.Background(), nil)
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	sender := &fakeSender{}
	r.OnChannelConnect(userId, sender)

	if _, err := r.OpenDiscussion(context.Background(), "design review", r.Owner()); err != nil {
		t.Fatalf("OpenDiscussion() error: %v", err)
	}

	if len(sender.received) != 1 || sender.received[0].Kind != MessageDiscussionCreated {
		t.Fatalf("received messages = %+v, want one DiscussionCreated", sender.received)
	}
}
