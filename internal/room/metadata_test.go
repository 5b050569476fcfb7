package room

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/meltosdev/meltos/internal/session"
)

func TestMetadataStore_PutAndAll(t *testing.T) {
	store, err := OpenMetadataStore(filepath.Join(t.TempDir(), "rooms.bbolt"))
	if err != nil {
		t.Fatalf("OpenMetadataStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := Metadata{Id: "room-1", Owner: session.UserId("alice"), Capacity: 4, OpenedAt: time.Now()}
	if err := store.Put(m); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(all) != 1 || all[0].Id != m.Id {
		t.Fatalf("All() = %+v, want one entry for %q", all, m.Id)
	}
}

func TestMetadataStore_DeleteRemovesEntry(t *testing.T) {
	store, err := OpenMetadataStore(filepath.Join(t.TempDir(), "rooms.bbolt"))
	if err != nil {
		t.Fatalf("OpenMetadataStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m := Metadata{Id: "room-1", Owner: session.UserId("alice"), Capacity: 4, OpenedAt: time.Now()}
	if err := store.Put(m); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := store.Delete(m.Id); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("All() after delete = %+v, want empty", all)
	}
}

func TestRooms_InsertRecordsMetadata(t *testing.T) {
	store, err := OpenMetadataStore(filepath.Join(t.TempDir(), "rooms.bbolt"))
	if err != nil {
		t.Fatalf("OpenMetadataStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rooms := NewRoomsWithMetadata(store)
	r := testRoom(t, 2)
	rooms.Insert(r, time.Hour)

	all, err := store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(all) != 1 || all[0].Id != r.Id() {
		t.Fatalf("All() = %+v, want one entry for %q", all, r.Id())
	}

	r.Close()
	// Close's onClose callback removes the entry synchronously.
	all, err = store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("All() after close = %+v, want empty", all)
	}
}
