package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/louisbranch/fictionary/internal/game/domain"
	"github.com/louisbranch/fictionary/internal/game/storage"
)

func TestRoomStoreCreateDuplicate(t *testing.T) {
	store := NewRoomStore()
	ctx := context.Background()

	if err := store.Create(ctx, "chat-1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, "chat-1"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRoomStoreUpdateMissing(t *testing.T) {
	store := NewRoomStore()

	err := store.Update(context.Background(), "nope", func(*domain.Room) error { return nil })
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomStoreUpdatePropagatesError(t *testing.T) {
	store := NewRoomStore()
	ctx := context.Background()
	if err := store.Create(ctx, "chat-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	if err := store.Update(ctx, "chat-1", func(*domain.Room) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestRoomStoreDeleteTombstones(t *testing.T) {
	store := NewRoomStore()
	ctx := context.Background()
	if err := store.Create(ctx, "chat-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, "chat-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "chat-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
	err := store.Update(ctx, "chat-1", func(*domain.Room) error { return nil })
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRoomStoreUpdateSerializesPerRoom(t *testing.T) {
	store := NewRoomStore()
	ctx := context.Background()
	if err := store.Create(ctx, "chat-1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 32
	const increments = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				_ = store.Update(ctx, "chat-1", func(room *domain.Room) error {
					room.Participants[domain.UserID(id)] = domain.User{ID: domain.UserID(id)}
					if room.Round == nil {
						room.Round = domain.NewRoundState(0)
					}
					room.Round.Votes[domain.UserID(id)] = room.Round.Votes[domain.UserID(id)] + 1
					return nil
				})
			}
		}(w)
	}
	wg.Wait()

	err := store.Update(ctx, "chat-1", func(room *domain.Room) error {
		for id, count := range room.Round.Votes {
			if count != increments {
				t.Errorf("user %d: expected %d increments, got %d", id, increments, count)
			}
		}
		if len(room.Participants) != workers {
			t.Errorf("expected %d participants, got %d", workers, len(room.Participants))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("final update: %v", err)
	}
}
