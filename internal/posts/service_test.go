package posts

import (
	"context"
	"fmt"
	"testing"

	"github.com/chaladshare/client-go/internal/engagement"
	"github.com/chaladshare/client-go/internal/models"
)

type fakeBackend struct {
	likeResult LikeResult
	saveResult SaveResult
	likeErr    error
	saveErr    error
	likeCalls  int
}

func (f *fakeBackend) Popular(ctx context.Context, limit int) ([]models.Post, error) {
	return nil, nil
}
func (f *fakeBackend) Recommended(ctx context.Context, limit int) ([]models.Post, error) {
	return nil, nil
}
func (f *fakeBackend) All(ctx context.Context) ([]models.Post, error)  { return nil, nil }
func (f *fakeBackend) Mine(ctx context.Context) ([]models.Post, error) { return nil, nil }
func (f *fakeBackend) ByUser(ctx context.Context, userID int64) ([]models.Post, error) {
	return nil, nil
}
func (f *fakeBackend) Saved(ctx context.Context) ([]models.Post, error) { return nil, nil }
func (f *fakeBackend) Search(ctx context.Context, search string, page, size int) ([]models.Post, int, error) {
	return nil, 0, nil
}

func (f *fakeBackend) ToggleLike(ctx context.Context, postID int64) (LikeResult, error) {
	f.likeCalls++
	if f.likeErr != nil {
		return LikeResult{}, f.likeErr
	}
	return f.likeResult, nil
}

func (f *fakeBackend) ToggleSave(ctx context.Context, postID int64) (SaveResult, error) {
	if f.saveErr != nil {
		return SaveResult{}, f.saveErr
	}
	return f.saveResult, nil
}

func mountedStore(postID int64, likeCount int) *engagement.Store {
	store := engagement.NewStore()
	names := []string{"popular", "recommended", "all", "search", "profile"}
	for _, name := range names {
		store.Register(name, []models.Post{{PostID: postID, LikeCount: likeCount}})
	}
	return store
}

func TestToggleLikeBroadcastsServerValues(t *testing.T) {
	backend := &fakeBackend{likeResult: LikeResult{IsLiked: true, LikeCount: 5}}
	store := mountedStore(7, 4)
	svc := NewService(backend, store, false)

	snap, err := svc.ToggleLike(context.Background(), 7)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if !snap.IsLiked || snap.LikeCount != 5 {
		t.Errorf("snapshot = %+v, want liked=true count=5", snap)
	}

	// Every mounted collection shows exactly the server counter
	for _, name := range []string{"popular", "recommended", "all", "search", "profile"} {
		got := store.Items(name)[0]
		if !got.IsLiked || got.LikeCount != 5 {
			t.Errorf("collection %s: liked=%v count=%d, want true/5", name, got.IsLiked, got.LikeCount)
		}
	}
}

func TestToggleLikeFailureKeepsAttemptedState(t *testing.T) {
	backend := &fakeBackend{likeErr: fmt.Errorf("network down")}
	store := mountedStore(7, 4)
	svc := NewService(backend, store, false)

	snap, err := svc.ToggleLike(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if !snap.IsLiked {
		t.Error("attempted like flag must survive the failure when rollback is off")
	}
	if snap.LikeCount != 4 {
		t.Errorf("count = %d, want 4 (counters never move optimistically)", snap.LikeCount)
	}
}

func TestToggleLikeFailureRollsBackWhenConfigured(t *testing.T) {
	backend := &fakeBackend{likeErr: fmt.Errorf("network down")}
	store := mountedStore(7, 4)
	svc := NewService(backend, store, true)

	snap, err := svc.ToggleLike(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if snap.IsLiked {
		t.Error("rollback mode must revert the optimistic flag")
	}
}

func TestToggleSaveBroadcastsServerValues(t *testing.T) {
	backend := &fakeBackend{saveResult: SaveResult{IsSaved: true, SaveCount: 2}}
	store := mountedStore(3, 0)
	svc := NewService(backend, store, false)

	snap, err := svc.ToggleSave(context.Background(), 3)
	if err != nil {
		t.Fatalf("ToggleSave failed: %v", err)
	}
	if !snap.IsSaved || snap.SaveCount != 2 {
		t.Errorf("snapshot = %+v, want saved=true count=2", snap)
	}

	got := store.Items("all")[0]
	if !got.IsSaved || got.SaveCount != 2 {
		t.Errorf("collection all: saved=%v count=%d, want true/2", got.IsSaved, got.SaveCount)
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "golang", "golang"},
		{"trimmed", "  golang  ", "golang"},
		{"hash stripped", "#golang", "golang"},
		{"multiple hashes", "##golang", "golang"},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.in); got != tt.expected {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
