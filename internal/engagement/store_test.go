package engagement

import (
	"testing"

	"github.com/chaladshare/client-go/internal/models"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func post(id int64, likes int) models.Post {
	return models.Post{PostID: id, LikeCount: likes}
}

func TestApplyPatchFansOutToAllCollections(t *testing.T) {
	s := NewStore()

	collections := []string{"popular", "recommended", "all", "search", "profile"}
	for _, name := range collections {
		s.Register(name, []models.Post{post(1, 0), post(7, 4), post(3, 2)})
	}

	s.ApplyPatch(7, Patch{IsLiked: boolPtr(true), LikeCount: intPtr(5)})

	for _, name := range collections {
		items := s.Items(name)
		if len(items) != 3 {
			t.Fatalf("collection %s lost entries: %d", name, len(items))
		}
		entry := items[1]
		if entry.PostID != 7 {
			t.Errorf("collection %s order changed: middle entry is post %d", name, entry.PostID)
		}
		if !entry.IsLiked || entry.LikeCount != 5 {
			t.Errorf("collection %s: post 7 = liked=%v count=%d, want liked=true count=5",
				name, entry.IsLiked, entry.LikeCount)
		}
		// Non-matching entries untouched
		if items[0].LikeCount != 0 || items[2].LikeCount != 2 {
			t.Errorf("collection %s: other entries were modified", name)
		}
	}
}

func TestApplyPatchConvergence(t *testing.T) {
	// After a successful toggle, every mounted copy must report the exact
	// server-confirmed values.
	s := NewStore()
	s.Register("a", []models.Post{{PostID: 7, LikeCount: 4, IsLiked: false}})
	s.Register("b", []models.Post{{PostID: 7, LikeCount: 3, IsLiked: true}})

	s.ApplyPatch(7, Patch{IsLiked: boolPtr(true), LikeCount: intPtr(5)})

	for _, name := range []string{"a", "b"} {
		got := s.Items(name)[0]
		if got.LikeCount != 5 || !got.IsLiked {
			t.Errorf("collection %s: count=%d liked=%v, want 5/true", name, got.LikeCount, got.IsLiked)
		}
	}

	snap, ok := s.Snapshot(7)
	if !ok {
		t.Fatal("snapshot for post 7 missing")
	}
	if snap.LikeCount != 5 || !snap.IsLiked {
		t.Errorf("snapshot = %+v, want count=5 liked=true", snap)
	}
}

func TestApplyPatchPartialFields(t *testing.T) {
	s := NewStore()
	s.Register("a", []models.Post{{PostID: 1, LikeCount: 3, IsLiked: true, SaveCount: 2, IsSaved: true}})

	// A save toggle does not carry like fields
	s.ApplyPatch(1, Patch{IsSaved: boolPtr(false), SaveCount: intPtr(1)})

	got := s.Items("a")[0]
	if got.LikeCount != 3 || !got.IsLiked {
		t.Errorf("like fields must be untouched, got count=%d liked=%v", got.LikeCount, got.IsLiked)
	}
	if got.SaveCount != 1 || got.IsSaved {
		t.Errorf("save fields = count=%d saved=%v, want 1/false", got.SaveCount, got.IsSaved)
	}
}

func TestApplyPatchClampsNegativeCounts(t *testing.T) {
	s := NewStore()
	s.Register("a", []models.Post{post(1, 5)})

	s.ApplyPatch(1, Patch{LikeCount: intPtr(-2)})

	if got := s.Items("a")[0].LikeCount; got != 0 {
		t.Errorf("LikeCount = %d, want clamped 0", got)
	}
}

func TestSubscriberNotified(t *testing.T) {
	s := NewStore()
	s.Register("a", []models.Post{post(7, 4)})

	var gotID int64
	var gotSnap models.EngagementSnapshot
	s.Subscribe(func(postID int64, snap models.EngagementSnapshot) {
		gotID = postID
		gotSnap = snap
	})

	s.ApplyPatch(7, Patch{LikeCount: intPtr(5), IsLiked: boolPtr(true)})

	if gotID != 7 {
		t.Errorf("subscriber got post %d, want 7", gotID)
	}
	if gotSnap.LikeCount != 5 || !gotSnap.IsLiked {
		t.Errorf("subscriber snapshot = %+v, want count=5 liked=true", gotSnap)
	}
}

func TestDeregisterStopsFanout(t *testing.T) {
	s := NewStore()
	s.Register("a", []models.Post{post(7, 4)})
	s.Deregister("a")

	s.ApplyPatch(7, Patch{LikeCount: intPtr(5)})

	if items := s.Items("a"); items != nil {
		t.Errorf("deregistered collection still present: %v", items)
	}
}

func TestRegisterRefreshesSnapshot(t *testing.T) {
	s := NewStore()
	s.Register("a", []models.Post{post(7, 4)})
	// a later fetch carries fresher counters
	s.Register("b", []models.Post{post(7, 6)})

	snap, ok := s.Snapshot(7)
	if !ok {
		t.Fatal("snapshot missing")
	}
	if snap.LikeCount != 6 {
		t.Errorf("snapshot count = %d, want 6 from newest fetch", snap.LikeCount)
	}
}
