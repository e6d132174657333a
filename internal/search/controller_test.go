package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fetchCall struct {
	text string
	page int
	size int
}

// recordingFetcher counts calls and returns a canned page per query text.
type recordingFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	results map[string][]string
	totals  map[string]int
	errs    map[string]error
	block   map[string]chan struct{}
}

func newRecordingFetcher() *recordingFetcher {
	return &recordingFetcher{
		results: make(map[string][]string),
		totals:  make(map[string]int),
		errs:    make(map[string]error),
		block:   make(map[string]chan struct{}),
	}
}

func (f *recordingFetcher) fetch(ctx context.Context, text string, page, size int) (any, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{text: text, page: page, size: size})
	gate := f.block[text]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[text]; err != nil {
		return nil, 0, err
	}
	return f.results[text], f.totals[text], nil
}

func (f *recordingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *recordingFetcher) lastCall() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type updateSink struct {
	mu      sync.Mutex
	updates []Update
}

func (u *updateSink) record(up Update) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.updates = append(u.updates, up)
}

func (u *updateSink) last() (Update, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.updates) == 0 {
		return Update{}, false
	}
	return u.updates[len(u.updates)-1], true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	fetcher := newRecordingFetcher()
	fetcher.results["abc"] = []string{"first", "second"}
	fetcher.totals["abc"] = 2

	sink := &updateSink{}
	c := NewController(20 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, sink.record)

	c.SetText("posts", "a")
	c.SetText("posts", "ab")
	c.SetText("posts", "abc")

	waitFor(t, func() bool { return fetcher.callCount() > 0 })
	// Give a trailing window for the timers that should have been cancelled
	time.Sleep(60 * time.Millisecond)

	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch issued %d times, want 1", got)
	}
	if call := fetcher.lastCall(); call.text != "abc" || call.page != 1 || call.size != 10 {
		t.Errorf("call = %+v, want text=abc page=1 size=10", call)
	}

	up, ok := sink.last()
	if !ok {
		t.Fatal("no update delivered")
	}
	if up.Total != 2 || up.Err != nil {
		t.Errorf("update = %+v, want total=2 err=nil", up)
	}
	items, ok := up.Items.([]string)
	if !ok || len(items) != 2 {
		t.Errorf("items = %v, want two strings", up.Items)
	}
}

func TestEmptyTextClearsWithoutFetch(t *testing.T) {
	fetcher := newRecordingFetcher()
	sink := &updateSink{}
	c := NewController(10 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, sink.record)

	c.SetText("posts", "   ")
	time.Sleep(40 * time.Millisecond)

	if got := fetcher.callCount(); got != 0 {
		t.Fatalf("fetch issued %d times, want 0", got)
	}
	up, ok := sink.last()
	if !ok {
		t.Fatal("clear must deliver an update")
	}
	if up.Items != nil || up.Total != 0 || up.Err != nil {
		t.Errorf("cleared update = %+v, want empty", up)
	}
}

func TestEmptyTextCancelsPendingFetch(t *testing.T) {
	fetcher := newRecordingFetcher()
	fetcher.results["golang"] = []string{"x"}
	fetcher.totals["golang"] = 1

	c := NewController(30 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, nil)

	c.SetText("posts", "golang")
	c.SetText("posts", "")
	time.Sleep(80 * time.Millisecond)

	if got := fetcher.callCount(); got != 0 {
		t.Fatalf("fetch issued %d times, want 0 after clearing", got)
	}
}

func TestSetPageBypassesDebounce(t *testing.T) {
	fetcher := newRecordingFetcher()
	fetcher.results["abc"] = []string{"x"}
	fetcher.totals["abc"] = 21

	sink := &updateSink{}
	c := NewController(20 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, sink.record)

	c.SetText("posts", "abc")
	waitFor(t, func() bool { return fetcher.callCount() == 1 })

	c.SetPage("posts", 2)
	// No waiting: SetPage issues synchronously
	if got := fetcher.callCount(); got != 2 {
		t.Fatalf("fetch issued %d times, want 2 (page change is immediate)", got)
	}
	if call := fetcher.lastCall(); call.page != 2 {
		t.Errorf("page = %d, want 2", call.page)
	}
}

func TestSetPageWithEmptyTextDoesNothing(t *testing.T) {
	fetcher := newRecordingFetcher()
	c := NewController(10 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, nil)

	c.SetPage("posts", 3)
	if got := fetcher.callCount(); got != 0 {
		t.Fatalf("fetch issued %d times, want 0", got)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	fetcher := newRecordingFetcher()
	slow := make(chan struct{})
	fetcher.block["slow"] = slow
	fetcher.results["slow"] = []string{"stale"}
	fetcher.totals["slow"] = 99
	fetcher.results["fast"] = []string{"fresh"}
	fetcher.totals["fast"] = 1

	sink := &updateSink{}
	c := NewController(5 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, sink.record)

	c.SetText("posts", "slow")
	waitFor(t, func() bool { return fetcher.callCount() == 1 })

	c.SetText("posts", "fast")
	waitFor(t, func() bool { return fetcher.callCount() == 2 })
	waitFor(t, func() bool {
		up, ok := sink.last()
		return ok && up.Total == 1
	})

	// Release the slow response after the fast one already landed
	close(slow)
	time.Sleep(30 * time.Millisecond)

	up, _ := c.Snapshot("posts")
	if up.Total != 99 && up.Total != 1 {
		t.Fatalf("unexpected total %d", up.Total)
	}
	if up.Total == 99 {
		t.Error("stale response overwrote the newer result")
	}
	items, _ := up.Items.([]string)
	if len(items) != 1 || items[0] != "fresh" {
		t.Errorf("items = %v, want [fresh]", up.Items)
	}
}

func TestFetchErrorClearsItems(t *testing.T) {
	fetcher := newRecordingFetcher()
	fetcher.results["good"] = []string{"x"}
	fetcher.totals["good"] = 1
	fetcher.errs["bad"] = errors.New("backend unavailable")

	sink := &updateSink{}
	c := NewController(5 * time.Millisecond)
	c.RegisterStream("posts", 10, fetcher.fetch, sink.record)

	c.SetText("posts", "good")
	waitFor(t, func() bool {
		up, ok := c.Snapshot("posts")
		return ok && up.Total == 1
	})

	c.SetText("posts", "bad")
	waitFor(t, func() bool {
		up, _ := c.Snapshot("posts")
		return up.Err != nil
	})

	up, _ := c.Snapshot("posts")
	if up.Items != nil || up.Total != 0 {
		t.Errorf("failed stream = %+v, want cleared items and zero total", up)
	}
}

func TestStreamsAreIndependent(t *testing.T) {
	friends := newRecordingFetcher()
	friends.results["ann"] = []string{"ann smith"}
	friends.totals["ann"] = 1
	users := newRecordingFetcher()
	users.results["bob"] = []string{"bob jones"}
	users.totals["bob"] = 1

	c := NewController(5 * time.Millisecond)
	c.RegisterStream("friends", 10, friends.fetch, nil)
	c.RegisterStream("addfriends", 10, users.fetch, nil)

	c.SetText("friends", "ann")
	c.SetText("addfriends", "bob")

	waitFor(t, func() bool { return friends.callCount() == 1 && users.callCount() == 1 })

	fr, _ := c.Snapshot("friends")
	af, _ := c.Snapshot("addfriends")
	if fr.Text != "ann" || af.Text != "bob" {
		t.Errorf("stream texts = %q / %q, want ann / bob", fr.Text, af.Text)
	}
}
