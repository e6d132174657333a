// Package search implements the debounced query controller shared by the
// home search bar, the friends tab, and the add-friends tab. Each surface
// owns a named stream; the controller collapses bursts of keystrokes into
// a single trailing-edge fetch and discards responses that arrive after a
// newer query was issued.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chaladshare/client-go/pkg/logging"
)

// DefaultDebounce is the trailing-edge window applied when the config does
// not override it.
const DefaultDebounce = 300 * time.Millisecond

// Fetcher performs the backend query for one stream. Items are opaque to
// the controller; views know their own element type.
type Fetcher func(ctx context.Context, text string, page, size int) (items any, total int, err error)

// Update is the state handed to a stream's OnUpdate callback after every
// applied change: a cleared query, a fetched page, or a failure.
type Update struct {
	StreamID string
	Text     string
	Page     int
	Size     int
	Items    any
	Total    int
	Err      error
}

// OnUpdate receives stream updates. It is invoked with the controller lock
// held, so it must not call back into the controller.
type OnUpdate func(Update)

type stream struct {
	fetcher  Fetcher
	onUpdate OnUpdate

	text  string
	page  int
	size  int
	items any
	total int
	err   error

	// token is bumped on every issue and on every clear; a response is
	// applied only while its token is still the latest.
	token uint64
	timer *time.Timer
}

// Controller multiplexes any number of named query streams over one
// debounce policy.
type Controller struct {
	mu       sync.Mutex
	streams  map[string]*stream
	debounce time.Duration
	logger   *zap.Logger
}

// NewController creates a controller with the given trailing-edge window.
// A zero or negative window falls back to DefaultDebounce.
func NewController(debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		streams:  make(map[string]*stream),
		debounce: debounce,
		logger:   logging.WithComponent("search"),
	}
}

// RegisterStream adds a stream with its page size, backend fetcher, and
// update callback. Registering an existing id replaces it and cancels any
// pending fetch.
func (c *Controller) RegisterStream(id string, size int, fetcher Fetcher, onUpdate OnUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.streams[id]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	c.streams[id] = &stream{
		fetcher:  fetcher,
		onUpdate: onUpdate,
		page:     1,
		size:     size,
	}
}

// SetText records a new query for the stream, resets it to page 1, and
// restarts the debounce timer. Empty or whitespace-only text cancels any
// pending fetch and clears the stream immediately without touching the
// backend.
func (c *Controller) SetText(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.streams[id]
	if !ok {
		return
	}
	s.text = text
	s.page = 1
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(text) == "" {
		// Invalidate any in-flight response before clearing
		s.token++
		s.items = nil
		s.total = 0
		s.err = nil
		c.notify(id, s)
		return
	}

	s.timer = time.AfterFunc(c.debounce, func() {
		c.issue(id)
	})
}

// SetPage moves the stream to another page. With non-empty text the fetch
// is issued immediately; paging is an explicit gesture, not a keystroke.
func (c *Controller) SetPage(id string, page int) {
	c.mu.Lock()
	s, ok := c.streams[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	if page < 1 {
		page = 1
	}
	s.page = page
	if strings.TrimSpace(s.text) == "" {
		c.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	c.mu.Unlock()

	c.issue(id)
}

// Refresh re-issues the stream's current query immediately. Views use it
// after a mutation that changes the result set server-side.
func (c *Controller) Refresh(id string) {
	c.mu.Lock()
	s, ok := c.streams[id]
	if !ok || strings.TrimSpace(s.text) == "" {
		c.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	c.mu.Unlock()

	c.issue(id)
}

// Snapshot returns the stream's current state.
func (c *Controller) Snapshot(id string) (Update, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.streams[id]
	if !ok {
		return Update{}, false
	}
	return Update{
		StreamID: id,
		Text:     s.text,
		Page:     s.page,
		Size:     s.size,
		Items:    s.items,
		Total:    s.total,
		Err:      s.err,
	}, true
}

// Close cancels every pending timer. In-flight fetches finish but their
// responses are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.streams {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.token++
	}
}

func (c *Controller) issue(id string) {
	c.mu.Lock()
	s, ok := c.streams[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	s.token++
	token := s.token
	text, page, size := s.text, s.page, s.size
	fetcher := s.fetcher
	c.mu.Unlock()

	items, total, err := fetcher(context.Background(), text, page, size)

	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok = c.streams[id]
	if !ok || s.token != token {
		// A newer query or a clear won the race
		return
	}
	if err != nil {
		c.logger.Warn("Search fetch failed",
			zap.String("stream", id),
			zap.String("text", text),
			zap.Error(err))
		s.items = nil
		s.total = 0
		s.err = err
	} else {
		s.items = items
		s.total = total
		s.err = nil
	}
	c.notify(id, s)
}

// notify must be called with c.mu held.
func (c *Controller) notify(id string, s *stream) {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(Update{
		StreamID: id,
		Text:     s.text,
		Page:     s.page,
		Size:     s.size,
		Items:    s.items,
		Total:    s.total,
		Err:      s.err,
	})
}
