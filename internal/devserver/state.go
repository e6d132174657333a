// Package devserver is an in-memory replica of the ChaladShare backend,
// speaking the production JSON shapes. It backs cmd/devserver for local
// development and the package tests that exercise the client end to end.
package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State errors surfaced as 4xx responses.
var (
	ErrNotFound       = errors.New("not found")
	ErrSelfAction     = errors.New("cannot target yourself")
	ErrDuplicate      = errors.New("request already pending")
	ErrAlreadyFriends = errors.New("already friends")
	ErrNotPending     = errors.New("no pending request")
)

// User is a registered account.
type User struct {
	ID       int64
	Username string
	Email    string
	Avatar   string
	Bio      string
}

// Request is a pending friend request.
type Request struct {
	ID        int64
	From      int64
	To        int64
	CreatedAt time.Time
}

// DevPost is a post with its per-user like and save sets.
type DevPost struct {
	ID       int64
	Title    string
	Tags     []string
	AuthorID int64
	FileURL  string
	CoverURL string

	likes map[int64]bool
	saves map[int64]bool
}

type pairKey struct{ lo, hi int64 }

func pair(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// State holds the whole backend dataset behind one mutex.
type State struct {
	mu sync.Mutex

	users       map[int64]*User
	friendships map[pairKey]bool
	requests    map[int64]*Request
	follows     map[int64]map[int64]bool
	posts       map[int64]*DevPost
	sessions    map[string]int64

	nextUserID    int64
	nextRequestID int64
	nextPostID    int64
}

// NewState creates an empty dataset.
func NewState() *State {
	return &State{
		users:       make(map[int64]*User),
		friendships: make(map[pairKey]bool),
		requests:    make(map[int64]*Request),
		follows:     make(map[int64]map[int64]bool),
		posts:       make(map[int64]*DevPost),
		sessions:    make(map[string]int64),
	}
}

// AddUser registers an account and returns its id.
func (s *State) AddUser(username, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	id := s.nextUserID
	s.users[id] = &User{ID: id, Username: username, Email: email}
	return id
}

// AddPost creates a post owned by authorID.
func (s *State) AddPost(authorID int64, title string, tags []string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	id := s.nextPostID
	s.posts[id] = &DevPost{
		ID:       id,
		Title:    title,
		Tags:     tags,
		AuthorID: authorID,
		likes:    make(map[int64]bool),
		saves:    make(map[int64]bool),
	}
	return id
}

// MakeFriends links two users directly, bypassing the request flow.
func (s *State) MakeFriends(a, b int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships[pair(a, b)] = true
}

// Login resolves an email to a user and mints a session token.
func (s *State) Login(email string) (string, *User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			token := uuid.NewString()
			s.sessions[token] = u.ID
			clone := *u
			return token, &clone, nil
		}
	}
	return "", nil, ErrNotFound
}

// Logout invalidates a session token.
func (s *State) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// SessionFor mints a session for a known user. Test hook.
func (s *State) SessionFor(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.sessions[token] = userID
	return token
}

// UserByToken resolves a session token to its account.
func (s *State) UserByToken(token string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	clone := *u
	return &clone, true
}

// GetUser returns an account by id.
func (s *State) GetUser(id int64) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	clone := *u
	return &clone, true
}

// AreFriends reports whether a friendship edge exists.
func (s *State) AreFriends(a, b int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friendships[pair(a, b)]
}

// IsFollowing reports whether follower follows followed.
func (s *State) IsFollowing(follower, followed int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follows[follower][followed]
}

// HasOutgoing reports whether from has a pending request to to.
func (s *State) HasOutgoing(from, to int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingBetween(from, to) != nil
}

// pendingBetween must be called with s.mu held.
func (s *State) pendingBetween(from, to int64) *Request {
	for _, r := range s.requests {
		if r.From == from && r.To == to {
			return r
		}
	}
	return nil
}

// Friends returns one page of userID's friends matching the search.
func (s *State) Friends(userID int64, search string, page, size int) ([]User, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []User
	for key := range s.friendships {
		var other int64
		switch userID {
		case key.lo:
			other = key.hi
		case key.hi:
			other = key.lo
		default:
			continue
		}
		u, ok := s.users[other]
		if !ok || !matchUser(u, search) {
			continue
		}
		matched = append(matched, *u)
	}
	sortUsers(matched)
	return paginate(matched, page, size)
}

// Candidates returns one page of users the viewer could send a request to:
// everyone except themselves, existing friends, and pending addressees.
func (s *State) Candidates(viewerID int64, search string, page, size int) ([]User, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []User
	for _, u := range s.users {
		if u.ID == viewerID || s.friendships[pair(viewerID, u.ID)] {
			continue
		}
		if s.pendingBetween(viewerID, u.ID) != nil {
			continue
		}
		if !matchUser(u, search) {
			continue
		}
		matched = append(matched, *u)
	}
	sortUsers(matched)
	return paginate(matched, page, size)
}

// Incoming returns one page of pending requests addressed to userID.
func (s *State) Incoming(userID int64, page, size int) ([]Request, int) {
	return s.requestPage(func(r *Request) bool { return r.To == userID }, page, size)
}

// Outgoing returns one page of pending requests sent by userID.
func (s *State) Outgoing(userID int64, page, size int) ([]Request, int) {
	return s.requestPage(func(r *Request) bool { return r.From == userID }, page, size)
}

func (s *State) requestPage(match func(*Request) bool, page, size int) ([]Request, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []Request
	for _, r := range s.requests {
		if match(r) {
			matched = append(matched, *r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, page, size)
}

// SendRequest creates a pending request. At most one pending request per
// ordered pair; friends and self are rejected.
func (s *State) SendRequest(from, to int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == to {
		return 0, ErrSelfAction
	}
	if _, ok := s.users[to]; !ok {
		return 0, ErrNotFound
	}
	if s.friendships[pair(from, to)] {
		return 0, ErrAlreadyFriends
	}
	if s.pendingBetween(from, to) != nil {
		return 0, ErrDuplicate
	}

	s.nextRequestID++
	id := s.nextRequestID
	s.requests[id] = &Request{ID: id, From: from, To: to, CreatedAt: time.Now()}
	return id, nil
}

// AcceptRequest turns a pending request into a friendship. Only the
// addressee may accept.
func (s *State) AcceptRequest(requestID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok || r.To != userID {
		return ErrNotPending
	}
	delete(s.requests, requestID)
	s.friendships[pair(r.From, r.To)] = true
	return nil
}

// DeclineRequest drops a pending request. Only the addressee may decline.
func (s *State) DeclineRequest(requestID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok || r.To != userID {
		return ErrNotPending
	}
	delete(s.requests, requestID)
	return nil
}

// CancelRequest withdraws a pending request. Only the sender may cancel.
func (s *State) CancelRequest(requestID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[requestID]
	if !ok || r.From != userID {
		return ErrNotPending
	}
	delete(s.requests, requestID)
	return nil
}

// Unfriend removes the friendship edge.
func (s *State) Unfriend(a, b int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair(a, b)
	if !s.friendships[key] {
		return ErrNotFound
	}
	delete(s.friendships, key)
	return nil
}

// Follow creates a follow edge. Idempotent, self-follows rejected.
func (s *State) Follow(follower, followed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if follower == followed {
		return ErrSelfAction
	}
	if _, ok := s.users[followed]; !ok {
		return ErrNotFound
	}
	if s.follows[follower] == nil {
		s.follows[follower] = make(map[int64]bool)
	}
	s.follows[follower][followed] = true
	return nil
}

// Unfollow removes a follow edge.
func (s *State) Unfollow(follower, followed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.follows[follower][followed] {
		return ErrNotFound
	}
	delete(s.follows[follower], followed)
	return nil
}

// Stats counts followers and following for a user.
func (s *State) Stats(userID int64) (followers, following int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for follower, set := range s.follows {
		if set[userID] {
			followers++
		}
		if follower == userID {
			following = len(set)
		}
	}
	return followers, following
}

// ToggleLike flips viewer's like on a post and returns the new state.
func (s *State) ToggleLike(postID, viewerID int64) (liked bool, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, 0, ErrNotFound
	}
	if p.likes[viewerID] {
		delete(p.likes, viewerID)
	} else {
		p.likes[viewerID] = true
	}
	return p.likes[viewerID], len(p.likes), nil
}

// ToggleSave flips viewer's save on a post and returns the new state.
func (s *State) ToggleSave(postID, viewerID int64) (saved bool, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[postID]
	if !ok {
		return false, 0, ErrNotFound
	}
	if p.saves[viewerID] {
		delete(p.saves, viewerID)
	} else {
		p.saves[viewerID] = true
	}
	return p.saves[viewerID], len(p.saves), nil
}

// postFilter selects posts; nil means all.
type postFilter func(*DevPost) bool

// Posts returns posts matching the filter, sorted by id, as seen by the
// viewer (like/save flags resolved per viewer).
func (s *State) Posts(viewerID int64, filter postFilter) []PostView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postViews(viewerID, filter)
}

// PopularPosts returns up to limit posts ranked by like count descending.
func (s *State) PopularPosts(viewerID int64, limit int) []PostView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.postViews(viewerID, nil)
	sort.SliceStable(views, func(i, j int) bool { return views[i].LikeCount > views[j].LikeCount })
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	return views
}

// SearchPosts matches title or tags against the query, paginated.
func (s *State) SearchPosts(viewerID int64, query string, page, size int) ([]PostView, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	views := s.postViews(viewerID, func(p *DevPost) bool {
		if strings.Contains(strings.ToLower(p.Title), q) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
	return paginate(views, page, size)
}

// PostView is a post as serialized for one viewer.
type PostView struct {
	ID         int64
	Title      string
	Tags       []string
	AuthorID   int64
	AuthorName string
	FileURL    string
	CoverURL   string
	LikeCount  int
	IsLiked    bool
	SaveCount  int
	IsSaved    bool
}

// postViews must be called with s.mu held.
func (s *State) postViews(viewerID int64, filter postFilter) []PostView {
	var out []PostView
	for _, p := range s.posts {
		if filter != nil && !filter(p) {
			continue
		}
		var author string
		if u, ok := s.users[p.AuthorID]; ok {
			author = u.Username
		}
		out = append(out, PostView{
			ID:         p.ID,
			Title:      p.Title,
			Tags:       p.Tags,
			AuthorID:   p.AuthorID,
			AuthorName: author,
			FileURL:    p.FileURL,
			CoverURL:   p.CoverURL,
			LikeCount:  len(p.likes),
			IsLiked:    p.likes[viewerID],
			SaveCount:  len(p.saves),
			IsSaved:    p.saves[viewerID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchUser(u *User, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Username), strings.ToLower(search))
}

func sortUsers(users []User) {
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
}

func paginate[T any](items []T, page, size int) ([]T, int) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return items, total
	}
	start := (page - 1) * size
	if start >= total {
		return nil, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], total
}
