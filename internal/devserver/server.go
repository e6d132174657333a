package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chaladshare/client-go/pkg/logging"
)

const viewerKey = "devserver.viewer"

// Server exposes the in-memory state over the production HTTP contract.
type Server struct {
	state      *State
	cookieName string
	logger     *zap.Logger
}

// NewServer wraps a dataset. cookieName must match the client's session
// cookie configuration.
func NewServer(state *State, cookieName string) *Server {
	return &Server{
		state:      state,
		cookieName: cookieName,
		logger:     logging.GetLogger().With(zap.String("component", "devserver")),
	}
}

// State returns the backing dataset, for seeding.
func (s *Server) State() *State { return s.state }

// SetupRoutes registers every endpoint on the engine.
func (s *Server) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", s.health)

	api := engine.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/logout", s.logout)

	private := api.Group("")
	private.Use(s.requireSession)

	private.GET("/profile", s.ownProfile)
	private.GET("/profile/:id", s.profile)

	private.GET("/social/friends/:id", s.listFriends)
	private.DELETE("/social/friends/:id", s.unfriend)
	private.GET("/social/addfriends", s.searchCandidates)
	private.GET("/social/requests/incoming", s.listIncoming)
	private.GET("/social/requests/outgoing", s.listOutgoing)
	private.POST("/social/requests", s.sendRequest)
	private.POST("/social/requests/:id/accept", s.acceptRequest)
	private.POST("/social/requests/:id/decline", s.declineRequest)
	private.DELETE("/social/requests/:id", s.cancelRequest)
	private.POST("/social/follow", s.follow)
	private.DELETE("/social/follow/:id", s.unfollow)
	private.GET("/social/stats/:id", s.stats)

	private.GET("/posts", s.listPosts)
	private.GET("/posts/popular", s.popularPosts)
	private.GET("/recommend", s.recommendPosts)
	private.GET("/posts/save", s.savedPosts)
	private.GET("/posts/search", s.searchPosts)
	private.POST("/posts/:id/like", s.toggleLike)
	private.POST("/posts/:id/save", s.toggleSave)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "chaladshare-devserver",
	})
}

// requireSession resolves the session cookie to a user or answers 401.
func (s *Server) requireSession(c *gin.Context) {
	token, err := c.Cookie(s.cookieName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user, ok := s.state.UserByToken(token)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	c.Set(viewerKey, user)
	c.Next()
}

func (s *Server) viewer(c *gin.Context) *User {
	v, _ := c.Get(viewerKey)
	return v.(*User)
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	token, user, err := s.state.Login(body.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}

	c.SetCookie(s.cookieName, token, 0, "/", "", false, true)
	s.logger.Info("Session issued", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, s.profileBody(user, nil))
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(s.cookieName); err == nil {
		s.state.Logout(token)
	}
	c.SetCookie(s.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// profileBody serializes a profile; viewer non-nil adds relation hints.
func (s *Server) profileBody(u *User, viewer *User) gin.H {
	body := gin.H{
		"user_id":    u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"bio":        u.Bio,
		"avatar_url": u.Avatar,
	}
	if viewer != nil && viewer.ID != u.ID {
		body["is_following"] = s.state.IsFollowing(viewer.ID, u.ID)
		body["is_friend"] = s.state.AreFriends(viewer.ID, u.ID)
		body["friend_request_outgoing"] = s.state.HasOutgoing(viewer.ID, u.ID)
	}
	return body
}

func (s *Server) ownProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.profileBody(s.viewer(c), nil))
}

func (s *Server) profile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, found := s.state.GetUser(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, s.profileBody(user, s.viewer(c)))
}

func (s *Server) listFriends(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	viewer := s.viewer(c)
	search, page, size := listParams(c)

	friends, total := s.state.Friends(id, search, page, size)
	items := make([]gin.H, 0, len(friends))
	for _, f := range friends {
		items = append(items, gin.H{
			"user_id":      f.ID,
			"username":     f.Username,
			"avatar":       f.Avatar,
			"is_following": s.state.IsFollowing(viewer.ID, f.ID),
		})
	}
	c.JSON(http.StatusOK, pagedBody(items, total, page, size))
}

func (s *Server) searchCandidates(c *gin.Context) {
	viewer := s.viewer(c)
	search, page, size := listParams(c)

	users, total := s.state.Candidates(viewer.ID, search, page, size)
	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"user_id":  u.ID,
			"username": u.Username,
			"avatar":   u.Avatar,
		})
	}
	c.JSON(http.StatusOK, pagedBody(items, total, page, size))
}

func (s *Server) listIncoming(c *gin.Context) {
	viewer := s.viewer(c)
	_, page, size := listParams(c)

	requests, total := s.state.Incoming(viewer.ID, page, size)
	items := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		item := gin.H{
			"request_id":        r.ID,
			"requester_user_id": r.From,
			"requested_at":      r.CreatedAt,
		}
		if u, ok := s.state.GetUser(r.From); ok {
			item["username"] = u.Username
			item["avatar"] = u.Avatar
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, pagedBody(items, total, page, size))
}

func (s *Server) listOutgoing(c *gin.Context) {
	viewer := s.viewer(c)
	_, page, size := listParams(c)

	requests, total := s.state.Outgoing(viewer.ID, page, size)
	items := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		// The production backend spells the addressee as target_user_id
		// on this list only.
		item := gin.H{
			"request_id":     r.ID,
			"target_user_id": r.To,
			"requested_at":   r.CreatedAt,
		}
		if u, ok := s.state.GetUser(r.To); ok {
			item["username"] = u.Username
			item["avatar"] = u.Avatar
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, pagedBody(items, total, page, size))
}

func (s *Server) sendRequest(c *gin.Context) {
	var body struct {
		ToUserID int64 `json:"to_user_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ToUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id is required"})
		return
	}

	id, err := s.state.SendRequest(s.viewer(c).ID, body.ToUserID)
	if err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request_id": id})
}

func (s *Server) acceptRequest(c *gin.Context) {
	s.resolveRequest(c, s.state.AcceptRequest)
}

func (s *Server) declineRequest(c *gin.Context) {
	s.resolveRequest(c, s.state.DeclineRequest)
}

func (s *Server) cancelRequest(c *gin.Context) {
	s.resolveRequest(c, s.state.CancelRequest)
}

func (s *Server) resolveRequest(c *gin.Context, action func(requestID, userID int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := action(id, s.viewer(c).ID); err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) unfriend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.state.Unfriend(s.viewer(c).ID, id); err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) follow(c *gin.Context) {
	var body struct {
		FollowedUserID int64 `json:"followed_user_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.FollowedUserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "followed_user_id is required"})
		return
	}
	if err := s.state.Follow(s.viewer(c).ID, body.FollowedUserID); err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) unfollow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.state.Unfollow(s.viewer(c).ID, id); err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (s *Server) stats(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	followers, following := s.state.Stats(id)
	c.JSON(http.StatusOK, gin.H{
		"followers": followers,
		"following": following,
	})
}

func (s *Server) listPosts(c *gin.Context) {
	viewer := s.viewer(c)

	var filter postFilter
	if c.Query("mine") == "1" {
		filter = func(p *DevPost) bool { return p.AuthorID == viewer.ID }
	} else if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		filter = func(p *DevPost) bool { return p.AuthorID == userID }
	}

	c.JSON(http.StatusOK, gin.H{"data": postItems(s.state.Posts(viewer.ID, filter))})
}

func (s *Server) popularPosts(c *gin.Context) {
	viewer := s.viewer(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	c.JSON(http.StatusOK, gin.H{"data": postItems(s.state.PopularPosts(viewer.ID, limit))})
}

// recommendPosts serves newest-first up to the limit; the ranking model
// lives in the real backend, not here.
func (s *Server) recommendPosts(c *gin.Context) {
	viewer := s.viewer(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views := s.state.Posts(viewer.ID, nil)
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": postItems(views)})
}

func (s *Server) savedPosts(c *gin.Context) {
	viewer := s.viewer(c)
	views := s.state.Posts(viewer.ID, func(p *DevPost) bool { return p.saves[viewer.ID] })
	c.JSON(http.StatusOK, gin.H{"data": postItems(views)})
}

func (s *Server) searchPosts(c *gin.Context) {
	viewer := s.viewer(c)
	search, page, size := listParams(c)

	views, total := s.state.SearchPosts(viewer.ID, search, page, size)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items": postItems(views),
		"total": total,
	}})
}

func (s *Server) toggleLike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	liked, count, err := s.state.ToggleLike(id, s.viewer(c).ID)
	if err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"is_liked":   liked,
		"like_count": count,
	}})
}

func (s *Server) toggleSave(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	saved, count, err := s.state.ToggleSave(id, s.viewer(c).ID)
	if err != nil {
		s.writeStateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"is_saved":   saved,
		"save_count": count,
	}})
}

func (s *Server) writeStateError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func postItems(views []PostView) []gin.H {
	items := make([]gin.H, 0, len(views))
	for _, v := range views {
		items = append(items, gin.H{
			"post_id":     v.ID,
			"post_title":  v.Title,
			"tags":        v.Tags,
			"author_id":   v.AuthorID,
			"author_name": v.AuthorName,
			"file_url":    v.FileURL,
			"cover_url":   v.CoverURL,
			"like_count":  v.LikeCount,
			"is_liked":    v.IsLiked,
			"save_count":  v.SaveCount,
			"is_saved":    v.IsSaved,
		})
	}
	return items
}

func pagedBody(items []gin.H, total, page, size int) gin.H {
	return gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	}
}

func listParams(c *gin.Context) (search string, page, size int) {
	search = strings.TrimSpace(c.Query("search"))
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	return search, page, size
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
