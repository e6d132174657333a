package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaladshare/client-go/internal/models"
	"github.com/chaladshare/client-go/internal/search"
	"github.com/chaladshare/client-go/internal/views"
)

var (
	flagPage  int
	flagSize  int
	flagLimit int

	rootCmd = &cobra.Command{
		Use:   "chalad",
		Short: "Terminal client for ChaladShare",
		Long: `chalad talks to a ChaladShare backend (or the local dev server)
through the same state layer the web client uses: server-authoritative
like/save counters, reconciled friendship state, and debounced search.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	loginCmd = &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the stored session",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}

	feedCmd = &cobra.Command{
		Use:   "feed",
		Short: "Show the home feed rails",
		Args:  cobra.NoArgs,
		RunE:  runFeed,
	}

	searchCmd = &cobra.Command{
		Use:   "search <text>",
		Short: "Search posts by title or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	likeCmd = &cobra.Command{
		Use:   "like <post-id>",
		Short: "Toggle a like on a post",
		Args:  cobra.ExactArgs(1),
		RunE:  runLike,
	}

	saveCmd = &cobra.Command{
		Use:   "save <post-id>",
		Short: "Toggle a save on a post",
		Args:  cobra.ExactArgs(1),
		RunE:  runSave,
	}

	friendsCmd = &cobra.Command{
		Use:   "friends [search]",
		Short: "List your friends, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFriends,
	}

	requestsCmd = &cobra.Command{
		Use:   "requests",
		Short: "List incoming friend requests",
		RunE:  runRequests,
	}

	acceptCmd = &cobra.Command{
		Use:   "accept <request-id>",
		Short: "Accept an incoming friend request",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccept,
	}

	declineCmd = &cobra.Command{
		Use:   "decline <request-id>",
		Short: "Decline an incoming friend request",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecline,
	}

	addCmd = &cobra.Command{
		Use:   "add <search>",
		Short: "Find users you can send a friend request to",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAdd,
	}

	profileCmd = &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Show a profile and your relationship to it",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}

	followCmd = &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runFollow,
	}

	unfollowCmd = &cobra.Command{
		Use:   "unfollow <user-id>",
		Short: "Unfollow a user",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnfollow,
	}
)

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPage, "page", 1, "page number for paginated lists")
	rootCmd.PersistentFlags().IntVar(&flagSize, "size", 0, "page size (0 uses the configured default)")
	rootCmd.PersistentFlags().IntVar(&flagLimit, "limit", 3, "item limit for the feed rails")

	requestsCmd.AddCommand(acceptCmd, declineCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, feedCmd, searchCmd, likeCmd, saveCmd,
		friendsCmd, requestsCmd, addCmd, profileCmd, followCmd, unfollowCmd)
}

func pageSize() int {
	if flagSize > 0 {
		return flagSize
	}
	return cli.cfg.Search.PageSize
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var profile models.Profile
	body := map[string]string{"email": args[0]}
	if err := cli.client.Post(ctx, "/auth/login", body, &profile); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Signed in as %s (user %d)\n", profile.Username, profile.EffectiveID())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := cli.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if cli.sessions != nil {
		if err := cli.sessions.ClearSession(ctx); err != nil {
			return fmt.Errorf("clearing stored session: %w", err)
		}
	}

	fmt.Println("Signed out")
	return nil
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	home := views.NewHomeView(cli.posts, cli.service, cli.queries, pageSize())
	if err := home.Load(ctx); err != nil {
		return err
	}

	fmt.Println("Popular")
	printPosts(home.Popular())
	fmt.Println("\nRecommended")
	printPosts(home.Recommended())
	fmt.Println("\nAll posts")
	printPosts(home.All())
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.Join(args, " ")

	// One-shot command, but the query still runs through the debounced
	// stream so stale-token handling is exercised end to end.
	done := make(chan search.Update, 1)
	cli.queries.RegisterStream("cli", pageSize(), func(ctx context.Context, text string, page, size int) (any, int, error) {
		return cli.posts.Search(ctx, text, page, size)
	}, func(up search.Update) {
		select {
		case done <- up:
		default:
		}
	})
	cli.queries.SetText("cli", text)
	if flagPage > 1 {
		cli.queries.SetPage("cli", flagPage)
	}

	select {
	case up := <-done:
		if up.Err != nil {
			return up.Err
		}
		hits, _ := up.Items.([]models.Post)
		fmt.Printf("%d result(s) for %q\n", up.Total, text)
		printPosts(hits)
		return nil
	case <-time.After(cli.cfg.Search.Debounce() + cli.cfg.API.Timeout):
		return fmt.Errorf("search timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runLike(cmd *cobra.Command, args []string) error {
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}

	snap, err := cli.service.ToggleLike(context.Background(), postID)
	if err != nil {
		return err
	}
	fmt.Printf("Post %d: liked=%v likes=%d\n", postID, snap.IsLiked, snap.LikeCount)
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}

	snap, err := cli.service.ToggleSave(context.Background(), postID)
	if err != nil {
		return err
	}
	fmt.Printf("Post %d: saved=%v saves=%d\n", postID, snap.IsSaved, snap.SaveCount)
	return nil
}

func runFriends(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	me, err := cli.social.Me(ctx)
	if err != nil {
		return err
	}

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}
	friends, total, err := cli.social.ListFriends(ctx, me.EffectiveID(), filter, flagPage, pageSize())
	if err != nil {
		return err
	}

	fmt.Printf("%d friend(s)\n", total)
	for _, f := range friends {
		marker := ""
		if f.IsFollowing {
			marker = " (following)"
		}
		fmt.Printf("  %d  %s%s\n", f.UserID, f.Username, marker)
	}
	return nil
}

func runRequests(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	requests, total, err := cli.social.ListIncoming(ctx, flagPage, pageSize())
	if err != nil {
		return err
	}

	fmt.Printf("%d incoming request(s)\n", total)
	for _, r := range requests {
		fmt.Printf("  request %d from %s (user %d)\n", r.RequestID, r.Username, r.RequesterID)
	}
	return nil
}

func runAccept(cmd *cobra.Command, args []string) error {
	requestID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := cli.social.AcceptRequest(context.Background(), requestID); err != nil {
		return err
	}
	fmt.Printf("Accepted request %d\n", requestID)
	return nil
}

func runDecline(cmd *cobra.Command, args []string) error {
	requestID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := cli.social.DeclineRequest(context.Background(), requestID); err != nil {
		return err
	}
	fmt.Printf("Declined request %d\n", requestID)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	users, total, err := cli.social.SearchAddFriends(ctx, strings.Join(args, " "), flagPage, pageSize())
	if err != nil {
		return err
	}

	fmt.Printf("%d user(s) you could befriend\n", total)
	for _, u := range users {
		fmt.Printf("  %d  %s\n", u.UserID, u.Username)
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	me, err := cli.social.Me(ctx)
	if err != nil {
		return err
	}

	view := views.NewProfileView(cli.social, cli.posts, cli.service,
		me.EffectiveID(), userID, cli.cfg.Search.FriendProbeSize)
	if err := view.Load(ctx); err != nil {
		return err
	}

	profile := view.Profile()
	stats := view.Stats()
	fmt.Printf("%s (user %d)\n", profile.Username, profile.EffectiveID())
	if profile.Bio != "" {
		fmt.Println(profile.Bio)
	}
	fmt.Printf("followers: %d  following: %d  posts: %d\n",
		stats.Followers, stats.Following, len(view.Posts()))

	if !view.IsOwn() {
		rel := view.Relationship()
		fmt.Printf("relationship: %s", rel.FriendState)
		if rel.IsFollowing {
			fmt.Print(", following")
		}
		fmt.Println()
	}

	printPosts(view.Posts())
	return nil
}

func runFollow(cmd *cobra.Command, args []string) error {
	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := cli.social.Follow(context.Background(), userID); err != nil {
		return err
	}
	fmt.Printf("Following user %d\n", userID)
	return nil
}

func runUnfollow(cmd *cobra.Command, args []string) error {
	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := cli.social.Unfollow(context.Background(), userID); err != nil {
		return err
	}
	fmt.Printf("Unfollowed user %d\n", userID)
	return nil
}

func printPosts(items []models.Post) {
	if len(items) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, p := range items {
		tags := ""
		if len(p.Tags) > 0 {
			tags = "  #" + strings.Join(p.Tags, " #")
		}
		fmt.Printf("  %d  %-40s by %-12s ♥ %d  ⚑ %d%s\n",
			p.PostID, p.Title, p.AuthorName, p.LikeCount, p.SaveCount, tags)
	}
}
