package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/CavinKrenik/RecovrSocial/internal/feed"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
	"github.com/CavinKrenik/RecovrSocial/internal/milestone"
	"github.com/CavinKrenik/RecovrSocial/internal/profile"
	"github.com/CavinKrenik/RecovrSocial/internal/remote"
)

// defaultRemoteTimeout bounds every remote call so a hung collaborator
// degrades to the local tier instead of wedging the request.
const defaultRemoteTimeout = 5 * time.Second

// FeedService is the single read/write surface for posts, comments and
// likes. Every operation is attempted against the remote collaborator first;
// on success the result is mirrored into the local store, on failure the
// operation runs against the local store alone and still reports success.
// The caller never sees remote errors; the transition is logged and counted.
type FeedService struct {
	store   *localstore.Store
	remote  remote.Client
	timeout time.Duration

	mu     sync.Mutex
	subs   map[int]func()
	nextID int
}

// NewFeedService builds a feed service. remoteClient may be nil for a
// local-only deployment.
func NewFeedService(store *localstore.Store, remoteClient remote.Client) *FeedService {
	return &FeedService{
		store:   store,
		remote:  remoteClient,
		timeout: defaultRemoteTimeout,
		subs:    make(map[int]func()),
	}
}

// ListPosts returns the feed newest-first. Like counts and the viewer's
// is-liked flag are joined from the like set at read time rather than stored
// on the post, so count and membership can never drift apart.
func (s *FeedService) ListPosts(ctx context.Context, userID string) ([]feed.PostView, error) {
	s.refreshFromRemote(ctx)

	var posts []feed.Post
	likes := feed.LikeSet{}
	var comments []feed.Comment

	err := s.store.View(func(txn *badger.Txn) error {
		if _, err := localstore.GetJSON(txn, keyPosts, &posts); err != nil {
			return err
		}
		if _, err := localstore.GetJSON(txn, keyLikes, &likes); err != nil {
			return err
		}
		_, err := localstore.GetJSON(txn, keyComments, &comments)
		return err
	})
	if err != nil {
		return nil, err
	}

	commentCounts := make(map[string]int)
	for _, c := range comments {
		commentCounts[c.PostID]++
	}

	views := make([]feed.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, feed.PostView{
			Post:     p,
			Likes:    len(likes[p.ID]),
			Comments: commentCounts[p.ID],
			IsLiked:  likes.Contains(p.ID, userID),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})

	return views, nil
}

// CreatePost stores a new post. Empty or whitespace-only content is a silent
// no-op, matching the disabled submit button in the UI. If the author has a
// clean date set, the clean-day count is snapshotted onto the post once and
// never recomputed afterward.
func (s *FeedService) CreatePost(ctx context.Context, userID string, req *feed.CreatePostRequest) (*feed.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, nil
	}

	author, cleanDays, err := s.authorFor(userID, req.IsAnonymous)
	if err != nil {
		return nil, err
	}

	post := feed.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Author:    author,
		Content:   content,
		CleanDays: cleanDays,
		CreatedAt: time.Now().UTC(),
	}

	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.InsertPost(rctx, post)
		cancel()
		if err != nil {
			s.fellBack("create_post", err)
		}
	}

	// Mirror locally on either path so reads stay consistent if the remote
	// becomes unreachable later.
	if _, err := s.mergePost(post); err != nil {
		return nil, err
	}

	s.notify()
	return &post, nil
}

// ToggleLike flips the viewer's membership in the post's like set. Each call
// flips exactly once; two toggles in a row restore the original state.
// Returns whether the post is liked after the toggle.
func (s *FeedService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	current := feed.LikeSet{}
	err := s.store.View(func(txn *badger.Txn) error {
		_, err := localstore.GetJSON(txn, keyLikes, &current)
		return err
	})
	if err != nil {
		return false, err
	}
	liking := !current.Contains(postID, userID)

	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		if liking {
			err = s.remote.InsertLike(rctx, postID, userID)
		} else {
			err = s.remote.DeleteLike(rctx, postID, userID)
		}
		cancel()
		if err != nil {
			s.fellBack("toggle_like", err)
		}
	}

	// The local flip re-reads membership inside a single transaction, so
	// rapid repeated calls still flip exactly once each.
	var liked bool
	err = s.store.Update(func(txn *badger.Txn) error {
		likes := feed.LikeSet{}
		if _, err := localstore.GetJSON(txn, keyLikes, &likes); err != nil {
			return err
		}
		if likes.Contains(postID, userID) {
			kept := make([]string, 0, len(likes[postID]))
			for _, id := range likes[postID] {
				if id != userID {
					kept = append(kept, id)
				}
			}
			likes[postID] = kept
			liked = false
		} else {
			likes[postID] = append(likes[postID], userID)
			liked = true
		}
		return localstore.SetJSON(txn, keyLikes, likes)
	})
	if err != nil {
		return false, err
	}

	s.notify()
	return liked, nil
}

// CreateComment appends a comment to the post's collection. The post's
// displayed comment count is derived by filtering at read time, never kept as
// an independent counter. Empty content is a silent no-op.
func (s *FeedService) CreateComment(ctx context.Context, userID, postID string, req *feed.CreateCommentRequest) (*feed.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, nil
	}

	author, _, err := s.authorFor(userID, false)
	if err != nil {
		return nil, err
	}

	comment := feed.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.remote.InsertComment(rctx, comment)
		cancel()
		if err != nil {
			s.fellBack("create_comment", err)
		}
	}

	err = s.store.Update(func(txn *badger.Txn) error {
		var comments []feed.Comment
		if _, err := localstore.GetJSON(txn, keyComments, &comments); err != nil {
			return err
		}
		comments = append(comments, comment)
		return localstore.SetJSON(txn, keyComments, comments)
	})
	if err != nil {
		return nil, err
	}

	s.notify()
	return &comment, nil
}

// ListComments returns the comments for one post, oldest first.
func (s *FeedService) ListComments(ctx context.Context, postID string) ([]feed.Comment, error) {
	s.refreshFromRemote(ctx)

	var comments []feed.Comment
	err := s.store.View(func(txn *badger.Txn) error {
		_, err := localstore.GetJSON(txn, keyComments, &comments)
		return err
	})
	if err != nil {
		return nil, err
	}

	matched := make([]feed.Comment, 0)
	for _, c := range comments {
		if c.PostID == postID {
			matched = append(matched, c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

// OnChange registers fn to run after any successful mutation, local or
// remote-confirmed. Callbacks carry no payload; subscribers re-read what they
// need. The returned function unsubscribes.
func (s *FeedService) OnChange(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// StartRealtime begins merging pushed inserts from the remote collaborator
// into the local mirror. No-op for local-only deployments. Runs until ctx is
// cancelled.
func (s *FeedService) StartRealtime(ctx context.Context) {
	if s.remote == nil {
		return
	}
	go func() {
		if err := s.remote.Subscribe(ctx, func(p feed.Post) {
			merged, err := s.mergePost(p)
			if err != nil {
				log.Printf("FeedService: failed to merge pushed post %s: %v", p.ID, err)
				return
			}
			if merged {
				s.notify()
			}
		}); err != nil {
			log.Printf("FeedService: realtime subscription ended: %v", err)
		}
	}()
}

// mergePost prepends the post to the local mirror unless a post with the
// same id is already present. The id check is what keeps a client from
// double-adding a post it wrote itself when the push notification for that
// insert arrives.
func (s *FeedService) mergePost(post feed.Post) (bool, error) {
	merged := false
	err := s.store.Update(func(txn *badger.Txn) error {
		var posts []feed.Post
		if _, err := localstore.GetJSON(txn, keyPosts, &posts); err != nil {
			return err
		}
		for _, existing := range posts {
			if existing.ID == post.ID {
				return nil
			}
		}
		posts = append([]feed.Post{post}, posts...)
		merged = true
		return localstore.SetJSON(txn, keyPosts, posts)
	})
	return merged, err
}

// refreshFromRemote pulls the remote feed and overwrites the local mirror.
// Remote data is authoritative when reachable; rows written locally while
// degraded are not synced back and disappear from view here once the remote
// recovers.
func (s *FeedService) refreshFromRemote(ctx context.Context) {
	if s.remote == nil {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	posts, err := s.remote.SelectPosts(rctx)
	if err != nil {
		s.fellBack("list_posts", err)
		return
	}
	likes, err := s.remote.SelectLikes(rctx)
	if err != nil {
		s.fellBack("list_posts", err)
		return
	}
	comments, err := s.remote.SelectComments(rctx)
	if err != nil {
		s.fellBack("list_posts", err)
		return
	}

	err = s.store.Update(func(txn *badger.Txn) error {
		if err := localstore.SetJSON(txn, keyPosts, posts); err != nil {
			return err
		}
		if err := localstore.SetJSON(txn, keyLikes, likes); err != nil {
			return err
		}
		return localstore.SetJSON(txn, keyComments, comments)
	})
	if err != nil {
		log.Printf("FeedService: failed to mirror remote feed: %v", err)
	}
}

// authorFor resolves the display name and clean-day snapshot for a write by
// the given user. The anonymous marker is used when the caller asked for it,
// when the profile has anonymous mode on, or when no nickname is set.
func (s *FeedService) authorFor(userID string, anonymous bool) (string, *int, error) {
	var nickname, cleanDate string
	var anonMode bool

	err := s.store.View(func(txn *badger.Txn) error {
		if _, err := localstore.GetJSON(txn, profileKey(userID, fieldNickname), &nickname); err != nil {
			return err
		}
		if _, err := localstore.GetJSON(txn, profileKey(userID, fieldAnonymousMode), &anonMode); err != nil {
			return err
		}
		_, err := localstore.GetJSON(txn, profileKey(userID, fieldCleanDate), &cleanDate)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	author := nickname
	if anonymous || anonMode || author == "" {
		author = feed.AnonymousAuthor
	}

	var cleanDays *int
	if cleanDate != "" {
		if d, err := time.ParseInLocation(profile.DateLayout, cleanDate, time.Local); err == nil {
			days := milestone.DaysClean(d, time.Now())
			cleanDays = &days
		}
	}

	return author, cleanDays, nil
}

func (s *FeedService) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *FeedService) fellBack(operation string, err error) {
	log.Printf("FeedService: remote %s failed, falling back to local store: %v", operation, err)
	remoteFallbacks.WithLabelValues(operation).Inc()
}
