package feed

import "time"

// AnonymousAuthor is the display name stored when a post or comment is made
// without revealing the user's nickname.
const AnonymousAuthor = "Anonymous"

// Post is a single feed entry. CleanDays is a snapshot of the author's clean
// day count taken when the post was created; it is stored frozen and never
// recomputed, so old posts keep the count they were written with.
type Post struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	CleanDays *int      `json:"clean_days,omitempty" db:"clean_days"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostView is a Post joined with engagement data for one viewer. Likes and
// Comments are derived at read time from the like set and comment collection,
// never stored on the post itself.
type PostView struct {
	Post
	Likes    int  `json:"likes"`
	Comments int  `json:"comments"`
	IsLiked  bool `json:"is_liked"`
}

type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LikeSet maps a post id to the set of user ids that liked it. Likes are kept
// as set membership rather than a counter so toggles from different users
// merge instead of overwriting each other.
type LikeSet map[string][]string

func (l LikeSet) Contains(postID, userID string) bool {
	for _, id := range l[postID] {
		if id == userID {
			return true
		}
	}
	return false
}

type CreatePostRequest struct {
	Content     string `json:"content"`
	IsAnonymous bool   `json:"is_anonymous"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}
