package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CavinKrenik/RecovrSocial/internal/feed"
)

// feedChannel is the NOTIFY channel the social_feed trigger publishes to.
const feedChannel = "social_feed"

const schema = `
CREATE TABLE IF NOT EXISTS social_feed (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	author TEXT NOT NULL,
	content TEXT NOT NULL,
	clean_days INT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS post_likes (
	post_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS post_comments (
	id TEXT PRIMARY KEY,
	post_id TEXT NOT NULL,
	author TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE OR REPLACE FUNCTION notify_social_feed() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('social_feed', row_to_json(NEW)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

CREATE OR REPLACE TRIGGER social_feed_insert
AFTER INSERT ON social_feed
FOR EACH ROW EXECUTE FUNCTION notify_social_feed();
`

// Postgres implements Client against the hosted Postgres service. Inserts on
// social_feed fan out to every listener through the trigger above.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the feed tables and the insert notification trigger.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate feed schema: %w", err)
	}
	return nil
}

func (p *Postgres) SelectPosts(ctx context.Context) ([]feed.Post, error) {
	query := `
	SELECT id, user_id, author, content, clean_days, created_at
	FROM social_feed
	ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select posts: %w", err)
	}
	defer rows.Close()

	var posts []feed.Post
	for rows.Next() {
		var post feed.Post
		if err := rows.Scan(&post.ID, &post.UserID, &post.Author, &post.Content, &post.CleanDays, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	return posts, nil
}

func (p *Postgres) InsertPost(ctx context.Context, post feed.Post) error {
	query := `
	INSERT INTO social_feed (id, user_id, author, content, clean_days, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query, post.ID, post.UserID, post.Author, post.Content, post.CleanDays, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (p *Postgres) SelectLikes(ctx context.Context) (feed.LikeSet, error) {
	rows, err := p.pool.Query(ctx, `SELECT post_id, user_id FROM post_likes`)
	if err != nil {
		return nil, fmt.Errorf("failed to select likes: %w", err)
	}
	defer rows.Close()

	likes := feed.LikeSet{}
	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		likes[postID] = append(likes[postID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read likes: %w", err)
	}

	return likes, nil
}

func (p *Postgres) InsertLike(ctx context.Context, postID, userID string) error {
	query := `
	INSERT INTO post_likes (post_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (post_id, user_id) DO NOTHING
	`

	if _, err := p.pool.Exec(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteLike(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`

	if _, err := p.pool.Exec(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (p *Postgres) SelectComments(ctx context.Context) ([]feed.Comment, error) {
	query := `
	SELECT id, post_id, author, content, created_at
	FROM post_comments
	ORDER BY created_at ASC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var comments []feed.Comment
	for rows.Next() {
		var comment feed.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.Author, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	return comments, nil
}

func (p *Postgres) InsertComment(ctx context.Context, comment feed.Comment) error {
	query := `
	INSERT INTO post_comments (id, post_id, author, content, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query, comment.ID, comment.PostID, comment.Author, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Subscribe holds a dedicated connection on LISTEN and decodes each NOTIFY
// payload into a post. The trigger sends row_to_json of the inserted row, so
// the payload field names line up with the Post JSON tags. Returns nil once
// ctx is cancelled.
func (p *Postgres) Subscribe(ctx context.Context, onInsert func(feed.Post)) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+feedChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", feedChannel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("feed notification stream broke: %w", err)
		}

		var post feed.Post
		if err := json.Unmarshal([]byte(notification.Payload), &post); err != nil {
			log.Printf("remote: dropping unreadable feed notification: %v", err)
			continue
		}
		onInsert(post)
	}
}

var _ Client = (*Postgres)(nil)
