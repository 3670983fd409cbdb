// Package remote talks to the hosted community database. The rest of the app
// treats it as an opaque collaborator: a handful of select/insert operations
// plus an insert push stream. Callers must be prepared for any call to fail
// and fall back to the local tier.
package remote

import (
	"context"

	"github.com/CavinKrenik/RecovrSocial/internal/feed"
)

type Client interface {
	SelectPosts(ctx context.Context) ([]feed.Post, error)
	InsertPost(ctx context.Context, p feed.Post) error
	SelectLikes(ctx context.Context) (feed.LikeSet, error)
	InsertLike(ctx context.Context, postID, userID string) error
	DeleteLike(ctx context.Context, postID, userID string) error
	SelectComments(ctx context.Context) ([]feed.Comment, error)
	InsertComment(ctx context.Context, c feed.Comment) error

	// Subscribe delivers every post inserted by any client, including this
	// one, until ctx is cancelled. Receivers must de-duplicate by post id.
	Subscribe(ctx context.Context, onInsert func(feed.Post)) error
}
