package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/CavinKrenik/RecovrSocial/internal/feed"
	"github.com/CavinKrenik/RecovrSocial/middleware"
	"github.com/CavinKrenik/RecovrSocial/services"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

func (h *FeedHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	posts, err := h.feedService.ListPosts(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load feed")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	var req feed.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.feedService.CreatePost(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}
	if post == nil {
		// Blank content: nothing stored, nothing to report.
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

func (h *FeedHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	postID := mux.Vars(r)["postID"]
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "postID is required")
		return
	}

	liked, err := h.feedService.ToggleLike(ctx, userID, postID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to toggle like")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"is_liked": liked})
}

func (h *FeedHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	postID := mux.Vars(r)["postID"]
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "postID is required")
		return
	}

	comments, err := h.feedService.ListComments(ctx, postID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load comments")
		return
	}

	respondWithJSON(w, http.StatusOK, comments)
}

func (h *FeedHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "User identity missing")
		return
	}

	postID := mux.Vars(r)["postID"]
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "postID is required")
		return
	}

	var req feed.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.feedService.CreateComment(ctx, userID, postID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create comment")
		return
	}
	if comment == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

// StreamChanges pushes a server-sent event every time the feed changes so
// clients can re-fetch without polling. Events carry no payload.
func (h *FeedHandler) StreamChanges(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	changes := make(chan struct{}, 1)
	unsubscribe := h.feedService.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			fmt.Fprint(w, "event: change\ndata: {}\n\n")
			flusher.Flush()
		}
	}
}
