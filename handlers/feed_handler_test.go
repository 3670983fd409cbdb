package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/CavinKrenik/RecovrSocial/internal/feed"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
	"github.com/CavinKrenik/RecovrSocial/middleware"
	"github.com/CavinKrenik/RecovrSocial/services"
)

func setupFeedRouter(t *testing.T) *mux.Router {
	t.Helper()
	store, err := localstore.OpenInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := NewFeedHandler(services.NewFeedService(store, nil))

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.IdentityMiddleware)
	api.HandleFunc("/feed/posts", h.GetPosts).Methods("GET")
	api.HandleFunc("/feed/posts", h.CreatePost).Methods("POST")
	api.HandleFunc("/feed/posts/{postID}/like", h.ToggleLike).Methods("POST")
	api.HandleFunc("/feed/posts/{postID}/comments", h.GetComments).Methods("GET")
	api.HandleFunc("/feed/posts/{postID}/comments", h.CreateComment).Methods("POST")
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIdentityMintedWhenMissing(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "GET", "/api/v1/feed/posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	minted := rec.Header().Get(middleware.UserIDHeader)
	if !strings.HasPrefix(minted, "local_") {
		t.Errorf("Expected a minted local_ id in the response header, got %q", minted)
	}
}

func TestIdentityEchoedWhenPresent(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "GET", "/api/v1/feed/posts", "local_abc", nil)
	if got := rec.Header().Get(middleware.UserIDHeader); got != "local_abc" {
		t.Errorf("Expected echoed id local_abc, got %q", got)
	}
}

func TestCreateAndListPosts(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/feed/posts", "local_abc", feed.CreatePostRequest{Content: "One day at a time"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "GET", "/api/v1/feed/posts", "local_abc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var posts []feed.PostView
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "One day at a time" {
		t.Fatalf("Expected the created post back, got %v", posts)
	}
	if posts[0].Likes != 0 || posts[0].IsLiked {
		t.Errorf("Expected a fresh post with no likes, got %+v", posts[0])
	}
}

func TestCreatePostBlankContentIgnored(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/feed/posts", "local_abc", feed.CreatePostRequest{Content: "   "})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "ignored" {
		t.Errorf("Expected status ignored, got %v", resp)
	}
}

func TestCreatePostInvalidBody(t *testing.T) {
	router := setupFeedRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/feed/posts", strings.NewReader("{not json"))
	req.Header.Set(middleware.UserIDHeader, "local_abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/feed/posts", "local_abc", feed.CreatePostRequest{Content: "90 days today"})
	var post feed.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("Failed to decode created post: %v", err)
	}

	rec = doJSON(t, router, "POST", "/api/v1/feed/posts/"+post.ID+"/like", "local_abc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp["is_liked"] {
		t.Error("Expected is_liked true after first toggle")
	}

	rec = doJSON(t, router, "POST", "/api/v1/feed/posts/"+post.ID+"/like", "local_abc", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["is_liked"] {
		t.Error("Expected is_liked false after second toggle")
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	router := setupFeedRouter(t)

	rec := doJSON(t, router, "POST", "/api/v1/feed/posts", "local_abc", feed.CreatePostRequest{Content: "Checking in"})
	var post feed.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &post); err != nil {
		t.Fatalf("Failed to decode created post: %v", err)
	}

	rec = doJSON(t, router, "POST", "/api/v1/feed/posts/"+post.ID+"/comments", "local_xyz", feed.CreateCommentRequest{Content: "Proud of you"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "GET", "/api/v1/feed/posts/"+post.ID+"/comments", "local_abc", nil)
	var comments []feed.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comments); err != nil {
		t.Fatalf("Failed to decode comments: %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "Proud of you" {
		t.Errorf("Expected the comment back, got %v", comments)
	}
}
