package journal

import "time"

type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EntryRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

// Filter narrows a journal listing. Term matches title or content,
// case-insensitive; Mood and Tag match exactly. Empty fields are ignored.
type Filter struct {
	Term string
	Mood string
	Tag  string
}
