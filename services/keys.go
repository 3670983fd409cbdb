package services

// Logical keys in the local store. One JSON value per key. Feed and event
// collections are community-wide; profile and journal keys are scoped to the
// local user id.
const (
	keyPosts    = "feed/posts"
	keyLikes    = "feed/likes"
	keyComments = "feed/comments"
	keyEvents   = "events/community"
)

const (
	fieldNickname       = "nickname"
	fieldCleanDate      = "clean_date"
	fieldAnonymousMode  = "anonymous_mode"
	fieldProfileVisible = "profile_visible"
)

func profileKey(userID, field string) string {
	return "profile/" + userID + "/" + field
}

func journalKey(userID string) string {
	return "journal/" + userID
}
