package repository

import (
	"strings"
)

// Key layout for the hosted key-value store. Primary records are JSON
// strings; secondary indices are lists (ordered) or sets (membership).
const (
	blogSlugsKey    = "blog:slugs"
	featureFlagsKey = "feature:flags"
	guestbookKey    = "guestbook:entries"
)

func userKey(id string) string {
	return "user:" + id
}

func userEmailKey(email string) string {
	return "user:email:" + strings.ToLower(email)
}

func userUsernameKey(username string) string {
	return "user:username:" + strings.ToLower(username)
}

func noteKey(id string) string {
	return "note:" + id
}

func userNotesKey(userID string) string {
	return "user:" + userID + ":notes"
}

func noteCategoryKey(userID, category string) string {
	return "user:" + userID + ":notes:cat:" + category
}

func noteTagKey(userID, tag string) string {
	return "user:" + userID + ":notes:tag:" + tag
}

func noteTypeKey(id string) string {
	return "notetype:" + id
}

func userNoteTypesKey(userID string) string {
	return "user:" + userID + ":notetypes"
}

func noteTypeNameKey(userID, name string) string {
	return "user:" + userID + ":notetype:name:" + strings.ToLower(name)
}

func blogPostKey(slug string) string {
	return "blog:post:" + slug
}

func taskKey(id string) string {
	return "task:" + id
}

func userTasksKey(userID string) string {
	return "user:" + userID + ":tasks"
}
