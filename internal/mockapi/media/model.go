// Package media stores uploaded items for the fake backend.
package media

import "time"

type Item struct {
	ID          string
	UserID      string
	FileName    string
	FileType    string
	ContentType string
	Title       string
	StoredName  string
	Data        []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
