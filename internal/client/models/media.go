// Package models defines the client-side data models of the media backend.
package models

import (
	"encoding/json"
	"time"
)

// FileType classifies a media item.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
)

// MediaItem is a server-owned media record. The client only reads it.
type MediaItem struct {
	ID        string    `json:"_id"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	FileType  FileType  `json:"fileType"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `json:"userId"`
}

// UnmarshalJSON accepts the id as either "_id" or "id", preferring "_id".
func (m *MediaItem) UnmarshalJSON(data []byte) error {
	type plain MediaItem
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*m = MediaItem(aux.plain)
	if m.ID == "" {
		m.ID = aux.AltID
	}
	return nil
}

// MediaList is the payload of the list endpoint.
type MediaList struct {
	Media []MediaItem `json:"media"`
}

// MediaSingle is the payload of the single-item endpoints.
type MediaSingle struct {
	Media MediaItem `json:"media"`
}
