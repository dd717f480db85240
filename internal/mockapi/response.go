package mockapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/mockapi/media"
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Response   any    `json:"response,omitempty"`
	Message    string `json:"message,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, response any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{StatusCode: status, Response: response, Message: message})
}

type authView struct {
	Token string `json:"token"`
	ID    string `json:"id"`
}

type itemView struct {
	ID        string    `json:"_id"`
	FileName  string    `json:"fileName"`
	FileURL   string    `json:"fileUrl"`
	FileType  string    `json:"fileType"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UserID    string    `json:"userId"`
}

func viewOf(it *media.Item) itemView {
	return itemView{
		ID:        it.ID,
		FileName:  it.FileName,
		FileURL:   "/uploads/" + it.StoredName,
		FileType:  it.FileType,
		Title:     it.Title,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
		UserID:    it.UserID,
	}
}

type listView struct {
	Media []itemView `json:"media"`
}

type singleView struct {
	Media itemView `json:"media"`
}
