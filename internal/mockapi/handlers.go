package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/mediahub/internal/common"
	"github.com/dmitrijs2005/mediahub/internal/mockapi/media"
)

const multipartMemory = 32 << 20

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(v)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeEnvelope(w, http.StatusBadRequest, nil, "Email and password are required")
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "sign in failed", "error", err)
		writeEnvelope(w, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	writeEnvelope(w, http.StatusOK, authView{Token: res.Token, ID: res.UserID}, "Signed in successfully")
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "Invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		writeEnvelope(w, http.StatusBadRequest, nil, "Full name, email and password are required")
		return
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		writeEnvelope(w, http.StatusBadRequest, nil, "Passwords must match")
		return
	}

	res, err := s.users.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			writeEnvelope(w, http.StatusConflict, nil, "User already exists")
			return
		}
		s.logger.Error(r.Context(), "sign up failed", "error", err)
		writeEnvelope(w, http.StatusInternalServerError, nil, "Internal server error")
		return
	}

	writeEnvelope(w, http.StatusOK, authView{Token: res.Token, ID: res.UserID}, "User registered successfully")
}

func (s *Server) listMedia(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["userId"]
	if owner != userIDFrom(r.Context()) {
		writeEnvelope(w, http.StatusForbidden, nil, "Forbidden")
		return
	}

	items, err := s.media.ListByUser(r.Context(), owner)
	if err != nil {
		s.internalError(w, r, "list media", err)
		return
	}

	out := listView{Media: make([]itemView, 0, len(items))}
	for i := range items {
		out.Media = append(out.Media, viewOf(&items[i]))
	}
	writeEnvelope(w, http.StatusOK, out, "Media fetched successfully")
}

// ownedItem loads the item named in the route and hides items owned by
// someone else behind a 404.
func (s *Server) ownedItem(w http.ResponseWriter, r *http.Request) (*media.Item, bool) {
	it, err := s.media.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, nil, "Media not found")
			return nil, false
		}
		s.internalError(w, r, "get media", err)
		return nil, false
	}
	if it.UserID != userIDFrom(r.Context()) {
		writeEnvelope(w, http.StatusNotFound, nil, "Media not found")
		return nil, false
	}
	return it, true
}

func (s *Server) getMedia(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, singleView{Media: viewOf(it)}, "Media fetched successfully")
}

type upload struct {
	fileName    string
	contentType string
	fileType    string
	title       string
	data        []byte
}

// readUpload pulls the "file" part out of a multipart request and checks
// that it holds an image or a video within the size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "Invalid multipart body")
		return nil, false
	}

	f, hdr, err := r.FormFile(common.UploadFieldName)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "No file uploaded")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadSize+1))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "Invalid multipart body")
		return nil, false
	}
	if int64(len(data)) > s.maxUploadSize {
		writeEnvelope(w, http.StatusBadRequest, nil,
			fmt.Sprintf("File size exceeds %dMB limit", s.maxUploadSize>>20))
		return nil, false
	}

	mt := mimetype.Detect(data)
	kind, _, _ := strings.Cut(mt.String(), "/")
	if kind != "image" && kind != "video" {
		writeEnvelope(w, http.StatusBadRequest, nil, "Only image and video files are allowed")
		return nil, false
	}

	return &upload{
		fileName:    hdr.Filename,
		contentType: mt.String(),
		fileType:    kind,
		title:       strings.TrimSpace(r.FormValue("title")),
		data:        data,
	}, true
}

func (s *Server) uploadMedia(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	it, err := s.media.Create(r.Context(), &media.Item{
		UserID:      userIDFrom(r.Context()),
		FileName:    up.fileName,
		FileType:    up.fileType,
		ContentType: up.contentType,
		Title:       up.title,
		Data:        up.data,
	})
	if err != nil {
		s.internalError(w, r, "create media", err)
		return
	}

	writeEnvelope(w, http.StatusCreated, singleView{Media: viewOf(it)}, "Media uploaded successfully")
}

func (s *Server) updateMedia(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.ownedItem(w, r)
	if !ok {
		return
	}

	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	it, err := s.media.Update(r.Context(), &media.Item{
		ID:          cur.ID,
		FileName:    up.fileName,
		FileType:    up.fileType,
		ContentType: up.contentType,
		Title:       up.title,
		Data:        up.data,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, nil, "Media not found")
			return
		}
		s.internalError(w, r, "update media", err)
		return
	}

	writeEnvelope(w, http.StatusOK, singleView{Media: viewOf(it)}, "Media updated successfully")
}

func (s *Server) deleteMedia(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownedItem(w, r)
	if !ok {
		return
	}

	if err := s.media.Delete(r.Context(), it.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, nil, "Media not found")
			return
		}
		s.internalError(w, r, "delete media", err)
		return
	}

	writeEnvelope(w, http.StatusOK, nil, "Media deleted successfully")
}

// serveFile returns the raw bytes of a stored upload. File URLs are public.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	it, err := s.media.GetByStoredName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeEnvelope(w, http.StatusNotFound, nil, "File not found")
			return
		}
		s.internalError(w, r, "serve file", err)
		return
	}

	w.Header().Set("Content-Type", it.ContentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(it.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(it.Data)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(r.Context(), op+" failed", "error", err)
	writeEnvelope(w, http.StatusInternalServerError, nil, "Internal server error")
}
