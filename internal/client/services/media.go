package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mediahub/internal/client/api"
	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/models"
	"github.com/dmitrijs2005/mediahub/internal/client/query"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/client/storage"
	"github.com/dmitrijs2005/mediahub/internal/client/validation"
	"github.com/dmitrijs2005/mediahub/internal/common"
	"github.com/dmitrijs2005/mediahub/internal/filex"
	"github.com/dmitrijs2005/mediahub/internal/logging"
)

// MediaService is the signed-in user's media library.
//
// Reads go through the query cache, so concurrent callers share one request
// and repeated reads are served from memory until a mutation invalidates
// them. Uploads, updates and deletes are registered mutations.
type MediaService interface {
	List(ctx context.Context) ([]models.MediaItem, error)
	Browse(ctx context.Context, search string, page int) (models.MediaPage, error)
	Get(ctx context.Context, id string) (*models.MediaItem, error)
	Upload(ctx context.Context, path, title string) (*models.MediaItem, error)
	Update(ctx context.Context, id, path string) (*models.MediaItem, error)
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) ([]models.MediaItem, error)
	Watch(ctx context.Context) (*query.Subscription, error)
	Items(ctx context.Context, st query.State) ([]models.MediaItem, error)
	Download(ctx context.Context, id, dest string) (string, int64, error)
	Backup(ctx context.Context, dst ObjectStore) (*BackupReport, error)
}

// ObjectStore receives mirrored files.
type ObjectStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// BackupReport lists the stored keys and the items that could not be
// mirrored.
type BackupReport struct {
	Keys   []string
	Failed map[string]error
}

type mediaService struct {
	client    client.Client
	cache     *query.Cache
	store     *session.Store
	guard     *authGuard
	validator *validation.Validator
	logger    logging.Logger
	pageSize  int
}

func NewMediaService(c client.Client, cache *query.Cache, store *session.Store, v *validation.Validator, logger logging.Logger, pageSize int) MediaService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &mediaService{
		client:    c,
		cache:     cache,
		store:     store,
		guard:     newAuthGuard(store, cache, logger),
		validator: v,
		logger:    logger.With("service", "media"),
		pageSize:  pageSize,
	}
}

// fetcher issues a GET for path with whatever token is current when the
// fetch actually runs, so background refreshes never use a stale token.
func (s *mediaService) fetcher(path string) query.Fetcher {
	return func(ctx context.Context) (api.Envelope, error) {
		return s.client.Do(ctx, api.Build(path, api.MethodGet, s.store.Current().Token, nil))
	}
}

func (s *mediaService) listFetcher(userID string) query.Fetcher {
	return s.fetcher(api.FormatPath(api.PathMediaByUser, userID))
}

func (s *mediaService) List(ctx context.Context) ([]models.MediaItem, error) {
	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.cache.Query(ctx, listKey(sess.UserID), s.listFetcher(sess.UserID))
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return s.items(ctx, sess, st)
}

func (s *mediaService) Items(ctx context.Context, st query.State) ([]models.MediaItem, error) {
	return s.items(ctx, s.store.Current(), st)
}

func (s *mediaService) items(ctx context.Context, sess session.Session, st query.State) ([]models.MediaItem, error) {
	if st.IsError {
		return nil, fmt.Errorf("list media: %w", st.Err)
	}
	if !st.HasData {
		return nil, nil
	}

	env := st.Envelope
	if err := s.guard.check(ctx, sess, env); err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, failure("list media", env)
	}

	var list models.MediaList
	if err := env.Decode(&list); err != nil {
		return nil, malformed("list media", err)
	}
	return list.Media, nil
}

func (s *mediaService) Browse(ctx context.Context, search string, page int) (models.MediaPage, error) {
	items, err := s.List(ctx)
	if err != nil {
		return models.MediaPage{}, err
	}
	return models.Paginate(items, search, page, s.pageSize), nil
}

func (s *mediaService) Refresh(ctx context.Context) ([]models.MediaItem, error) {
	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(listKey(sess.UserID))
	return s.List(ctx)
}

// Watch subscribes to the user's list. The subscription ends with ctx, on
// Close, or when the session ends.
func (s *mediaService) Watch(ctx context.Context) (*query.Subscription, error) {
	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.cache.Subscribe(ctx, listKey(sess.UserID), s.listFetcher(sess.UserID)), nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}
	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}

	st, err := s.cache.Query(ctx, itemKey(sess.UserID, id), s.fetcher(api.FormatPath(api.PathMediaItem, id)))
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	return s.single(ctx, sess, "get media", http.StatusOK, st.Envelope)
}

// single checks env for the expected status and decodes the one item it
// carries.
func (s *mediaService) single(ctx context.Context, sess session.Session, op string, want int, env api.Envelope) (*models.MediaItem, error) {
	if err := s.guard.check(ctx, sess, env); err != nil {
		return nil, err
	}
	if env.StatusCode != want {
		return nil, failure(op, env)
	}

	var one models.MediaSingle
	if err := env.Decode(&one); err != nil {
		return nil, malformed(op, err)
	}
	return &one.Media, nil
}

func (s *mediaService) loadUpload(path string) (*api.Multipart, error) {
	var file *models.UploadFile
	if strings.TrimSpace(path) != "" {
		f, err := models.NewUploadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		file = f
	}
	if err := s.validator.Upload(file); err != nil {
		return nil, err
	}

	data, err := file.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return api.NewFileUpload(common.UploadFieldName, api.FilePart{
		FileName:    file.FileName,
		ContentType: file.ContentType,
		Data:        data,
	}, nil), nil
}

func (s *mediaService) Upload(ctx context.Context, path, title string) (*models.MediaItem, error) {
	body, err := s.loadUpload(path)
	if err != nil {
		return nil, err
	}
	if title = strings.TrimSpace(title); title != "" {
		body.Fields = map[string]string{"title": title}
	}

	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}

	req := api.Build(api.PathMediaUpload, api.MethodPost, sess.Token, body)
	env, err := s.cache.Mutate(ctx, query.Mutation{
		Name: api.MutationMediaUpload,
		Do:   func(ctx context.Context) (api.Envelope, error) { return s.client.Do(ctx, req) },
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	item, err := s.single(ctx, sess, "upload media", http.StatusCreated, env)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "media uploaded", "id", item.ID, "file", item.FileName)
	return item, nil
}

func (s *mediaService) Update(ctx context.Context, id, path string) (*models.MediaItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}
	body, err := s.loadUpload(path)
	if err != nil {
		return nil, err
	}

	sess, err := s.guard.session(ctx)
	if err != nil {
		return nil, err
	}

	req := api.Build(api.FormatPath(api.PathMediaItem, id), api.MethodPatch, sess.Token, body)
	env, err := s.cache.Mutate(ctx, query.Mutation{
		Name:        api.MutationMediaUpdate,
		Do:          func(ctx context.Context) (api.Envelope, error) { return s.client.Do(ctx, req) },
		Invalidates: []query.Key{itemKey(sess.UserID, id)},
	})
	if err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}

	item, err := s.single(ctx, sess, "update media", http.StatusOK, env)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "media updated", "id", item.ID, "file", item.FileName)
	return item, nil
}

func (s *mediaService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	sess, err := s.guard.session(ctx)
	if err != nil {
		return err
	}

	req := api.Build(api.FormatPath(api.PathMediaItem, id), api.MethodDelete, sess.Token, nil)
	env, err := s.cache.Mutate(ctx, query.Mutation{
		Name:        api.MutationMediaDelete,
		Do:          func(ctx context.Context) (api.Envelope, error) { return s.client.Do(ctx, req) },
		Invalidates: []query.Key{itemKey(sess.UserID, id)},
	})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if err := s.guard.check(ctx, sess, env); err != nil {
		return err
	}
	if env.StatusCode != http.StatusOK {
		return failure("delete media", env)
	}

	s.logger.Info(ctx, "media deleted", "id", id)
	return nil
}

// fetchFile streams the stored file of item into w.
func (s *mediaService) fetchFile(ctx context.Context, sess session.Session, item *models.MediaItem, w io.Writer) (int64, error) {
	if item.FileURL == "" {
		return 0, fmt.Errorf("media %s: %w: no file url", item.ID, ErrMalformedResponse)
	}
	n, err := s.client.Download(ctx, api.Build(item.FileURL, api.MethodGet, sess.Token, nil), w)
	if errors.Is(err, client.ErrUnauthorized) {
		s.guard.expire(ctx, sess, "token rejected by server")
	}
	return n, err
}

// Download saves the file of item id to dest. When dest is an existing
// directory the item's file name is used inside it. It returns the written
// path and size.
func (s *mediaService) Download(ctx context.Context, id, dest string) (string, int64, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}
	sess, err := s.guard.session(ctx)
	if err != nil {
		return "", 0, err
	}

	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		dest = filepath.Join(dest, filepath.Base("/"+item.FileName))
	}

	var n int64
	err = filex.WriteAtomic(dest, func(w io.Writer) error {
		var err error
		n, err = s.fetchFile(ctx, sess, item, w)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("download media %s: %w", id, err)
	}
	return dest, n, nil
}

// Backup mirrors every item of the user's library into dst. Items that fail
// are reported and the rest are still attempted.
func (s *mediaService) Backup(ctx context.Context, dst ObjectStore) (*BackupReport, error) {
	if dst == nil {
		return nil, storage.ErrDisabled
	}
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sess := s.store.Current()

	report := &BackupReport{Failed: make(map[string]error)}
	for i := range items {
		item := &items[i]

		var buf bytes.Buffer
		if _, err := s.fetchFile(ctx, sess, item, &buf); err != nil {
			if errors.Is(err, client.ErrUnauthorized) || ctx.Err() != nil {
				return report, err
			}
			report.Failed[item.ID] = err
			continue
		}

		key, err := dst.Save(ctx, storage.ObjectKey(sess.UserID, item.ID, item.FileName), &buf)
		if err != nil {
			report.Failed[item.ID] = err
			continue
		}
		report.Keys = append(report.Keys, key)
	}

	s.logger.Info(ctx, "backup finished", "saved", len(report.Keys), "failed", len(report.Failed))
	return report, nil
}
