package session

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mediahub/internal/common"
	"github.com/dmitrijs2005/mediahub/internal/cryptox"
	"github.com/dmitrijs2005/mediahub/internal/dbx"
)

// Persister is durable storage for the serialised session.
type Persister interface {
	// Load returns (nil, nil) when nothing has been stored.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored blob. A nil blob removes it.
	Save(ctx context.Context, blob []byte) error
}

const savedAtSuffix = ".saved_at"

// SQLitePersister keeps the blob in the metadata table under the root key,
// with a companion key recording when it was written.
type SQLitePersister struct {
	db  *sql.DB
	key string
	now func() time.Time
}

func NewSQLitePersister(db *sql.DB) *SQLitePersister {
	return &SQLitePersister{db: db, key: common.PersistRootKey, now: time.Now}
}

func (p *SQLitePersister) Load(ctx context.Context) ([]byte, error) {
	return metadata.NewSQLiteRepository(p.db).Get(ctx, p.key)
}

func (p *SQLitePersister) Save(ctx context.Context, blob []byte) error {
	return dbx.WithTx(ctx, p.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if blob == nil {
			if err := repo.Delete(ctx, p.key); err != nil {
				return err
			}
			return repo.Delete(ctx, p.key+savedAtSuffix)
		}
		if err := repo.Set(ctx, p.key, blob); err != nil {
			return err
		}
		ts := strconv.FormatInt(p.now().Unix(), 10)
		return repo.Set(ctx, p.key+savedAtSuffix, []byte(ts))
	})
}

// SealedPersister encrypts blobs before handing them to the wrapped
// Persister. A blob that cannot be opened surfaces as an error from Load,
// which the Store treats as corrupted storage.
type SealedPersister struct {
	inner  Persister
	secret []byte
}

func NewSealedPersister(inner Persister, secret string) *SealedPersister {
	return &SealedPersister{inner: inner, secret: []byte(secret)}
}

func (p *SealedPersister) Load(ctx context.Context) ([]byte, error) {
	blob, err := p.inner.Load(ctx)
	if err != nil || blob == nil {
		return nil, err
	}
	return cryptox.Open(blob, p.secret)
}

func (p *SealedPersister) Save(ctx context.Context, blob []byte) error {
	if blob == nil {
		return p.inner.Save(ctx, nil)
	}
	sealed, err := cryptox.Seal(blob, p.secret)
	if err != nil {
		return err
	}
	return p.inner.Save(ctx, sealed)
}
