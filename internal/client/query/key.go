package query

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a cache entry.
type Key struct {
	Endpoint string
	Hash     uint64
}

// NewKey hashes the JSON form of args. Arguments that cannot be marshalled
// fall back to their Go-syntax representation.
func NewKey(endpoint string, args ...any) Key {
	data, err := json.Marshal(args)
	if err != nil {
		data = fmt.Appendf(nil, "%#v", args)
	}
	return Key{Endpoint: endpoint, Hash: xxhash.Sum64(data)}
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%016x", k.Endpoint, k.Hash)
}
