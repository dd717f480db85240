// Package query is the single path through which the client reads from and
// writes to the backend.
//
// Reads are queries: a Fetcher identified by a Key (endpoint plus hashed
// arguments). Results are cached per key, concurrent identical queries share
// one in-flight call, and subscribers receive every state change of the
// entry they watch. Writes are mutations: they run immediately, are never
// cached, and after a 2xx result invalidate the endpoints declared for them
// in the Registry.
//
// Every entry owns a lifetime context. Fetches run under it and it is
// cancelled when the entry is evicted, which happens when the last
// subscriber leaves or on Reset. A subscription closes itself when the
// context it was opened with ends.
package query
