package blob

import (
	"sync"

	"github.com/google/uuid"
)

const urlScheme = "blob:"

// Registry mints resolvable blob: URLs for finished recordings. References
// live for the registry's lifetime or until revoked; there is no implicit
// expiry.
type Registry struct {
	blobs map[string]*Blob
	l     sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{blobs: make(map[string]*Blob)}
}

// CreateURL registers b and returns a fresh URL for it. Every call returns a
// distinct URL, even for the same blob.
func (r *Registry) CreateURL(b *Blob) string {
	url := urlScheme + uuid.NewString()

	r.l.Lock()
	defer r.l.Unlock()
	r.blobs[url] = b

	return url
}

// Resolve returns the blob a URL refers to, if it is still registered.
func (r *Registry) Resolve(url string) (*Blob, bool) {
	r.l.RLock()
	defer r.l.RUnlock()

	b, ok := r.blobs[url]
	return b, ok
}

// Revoke drops the reference behind url. Revoking an unknown URL is a no-op.
func (r *Registry) Revoke(url string) {
	r.l.Lock()
	defer r.l.Unlock()

	delete(r.blobs, url)
}

// Len reports how many references are currently registered.
func (r *Registry) Len() int {
	r.l.RLock()
	defer r.l.RUnlock()

	return len(r.blobs)
}
