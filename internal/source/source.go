// Package source is the read-entire-file collaborator the CLI driver uses
// to hand the core a plain []byte. It is backed by github.com/viant/afs —
// a single afs.Service.DownloadWithURL call per path — so the core package
// never takes a dependency on any particular filesystem or URL scheme.
package source

import (
	"context"

	"github.com/viant/afs"
)

// Reader wraps an afs.Service for whole-file reads. A single instance is
// cheap to share across a process; afs.New() carries no per-call state.
type Reader struct {
	fs afs.Service
}

// NewReader creates a Reader backed by a fresh afs.Service.
func NewReader() *Reader {
	return &Reader{fs: afs.New()}
}

// ReadFile returns the entire contents of the file at path (a local path
// or any URL scheme afs supports) as a byte buffer.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return r.fs.DownloadWithURL(ctx, path)
}
