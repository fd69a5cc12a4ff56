// storage/storage.go - pluggable backing media for content documents
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrNotFound is returned by GetObject when the key has never been written.
	ErrNotFound = errors.New("object not found")
	// ErrVersionMismatch is returned by PutObject when the expected version
	// does not match the stored one.
	ErrVersionMismatch = errors.New("object version mismatch")
)

// AbsentVersion is the version token of an object that does not exist yet.
// Passed as expectedVersion it makes PutObject create-only.
const AbsentVersion = "absent"

// Object is a stored blob and the version token of that exact revision.
type Object struct {
	Key     string
	Data    []byte
	Version string
}

// Backend is a backing medium for JSON documents. Implementations must give
// read-after-write consistency: a successful PutObject is visible to the
// next GetObject from any caller.
type Backend interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string
	GetObject(ctx context.Context, key string) (*Object, error)
	// PutObject stores data under key and returns the new version token.
	// A non-empty expectedVersion makes the write conditional on the stored
	// version; AbsentVersion requires that nothing is stored yet and an
	// empty one overwrites unconditionally.
	PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error)
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// contentHash is the version token for blobs that were written without one,
// e.g. a file edited by hand.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
