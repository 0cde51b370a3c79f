package port

import (
	"context"
	"io"
	"time"
)

// ObjectRef locates a stored document object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// PutObjectInput is one document object to store. Metadata is attached to
// the object as user metadata.
type PutObjectInput struct {
	Ref         ObjectRef
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// ObjectStorage stores uploaded shipment documents.
type ObjectStorage interface {
	Put(ctx context.Context, input PutObjectInput) error
	// Get reads the whole object. Objects larger than maxBytes fail with
	// domain.ErrFileTooLarge; maxBytes <= 0 disables the check.
	Get(ctx context.Context, ref ObjectRef, maxBytes int64) ([]byte, error)
	Delete(ctx context.Context, ref ObjectRef) error
	// PresignGet returns a time-limited download URL that saves as fileName.
	PresignGet(ctx context.Context, ref ObjectRef, expiry time.Duration, fileName string) (string, error)
}
