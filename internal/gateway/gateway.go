// Package gateway is the client-side contract for remote object storage. The
// photo services depend only on Gateway; the subpackages provide the HTTP,
// gRPC, direct S3 and local filesystem implementations.
package gateway

import (
	"context"
	"time"
)

// UploadRequest describes a file about to be uploaded. Folder is the folder
// name used to group objects remotely; empty means root.
type UploadRequest struct {
	FileName string
	FileType string
	Folder   string
}

// UploadTarget is a single-use write location.
type UploadTarget struct {
	PutURL    string
	ObjectKey string
	Bucket    string
}

type Gateway interface {
	RequestUploadTarget(ctx context.Context, req UploadRequest) (UploadTarget, error)
	// PutBinary must return an error for any non-2xx outcome.
	PutBinary(ctx context.Context, putURL string, data []byte, contentType string) error
	// RequestDownloadTarget returns a readable URL. Repeated calls for the same
	// key resolve to the same content.
	RequestDownloadTarget(ctx context.Context, objectKey string) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// BatchResult is the outcome for one file of a batch request. Err is nil when
// Target is usable.
type BatchResult struct {
	FileName string
	Target   UploadTarget
	Err      error
}

// BatchRequester is implemented by gateways that can issue several upload
// targets in one round trip.
type BatchRequester interface {
	RequestUploadTargets(ctx context.Context, files []UploadRequest, folder string) ([]BatchResult, error)
}

type RemoteObject struct {
	ObjectKey    string
	Size         int64
	LastModified time.Time
}

// Lister is implemented by gateways that can enumerate stored objects.
type Lister interface {
	ListObjects(ctx context.Context, folder string) ([]RemoteObject, error)
}

// Pinger reports whether the gateway is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ownerKey struct{}

// WithOwner attaches the acting user to ctx. Gateways authenticate remote
// calls as this user.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

func OwnerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	return id, ok && id != ""
}
