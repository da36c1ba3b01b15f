// Package s3gw serves the gateway contract straight from S3, presigning URLs
// locally with the configured credentials instead of asking a gateway server.
package s3gw

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/netx"
	"github.com/dmitrijs2005/photovault/internal/objects"
)

// ObjectService is the subset of objects.Service this gateway needs.
type ObjectService interface {
	PresignUpload(ctx context.Context, owner, folder, fileName, contentType string) (*objects.Target, error)
	PresignDownload(ctx context.Context, owner, key string) (*objects.Target, error)
	Delete(ctx context.Context, owner, key string) error
	List(ctx context.Context, owner, folder string) ([]objects.Object, error)
}

type Client struct {
	objects ObjectService
	http    *http.Client
}

func New(svc ObjectService, timeout time.Duration) *Client {
	return &Client{objects: svc, http: &http.Client{Timeout: timeout}}
}

func owner(ctx context.Context) (string, error) {
	id, ok := gateway.OwnerFrom(ctx)
	if !ok {
		return "", common.ErrUnauthorized
	}
	return id, nil
}

func remote(err error) error {
	return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
}

func (c *Client) RequestUploadTarget(ctx context.Context, req gateway.UploadRequest) (gateway.UploadTarget, error) {
	id, err := owner(ctx)
	if err != nil {
		return gateway.UploadTarget{}, err
	}
	t, err := c.objects.PresignUpload(ctx, id, req.Folder, req.FileName, req.FileType)
	if err != nil {
		return gateway.UploadTarget{}, remote(err)
	}
	return gateway.UploadTarget{PutURL: t.URL, ObjectKey: t.Key, Bucket: t.Bucket}, nil
}

func (c *Client) PutBinary(ctx context.Context, putURL string, data []byte, contentType string) error {
	if err := netx.PutPresigned(ctx, c.http, putURL, data, contentType); err != nil {
		return remote(err)
	}
	return nil
}

func (c *Client) RequestDownloadTarget(ctx context.Context, objectKey string) (string, error) {
	id, err := owner(ctx)
	if err != nil {
		return "", err
	}
	t, err := c.objects.PresignDownload(ctx, id, objectKey)
	if err != nil {
		return "", err
	}
	return t.URL, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	id, err := owner(ctx)
	if err != nil {
		return err
	}
	return c.objects.Delete(ctx, id, objectKey)
}

func (c *Client) ListObjects(ctx context.Context, folder string) ([]gateway.RemoteObject, error) {
	id, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	objs, err := c.objects.List(ctx, id, folder)
	if err != nil {
		return nil, remote(err)
	}
	out := make([]gateway.RemoteObject, 0, len(objs))
	for _, o := range objs {
		out = append(out, gateway.RemoteObject{ObjectKey: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	return out, nil
}

var (
	_ gateway.Gateway = (*Client)(nil)
	_ gateway.Lister  = (*Client)(nil)
	_ ObjectService   = (*objects.Service)(nil)
)
