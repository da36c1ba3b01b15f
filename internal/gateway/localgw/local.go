// Package localgw emulates object storage on the local filesystem. Targets
// are file:// URLs below a root directory, which makes it usable offline and
// in tests.
package localgw

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/filex"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/objects"
)

// Bucket is reported as the bucket name of every stored object.
const Bucket = "local"

type Gateway struct {
	root string
	now  func() time.Time
}

// New stores objects below dir, creating it if needed.
func New(dir string) (*Gateway, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Gateway{root: root, now: time.Now}, nil
}

func (g *Gateway) pathOf(key string) string {
	return filepath.Join(g.root, filepath.FromSlash(key))
}

func (g *Gateway) urlOf(key string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(g.pathOf(key))}).String()
}

// resolve maps a file:// URL back to a path inside root.
func (g *Gateway) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	p := filepath.Clean(filepath.FromSlash(u.Path))
	rel, err := filepath.Rel(g.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s is outside the storage root", common.ErrForbidden, raw)
	}
	return p, nil
}

func owner(ctx context.Context) (string, error) {
	id, ok := gateway.OwnerFrom(ctx)
	if !ok {
		return "", common.ErrUnauthorized
	}
	return id, nil
}

func (g *Gateway) RequestUploadTarget(ctx context.Context, req gateway.UploadRequest) (gateway.UploadTarget, error) {
	id, err := owner(ctx)
	if err != nil {
		return gateway.UploadTarget{}, err
	}
	key := objects.NewObjectKey(id, req.Folder, req.FileName, g.now())
	return gateway.UploadTarget{PutURL: g.urlOf(key), ObjectKey: key, Bucket: Bucket}, nil
}

func (g *Gateway) PutBinary(_ context.Context, putURL string, data []byte, _ string) error {
	p, err := g.resolve(putURL)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	if _, err := filex.EnsureDir(filepath.Dir(p)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	if err := os.WriteFile(p, data, 0o660); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	return nil
}

func (g *Gateway) RequestDownloadTarget(ctx context.Context, objectKey string) (string, error) {
	id, err := owner(ctx)
	if err != nil {
		return "", err
	}
	if err := objects.CheckOwner(id, objectKey); err != nil {
		return "", err
	}
	if _, err := os.Stat(g.pathOf(objectKey)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", common.ErrNotFound, objectKey)
		}
		return "", err
	}
	return g.urlOf(objectKey), nil
}

// DeleteObject is idempotent: a missing file is not an error.
func (g *Gateway) DeleteObject(ctx context.Context, objectKey string) error {
	id, err := owner(ctx)
	if err != nil {
		return err
	}
	if err := objects.CheckOwner(id, objectKey); err != nil {
		return err
	}
	if err := os.Remove(g.pathOf(objectKey)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (g *Gateway) ListObjects(ctx context.Context, folder string) ([]gateway.RemoteObject, error) {
	id, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	prefix := objects.FolderPrefix(id, folder)
	dir := g.pathOf(prefix)

	out := []gateway.RemoteObject{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(g.root, p)
		if err != nil {
			return err
		}
		out = append(out, gateway.RemoteObject{ObjectKey: filepath.ToSlash(rel), Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) Ping(context.Context) error {
	_, err := os.Stat(g.root)
	return err
}

var (
	_ gateway.Gateway = (*Gateway)(nil)
	_ gateway.Lister  = (*Gateway)(nil)
	_ gateway.Pinger  = (*Gateway)(nil)
)
