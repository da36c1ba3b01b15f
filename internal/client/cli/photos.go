package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/filex"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/netx"
	"github.com/dmitrijs2005/photovault/internal/quota"
	"github.com/dmitrijs2005/photovault/internal/services"
)

// ownPhoto returns the photo when it belongs to userID.
func (a *App) ownPhoto(ctx context.Context, userID, photoID string) (models.Photo, error) {
	photos, err := a.photos.List(ctx, userID, nil, true)
	if err != nil {
		return models.Photo{}, err
	}
	for _, p := range photos {
		if p.ID == photoID {
			return p, nil
		}
	}
	return models.Photo{}, fmt.Errorf("%w: photo %s", common.ErrNotFound, photoID)
}

// Upload sends the files to the current folder. Files are handled
// independently: one unreadable or rejected file does not stop the others.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	inputs := make([]services.UploadInput, 0, len(args))
	for _, path := range args {
		up, err := filex.ReadUpload(path)
		if err != nil {
			fmt.Fprintf(a.out, "FAIL  %s: %v\n", path, err)
			continue
		}
		inputs = append(inputs, services.UploadInput{Name: up.Name, Type: up.ContentType, Data: up.Data, FolderID: a.folderID})
	}
	if len(inputs) == 0 {
		return nil
	}

	results, err := a.photos.UploadBatch(ctx, u.ID, inputs)
	if err != nil {
		return err
	}
	ok := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(a.out, "FAIL  %s: %v\n", r.Name, r.Err)
			continue
		}
		ok++
		fmt.Fprintf(a.out, "OK    %s (%s, %s)\n", r.Name, r.Photo.ID, quota.FormatBytes(r.Photo.Size))
	}
	fmt.Fprintf(a.out, "Uploaded %d of %d file(s)\n", ok, len(args))
	return nil
}

// Move puts a photo into another folder, or the root with "/".
func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := a.ownPhoto(ctx, u.ID, args[0]); err != nil {
		return err
	}
	var target *string
	if args[1] != "/" {
		target = models.Ref(args[1])
	}
	outcome, err := a.photos.Move(ctx, args[0], target)
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Moved")
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	p, err := a.ownPhoto(ctx, u.ID, args[0])
	if err != nil {
		return err
	}
	outcome, err := a.photos.Delete(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s (freed %s)\n", p.Name, quota.FormatBytes(p.Size))
	return nil
}

// URL prints a readable link to the photo.
func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := a.ownPhoto(ctx, u.ID, args[0]); err != nil {
		return err
	}
	link, err := a.photos.DownloadURL(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, link)
	return nil
}

// Download saves the photo to dest, or to its own name in the working
// directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	p, err := a.ownPhoto(ctx, u.ID, args[0])
	if err != nil {
		return err
	}
	link, err := a.photos.DownloadURL(ctx, p.ID)
	if err != nil {
		return err
	}
	data, err := a.fetch(ctx, link)
	if err != nil {
		return err
	}

	dest := filepath.Base(p.Name)
	if len(args) == 2 {
		dest = args[1]
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%s)\n", dest, quota.FormatBytes(int64(len(data))))
	return nil
}

// fetch reads the payload behind a download link: presigned http(s) URLs,
// file:// URLs of the local gateway and inline data URLs of legacy photos.
func (a *App) fetch(ctx context.Context, link string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(link, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data url", common.ErrDataIntegrity)
		}
		if strings.HasSuffix(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		s, err := url.PathUnescape(payload)
		return []byte(s), err
	}

	u, err := url.Parse(link)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "file" {
		return os.ReadFile(filepath.FromSlash(u.Path))
	}
	return netx.GetPresigned(ctx, &http.Client{Timeout: a.config.RequestTimeout}, link)
}

func (a *App) Usage(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	us, err := a.photos.Usage(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Plan: %s\n", u.Plan)
	if us.Limit.Unbounded {
		fmt.Fprintf(a.out, "Used: %s of %s\n", quota.FormatBytes(us.Used), us.Limit)
	} else {
		fmt.Fprintf(a.out, "Used: %s of %s (%.1f%%)\n", quota.FormatBytes(us.Used), us.Limit, us.Percentage)
	}
	fmt.Fprintf(a.out, "Photos: %d\n", us.Photos)
	return nil
}

// Remote lists the objects stored remotely for the current folder.
func (a *App) Remote(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	objs, err := a.photos.ListRemote(ctx, u.ID, a.folderID)
	if err != nil {
		return err
	}
	for _, o := range objs {
		fmt.Fprintf(a.out, "%s  %s  %s\n", o.ObjectKey, quota.FormatBytes(o.Size), o.LastModified.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(a.out, "%d object(s)\n", len(objs))
	return nil
}
