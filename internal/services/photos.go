package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/quota"
	"github.com/dmitrijs2005/photovault/internal/store"
	"golang.org/x/sync/errgroup"
)

const DefaultUploadConcurrency = 4

// UploadInput is one file to upload. FolderID nil uploads to the root.
type UploadInput struct {
	Name     string
	Type     string
	Data     []byte
	FolderID *string
}

// UploadResult is the outcome for one file of a batch.
type UploadResult struct {
	Name  string
	Photo *models.Photo
	Err   error
}

type PhotoService struct {
	store       *store.Store
	gateway     gateway.Gateway
	logger      logging.Logger
	concurrency int

	// serialises metadata writes of concurrent uploads
	writeMu sync.Mutex
}

func NewPhotoService(s *store.Store, gw gateway.Gateway, l logging.Logger, concurrency int) *PhotoService {
	if concurrency <= 0 {
		concurrency = DefaultUploadConcurrency
	}
	return &PhotoService{store: s, gateway: gw, logger: l.With("module", "photos"), concurrency: concurrency}
}

func remoteErr(err error) error {
	if errors.Is(err, common.ErrRemoteTransfer) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
}

func (s *PhotoService) user(ctx context.Context, userID string) (models.User, error) {
	u, ok, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, fmt.Errorf("%w: user %s", common.ErrNotFound, userID)
	}
	return u, nil
}

func checkInput(in UploadInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: file name is required", common.ErrValidation)
	}
	if !strings.HasPrefix(in.Type, "image/") {
		return fmt.Errorf("%w: %s is not an image (%s)", common.ErrValidation, in.Name, in.Type)
	}
	return nil
}

// folderName resolves folderID to the name used to group objects remotely.
// The folder must belong to userID.
func folderName(byID map[string]models.Folder, userID string, folderID *string) (string, error) {
	if folderID == nil {
		return "", nil
	}
	f, ok := byID[*folderID]
	if !ok || f.UserID != userID {
		return "", fmt.Errorf("%w: folder %s not found", common.ErrValidation, *folderID)
	}
	return f.Name, nil
}

func (s *PhotoService) foldersByID(ctx context.Context) (map[string]models.Folder, error) {
	all, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Folder, len(all))
	for _, f := range all {
		byID[f.ID] = f
	}
	return byID, nil
}

// record writes the photo and charges its size to the owner atomically.
func (s *PhotoService) record(ctx context.Context, userID string, in UploadInput, target gateway.UploadTarget) (models.Photo, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p := models.Photo{
		ID:         newID(),
		UserID:     userID,
		FolderID:   in.FolderID,
		Name:       in.Name,
		Size:       int64(len(in.Data)),
		Type:       in.Type,
		UploadedAt: timestamp(),
		S3Key:      target.ObjectKey,
		BucketName: target.Bucket,
	}

	err := s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
		if err := tx.AddPhoto(ctx, p); err != nil {
			return err
		}
		_, err := quota.NewAccountant(tx).ApplyDelta(ctx, userID, p.Size)
		return err
	})
	if err != nil {
		return models.Photo{}, err
	}
	return p, nil
}

// transfer uploads the payload to target. Nothing is stored locally.
func (s *PhotoService) transfer(ctx context.Context, target gateway.UploadTarget, in UploadInput) error {
	if err := s.gateway.PutBinary(ctx, target.PutURL, in.Data, in.Type); err != nil {
		return remoteErr(err)
	}
	return nil
}

// Upload stores one photo. The quota is checked before any remote call and
// metadata is written only after the payload transfer succeeded.
func (s *PhotoService) Upload(ctx context.Context, userID string, in UploadInput) (models.Photo, error) {
	if err := checkInput(in); err != nil {
		return models.Photo{}, err
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return models.Photo{}, err
	}
	byID, err := s.foldersByID(ctx)
	if err != nil {
		return models.Photo{}, err
	}
	folder, err := folderName(byID, userID, in.FolderID)
	if err != nil {
		return models.Photo{}, err
	}

	size := int64(len(in.Data))
	if quota.WouldExceed(u, size) {
		return models.Photo{}, fmt.Errorf("%w: %s needs %s, %s of %s used", common.ErrQuotaExceeded,
			in.Name, quota.FormatBytes(size), quota.FormatBytes(u.StorageUsed), quota.LimitFor(u.Plan))
	}

	gctx := gateway.WithOwner(ctx, userID)
	target, err := s.gateway.RequestUploadTarget(gctx, gateway.UploadRequest{FileName: in.Name, FileType: in.Type, Folder: folder})
	if err != nil {
		return models.Photo{}, remoteErr(err)
	}
	if err := s.transfer(gctx, target, in); err != nil {
		return models.Photo{}, err
	}

	p, err := s.record(ctx, userID, in, target)
	if err != nil {
		return models.Photo{}, err
	}
	s.logger.Info(ctx, "photo uploaded", "photo_id", p.ID, "size", p.Size)
	return p, nil
}

type pending struct {
	index  int
	input  UploadInput
	folder string
	target *gateway.UploadTarget
}

// UploadBatch uploads several photos. Quota is reserved cumulatively in input
// order, so a file that does not fit is rejected while later smaller ones may
// still go through. Transfers run concurrently and each successful transfer is
// recorded on its own; the returned results follow input order.
func (s *PhotoService) UploadBatch(ctx context.Context, userID string, inputs []UploadInput) ([]UploadResult, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID, err := s.foldersByID(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]UploadResult, len(inputs))
	reserved := u
	var work []*pending
	for i, in := range inputs {
		results[i].Name = in.Name
		if err := checkInput(in); err != nil {
			results[i].Err = err
			continue
		}
		folder, err := folderName(byID, userID, in.FolderID)
		if err != nil {
			results[i].Err = err
			continue
		}
		size := int64(len(in.Data))
		if quota.WouldExceed(reserved, size) {
			results[i].Err = fmt.Errorf("%w: %s needs %s", common.ErrQuotaExceeded, in.Name, quota.FormatBytes(size))
			continue
		}
		reserved.StorageUsed += size
		work = append(work, &pending{index: i, input: in, folder: folder})
	}

	gctx := gateway.WithOwner(ctx, userID)
	if br, ok := s.gateway.(gateway.BatchRequester); ok {
		s.requestBatchTargets(gctx, br, work, results)
	}

	g, gctx := errgroup.WithContext(gctx)
	g.SetLimit(s.concurrency)
	for _, w := range work {
		if results[w.index].Err != nil {
			continue
		}
		g.Go(func() error {
			p, err := s.uploadOne(gctx, userID, w)
			if err != nil {
				results[w.index].Err = err
				return nil
			}
			results[w.index].Photo = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	s.logger.Info(ctx, "batch upload finished", "files", len(inputs), "uploaded", ok)
	return results, nil
}

// requestBatchTargets asks for the targets of work in one call per folder.
// A failed call leaves the affected entries without a target so they fall
// back to single requests.
func (s *PhotoService) requestBatchTargets(ctx context.Context, br gateway.BatchRequester, work []*pending, results []UploadResult) {
	byFolder := map[string][]*pending{}
	var order []string
	for _, w := range work {
		if _, seen := byFolder[w.folder]; !seen {
			order = append(order, w.folder)
		}
		byFolder[w.folder] = append(byFolder[w.folder], w)
	}

	for _, folder := range order {
		group := byFolder[folder]
		reqs := make([]gateway.UploadRequest, 0, len(group))
		for _, w := range group {
			reqs = append(reqs, gateway.UploadRequest{FileName: w.input.Name, FileType: w.input.Type, Folder: folder})
		}

		res, err := br.RequestUploadTargets(ctx, reqs, folder)
		if err != nil || len(res) != len(group) {
			s.logger.Warn(ctx, "batch target request failed, falling back to single requests", "folder", folder, "error", err)
			continue
		}
		for i, r := range res {
			if r.Err != nil {
				results[group[i].index].Err = remoteErr(r.Err)
				continue
			}
			t := r.Target
			group[i].target = &t
		}
	}
}

func (s *PhotoService) uploadOne(ctx context.Context, userID string, w *pending) (models.Photo, error) {
	var target gateway.UploadTarget
	if w.target != nil {
		target = *w.target
	} else {
		t, err := s.gateway.RequestUploadTarget(ctx, gateway.UploadRequest{FileName: w.input.Name, FileType: w.input.Type, Folder: w.folder})
		if err != nil {
			return models.Photo{}, remoteErr(err)
		}
		target = t
	}
	if err := s.transfer(ctx, target, w.input); err != nil {
		return models.Photo{}, err
	}
	return s.record(ctx, userID, w.input, target)
}

// Move reassigns the photo's folder; nil moves it to the root. The target
// folder must belong to the photo's owner.
func (s *PhotoService) Move(ctx context.Context, photoID string, folderID *string) (store.Outcome, error) {
	p, ok, err := s.store.FindPhoto(ctx, photoID)
	if err != nil || !ok {
		return store.NotFound, err
	}
	if folderID != nil {
		f, ok, err := s.store.FindFolder(ctx, *folderID)
		if err != nil {
			return store.NotFound, err
		}
		if !ok || f.UserID != p.UserID {
			return store.NotFound, fmt.Errorf("%w: folder %s not found", common.ErrValidation, *folderID)
		}
	}
	return s.store.UpdatePhoto(ctx, photoID, models.MovePhoto{FolderID: folderID})
}

// Delete removes the remote object on a best-effort basis, then the metadata,
// crediting the owner's quota.
func (s *PhotoService) Delete(ctx context.Context, photoID string) (store.Outcome, error) {
	p, ok, err := s.store.FindPhoto(ctx, photoID)
	if err != nil || !ok {
		return store.NotFound, err
	}

	removeObjects(ctx, s.gateway, s.logger, []models.Photo{p})

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	outcome := store.NotFound
	err = s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
		removed, err := tx.RemovePhotos(ctx, func(x models.Photo) bool { return x.ID == photoID })
		if err != nil || len(removed) == 0 {
			return err
		}
		outcome = store.Applied
		_, err = quota.NewAccountant(tx).ApplyDelta(ctx, removed[0].UserID, -removed[0].Size)
		return err
	})
	if err != nil {
		return store.NotFound, err
	}
	return outcome, nil
}

// List returns the user's photos in folderID (nil is the root), or all of
// them when all is set.
func (s *PhotoService) List(ctx context.Context, userID string, folderID *string, all bool) ([]models.Photo, error) {
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Photo{}
	for _, p := range photos {
		if p.UserID != userID {
			continue
		}
		if all || models.SameParent(p.FolderID, folderID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// DownloadURL returns a readable URL for the photo. Legacy photos return
// their inline data URL.
func (s *PhotoService) DownloadURL(ctx context.Context, photoID string) (string, error) {
	p, ok, err := s.store.FindPhoto(ctx, photoID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: photo %s", common.ErrNotFound, photoID)
	}
	if p.S3Key == "" {
		if p.DataURL == "" {
			return "", fmt.Errorf("%w: photo %s has no payload", common.ErrNotFound, photoID)
		}
		return p.DataURL, nil
	}
	u, err := s.gateway.RequestDownloadTarget(gateway.WithOwner(ctx, p.UserID), p.S3Key)
	if err != nil {
		return "", remoteErr(err)
	}
	return u, nil
}

func (s *PhotoService) Usage(ctx context.Context, userID string) (quota.Usage, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return quota.Usage{}, err
	}
	photos, err := s.store.ListPhotos(ctx)
	if err != nil {
		return quota.Usage{}, err
	}
	return quota.UsageOf(u, photos), nil
}

// ListRemote lists the objects stored remotely for the folder, when the
// gateway supports listing.
func (s *PhotoService) ListRemote(ctx context.Context, userID string, folderID *string) ([]gateway.RemoteObject, error) {
	l, ok := s.gateway.(gateway.Lister)
	if !ok {
		return nil, fmt.Errorf("%w: gateway cannot list objects", common.ErrValidation)
	}
	byID, err := s.foldersByID(ctx)
	if err != nil {
		return nil, err
	}
	folder, err := folderName(byID, userID, folderID)
	if err != nil {
		return nil, err
	}
	objs, err := l.ListObjects(gateway.WithOwner(ctx, userID), folder)
	if err != nil {
		return nil, remoteErr(err)
	}
	return objs, nil
}
