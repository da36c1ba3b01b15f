package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/folders"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/quota"
	"github.com/dmitrijs2005/photovault/internal/store"
)

type FolderService struct {
	store   *store.Store
	gateway gateway.Gateway
	logger  logging.Logger
}

func NewFolderService(s *store.Store, gw gateway.Gateway, l logging.Logger) *FolderService {
	return &FolderService{store: s, gateway: gw, logger: l.With("module", "folders")}
}

// Create adds a folder under parentID, or at the root when parentID is nil.
// The parent must exist and belong to the same user.
func (s *FolderService) Create(ctx context.Context, userID, name string, parentID *string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, fmt.Errorf("%w: folder name is required", common.ErrValidation)
	}

	if parentID != nil {
		parent, ok, err := s.store.FindFolder(ctx, *parentID)
		if err != nil {
			return models.Folder{}, err
		}
		if !ok || parent.UserID != userID {
			return models.Folder{}, fmt.Errorf("%w: parent folder %s not found", common.ErrValidation, *parentID)
		}
	}

	f := models.Folder{
		ID:        newID(),
		UserID:    userID,
		Name:      name,
		ParentID:  parentID,
		CreatedAt: timestamp(),
	}
	if err := s.store.AddFolder(ctx, f); err != nil {
		return models.Folder{}, err
	}
	return f, nil
}

// Rename changes the folder name. Sibling names may repeat.
func (s *FolderService) Rename(ctx context.Context, folderID, name string) (store.Outcome, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.NotFound, fmt.Errorf("%w: folder name is required", common.ErrValidation)
	}
	return s.store.UpdateFolder(ctx, folderID, models.RenameFolder{Name: name})
}

// DeleteResult lists what a cascade removed.
type DeleteResult struct {
	Outcome store.Outcome
	Folders []models.Folder
	Photos  []models.Photo
}

// Delete removes the folder, all of its descendants and every photo inside
// any of them. Photos are deleted, not moved to the root. Owners' quota is
// adjusted in the same transaction; remote objects are removed afterwards on a
// best-effort basis.
func (s *FolderService) Delete(ctx context.Context, folderID string) (DeleteResult, error) {
	res := DeleteResult{Outcome: store.NotFound}

	err := s.store.Tx(ctx, func(ctx context.Context, tx *store.Store) error {
		all, err := tx.ListFolders(ctx)
		if err != nil {
			return err
		}
		scope, err := folders.CascadeScope(all, folderID)
		if err != nil {
			return err
		}

		removed, err := tx.RemoveFolders(ctx, func(f models.Folder) bool { return scope[f.ID] })
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}
		res.Outcome = store.Applied
		res.Folders = removed

		photos, err := tx.RemovePhotos(ctx, func(p models.Photo) bool {
			return p.FolderID != nil && scope[*p.FolderID]
		})
		if err != nil {
			return err
		}
		res.Photos = photos

		freed := map[string]int64{}
		for _, p := range photos {
			freed[p.UserID] += p.Size
		}
		acct := quota.NewAccountant(tx)
		for userID, size := range freed {
			if _, err := acct.ApplyDelta(ctx, userID, -size); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return DeleteResult{Outcome: store.NotFound}, err
	}
	if !res.Outcome.Found() {
		return res, nil
	}

	s.logger.Info(ctx, "folder deleted", "folder_id", folderID, "folders", len(res.Folders), "photos", len(res.Photos))
	removeObjects(ctx, s.gateway, s.logger, res.Photos)
	return res, nil
}

func (s *FolderService) userFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	all, err := s.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Folder, 0, len(all))
	for _, f := range all {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

// List returns the user's folders directly under parentID.
func (s *FolderService) List(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	fs, err := s.userFolders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return folders.ChildrenOf(fs, parentID), nil
}

func (s *FolderService) Tree(ctx context.Context, userID string) ([]*folders.Node, error) {
	fs, err := s.userFolders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return folders.BuildTree(fs, nil), nil
}

// Path is the breadcrumb from the root to folderID.
func (s *FolderService) Path(ctx context.Context, userID, folderID string) ([]models.Folder, error) {
	fs, err := s.userFolders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return folders.Path(fs, folderID), nil
}

// Find returns the folder when it exists and belongs to userID.
func (s *FolderService) Find(ctx context.Context, userID, folderID string) (models.Folder, bool, error) {
	f, ok, err := s.store.FindFolder(ctx, folderID)
	if err != nil || !ok || f.UserID != userID {
		return models.Folder{}, false, err
	}
	return f, true, nil
}
