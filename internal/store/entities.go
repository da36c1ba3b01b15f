package store

import (
	"context"

	"github.com/dmitrijs2005/photovault/internal/models"
)

func userID(u *models.User) string     { return u.ID }
func folderID(f *models.Folder) string { return f.ID }
func photoID(p *models.Photo) string   { return p.ID }

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return load[models.User](ctx, s.repo, KindUsers)
}

func (s *Store) ListFolders(ctx context.Context) ([]models.Folder, error) {
	return load[models.Folder](ctx, s.repo, KindFolders)
}

func (s *Store) ListPhotos(ctx context.Context) ([]models.Photo, error) {
	return load[models.Photo](ctx, s.repo, KindPhotos)
}

// SaveUsers overwrites the whole users collection.
func (s *Store) SaveUsers(ctx context.Context, users []models.User) error {
	return save(ctx, s.repo, KindUsers, users)
}

func (s *Store) AddUser(ctx context.Context, u models.User) error {
	return add(ctx, s.repo, KindUsers, u)
}

func (s *Store) AddFolder(ctx context.Context, f models.Folder) error {
	return add(ctx, s.repo, KindFolders, f)
}

func (s *Store) AddPhoto(ctx context.Context, p models.Photo) error {
	return add(ctx, s.repo, KindPhotos, p)
}

func (s *Store) UpdateUser(ctx context.Context, id string, cmds ...models.UserUpdate) (Outcome, error) {
	return put(ctx, s.repo, KindUsers, id, userID, func(u *models.User) {
		models.ApplyUserUpdates(u, cmds...)
	})
}

func (s *Store) UpdateFolder(ctx context.Context, id string, cmds ...models.FolderUpdate) (Outcome, error) {
	return put(ctx, s.repo, KindFolders, id, folderID, func(f *models.Folder) {
		models.ApplyFolderUpdates(f, cmds...)
	})
}

func (s *Store) UpdatePhoto(ctx context.Context, id string, cmds ...models.PhotoUpdate) (Outcome, error) {
	return put(ctx, s.repo, KindPhotos, id, photoID, func(p *models.Photo) {
		models.ApplyPhotoUpdates(p, cmds...)
	})
}

func (s *Store) RemoveUsers(ctx context.Context, pred func(models.User) bool) ([]models.User, error) {
	return remove(ctx, s.repo, KindUsers, pred)
}

func (s *Store) RemoveFolders(ctx context.Context, pred func(models.Folder) bool) ([]models.Folder, error) {
	return remove(ctx, s.repo, KindFolders, pred)
}

func (s *Store) RemovePhotos(ctx context.Context, pred func(models.Photo) bool) ([]models.Photo, error) {
	return remove(ctx, s.repo, KindPhotos, pred)
}

func (s *Store) FindUser(ctx context.Context, id string) (models.User, bool, error) {
	return find(ctx, s.repo, KindUsers, func(u models.User) bool { return u.ID == id })
}

// FindUserByEmail matches the stored email exactly; emails are case sensitive.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return find(ctx, s.repo, KindUsers, func(u models.User) bool { return u.Email == email })
}

func (s *Store) FindFolder(ctx context.Context, id string) (models.Folder, bool, error) {
	return find(ctx, s.repo, KindFolders, func(f models.Folder) bool { return f.ID == id })
}

func (s *Store) FindPhoto(ctx context.Context, id string) (models.Photo, bool, error) {
	return find(ctx, s.repo, KindPhotos, func(p models.Photo) bool { return p.ID == id })
}
