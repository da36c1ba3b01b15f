package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/kv"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s, err := Open(context.Background(), mem, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mem
}

func TestOpen_RejectsCorruptCollection(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(context.Background(), "folders", []byte("{not json")))

	_, err := Open(context.Background(), mem, logging.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDataIntegrity))
}

func TestList_EmptyCollections(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)

	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestAddAndFind(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u := models.User{ID: "u1", Email: "Ana@example.com", Name: "Ana", Role: models.RoleUser, Plan: models.PlanPro}
	require.NoError(t, s.AddUser(ctx, u))

	got, ok, err := s.FindUser(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(u, got); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	_, ok, err = s.FindUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "email lookup is case sensitive")

	_, ok, err = s.FindUserByEmail(ctx, "Ana@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.FindFolder(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoredShape(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "f1", UserID: "u1", Name: "Trips", CreatedAt: "2024-01-02T03:04:05.000Z"}))
	raw, err := mem.Get(ctx, "folders")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"f1","userId":"u1","name":"Trips","parentId":null,"createdAt":"2024-01-02T03:04:05.000Z"}]`, string(raw))
}

func TestUpdate_Outcomes(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "f1", UserID: "u1", Name: "Old"}))

	out, err := s.UpdateFolder(ctx, "f1", models.RenameFolder{Name: "New"})
	require.NoError(t, err)
	assert.True(t, out.Found())
	assert.NoError(t, out.Err())

	f, _, err := s.FindFolder(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "New", f.Name)

	before, err := mem.Get(ctx, "folders")
	require.NoError(t, err)

	out, err = s.UpdateFolder(ctx, "ghost", models.RenameFolder{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, NotFound, out)
	assert.ErrorIs(t, out.Err(), common.ErrNotFound)

	after, err := mem.Get(ctx, "folders")
	require.NoError(t, err)
	assert.Equal(t, before, after, "a miss must not rewrite the collection")
}

func TestUpdateUserAndPhoto(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddUser(ctx, models.User{ID: "u1", StorageUsed: 10}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "p1", UserID: "u1", FolderID: models.Ref("f1")}))

	out, err := s.UpdateUser(ctx, "u1", models.SetStorageUsed{Bytes: 42}, models.SetNeedsPasswordReset{Value: true})
	require.NoError(t, err)
	require.True(t, out.Found())

	u, _, err := s.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.StorageUsed)
	assert.True(t, u.NeedsPasswordReset)

	_, err = s.UpdatePhoto(ctx, "p1", models.MovePhoto{FolderID: nil})
	require.NoError(t, err)
	p, _, err := s.FindPhoto(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p.FolderID)
}

func TestRemove_ReturnsRemoved(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, p := range []models.Photo{
		{ID: "p1", UserID: "u1", Size: 1},
		{ID: "p2", UserID: "u2", Size: 2},
		{ID: "p3", UserID: "u1", Size: 3},
	} {
		require.NoError(t, s.AddPhoto(ctx, p))
	}

	removed, err := s.RemovePhotos(ctx, func(p models.Photo) bool { return p.UserID == "u1" })
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, "p1", removed[0].ID)
	assert.Equal(t, "p3", removed[1].ID)

	left, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "p2", left[0].ID)

	removed, err = s.RemovePhotos(ctx, func(models.Photo) bool { return false })
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestTx_RollsBackOnError(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Tx(ctx, func(ctx context.Context, tx *Store) error {
		if err := tx.AddFolder(ctx, models.Folder{ID: "f1"}); err != nil {
			return err
		}
		if err := tx.AddPhoto(ctx, models.Photo{ID: "p1"}); err != nil {
			return err
		}
		// reads inside the tx see its own writes
		folders, err := tx.ListFolders(ctx)
		if err != nil {
			return err
		}
		assert.Len(t, folders, 1)
		return boom
	})
	require.ErrorIs(t, err, boom)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Empty(t, folders)
	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestTx_CommitsAndNests(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	err := s.Tx(ctx, func(ctx context.Context, tx *Store) error {
		if err := tx.AddFolder(ctx, models.Folder{ID: "f1"}); err != nil {
			return err
		}
		return tx.Tx(ctx, func(ctx context.Context, inner *Store) error {
			return inner.AddPhoto(ctx, models.Photo{ID: "p1", FolderID: models.Ref("f1")})
		})
	})
	require.NoError(t, err)

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Len(t, folders, 1)
	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestSessionScalars(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetCurrentUserID(ctx, "u1"))
	raw, err := mem.Get(ctx, KeyCurrentUserID)
	require.NoError(t, err)
	assert.Equal(t, "u1", string(raw), "scalars are stored raw")

	id, ok, err := s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	require.NoError(t, s.ClearCurrentUserID(ctx))
	_, ok, err = s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	lang, err := s.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLanguage, lang)

	require.NoError(t, s.SetLanguage(ctx, models.LanguagePortuguese))
	lang, err = s.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LanguagePortuguese, lang)

	assert.ErrorIs(t, s.SetLanguage(ctx, "fr-FR"), common.ErrValidation)
}
