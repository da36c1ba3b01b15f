package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/models"
	"github.com/dmitrijs2005/photovault/internal/quota"
	"github.com/dmitrijs2005/photovault/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpeg(name string, size int, folderID *string) UploadInput {
	return UploadInput{Name: name, Type: "image/jpeg", Data: make([]byte, size), FolderID: folderID}
}

func setupPhotos(t *testing.T, gw *fakeGateway, used int64) (*PhotoService, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	require.NoError(t, s.AddUser(context.Background(), models.User{ID: "u1", Plan: models.PlanEssencial, StorageUsed: used}))
	return NewPhotoService(s, gw, logging.Discard(), 2), s
}

// storageMatches checks that the counter equals the sum of the owned photo sizes.
func storageMatches(t *testing.T, s *store.Store, userID string) {
	t.Helper()
	ctx := context.Background()
	u, _, err := s.FindUser(ctx, userID)
	require.NoError(t, err)
	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	var sum int64
	for _, p := range photos {
		if p.UserID == userID {
			sum += p.Size
		}
	}
	assert.Equal(t, sum, u.StorageUsed)
}

func TestPhotoUpload(t *testing.T) {
	fixClock(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()

	p, err := svc.Upload(ctx, "u1", UploadInput{Name: "a.jpg", Type: "image/jpeg", Data: []byte("payload")})
	require.NoError(t, err)

	want := models.Photo{
		ID:         "id-1",
		UserID:     "u1",
		Name:       "a.jpg",
		Size:       7,
		Type:       "image/jpeg",
		UploadedAt: "2024-02-03T04:05:06.000Z",
		S3Key:      "users/u1/root/1-a.jpg",
		BucketName: "test",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("photo mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []byte("payload"), gw.content("mem://users/u1/root/1-a.jpg"))
	storageMatches(t, s, "u1")

	got, ok, err := s.FindPhoto(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got.DataURL, "payload is not kept locally")
}

func TestPhotoUpload_Validation(t *testing.T) {
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()
	require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "foreign", UserID: "u2", Name: "x"}))

	_, err := svc.Upload(ctx, "u1", UploadInput{Name: "notes.txt", Type: "text/plain", Data: []byte("x")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Upload(ctx, "u1", jpeg("a.jpg", 1, models.Ref("foreign")))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Upload(ctx, "ghost", jpeg("a.jpg", 1, nil))
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Zero(t, gw.requests)
}

func TestPhotoUpload_QuotaBoundary(t *testing.T) {
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 100*quota.GiB-10)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "u1", jpeg("big.jpg", 11, nil))
	require.ErrorIs(t, err, common.ErrQuotaExceeded)
	assert.Zero(t, gw.requests, "no remote call when the quota is exceeded")
	assert.Zero(t, gw.puts)

	_, err = svc.Upload(ctx, "u1", jpeg("fits.jpg", 10, nil))
	require.NoError(t, err)

	u, _, err := s.FindUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100*quota.GiB, u.StorageUsed)
}

func TestPhotoUpload_StudioIsUnbounded(t *testing.T) {
	gw := newFakeGateway()
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, models.User{ID: "u1", Plan: models.PlanStudio, StorageUsed: 500 * quota.GiB}))
	svc := NewPhotoService(s, gw, logging.Discard(), 0)

	_, err := svc.Upload(ctx, "u1", jpeg("a.jpg", 1, nil))
	assert.NoError(t, err)
}

func TestPhotoUpload_TransferFailureLeavesNoMetadata(t *testing.T) {
	gw := newFakeGateway()
	gw.putErr = assert.AnError
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "u1", jpeg("a.jpg", 5, nil))
	require.ErrorIs(t, err, common.ErrRemoteTransfer)

	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)
	storageMatches(t, s, "u1")
}

func TestPhotoUploadBatch(t *testing.T) {
	tests := []struct {
		name      string
		batch     bool
		wantBatch int
	}{
		{name: "single requests"},
		{name: "batch requests", batch: true, wantBatch: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeGateway()
			s := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, s.AddUser(ctx, models.User{ID: "u1", Plan: models.PlanEssencial, StorageUsed: 100*quota.GiB - 20}))
			require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "f1", UserID: "u1", Name: "Trips"}))

			var svc *PhotoService
			var bg *batchGateway
			if tt.batch {
				bg = &batchGateway{fakeGateway: fake}
				svc = NewPhotoService(s, bg, logging.Discard(), 3)
			} else {
				svc = NewPhotoService(s, fake, logging.Discard(), 3)
			}

			results, err := svc.UploadBatch(ctx, "u1", []UploadInput{
				jpeg("one.jpg", 8, nil),
				jpeg("too-big.jpg", 15, nil),
				jpeg("two.jpg", 7, models.Ref("f1")),
				{Name: "doc.pdf", Type: "application/pdf", Data: []byte("x")},
				jpeg("three.jpg", 5, nil),
				jpeg("four.jpg", 1, nil),
			})
			require.NoError(t, err)
			require.Len(t, results, 6)

			names := make([]string, len(results))
			for i, r := range results {
				names[i] = r.Name
			}
			assert.Equal(t, []string{"one.jpg", "too-big.jpg", "two.jpg", "doc.pdf", "three.jpg", "four.jpg"}, names)

			assert.NoError(t, results[0].Err)
			assert.ErrorIs(t, results[1].Err, common.ErrQuotaExceeded)
			assert.NoError(t, results[2].Err)
			assert.ErrorIs(t, results[3].Err, common.ErrValidation)
			assert.NoError(t, results[4].Err)
			assert.ErrorIs(t, results[5].Err, common.ErrQuotaExceeded, "8+7+5 fills the remaining 20 bytes")

			require.NotNil(t, results[2].Photo)
			assert.Contains(t, results[2].Photo.S3Key, "/Trips/")
			require.NotNil(t, results[2].Photo.FolderID)
			assert.Equal(t, "f1", *results[2].Photo.FolderID)

			assert.Equal(t, 3, fake.puts)
			if bg != nil {
				assert.Equal(t, tt.wantBatch, bg.batchCalls, "one call per folder")
			}

			u, _, err := s.FindUser(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, 100*quota.GiB, u.StorageUsed)
			storageMatches(t, s, "u1")
		})
	}
}

func TestPhotoUploadBatch_PartialTransferFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.putErr = assert.AnError
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()

	results, err := svc.UploadBatch(ctx, "u1", []UploadInput{jpeg("a.jpg", 3, nil), jpeg("b.jpg", 4, nil)})
	require.NoError(t, err)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, common.ErrRemoteTransfer)
		assert.Nil(t, r.Photo)
	}
	storageMatches(t, s, "u1")
}

func TestPhotoMove(t *testing.T) {
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()
	require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "mine", UserID: "u1"}))
	require.NoError(t, s.AddFolder(ctx, models.Folder{ID: "theirs", UserID: "u2"}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "p1", UserID: "u1", Size: 1}))

	out, err := svc.Move(ctx, "p1", models.Ref("mine"))
	require.NoError(t, err)
	assert.Equal(t, store.Applied, out)
	p, _, err := s.FindPhoto(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p.FolderID)
	assert.Equal(t, "mine", *p.FolderID)

	_, err = svc.Move(ctx, "p1", models.Ref("theirs"))
	assert.ErrorIs(t, err, common.ErrValidation)

	out, err = svc.Move(ctx, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, store.Applied, out)
	p, _, err = s.FindPhoto(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p.FolderID)

	out, err = svc.Move(ctx, "missing", nil)
	require.NoError(t, err)
	assert.Equal(t, store.NotFound, out)
}

func TestPhotoDelete(t *testing.T) {
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()

	p, err := svc.Upload(ctx, "u1", jpeg("a.jpg", 9, nil))
	require.NoError(t, err)

	gw.deleteErr = assert.AnError
	out, err := svc.Delete(ctx, p.ID)
	require.NoError(t, err, "remote failures are not fatal")
	assert.Equal(t, store.Applied, out)
	assert.Equal(t, []string{p.S3Key}, gw.deleted)
	storageMatches(t, s, "u1")

	out, err = svc.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, store.NotFound, out)
}

func TestPhotoList(t *testing.T) {
	svc, s := setupPhotos(t, newFakeGateway(), 0)
	ctx := context.Background()
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "root", UserID: "u1"}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "nested", UserID: "u1", FolderID: models.Ref("f1")}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "other", UserID: "u2"}))

	ids := func(ps []models.Photo) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	got, err := svc.List(ctx, "u1", nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, ids(got))

	got, err = svc.List(ctx, "u1", models.Ref("f1"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"nested"}, ids(got))

	got, err = svc.List(ctx, "u1", nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "nested"}, ids(got))
}

func TestPhotoDownloadURL(t *testing.T) {
	gw := newFakeGateway()
	svc, s := setupPhotos(t, gw, 0)
	ctx := context.Background()

	p, err := svc.Upload(ctx, "u1", jpeg("a.jpg", 2, nil))
	require.NoError(t, err)

	first, err := svc.DownloadURL(ctx, p.ID)
	require.NoError(t, err)
	second, err := svc.DownloadURL(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "mem://"+p.S3Key, first)

	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "legacy", UserID: "u1", DataURL: "data:image/png;base64,AAAA"}))
	u, err := svc.DownloadURL(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", u)
	assert.Equal(t, 1, gw.requests, "legacy photos never reach the gateway")

	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "empty", UserID: "u1"}))
	_, err = svc.DownloadURL(ctx, "empty")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.DownloadURL(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPhotoUsage(t *testing.T) {
	svc, s := setupPhotos(t, newFakeGateway(), 0)
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, models.User{ID: "pro", Plan: models.PlanPro, StorageUsed: 150 * quota.GiB}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "p1", UserID: "pro"}))
	require.NoError(t, s.AddPhoto(ctx, models.Photo{ID: "p2", UserID: "u1"}))

	usage, err := svc.Usage(ctx, "pro")
	require.NoError(t, err)
	assert.Equal(t, quota.Usage{Used: 150 * quota.GiB, Limit: quota.Limit{Bytes: 300 * quota.GiB}, Percentage: 50, Photos: 1}, usage)

	_, err = svc.Usage(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPhotoListRemote(t *testing.T) {
	svc, _ := setupPhotos(t, newFakeGateway(), 0)
	_, err := svc.ListRemote(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, common.ErrValidation, "the fake gateway cannot list")
}
