package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/kv"
	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	requests  int
	puts      int
	deleted   []string
	n         int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{objects: map[string][]byte{}}
}

func (g *fakeGateway) RequestUploadTarget(ctx context.Context, req gateway.UploadRequest) (gateway.UploadTarget, error) {
	owner, ok := gateway.OwnerFrom(ctx)
	if !ok {
		return gateway.UploadTarget{}, common.ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++
	g.n++
	folder := req.Folder
	if folder == "" {
		folder = "root"
	}
	key := fmt.Sprintf("users/%s/%s/%d-%s", owner, folder, g.n, req.FileName)
	return gateway.UploadTarget{PutURL: "mem://" + key, ObjectKey: key, Bucket: "test"}, nil
}

func (g *fakeGateway) PutBinary(_ context.Context, putURL string, data []byte, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.puts++
	if g.putErr != nil {
		return g.putErr
	}
	g.objects[strings.TrimPrefix(putURL, "mem://")] = append([]byte(nil), data...)
	return nil
}

func (g *fakeGateway) RequestDownloadTarget(ctx context.Context, key string) (string, error) {
	if _, ok := gateway.OwnerFrom(ctx); !ok {
		return "", common.ErrUnauthorized
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.objects[key]; !ok {
		return "", common.ErrNotFound
	}
	return "mem://" + key, nil
}

func (g *fakeGateway) DeleteObject(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, key)
	if g.deleteErr != nil {
		return g.deleteErr
	}
	delete(g.objects, key)
	return nil
}

func (g *fakeGateway) content(url string) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.objects[strings.TrimPrefix(url, "mem://")]
}

// batchGateway adds batch target requests on top of fakeGateway.
type batchGateway struct {
	*fakeGateway
	batchCalls int
}

func (b *batchGateway) RequestUploadTargets(ctx context.Context, files []gateway.UploadRequest, folder string) ([]gateway.BatchResult, error) {
	b.batchCalls++
	out := make([]gateway.BatchResult, 0, len(files))
	for _, f := range files {
		f.Folder = folder
		t, err := b.fakeGateway.RequestUploadTarget(ctx, f)
		out = append(out, gateway.BatchResult{FileName: f.FileName, Target: t, Err: err})
	}
	return out, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), kv.NewMemory(), logging.Discard())
	require.NoError(t, err)
	return s
}

// fixClock pins the service clock and id generator for the test.
func fixClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	origNow, origID := now, newID
	cur := at
	now = func() time.Time { return cur }
	seq := 0
	newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	t.Cleanup(func() { now, newID = origNow, origID })
	return &cur
}
