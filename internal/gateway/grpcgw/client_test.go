package grpcgw

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/photovault/internal/auth"
	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const secret = "grpc-secret"

type fakeServer struct {
	rpc.GatewayServer
	owners []string
}

func (f *fakeServer) owner(ctx context.Context) (string, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get(common.AccessTokenHeaderName)
	if len(vals) == 0 {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	id, err := auth.GetUserIDFromToken(vals[0], []byte(secret))
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	f.owners = append(f.owners, id)
	return id, nil
}

func (f *fakeServer) Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (f *fakeServer) RequestUploadTarget(ctx context.Context, in *rpc.UploadTargetRequest) (*rpc.UploadTargetResponse, error) {
	owner, err := f.owner(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.UploadTargetResponse{UploadURL: "http://put/" + in.FileName, FileKey: "users/" + owner + "/" + in.FileName, BucketName: "b"}, nil
}

func (f *fakeServer) RequestUploadTargets(ctx context.Context, in *rpc.BatchUploadRequest) (*rpc.BatchUploadResponse, error) {
	if _, err := f.owner(ctx); err != nil {
		return nil, err
	}
	out := &rpc.BatchUploadResponse{}
	for _, fs := range in.Files {
		out.Results = append(out.Results, rpc.BatchResult{FileName: fs.FileName, Success: true, FileKey: in.Folder + "/" + fs.FileName})
	}
	return out, nil
}

func (f *fakeServer) RequestDownloadTarget(ctx context.Context, in *wrapperspb.StringValue) (*rpc.DownloadTargetResponse, error) {
	if _, err := f.owner(ctx); err != nil {
		return nil, err
	}
	if in.GetValue() == "forbidden" {
		return nil, status.Error(codes.PermissionDenied, "not yours")
	}
	return &rpc.DownloadTargetResponse{DownloadURL: "http://get/" + in.GetValue(), FileKey: in.GetValue()}, nil
}

func (f *fakeServer) DeleteObject(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if _, err := f.owner(ctx); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func (f *fakeServer) ListObjects(ctx context.Context, in *wrapperspb.StringValue) (*rpc.ListObjectsResponse, error) {
	if _, err := f.owner(ctx); err != nil {
		return nil, err
	}
	return &rpc.ListObjectsResponse{Photos: []rpc.ObjectInfo{{FileKey: in.GetValue() + "/a.jpg", Size: 7}}}, nil
}

func newTestClient(t *testing.T) (*Client, *fakeServer) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	fake := &fakeServer{}
	rpc.RegisterGatewayServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := New("passthrough:///bufnet", secret, 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestUploadTargets(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := gateway.WithOwner(context.Background(), "u1")

	tgt, err := c.RequestUploadTarget(ctx, gateway.UploadRequest{FileName: "a.jpg", FileType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, gateway.UploadTarget{PutURL: "http://put/a.jpg", ObjectKey: "users/u1/a.jpg", Bucket: "b"}, tgt)

	res, err := c.RequestUploadTargets(ctx, []gateway.UploadRequest{{FileName: "x.png"}, {FileName: "y.png"}}, "Trips")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Trips/y.png", res[1].Target.ObjectKey)

	assert.Equal(t, []string{"u1", "u1"}, fake.owners)
}

func TestDownloadDeleteList(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := gateway.WithOwner(context.Background(), "u1")

	u, err := c.RequestDownloadTarget(ctx, "users/u1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://get/users/u1/a.jpg", u)

	_, err = c.RequestDownloadTarget(ctx, "forbidden")
	assert.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, c.DeleteObject(ctx, "users/u1/a.jpg"))

	objs, err := c.ListObjects(ctx, "Trips")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "Trips/a.jpg", objs[0].ObjectKey)
	assert.Equal(t, int64(7), objs[0].Size)
}

func TestRequiresOwner(t *testing.T) {
	c, fake := newTestClient(t)
	err := c.DeleteObject(context.Background(), "k")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Empty(t, fake.owners)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(status.Error(codes.Unauthenticated, "x")), common.ErrUnauthorized)
	assert.ErrorIs(t, mapError(status.Error(codes.NotFound, "x")), common.ErrNotFound)
	assert.ErrorIs(t, mapError(status.Error(codes.InvalidArgument, "x")), common.ErrValidation)
	assert.ErrorIs(t, mapError(status.Error(codes.Unavailable, "x")), common.ErrRemoteTransfer)
	assert.ErrorIs(t, mapError(assert.AnError), common.ErrRemoteTransfer)
}
