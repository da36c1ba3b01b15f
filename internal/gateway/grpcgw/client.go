// Package grpcgw reaches the gateway over gRPC.
package grpcgw

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/photovault/internal/auth"
	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/netx"
	"github.com/dmitrijs2005/photovault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Client struct {
	conn    *grpc.ClientConn
	client  *rpc.GatewayClient
	secret  []byte
	timeout time.Duration
	http    *http.Client
}

// New dials addr lazily; the first RPC opens the connection.
func New(addr, secret string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:    conn,
		client:  rpc.NewGatewayClient(conn),
		secret:  []byte(secret),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// authorized returns a child context carrying the access token and the
// request deadline.
func (c *Client) authorized(ctx context.Context) (context.Context, context.CancelFunc, error) {
	owner, ok := gateway.OwnerFrom(ctx)
	if !ok {
		return nil, nil, common.ErrUnauthorized
	}
	token, err := auth.GenerateToken(owner, c.secret, auth.DefaultTokenValidity)
	if err != nil {
		return nil, nil, err
	}
	ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
	ctx, cancel := c.withTimeout(ctx)
	return ctx, cancel, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapError turns a gRPC status into the matching common error.
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	var base error
	switch st.Code() {
	case codes.Unauthenticated:
		base = common.ErrUnauthorized
	case codes.PermissionDenied:
		base = common.ErrForbidden
	case codes.NotFound:
		base = common.ErrNotFound
	case codes.InvalidArgument:
		base = common.ErrValidation
	default:
		base = common.ErrRemoteTransfer
	}
	return fmt.Errorf("%w: %s", base, st.Message())
}

func (c *Client) RequestUploadTarget(ctx context.Context, req gateway.UploadRequest) (gateway.UploadTarget, error) {
	ctx, cancel, err := c.authorized(ctx)
	if err != nil {
		return gateway.UploadTarget{}, err
	}
	defer cancel()

	resp, err := c.client.RequestUploadTarget(ctx, &rpc.UploadTargetRequest{FileName: req.FileName, FileType: req.FileType, Folder: req.Folder})
	if err != nil {
		return gateway.UploadTarget{}, mapError(err)
	}
	return gateway.UploadTarget{PutURL: resp.UploadURL, ObjectKey: resp.FileKey, Bucket: resp.BucketName}, nil
}

func (c *Client) RequestUploadTargets(ctx context.Context, files []gateway.UploadRequest, folder string) ([]gateway.BatchResult, error) {
	ctx, cancel, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.client.RequestUploadTargets(ctx, &rpc.BatchUploadRequest{Files: rpc.FileSpecs(files), Folder: folder})
	if err != nil {
		return nil, mapError(err)
	}
	return rpc.ToGatewayResults(resp.Results), nil
}

// PutBinary goes straight to the presigned URL over HTTP.
func (c *Client) PutBinary(ctx context.Context, putURL string, data []byte, contentType string) error {
	if err := netx.PutPresigned(ctx, c.http, putURL, data, contentType); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	return nil
}

func (c *Client) RequestDownloadTarget(ctx context.Context, objectKey string) (string, error) {
	ctx, cancel, err := c.authorized(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	resp, err := c.client.RequestDownloadTarget(ctx, wrapperspb.String(objectKey))
	if err != nil {
		return "", mapError(err)
	}
	return resp.DownloadURL, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	ctx, cancel, err := c.authorized(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if _, err := c.client.DeleteObject(ctx, wrapperspb.String(objectKey)); err != nil {
		return mapError(err)
	}
	return nil
}

func (c *Client) ListObjects(ctx context.Context, folder string) ([]gateway.RemoteObject, error) {
	ctx, cancel, err := c.authorized(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.client.ListObjects(ctx, wrapperspb.String(folder))
	if err != nil {
		return nil, mapError(err)
	}
	return rpc.ToRemoteObjects(resp.Photos), nil
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return mapError(err)
	}
	return nil
}

var (
	_ gateway.Gateway        = (*Client)(nil)
	_ gateway.BatchRequester = (*Client)(nil)
	_ gateway.Lister         = (*Client)(nil)
	_ gateway.Pinger         = (*Client)(nil)
)
