// Package httpgw talks to the gateway's REST API.
package httpgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/photovault/internal/auth"
	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/netx"
	"github.com/dmitrijs2005/photovault/internal/rpc"
)

type Client struct {
	baseURL string
	secret  []byte
	http    *http.Client
}

// New returns a client for the gateway at baseURL. Requests are authenticated
// with tokens signed by secret for the owner found in the request context.
func New(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		http:    &http.Client{Timeout: timeout},
	}
}

// problem is the RFC 7807 body returned by the gateway on errors.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	owner, ok := gateway.OwnerFrom(ctx)
	if !ok {
		return common.ErrUnauthorized
	}
	token, err := auth.GenerateToken(owner, c.secret, auth.DefaultTokenValidity)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, query, token, in, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", common.ErrRemoteTransfer, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var p problem
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &p) == nil && p.Detail != "" {
		detail = p.Detail
	}

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		base = common.ErrUnauthorized
	case http.StatusForbidden:
		base = common.ErrForbidden
	case http.StatusNotFound:
		base = common.ErrNotFound
	default:
		base = common.ErrRemoteTransfer
	}
	return fmt.Errorf("%w: %s: %s", base, resp.Status, detail)
}

func (c *Client) RequestUploadTarget(ctx context.Context, req gateway.UploadRequest) (gateway.UploadTarget, error) {
	var resp rpc.UploadTargetResponse
	in := rpc.UploadTargetRequest{FileName: req.FileName, FileType: req.FileType, Folder: req.Folder}
	if err := c.do(ctx, http.MethodPost, "/generate-upload-url", nil, in, &resp); err != nil {
		return gateway.UploadTarget{}, err
	}
	return gateway.UploadTarget{PutURL: resp.UploadURL, ObjectKey: resp.FileKey, Bucket: resp.BucketName}, nil
}

func (c *Client) RequestUploadTargets(ctx context.Context, files []gateway.UploadRequest, folder string) ([]gateway.BatchResult, error) {
	in := rpc.BatchUploadRequest{Folder: folder, Files: rpc.FileSpecs(files)}

	var resp rpc.BatchUploadResponse
	if err := c.do(ctx, http.MethodPost, "/generate-upload-urls", nil, in, &resp); err != nil {
		return nil, err
	}
	return rpc.ToGatewayResults(resp.Results), nil
}

func (c *Client) PutBinary(ctx context.Context, putURL string, data []byte, contentType string) error {
	if err := netx.PutPresigned(ctx, c.http, putURL, data, contentType); err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteTransfer, err)
	}
	return nil
}

func (c *Client) RequestDownloadTarget(ctx context.Context, objectKey string) (string, error) {
	var resp rpc.DownloadTargetResponse
	q := url.Values{"fileKey": {objectKey}}
	if err := c.do(ctx, http.MethodGet, "/generate-download-url", q, nil, &resp); err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}

func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	q := url.Values{"fileKey": {objectKey}}
	return c.do(ctx, http.MethodDelete, "/delete-image", q, nil, nil)
}

func (c *Client) ListObjects(ctx context.Context, folder string) ([]gateway.RemoteObject, error) {
	var resp rpc.ListObjectsResponse
	q := url.Values{"folder": {folder}}
	if err := c.do(ctx, http.MethodGet, "/list-photos", q, nil, &resp); err != nil {
		return nil, err
	}
	return rpc.ToRemoteObjects(resp.Photos), nil
}

// Ping checks the unauthenticated health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.send(ctx, http.MethodGet, "/health", nil, "", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return errors.New("gateway unhealthy: " + resp.Status)
	}
	return nil
}

var (
	_ gateway.Gateway        = (*Client)(nil)
	_ gateway.BatchRequester = (*Client)(nil)
	_ gateway.Lister         = (*Client)(nil)
	_ gateway.Pinger         = (*Client)(nil)
)
