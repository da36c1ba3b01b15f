package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/gateway"
	"github.com/dmitrijs2005/photovault/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func owner(ctx context.Context) string {
	id, _ := gateway.OwnerFrom(ctx)
	return id
}

// toStatus maps domain errors onto gRPC codes. Anything unclassified came
// from object storage.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, common.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		code = codes.Unauthenticated
	case errors.Is(err, common.ErrForbidden):
		code = codes.PermissionDenied
	case errors.Is(err, common.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrQuotaExceeded):
		code = codes.ResourceExhausted
	default:
		s.logger.Error(ctx, "object storage request failed", "error", err)
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("ok"), nil
}

func (s *GRPCServer) RequestUploadTarget(ctx context.Context, req *rpc.UploadTargetRequest) (*rpc.UploadTargetResponse, error) {
	if strings.TrimSpace(req.FileName) == "" || strings.TrimSpace(req.FileType) == "" {
		return nil, status.Error(codes.InvalidArgument, "fileName and fileType are required")
	}

	t, err := s.objects.PresignUpload(ctx, owner(ctx), req.Folder, req.FileName, req.FileType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.UploadTargetResponse{UploadURL: t.URL, FileKey: t.Key, BucketName: t.Bucket}, nil
}

// RequestUploadTargets presigns each file on its own; a failing file is
// reported in its result and does not fail the call.
func (s *GRPCServer) RequestUploadTargets(ctx context.Context, req *rpc.BatchUploadRequest) (*rpc.BatchUploadResponse, error) {
	if len(req.Files) == 0 {
		return nil, status.Error(codes.InvalidArgument, "files are required")
	}

	resp := &rpc.BatchUploadResponse{Results: make([]rpc.BatchResult, 0, len(req.Files))}
	for _, f := range req.Files {
		res := rpc.BatchResult{FileName: f.FileName}
		if strings.TrimSpace(f.FileName) == "" || strings.TrimSpace(f.FileType) == "" {
			res.Error = "fileName and fileType are required"
			resp.Results = append(resp.Results, res)
			continue
		}
		t, err := s.objects.PresignUpload(ctx, owner(ctx), req.Folder, f.FileName, f.FileType)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success = true
			res.UploadURL, res.FileKey, res.BucketName = t.URL, t.Key, t.Bucket
		}
		resp.Results = append(resp.Results, res)
	}

	s.logger.Info(ctx, "batch upload targets issued", "files", len(req.Files))
	return resp, nil
}

func (s *GRPCServer) RequestDownloadTarget(ctx context.Context, req *wrapperspb.StringValue) (*rpc.DownloadTargetResponse, error) {
	t, err := s.objects.PresignDownload(ctx, owner(ctx), req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &rpc.DownloadTargetResponse{DownloadURL: t.URL, FileKey: t.Key, BucketName: t.Bucket}, nil
}

func (s *GRPCServer) DeleteObject(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.objects.Delete(ctx, owner(ctx), req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListObjects(ctx context.Context, req *wrapperspb.StringValue) (*rpc.ListObjectsResponse, error) {
	objs, err := s.objects.List(ctx, owner(ctx), req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := &rpc.ListObjectsResponse{Photos: make([]rpc.ObjectInfo, 0, len(objs))}
	for _, o := range objs {
		resp.Photos = append(resp.Photos, rpc.ObjectInfo{FileKey: o.Key, Size: o.Size, LastModified: o.LastModified})
	}
	return resp, nil
}
