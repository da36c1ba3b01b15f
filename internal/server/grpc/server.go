// Package grpc serves the gateway contract over gRPC with the JSON codec
// registered by package rpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/photovault/internal/logging"
	"github.com/dmitrijs2005/photovault/internal/objects"
	"github.com/dmitrijs2005/photovault/internal/rpc"
	"google.golang.org/grpc"
)

// ObjectService is the object storage behind the handlers.
type ObjectService interface {
	PresignUpload(ctx context.Context, owner, folder, fileName, contentType string) (*objects.Target, error)
	PresignDownload(ctx context.Context, owner, key string) (*objects.Target, error)
	Delete(ctx context.Context, owner, key string) error
	List(ctx context.Context, owner, folder string) ([]objects.Object, error)
}

type GRPCServer struct {
	address   string
	objects   ObjectService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc ObjectService, secretKey []byte) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		objects:   svc,
		jwtSecret: secretKey,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	rpc.RegisterGatewayServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
