package server

import (
	"context"
	"log/slog"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
)

const requestIDHeader = "x-request-id"

// UnaryInterceptor tags each call with a request id, logs it and counts it.
func UnaryInterceptor(metrics *observability.Metrics, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, requestID := common.EnsureRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		resp, err := handler(ctx, req)

		code := status.Code(err)
		method := path.Base(info.FullMethod)
		metrics.IncrRequest(method, code.String())
		logger.Info("grpc.request",
			"method", method,
			"code", code.String(),
			"request_id", requestID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
