package inspect

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/orrery/internal/logging"
	"github.com/signalsfoundry/orrery/internal/observability"
)

// CallIDHeader carries the call id in both directions.
const CallIDHeader = "x-call-id"

// CallScopeInterceptor tags every inspector call with an id, taken from
// the CallIDHeader metadata or minted, echoes it back as a response header,
// and logs the outcome on a logger scoped to the call.
func CallScopeInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(CallIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = logging.WithCallID(ctx, ids[0])
			}
		}
		_, method := observability.SplitMethod(info.FullMethod)
		ctx, log := logging.Scope(ctx, base.With(logging.String("rpc", method)))
		_ = grpc.SetHeader(ctx, metadata.Pairs(CallIDHeader, logging.CallID(ctx)))

		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []logging.Field{
			logging.String("code", status.Code(err).String()),
			logging.Float("ms", float64(time.Since(start).Microseconds())/1000),
		}
		if err != nil {
			log.Warn(ctx, "inspect call failed", append(fields, logging.Err(err))...)
		} else {
			log.Debug(ctx, "inspect call", fields...)
		}
		return resp, err
	}
}
