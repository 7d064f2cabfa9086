package handler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/observability"
	"github.com/rl1809/stock-ledger/internal/pkg/logging"
)

const (
	StockServiceName        = "inventory.v1.StockService"
	getRemainingStockMethod = "/" + StockServiceName + "/GetRemainingStock"
)

// StockServer answers remaining-stock queries. Messages are protobuf
// well-known wrappers, so the service needs no generated code.
type StockServer interface {
	GetRemainingStock(ctx context.Context, itemID *wrapperspb.Int32Value) (*wrapperspb.Int64Value, error)
}

func RegisterStockServer(s grpc.ServiceRegistrar, srv StockServer) {
	s.RegisterService(&stockServiceDesc, srv)
}

var stockServiceDesc = grpc.ServiceDesc{
	ServiceName: StockServiceName,
	HandlerType: (*StockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetRemainingStock",
			Handler:    getRemainingStockHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/stock.proto",
}

func getRemainingStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StockServer).GetRemainingStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRemainingStockMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StockServer).GetRemainingStock(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

type StockClient struct {
	cc grpc.ClientConnInterface
}

func NewStockClient(cc grpc.ClientConnInterface) *StockClient {
	return &StockClient{cc: cc}
}

func (c *StockClient) GetRemainingStock(ctx context.Context, itemID int32, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, getRemainingStockMethod, wrapperspb.Int32(itemID), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

type GRPCHandler struct {
	stock *service.StockService
}

var _ StockServer = (*GRPCHandler)(nil)

func NewGRPCHandler(stock *service.StockService) *GRPCHandler {
	return &GRPCHandler{stock: stock}
}

func (h *GRPCHandler) GetRemainingStock(ctx context.Context, req *wrapperspb.Int32Value) (*wrapperspb.Int64Value, error) {
	remaining, err := h.stock.ItemRemainingStock(ctx, int(req.GetValue()))
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, status.Error(codes.NotFound, domain.ErrItemNotFound.Message())
		}
		logging.FromContext(ctx).Error("remaining_stock_failed", zap.Int32("item_id", req.GetValue()), zap.Error(err))
		return nil, status.Error(codes.Internal, domain.ErrInternal.Message())
	}
	return wrapperspb.Int64(remaining), nil
}

// UnaryInterceptor gives every call a request logger and records the
// outcome in metrics.
func UnaryInterceptor(logger *zap.Logger, metrics *observability.Metrics) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "grpc_server"))

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("x-request-id"); len(vals) > 0 {
				rid = vals[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}

		log := logging.ForRequest(logger, rid, trace.SpanContextFromContext(ctx)).With(zap.String("method", info.FullMethod))
		ctx = logging.ContextWithLogger(ctx, log)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		metrics.ObserveGRPC(info.FullMethod, code.String())
		log.Debug("grpc_request", zap.String("code", code.String()), zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}
