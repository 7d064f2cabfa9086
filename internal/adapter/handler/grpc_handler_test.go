package handler

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/observability"
)

func startStockServer(t *testing.T, db *storage.MemoryAdapter, metrics *observability.Metrics) *StockClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryInterceptor(nil, metrics)))
	RegisterStockServer(srv, NewGRPCHandler(service.NewStockService(db, db, db)))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewStockClient(conn)
}

func TestGRPC_GetRemainingStock(t *testing.T) {
	db := storage.NewMemoryAdapter()
	ctx := context.Background()
	db.CreateItem(ctx, domain.Item{ID: 3, Name: "Pen"})
	db.CreateInventory(ctx, domain.Inventory{ID: 1, ItemID: 3, Quantity: 45, Type: domain.MovementTopUp})
	db.CreateInventory(ctx, domain.Inventory{ID: 2, ItemID: 3, Quantity: 10, Type: domain.MovementWithdrawal})
	db.CreateOrder(ctx, domain.Order{OrderNo: "O1", ItemID: 3, Quantity: 5})

	client := startStockServer(t, db, observability.NewMetrics())

	remaining, err := client.GetRemainingStock(ctx, 3)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if remaining != 30 {
		t.Errorf("expected 30, got %d", remaining)
	}
}

func TestGRPC_UnknownItemIsNotFound(t *testing.T) {
	metrics := observability.NewMetrics()
	client := startStockServer(t, storage.NewMemoryAdapter(), metrics)

	_, err := client.GetRemainingStock(context.Background(), 99)
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}

	families, _ := metrics.Registry().Gather()
	found := false
	for _, mf := range families {
		if mf.GetName() == "grpc_requests_total" {
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "code" && l.GetValue() == "NotFound" {
						found = true
					}
				}
			}
		}
	}
	if !found {
		t.Error("expected a NotFound sample in grpc_requests_total")
	}
}
