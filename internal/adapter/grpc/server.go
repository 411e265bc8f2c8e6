package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/portfolio-backend/internal/domain"
	"github.com/simaogato/portfolio-backend/internal/usecase/ledger"
)

// ServiceName is the fully-qualified name of the portfolio gRPC service
const ServiceName = "portfolio.v1.PortfolioService"

// LedgerService is the lot ledger as used by the RPCs
type LedgerService interface {
	AddOrMergeLot(ctx context.Context, input ledger.AddLotInput) (*domain.Lot, error)
	RemoveQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*domain.Lot, error)
	BackfillMissingBuyPrices(ctx context.Context) ([]*domain.Lot, error)
	ListLots(ctx context.Context) ([]*domain.Lot, error)
}

// PerformanceService values the portfolio
type PerformanceService interface {
	ComputePerformance(ctx context.Context) (*domain.PortfolioPerformance, error)
	ComputePerformanceByID(ctx context.Context, id uuid.UUID) (*domain.PortfolioPerformance, error)
}

// HistoryService reconstructs the portfolio timeline
type HistoryService interface {
	BuildPortfolioHistory(ctx context.Context) ([]domain.HistoryPoint, error)
}

// PortfolioServer is the set of RPCs served under ServiceName.
// Requests and responses are google.protobuf.Struct messages.
type PortfolioServer interface {
	AddLot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListLots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BackfillMissingBuyPrices(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ComputePerformance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BuildPortfolioHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// Server implements PortfolioServer
type Server struct {
	LedgerService      LedgerService
	PerformanceService PerformanceService
	HistoryService     HistoryService
	log                zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService LedgerService,
	performanceService PerformanceService,
	historyService HistoryService,
	log zerolog.Logger,
) *Server {
	return &Server{
		LedgerService:      ledgerService,
		PerformanceService: performanceService,
		HistoryService:     historyService,
		log:                log.With().Str("component", "grpc").Logger(),
	}
}

// AddLot handles the AddLot RPC.
// Request fields: symbol, asset_class, quantity, buy_time (all strings).
func (s *Server) AddLot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	class, err := domain.ParseAssetClass(stringField(req, "asset_class"))
	if err != nil {
		return nil, mapError(s.log, "AddLot", err)
	}
	quantity, err := parseQuantity(stringField(req, "quantity"))
	if err != nil {
		return nil, mapError(s.log, "AddLot", err)
	}
	buyTime, err := parseBuyTime(stringField(req, "buy_time"))
	if err != nil {
		return nil, mapError(s.log, "AddLot", err)
	}

	lot, err := s.LedgerService.AddOrMergeLot(ctx, ledger.AddLotInput{
		Symbol:     stringField(req, "symbol"),
		AssetClass: class,
		Quantity:   quantity,
		BuyTime:    buyTime,
	})
	if err != nil {
		return nil, mapError(s.log, "AddLot", err)
	}

	return structpb.NewStruct(lotValue(lot))
}

// RemoveQuantity handles the RemoveQuantity RPC.
// When the whole lot is sold the response is {id, removed: true}.
func (s *Server) RemoveQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseLotID(stringField(req, "id"))
	if err != nil {
		return nil, mapError(s.log, "RemoveQuantity", err)
	}
	quantity, err := parseQuantity(stringField(req, "quantity"))
	if err != nil {
		return nil, mapError(s.log, "RemoveQuantity", err)
	}

	lot, err := s.LedgerService.RemoveQuantity(ctx, id, quantity)
	if err != nil {
		return nil, mapError(s.log, "RemoveQuantity", err)
	}
	if lot == nil {
		return structpb.NewStruct(map[string]any{"id": id.String(), "removed": true})
	}

	return structpb.NewStruct(lotValue(lot))
}

// ListLots handles the ListLots RPC
func (s *Server) ListLots(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	lots, err := s.LedgerService.ListLots(ctx)
	if err != nil {
		return nil, mapError(s.log, "ListLots", err)
	}
	return lotsStruct(lots)
}

// BackfillMissingBuyPrices handles the BackfillMissingBuyPrices RPC
func (s *Server) BackfillMissingBuyPrices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	updated, err := s.LedgerService.BackfillMissingBuyPrices(ctx)
	if err != nil {
		return nil, mapError(s.log, "BackfillMissingBuyPrices", err)
	}
	return lotsStruct(updated)
}

// ComputePerformance handles the ComputePerformance RPC.
// With a lot_id the lot must exist.
func (s *Server) ComputePerformance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		perf *domain.PortfolioPerformance
		err  error
	)
	if raw := stringField(req, "lot_id"); raw != "" {
		id, parseErr := parseLotID(raw)
		if parseErr != nil {
			return nil, mapError(s.log, "ComputePerformance", parseErr)
		}
		perf, err = s.PerformanceService.ComputePerformanceByID(ctx, id)
	} else {
		perf, err = s.PerformanceService.ComputePerformance(ctx)
	}
	if err != nil {
		return nil, mapError(s.log, "ComputePerformance", err)
	}

	return performanceStruct(perf)
}

// BuildPortfolioHistory handles the BuildPortfolioHistory RPC
func (s *Server) BuildPortfolioHistory(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	points, err := s.HistoryService.BuildPortfolioHistory(ctx)
	if err != nil {
		return nil, mapError(s.log, "BuildPortfolioHistory", err)
	}
	return historyStruct(points)
}

func parseLotID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid lot id %q", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

// ServiceDesc describes PortfolioServer for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddLot", PortfolioServer.AddLot),
		unary("RemoveQuantity", PortfolioServer.RemoveQuantity),
		unary("ListLots", PortfolioServer.ListLots),
		unary("BackfillMissingBuyPrices", PortfolioServer.BackfillMissingBuyPrices),
		unary("ComputePerformance", PortfolioServer.ComputePerformance),
		unary("BuildPortfolioHistory", PortfolioServer.BuildPortfolioHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "portfolio/v1/portfolio.proto",
}

type rpc func(PortfolioServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary builds the method handler for a Struct-in, Struct-out RPC
func unary(name string, call rpc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PortfolioServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PortfolioServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Listener serves PortfolioServer behind AuthInterceptor
type Listener struct {
	server *grpc.Server
	port   int
	log    zerolog.Logger
}

// NewListener registers srv on a new grpc.Server guarded by the API token
func NewListener(srv PortfolioServer, port int, apiToken string, log zerolog.Logger) *Listener {
	gs := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(apiToken)))
	gs.RegisterService(&ServiceDesc, srv)
	return &Listener{server: gs, port: port, log: log}
}

// Serve accepts connections on lis until Stop is called
func (l *Listener) Serve(lis net.Listener) error {
	return l.server.Serve(lis)
}

// Start listens on the configured port and serves
func (l *Listener) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", l.port, err)
	}
	l.log.Info().Int("port", l.port).Msg("Starting gRPC server")
	return l.Serve(lis)
}

// Stop waits for in-flight RPCs to finish and stops the server
func (l *Listener) Stop() {
	l.server.GracefulStop()
}
