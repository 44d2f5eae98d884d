package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/rl1809/car-inventory/internal/core/service"
)

var _ InventoryServer = (*GRPCHandler)(nil)

type GRPCHandler struct {
	inventory *service.InventoryService
}

func NewGRPCHandler(inventory *service.InventoryService) *GRPCHandler {
	return &GRPCHandler{inventory: inventory}
}

func (h *GRPCHandler) GetItem(ctx context.Context, req *GetItemRequest) (*ItemReply, error) {
	item, err := h.inventory.GetItem(ctx, req.ID)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ItemReply{Item: item}, nil
}

func (h *GRPCHandler) FindItemByType(ctx context.Context, req *FindItemByTypeRequest) (*ItemReply, error) {
	item, err := h.inventory.FindByType(ctx, req.Type)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ItemReply{Item: item}, nil
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *CreateItemRequest) (*ItemReply, error) {
	item, err := req.Item.toItem()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err = h.inventory.CreateItem(ctx, req.ID, item)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ItemReply{Item: item}, nil
}

func (h *GRPCHandler) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*ItemReply, error) {
	item, err := h.inventory.UpdateItem(ctx, req.ID, req.Patch)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ItemReply{Item: item}, nil
}

func (h *GRPCHandler) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*DeleteItemReply, error) {
	if err := h.inventory.DeleteItem(ctx, req.ID); err != nil {
		return nil, grpcError(err)
	}
	return &DeleteItemReply{Success: msgDeleted}, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsReply, error) {
	items, err := h.inventory.ListItems(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	return &ListItemsReply{Items: items}, nil
}

// NewGRPCServer builds a server exposing the inventory service and the
// standard health service.
func NewGRPCServer(h *GRPCHandler, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	RegisterInventoryServer(server, h)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(InventoryServiceName, healthpb.HealthCheckResponse_SERVING)

	return server, healthServer
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return status.Error(codes.NotFound, msgItemNotFound)
	case errors.Is(err, service.ErrItemTypeNotFound):
		return status.Error(codes.NotFound, msgItemTypeNotFound)
	case errors.Is(err, service.ErrItemExists):
		return status.Error(codes.AlreadyExists, msgItemExists)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
