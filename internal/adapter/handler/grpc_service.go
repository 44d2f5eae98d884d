package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/rl1809/car-inventory/internal/core/domain"
)

const (
	InventoryServiceName = "inventory.v1.InventoryService"

	// JSONCodecName is the content subtype clients select with
	// grpc.CallContentSubtype to talk to the inventory service.
	JSONCodecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

type GetItemRequest struct {
	ID int `json:"id"`
}

type FindItemByTypeRequest struct {
	Type string `json:"type"`
}

type CreateItemRequest struct {
	ID   int        `json:"id"`
	Item ItemFields `json:"item"`
}

type UpdateItemRequest struct {
	ID    int              `json:"id"`
	Patch domain.ItemPatch `json:"patch"`
}

type DeleteItemRequest struct {
	ID int `json:"id"`
}

type ListItemsRequest struct{}

type ItemReply struct {
	Item domain.Item `json:"item"`
}

type DeleteItemReply struct {
	Success string `json:"success"`
}

type ListItemsReply struct {
	Items []domain.StoredItem `json:"items"`
}

type InventoryServer interface {
	GetItem(context.Context, *GetItemRequest) (*ItemReply, error)
	FindItemByType(context.Context, *FindItemByTypeRequest) (*ItemReply, error)
	CreateItem(context.Context, *CreateItemRequest) (*ItemReply, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*ItemReply, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*DeleteItemReply, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsReply, error)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: unaryHandler("GetItem", InventoryServer.GetItem)},
		{MethodName: "FindItemByType", Handler: unaryHandler("FindItemByType", InventoryServer.FindItemByType)},
		{MethodName: "CreateItem", Handler: unaryHandler("CreateItem", InventoryServer.CreateItem)},
		{MethodName: "UpdateItem", Handler: unaryHandler("UpdateItem", InventoryServer.UpdateItem)},
		{MethodName: "DeleteItem", Handler: unaryHandler("DeleteItem", InventoryServer.DeleteItem)},
		{MethodName: "ListItems", Handler: unaryHandler("ListItems", InventoryServer.ListItems)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.json",
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(InventoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + InventoryServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InventoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
