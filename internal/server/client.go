package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the invoice services over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, service, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+service+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListInvoices(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QueryServiceName, "ListInvoices", req, opts...)
}

func (c *Client) GetInvoiceDetail(ctx context.Context, invoiceNumber string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QueryServiceName, "GetInvoiceDetail", map[string]any{"invoice_number": invoiceNumber}, opts...)
}

func (c *Client) SpendByProduct(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QueryServiceName, "SpendByProduct", req, opts...)
}

func (c *Client) ExportTable(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QueryServiceName, "ExportTable", req, opts...)
}

func (c *Client) GenerateReport(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, QueryServiceName, "GenerateReport", req, opts...)
}

func (c *Client) IngestDirectory(ctx context.Context, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, IngestionServiceName, "IngestDirectory", req, opts...)
}
