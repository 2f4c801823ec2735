package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service names. Messages are google.protobuf.Struct in both directions.
const (
	QueryServiceName     = "invoices.v1.InvoiceQuery"
	IngestionServiceName = "invoices.v1.Ingestion"
)

// InvoiceQueryServer is the server API for the invoices.v1.InvoiceQuery service.
type InvoiceQueryServer interface {
	ListInvoices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInvoiceDetail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SpendByProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportTable(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// IngestionServer is the server API for the invoices.v1.Ingestion service.
type IngestionServer interface {
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structHandler[S any] func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary builds a method descriptor that decodes a Struct request and runs it
// through the server interceptor chain.
func unary[S any](service, method string, call structHandler[S]) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + service + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var InvoiceQuery_ServiceDesc = grpc.ServiceDesc{
	ServiceName: QueryServiceName,
	HandlerType: (*InvoiceQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[InvoiceQueryServer](QueryServiceName, "ListInvoices", InvoiceQueryServer.ListInvoices),
		unary[InvoiceQueryServer](QueryServiceName, "GetInvoiceDetail", InvoiceQueryServer.GetInvoiceDetail),
		unary[InvoiceQueryServer](QueryServiceName, "SpendByProduct", InvoiceQueryServer.SpendByProduct),
		unary[InvoiceQueryServer](QueryServiceName, "ExportTable", InvoiceQueryServer.ExportTable),
		unary[InvoiceQueryServer](QueryServiceName, "GenerateReport", InvoiceQueryServer.GenerateReport),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoices/v1/invoices.proto",
}

var Ingestion_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IngestionServiceName,
	HandlerType: (*IngestionServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[IngestionServer](IngestionServiceName, "IngestDirectory", IngestionServer.IngestDirectory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoices/v1/invoices.proto",
}

func RegisterInvoiceQueryServer(s grpc.ServiceRegistrar, srv InvoiceQueryServer) {
	s.RegisterService(&InvoiceQuery_ServiceDesc, srv)
}

func RegisterIngestionServer(s grpc.ServiceRegistrar, srv IngestionServer) {
	s.RegisterService(&Ingestion_ServiceDesc, srv)
}
