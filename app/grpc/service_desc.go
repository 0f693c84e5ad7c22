package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type unaryMethod func(srv PaymentProviderServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PaymentProviderServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PaymentProviderServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PaymentProviderServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Health", PaymentProviderServer.Health),
		unaryHandler("GetPaymentStatus", PaymentProviderServer.GetPaymentStatus),
		unaryHandler("RetrievePayment", PaymentProviderServer.RetrievePayment),
		unaryHandler("AuthorizePayment", PaymentProviderServer.AuthorizePayment),
		unaryHandler("CapturePayment", PaymentProviderServer.CapturePayment),
		unaryHandler("RefundPayment", PaymentProviderServer.RefundPayment),
		unaryHandler("CancelPayment", PaymentProviderServer.CancelPayment),
		unaryHandler("GetWebhookAction", PaymentProviderServer.GetWebhookAction),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paynl/v1/payment_provider.proto",
}
