package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/vibast-solutions/ms-go-paynl/app/paynl"
	"github.com/vibast-solutions/ms-go-paynl/app/provider"
	"github.com/vibast-solutions/ms-go-paynl/app/service"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "paynl.v1.PaymentProviderService"

// PaymentProviderServer is the gRPC surface for hosts that prefer it over
// HTTP. Messages are google.protobuf.Struct values shaped like the HTTP
// request and response bodies.
type PaymentProviderServer interface {
	Health(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPaymentStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RetrievePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AuthorizePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CapturePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RefundPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetWebhookAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type Server struct {
	paymentService *service.PaymentService
}

func NewServer(paymentService *service.PaymentService) *Server {
	return &Server{paymentService: paymentService}
}

func Register(s *grpc.Server, srv PaymentProviderServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func (s *Server) Health(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"status": "ok"})
}

func (s *Server) GetPaymentStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}

	sessionStatus, err := s.paymentService.GetPaymentStatus(ctx, in.Provider, in.Data)
	if err != nil {
		return nil, toStatusError(ctx, "Get payment status", err)
	}

	return structpb.NewStruct(map[string]interface{}{"status": string(sessionStatus)})
}

func (s *Server) RetrievePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}

	order, err := s.paymentService.RetrievePayment(ctx, in.Provider, in.Data)
	if err != nil {
		return nil, toStatusError(ctx, "Retrieve payment", err)
	}

	return encodeResponse(map[string]interface{}{"data": order})
}

func (s *Server) AuthorizePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.lifecycle(ctx, req, "Authorize payment", s.paymentService.AuthorizePayment)
}

func (s *Server) CapturePayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.lifecycle(ctx, req, "Capture payment", s.paymentService.CapturePayment)
}

func (s *Server) RefundPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.lifecycle(ctx, req, "Refund payment", s.paymentService.RefundPayment)
}

func (s *Server) CancelPayment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.lifecycle(ctx, req, "Cancel payment", s.paymentService.CancelPayment)
}

func (s *Server) lifecycle(
	ctx context.Context,
	req *structpb.Struct,
	action string,
	fn func(ctx context.Context, providerID string, input provider.PaymentInput) (provider.PaymentOutput, error),
) (*structpb.Struct, error) {
	in, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := fn(ctx, in.Provider, provider.PaymentInput{Data: in.Data, Amount: in.Amount, CurrencyCode: in.CurrencyCode})
	if err != nil {
		return nil, toStatusError(ctx, action, err)
	}

	return encodeResponse(out)
}

// GetWebhookAction resolves a webhook synchronously, for hosts that run
// their own delay and retry handling.
func (s *Server) GetWebhookAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := decodeRequest(req)
	if err != nil {
		return nil, err
	}
	if in.Payload == "" {
		return nil, status.Error(codes.InvalidArgument, "payload is required")
	}

	headers := http.Header{}
	for key, value := range in.Headers {
		headers.Set(key, value)
	}

	result, err := s.paymentService.GetWebhookActionAndData(ctx, in.Provider, provider.WebhookPayload{
		Raw:         []byte(in.Payload),
		Headers:     headers,
		ContentType: in.ContentType,
	})
	if err != nil {
		return nil, toStatusError(ctx, "Get webhook action", err)
	}

	return encodeResponse(result)
}

type request struct {
	Provider     string               `json:"provider"`
	Data         provider.SessionData `json:"data"`
	Amount       decimal.Decimal      `json:"amount"`
	CurrencyCode string               `json:"currency_code"`

	Payload     string            `json:"payload"`
	Headers     map[string]string `json:"headers"`
	ContentType string            `json:"content_type"`
}

func decodeRequest(req *structpb.Struct) (*request, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	raw, err := req.MarshalJSON()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var in request
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.Provider == "" {
		return nil, status.Error(codes.InvalidArgument, "provider is required")
	}
	if in.Data == nil {
		in.Data = provider.SessionData{}
	}
	return &in, nil
}

func encodeResponse(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func toStatusError(ctx context.Context, action string, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrProviderUnsupported):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, paynl.ErrInvalidData):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, paynl.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, paynl.ErrUnexpectedState):
		return status.Error(codes.Unavailable, err.Error())
	default:
		loggerWithContext(ctx).WithError(err).Error(action + " failed")
		return status.Error(codes.Internal, "internal server error")
	}
}
