package grpc

// proto.go defines the gRPC service by hand. Messages are the application
// DTOs carried by the JSON codec, so no generated types are needed.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
)

const serviceName = "settlement.v1.SettlementService"

// Empty is returned by methods without a result.
type Empty struct{}

// TransactionList wraps the transactions of one consumer.
type TransactionList struct {
	Transactions []dto.TransactionResponse `json:"transactions"`
}

// SettlementServiceServer is the server API for settlement.v1.SettlementService.
type SettlementServiceServer interface {
	SubmitOffer(context.Context, *dto.SubmitOfferRequest) (*dto.NegotiationResponse, error)
	ProposeCounterOffer(context.Context, *dto.ProposeCounterOfferRequest) (*dto.NegotiationResponse, error)
	AcceptOffer(context.Context, *dto.AcceptOfferRequest) (*dto.NegotiationResponse, error)
	GenerateSchedule(context.Context, *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error)
	AttemptPayment(context.Context, *dto.AttemptPaymentRequest) (*dto.PaymentResultResponse, error)
	PayCustomAmount(context.Context, *dto.PayCustomAmountRequest) (*dto.PaymentResultResponse, error)
	PayoffRemaining(context.Context, *dto.PayoffRemainingRequest) (*dto.PaymentResultResponse, error)
	ReschedulePayment(context.Context, *dto.ScheduledPaymentRequest) (*dto.ScheduledPaymentResponse, error)
	SkipPayment(context.Context, *dto.ScheduledPaymentRequest) (*dto.ScheduleResponse, error)
	ChangePaymentDate(context.Context, *dto.ChangePaymentDateRequest) (*dto.ScheduledPaymentResponse, error)
	CancelSchedule(context.Context, *dto.CancelScheduleRequest) (*dto.CancelScheduleResponse, error)
	PurgeConsumer(context.Context, *dto.ConsumerRequest) (*Empty, error)
	GetConsumerSnapshot(context.Context, *dto.ConsumerRequest) (*dto.ConsumerSnapshotResponse, error)
	ListScheduledPayments(context.Context, *dto.ListScheduledPaymentsRequest) (*dto.ScheduleResponse, error)
	ListTransactions(context.Context, *dto.ListTransactionsRequest) (*TransactionList, error)
	mustEmbedUnimplementedSettlementServiceServer()
}

// UnimplementedSettlementServiceServer provides forward-compatible default implementations.
type UnimplementedSettlementServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedSettlementServiceServer) SubmitOffer(context.Context, *dto.SubmitOfferRequest) (*dto.NegotiationResponse, error) {
	return nil, unimplemented("SubmitOffer")
}
func (UnimplementedSettlementServiceServer) ProposeCounterOffer(context.Context, *dto.ProposeCounterOfferRequest) (*dto.NegotiationResponse, error) {
	return nil, unimplemented("ProposeCounterOffer")
}
func (UnimplementedSettlementServiceServer) AcceptOffer(context.Context, *dto.AcceptOfferRequest) (*dto.NegotiationResponse, error) {
	return nil, unimplemented("AcceptOffer")
}
func (UnimplementedSettlementServiceServer) GenerateSchedule(context.Context, *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error) {
	return nil, unimplemented("GenerateSchedule")
}
func (UnimplementedSettlementServiceServer) AttemptPayment(context.Context, *dto.AttemptPaymentRequest) (*dto.PaymentResultResponse, error) {
	return nil, unimplemented("AttemptPayment")
}
func (UnimplementedSettlementServiceServer) PayCustomAmount(context.Context, *dto.PayCustomAmountRequest) (*dto.PaymentResultResponse, error) {
	return nil, unimplemented("PayCustomAmount")
}
func (UnimplementedSettlementServiceServer) PayoffRemaining(context.Context, *dto.PayoffRemainingRequest) (*dto.PaymentResultResponse, error) {
	return nil, unimplemented("PayoffRemaining")
}
func (UnimplementedSettlementServiceServer) ReschedulePayment(context.Context, *dto.ScheduledPaymentRequest) (*dto.ScheduledPaymentResponse, error) {
	return nil, unimplemented("ReschedulePayment")
}
func (UnimplementedSettlementServiceServer) SkipPayment(context.Context, *dto.ScheduledPaymentRequest) (*dto.ScheduleResponse, error) {
	return nil, unimplemented("SkipPayment")
}
func (UnimplementedSettlementServiceServer) ChangePaymentDate(context.Context, *dto.ChangePaymentDateRequest) (*dto.ScheduledPaymentResponse, error) {
	return nil, unimplemented("ChangePaymentDate")
}
func (UnimplementedSettlementServiceServer) CancelSchedule(context.Context, *dto.CancelScheduleRequest) (*dto.CancelScheduleResponse, error) {
	return nil, unimplemented("CancelSchedule")
}
func (UnimplementedSettlementServiceServer) PurgeConsumer(context.Context, *dto.ConsumerRequest) (*Empty, error) {
	return nil, unimplemented("PurgeConsumer")
}
func (UnimplementedSettlementServiceServer) GetConsumerSnapshot(context.Context, *dto.ConsumerRequest) (*dto.ConsumerSnapshotResponse, error) {
	return nil, unimplemented("GetConsumerSnapshot")
}
func (UnimplementedSettlementServiceServer) ListScheduledPayments(context.Context, *dto.ListScheduledPaymentsRequest) (*dto.ScheduleResponse, error) {
	return nil, unimplemented("ListScheduledPayments")
}
func (UnimplementedSettlementServiceServer) ListTransactions(context.Context, *dto.ListTransactionsRequest) (*TransactionList, error) {
	return nil, unimplemented("ListTransactions")
}
func (UnimplementedSettlementServiceServer) mustEmbedUnimplementedSettlementServiceServer() {}

// RegisterSettlementServiceServer registers srv with the gRPC server.
func RegisterSettlementServiceServer(s grpclib.ServiceRegistrar, srv SettlementServiceServer) {
	s.RegisterService(&settlementServiceDesc, srv)
}

var settlementServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SettlementServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("SubmitOffer", SettlementServiceServer.SubmitOffer),
		unary("ProposeCounterOffer", SettlementServiceServer.ProposeCounterOffer),
		unary("AcceptOffer", SettlementServiceServer.AcceptOffer),
		unary("GenerateSchedule", SettlementServiceServer.GenerateSchedule),
		unary("AttemptPayment", SettlementServiceServer.AttemptPayment),
		unary("PayCustomAmount", SettlementServiceServer.PayCustomAmount),
		unary("PayoffRemaining", SettlementServiceServer.PayoffRemaining),
		unary("ReschedulePayment", SettlementServiceServer.ReschedulePayment),
		unary("SkipPayment", SettlementServiceServer.SkipPayment),
		unary("ChangePaymentDate", SettlementServiceServer.ChangePaymentDate),
		unary("CancelSchedule", SettlementServiceServer.CancelSchedule),
		unary("PurgeConsumer", SettlementServiceServer.PurgeConsumer),
		unary("GetConsumerSnapshot", SettlementServiceServer.GetConsumerSnapshot),
		unary("ListScheduledPayments", SettlementServiceServer.ListScheduledPayments),
		unary("ListTransactions", SettlementServiceServer.ListTransactions),
	},
	Streams: []grpclib.StreamDesc{},
}

// unary builds the method descriptor that protoc-gen-go-grpc would generate
// for one unary method.
func unary[Req, Resp any](method string, call func(SettlementServiceServer, context.Context, *Req) (*Resp, error)) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + method
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SettlementServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(SettlementServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
