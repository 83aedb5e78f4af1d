package grpc

// proto.go defines the greystone.lending.v1.AmortizationService contract by
// hand: message structs, the server interface, its service descriptor and a
// thin client. Messages travel through the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const amortizationServiceName = "greystone.lending.v1.AmortizationService"

// Full method names.
const (
	ComputeAmortizationMethod = "/" + amortizationServiceName + "/ComputeAmortization"
	GetLoanAmortizationMethod = "/" + amortizationServiceName + "/GetLoanAmortization"
)

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// ComputeAmortizationRequest carries ad-hoc terms. Decimals are strings so
// no precision is lost in transit.
type ComputeAmortizationRequest struct {
	Principal          string `json:"principal"`
	AnnualInterestRate string `json:"annual_interest_rate"`
	TermMonths         int32  `json:"term_months"`
	StartDate          string `json:"start_date"`
}

type GetLoanAmortizationRequest struct {
	LoanID string `json:"loan_id"`
}

type ScheduleEntry struct {
	Period    int32  `json:"period"`
	Date      string `json:"date"`
	Payment   string `json:"payment"`
	Principal string `json:"principal"`
	Interest  string `json:"interest"`
	Balance   string `json:"balance"`
}

type AmortizationScheduleReply struct {
	MonthlyPayment string          `json:"monthly_payment"`
	TotalInterest  string          `json:"total_interest"`
	TotalPaid      string          `json:"total_paid"`
	Schedule       []ScheduleEntry `json:"schedule"`
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// AmortizationServiceServer is the server API for AmortizationService.
type AmortizationServiceServer interface {
	ComputeAmortization(context.Context, *ComputeAmortizationRequest) (*AmortizationScheduleReply, error)
	GetLoanAmortization(context.Context, *GetLoanAmortizationRequest) (*AmortizationScheduleReply, error)
	mustEmbedUnimplementedAmortizationServiceServer()
}

// UnimplementedAmortizationServiceServer provides forward-compatible default implementations.
type UnimplementedAmortizationServiceServer struct{}

func (UnimplementedAmortizationServiceServer) ComputeAmortization(context.Context, *ComputeAmortizationRequest) (*AmortizationScheduleReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ComputeAmortization not implemented")
}
func (UnimplementedAmortizationServiceServer) GetLoanAmortization(context.Context, *GetLoanAmortizationRequest) (*AmortizationScheduleReply, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLoanAmortization not implemented")
}
func (UnimplementedAmortizationServiceServer) mustEmbedUnimplementedAmortizationServiceServer() {}

// RegisterAmortizationServiceServer registers srv with the gRPC server.
func RegisterAmortizationServiceServer(s grpclib.ServiceRegistrar, srv AmortizationServiceServer) {
	s.RegisterService(&amortizationServiceDesc, srv)
}

var amortizationServiceDesc = grpclib.ServiceDesc{
	ServiceName: amortizationServiceName,
	HandlerType: (*AmortizationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "ComputeAmortization", Handler: computeAmortizationHandler},
		{MethodName: "GetLoanAmortization", Handler: getLoanAmortizationHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "greystone/lending/v1/amortization.proto",
}

//nolint:errcheck // gRPC handler registration
func computeAmortizationHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ComputeAmortizationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AmortizationServiceServer).ComputeAmortization(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: ComputeAmortizationMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AmortizationServiceServer).ComputeAmortization(ctx, req.(*ComputeAmortizationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:errcheck // gRPC handler registration
func getLoanAmortizationHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetLoanAmortizationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AmortizationServiceServer).GetLoanAmortization(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetLoanAmortizationMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AmortizationServiceServer).GetLoanAmortization(ctx, req.(*GetLoanAmortizationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// AmortizationServiceClient calls AmortizationService over an open connection.
type AmortizationServiceClient struct {
	cc grpclib.ClientConnInterface
}

func NewAmortizationServiceClient(cc grpclib.ClientConnInterface) *AmortizationServiceClient {
	return &AmortizationServiceClient{cc: cc}
}

func (c *AmortizationServiceClient) ComputeAmortization(ctx context.Context, in *ComputeAmortizationRequest, opts ...grpclib.CallOption) (*AmortizationScheduleReply, error) {
	out := new(AmortizationScheduleReply)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, ComputeAmortizationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AmortizationServiceClient) GetLoanAmortization(ctx context.Context, in *GetLoanAmortizationRequest, opts ...grpclib.CallOption) (*AmortizationScheduleReply, error) {
	out := new(AmortizationScheduleReply)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, GetLoanAmortizationMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
