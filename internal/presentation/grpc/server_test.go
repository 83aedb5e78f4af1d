package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/greystone/lending-api/internal/application/usecase"
	"github.com/greystone/lending-api/internal/domain/model"
	"github.com/greystone/lending-api/internal/domain/valueobject"
	"github.com/greystone/lending-api/pkg/testutil"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type harness struct {
	client *AmortizationServiceClient
	conn   *grpclib.ClientConn
	store  *testutil.MemoryStore
}

func startServer(t *testing.T) *harness {
	t.Helper()
	store := testutil.NewMemoryStore()
	scheduler := usecase.NewScheduler(nil, discardLogger(), noop.NewMeterProvider().Meter("test"))
	handler := NewAmortizationHandler(
		usecase.NewComputeAmortizationUseCase(scheduler),
		usecase.NewGetLoanAmortizationUseCase(store.Loans(), scheduler),
		discardLogger(),
	)

	srv, err := NewServer(handler, discardLogger(), Options{ServiceName: "lending-api", Reflection: true})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewAmortizationServiceClient(conn), conn: conn, store: store}
}

func callCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestComputeAmortization(t *testing.T) {
	h := startServer(t)

	reply, err := h.client.ComputeAmortization(callCtx(t), &ComputeAmortizationRequest{
		Principal:          "100000.00",
		AnnualInterestRate: "0.06",
		TermMonths:         12,
		StartDate:          "2024-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, "8606.64", reply.MonthlyPayment)
	require.Len(t, reply.Schedule, 12)
	assert.Equal(t, int32(1), reply.Schedule[0].Period)
	assert.Equal(t, "2024-02-29", reply.Schedule[1].Date)
	assert.Equal(t, "2024-12-31", reply.Schedule[11].Date)
	assert.Equal(t, "0.00", reply.Schedule[11].Balance)
}

func TestComputeAmortization_InvalidArgument(t *testing.T) {
	h := startServer(t)

	tests := []struct {
		name string
		req  *ComputeAmortizationRequest
		want string
	}{
		{name: "zero principal", req: &ComputeAmortizationRequest{Principal: "0", AnnualInterestRate: "0.05", TermMonths: 12, StartDate: "2025-01-01"}, want: "principal"},
		{name: "garbage principal", req: &ComputeAmortizationRequest{Principal: "lots", AnnualInterestRate: "0.05", TermMonths: 12, StartDate: "2025-01-01"}, want: "principal"},
		{name: "negative rate", req: &ComputeAmortizationRequest{Principal: "1000", AnnualInterestRate: "-0.01", TermMonths: 12, StartDate: "2025-01-01"}, want: "annual_interest_rate"},
		{name: "zero term", req: &ComputeAmortizationRequest{Principal: "1000", AnnualInterestRate: "0.05", StartDate: "2025-01-01"}, want: "term_months"},
		{name: "bad date", req: &ComputeAmortizationRequest{Principal: "1000", AnnualInterestRate: "0.05", TermMonths: 12, StartDate: "01/01/2025"}, want: "start_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.client.ComputeAmortization(callCtx(t), tt.req)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, codes.InvalidArgument, st.Code())
			assert.Contains(t, st.Message(), tt.want)
		})
	}
}

func TestGetLoanAmortization(t *testing.T) {
	h := startServer(t)
	ctx := callCtx(t)

	user, err := model.NewUser(valueobject.MustEmail("ada@example.com"), "", "hash", true, testutil.Now)
	require.NoError(t, err)
	require.NoError(t, h.store.Users().Save(ctx, user))
	loan, err := model.NewLoan(user.ID(), model.AmortizationInput{
		Principal:  testutil.Dec("12000.00"),
		AnnualRate: testutil.Dec("0"),
		TermMonths: 12,
		StartDate:  testutil.Date(2025, 1, 1),
	}, "", testutil.Now)
	require.NoError(t, err)
	require.NoError(t, h.store.Loans().Save(ctx, loan))

	reply, err := h.client.GetLoanAmortization(ctx, &GetLoanAmortizationRequest{LoanID: loan.ID().String()})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", reply.MonthlyPayment)
	assert.Equal(t, "0.00", reply.TotalInterest)
	assert.Len(t, reply.Schedule, 12)

	_, err = h.client.GetLoanAmortization(ctx, &GetLoanAmortizationRequest{LoanID: testutil.TestLoanID1.String()})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.client.GetLoanAmortization(ctx, &GetLoanAmortizationRequest{LoanID: "nope"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthService(t *testing.T) {
	h := startServer(t)

	resp, err := healthpb.NewHealthClient(h.conn).Check(callCtx(t), &healthpb.HealthCheckRequest{Service: "lending-api"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestUnimplementedDefaults(t *testing.T) {
	var u UnimplementedAmortizationServiceServer
	_, err := u.ComputeAmortization(context.Background(), &ComputeAmortizationRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
	_, err = u.GetLoanAmortization(context.Background(), &GetLoanAmortizationRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := recoveryInterceptor(discardLogger())
	_, err := interceptor(context.Background(), nil, &grpclib.UnaryServerInfo{FullMethod: ComputeAmortizationMethod},
		func(context.Context, any) (any, error) { panic("boom") })
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestNewServer_BadTLS(t *testing.T) {
	_, err := NewServer(&AmortizationHandler{}, discardLogger(), Options{CertFile: "missing.pem", KeyFile: "missing-key.pem"})
	assert.ErrorContains(t, err, "grpc tls")
}
