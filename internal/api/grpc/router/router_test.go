package router

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dtroode/profilekeeper/internal/api/grpc/handler"
	"github.com/dtroode/profilekeeper/internal/mocks"
	"github.com/dtroode/profilekeeper/internal/testutil"
)

func dial(t *testing.T, checker *mocks.HealthChecker) healthpb.HealthClient {
	t.Helper()

	s := New(checker, time.Second, testutil.MakeNoopLogger()).Register()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	s := New(mocks.NewHealthChecker(t), time.Second, testutil.MakeNoopLogger()).Register()
	require.NotNil(t, s)

	info := s.GetServiceInfo()
	assert.Contains(t, info, "grpc.health.v1.Health")
	assert.Contains(t, info, "grpc.reflection.v1.ServerReflection")
}

func TestRouter_HealthOverGRPC(t *testing.T) {
	t.Parallel()

	t.Run("serving", func(t *testing.T) {
		t.Parallel()
		checker := mocks.NewHealthChecker(t)
		checker.On("Ping", mock.Anything).Return(nil)

		resp, err := dial(t, checker).Check(context.Background(),
			&healthpb.HealthCheckRequest{Service: handler.ProfileStoreService})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})

	t.Run("not serving", func(t *testing.T) {
		t.Parallel()
		checker := mocks.NewHealthChecker(t)
		checker.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		resp, err := dial(t, checker).Check(context.Background(), &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
	})
}
