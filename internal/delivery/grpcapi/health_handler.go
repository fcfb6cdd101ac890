package grpcapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DonationServiceName is reported next to the overall ("") status.
const DonationServiceName = "donation.v1.DonationService"

const pingTimeout = 3 * time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves grpc.health.v1.Health and reflects whether the
// receipt database answers.
type HealthHandler struct {
	server *health.Server
	db     Pinger
	log    *zap.Logger
}

func NewHealthHandler(db Pinger, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(DonationServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthHandler{server: server, db: db, log: log}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh pings the database once and updates the serving status.
func (h *HealthHandler) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn("database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(DonationServiceName, status)
	return status
}

func (h *HealthHandler) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Shutdown flips every service to NOT_SERVING ahead of GracefulStop.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
