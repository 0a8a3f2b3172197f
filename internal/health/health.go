// Package health reports database reachability over gRPC health checks and
// a JSON endpoint.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "omnipos.storefront"

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Checker struct {
	db       Pinger
	hs       *health.Server
	healthy  atomic.Bool
	interval time.Duration
	logger   logger.ZapLogger
}

func NewChecker(db Pinger, interval time.Duration, log logger.ZapLogger) *Checker {
	return &Checker{
		db:       db,
		hs:       health.NewServer(),
		interval: interval,
		logger:   log,
	}
}

func (c *Checker) Healthy() bool {
	return c.healthy.Load()
}

func (c *Checker) HealthServer() healthpb.HealthServer {
	return c.hs
}

// Check pings the database once and publishes the result.
func (c *Checker) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.db.PingContext(ctx)
	ok := err == nil

	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if prev := c.healthy.Swap(ok); prev != ok {
		if ok {
			c.logger.Info("database reachable")
		} else {
			c.logger.Warn("database unreachable", zap.Error(err))
		}
	}
	c.hs.SetServingStatus("", status)
	c.hs.SetServingStatus(ServiceName, status)
	return ok
}

// Run re-checks every interval until ctx ends.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.hs.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// NewGRPCServer exposes the health service with reflection enabled.
func NewGRPCServer(c *Checker, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, c.hs)
	reflection.Register(s)
	return s
}
