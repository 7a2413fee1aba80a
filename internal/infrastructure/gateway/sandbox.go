// Package gateway provides payment gateway adapters. The sandbox adapter
// simulates a charge without contacting a real processor.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/epharmacy/backend/internal/domain/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Decline reasons chosen randomly when a sandbox charge fails
var declineReasons = []string{
	"insufficient funds",
	"card declined by issuer",
	"transaction limit exceeded",
	"bank unreachable",
}

// SandboxGateway approves charges with a configured probability
type SandboxGateway struct {
	successRate float64
	timeout     time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSandboxGateway creates a sandbox gateway
// A non-positive success rate falls back to 0.8
func NewSandboxGateway(successRate float64, timeout time.Duration, logger *zap.Logger) *SandboxGateway {
	if successRate <= 0 || successRate > 1 {
		successRate = 0.8
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SandboxGateway{
		successRate: successRate,
		timeout:     timeout,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Charge simulates a gateway charge
// COD never reaches the gateway; a COD request here is a programming error
func (g *SandboxGateway) Charge(ctx context.Context, req billing.ChargeRequest) (*billing.ChargeResult, error) {
	if req.Method == billing.MethodCOD {
		return nil, fmt.Errorf("cod is collected at delivery, not charged")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", req.Amount)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Small artificial latency so the flow behaves like a remote call
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(g.latency()):
	}

	if g.roll() < g.successRate {
		txnID := transactionID()
		g.logger.Debug("sandbox charge approved",
			zap.String("order_id", req.OrderID.String()),
			zap.String("transaction_id", txnID))
		return &billing.ChargeResult{Approved: true, TransactionID: txnID}, nil
	}

	reason := g.declineReason()
	g.logger.Debug("sandbox charge declined",
		zap.String("order_id", req.OrderID.String()),
		zap.String("reason", reason))
	return &billing.ChargeResult{Approved: false, FailureReason: reason}, nil
}

func (g *SandboxGateway) roll() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *SandboxGateway) latency() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return time.Duration(10+g.rng.Intn(40)) * time.Millisecond
}

func (g *SandboxGateway) declineReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return declineReasons[g.rng.Intn(len(declineReasons))]
}

func transactionID() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

var _ billing.PaymentGateway = (*SandboxGateway)(nil)
