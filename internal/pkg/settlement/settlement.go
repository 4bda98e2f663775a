package settlement

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidAmount is returned when the requested net amount falls outside
// the configured band. Invalid monetary input is never silently replaced
// with a default.
var ErrInvalidAmount = errors.New("settlement: amount outside configured band")

// Breakdown is the result of grossing up a recipient's desired net amount.
// All amounts are in the smallest currency unit (øre). ProcessorFeeEstimate
// is for display only; the authoritative fee is whatever the processor
// reports after the charge.
type Breakdown struct {
	NetAmount            int64 `json:"net_amount"`
	PlatformFee          int64 `json:"platform_fee"`
	ProcessorFeeEstimate int64 `json:"processor_fee_estimate"`
	GrossAmount          int64 `json:"gross_amount"`
	ApplicationFee       int64 `json:"application_fee"`
}

// Config holds the platform take rate and the processor fee model. The
// processor deducts ProcessorRate*gross + ProcessorFixed from every charge.
type Config struct {
	TakeRatePercent float64 `validate:"gte=0,lte=50"`
	ProcessorRate   float64 `validate:"gte=0,lt=1"`
	ProcessorFixed  int64   `validate:"gte=0"`
	MinAmount       int64   `validate:"gt=0"`
	MaxAmount       int64   `validate:"gtefield=MinAmount"`
}

// Calculator computes deterministic settlement breakdowns. The same
// computation runs independently at cart-render time and at charge
// authorization time, so identical inputs must produce identical outputs.
type Calculator struct {
	cfg Config
}

// NewCalculator validates the config and clamps the take rate into [0, 50].
// The rate is clamped once here and never re-checked at call time.
func NewCalculator(cfg Config) (*Calculator, error) {
	if cfg.TakeRatePercent < 0 {
		cfg.TakeRatePercent = 0
	}
	if cfg.TakeRatePercent > 50 {
		cfg.TakeRatePercent = 50
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("settlement: invalid config: %w", err)
	}
	return &Calculator{cfg: cfg}, nil
}

// Config returns the effective (clamped) configuration.
func (c *Calculator) Config() Config {
	return c.cfg
}

// ComputeGross converts a desired net amount into the amount the sponsor is
// charged. The gross is rounded up to the next currency unit so the
// recipient's net is preserved or exceeded, never short-changed:
//
//	platformFee = round(net * p / 100)
//	gross       = ceil((net + platformFee + b) / (1 - a))
//	application = gross - net
func (c *Calculator) ComputeGross(net int64) (Breakdown, error) {
	if net < c.cfg.MinAmount || net > c.cfg.MaxAmount {
		return Breakdown{}, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrInvalidAmount, net, c.cfg.MinAmount, c.cfg.MaxAmount)
	}

	platformFee := int64(math.Round(float64(net) * c.cfg.TakeRatePercent / 100))
	gross := int64(math.Ceil(float64(net+platformFee+c.cfg.ProcessorFixed) / (1 - c.cfg.ProcessorRate)))
	estimate := int64(math.Round(float64(gross)*c.cfg.ProcessorRate)) + c.cfg.ProcessorFixed

	return Breakdown{
		NetAmount:            net,
		PlatformFee:          platformFee,
		ProcessorFeeEstimate: estimate,
		GrossAmount:          gross,
		ApplicationFee:       gross - net,
	}, nil
}
