package settlement

import (
	"strconv"

	"github.com/EivindHaugen/SponsorFlow/internal/pkg/env"
)

// NewCalculatorFromEnv builds a calculator from environment configuration.
// Amount bounds are in øre.
func NewCalculatorFromEnv() (*Calculator, error) {
	return NewCalculator(Config{
		TakeRatePercent: envFloat("SETTLEMENT_TAKE_RATE_PERCENT", 6),
		ProcessorRate:   envFloat("SETTLEMENT_PROCESSOR_RATE", 0.029),
		ProcessorFixed:  envInt("SETTLEMENT_PROCESSOR_FIXED", 180),
		MinAmount:       envInt("SETTLEMENT_MIN_AMOUNT", 1000),
		MaxAmount:       envInt("SETTLEMENT_MAX_AMOUNT", 10000000),
	})
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(env.GetEnv(key, ""), 64); err == nil {
		return v
	}
	return def
}

func envInt(key string, def int64) int64 {
	if v, err := strconv.ParseInt(env.GetEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return def
}
