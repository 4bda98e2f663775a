package settlement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(takeRate float64) Config {
	return Config{
		TakeRatePercent: takeRate,
		ProcessorRate:   0.029,
		ProcessorFixed:  180,
		MinAmount:       1000,    // 10 NOK
		MaxAmount:       1000000, // 10 000 NOK
	}
}

func TestComputeGrossScenario(t *testing.T) {
	// 100 NOK net at 6% take rate with the 2.9% + 1.80 processor model.
	calc, err := NewCalculator(testConfig(6))
	require.NoError(t, err)

	b, err := calc.ComputeGross(10000)
	require.NoError(t, err)

	assert.Equal(t, int64(600), b.PlatformFee)
	assert.Equal(t, int64(11102), b.GrossAmount)
	assert.Equal(t, int64(1102), b.ApplicationFee)
	assert.Equal(t, int64(10000), b.GrossAmount-b.ApplicationFee)
}

func TestComputeGrossPreservesNet(t *testing.T) {
	for _, rate := range []float64{0, 3, 6, 12.5, 50} {
		calc, err := NewCalculator(testConfig(rate))
		require.NoError(t, err)

		for _, net := range []int64{1000, 5000, 9999, 123456, 1000000} {
			b, err := calc.ComputeGross(net)
			require.NoError(t, err)
			assert.Equal(t, net, b.GrossAmount-b.ApplicationFee,
				"rate=%v net=%d", rate, net)
			// Rounding must never short-change the recipient.
			assert.GreaterOrEqual(t, float64(b.GrossAmount)*(1-0.029),
				float64(net+b.PlatformFee), "rate=%v net=%d", rate, net)
		}
	}
}

func TestComputeGrossDeterministic(t *testing.T) {
	calc, err := NewCalculator(testConfig(6))
	require.NoError(t, err)

	first, err := calc.ComputeGross(34567)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := calc.ComputeGross(34567)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeGrossMonotonic(t *testing.T) {
	calc, err := NewCalculator(testConfig(6))
	require.NoError(t, err)

	prev, err := calc.ComputeGross(1000)
	require.NoError(t, err)
	for net := int64(1100); net <= 20000; net += 100 {
		b, err := calc.ComputeGross(net)
		require.NoError(t, err)
		assert.Greater(t, b.GrossAmount, prev.GrossAmount, "net=%d", net)
		prev = b
	}

	// Raising the take rate raises the gross for a fixed net.
	prevGross := int64(0)
	for _, rate := range []float64{0, 5, 10, 20, 40, 50} {
		c, err := NewCalculator(testConfig(rate))
		require.NoError(t, err)
		b, err := c.ComputeGross(10000)
		require.NoError(t, err)
		assert.Greater(t, b.GrossAmount, prevGross, "rate=%v", rate)
		prevGross = b.GrossAmount
	}
}

func TestComputeGrossRejectsOutOfBand(t *testing.T) {
	calc, err := NewCalculator(testConfig(6))
	require.NoError(t, err)

	for _, net := range []int64{0, -500, 999, 1000001} {
		_, err := calc.ComputeGross(net)
		assert.True(t, errors.Is(err, ErrInvalidAmount), "net=%d got %v", net, err)
	}
}

func TestNewCalculatorClampsTakeRate(t *testing.T) {
	calc, err := NewCalculator(testConfig(99))
	require.NoError(t, err)
	assert.Equal(t, float64(50), calc.Config().TakeRatePercent)

	calc, err = NewCalculator(testConfig(-4))
	require.NoError(t, err)
	assert.Equal(t, float64(0), calc.Config().TakeRatePercent)
}

func TestNewCalculatorRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(6)
	cfg.MinAmount = 0
	_, err := NewCalculator(cfg)
	assert.Error(t, err)

	cfg = testConfig(6)
	cfg.MaxAmount = cfg.MinAmount - 1
	_, err = NewCalculator(cfg)
	assert.Error(t, err)

	cfg = testConfig(6)
	cfg.ProcessorRate = 1.5
	_, err = NewCalculator(cfg)
	assert.Error(t, err)
}
