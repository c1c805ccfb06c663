package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampler(t *testing.T) {
	for _, ratio := range []float64{0, -1, 1, 2} {
		assert.Equal(t, "AlwaysOnSampler", sampler(ratio).Description(), "ratio %v", ratio)
	}

	desc := sampler(0.25).Description()
	assert.Contains(t, desc, "ParentBased")
	assert.Contains(t, desc, "TraceIDRatioBased{0.25}")
}
