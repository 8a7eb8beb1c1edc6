package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	h, err := Snapshot(context.Background())
	require.NoError(t, err)
	assert.Positive(t, h.LogicalCPUs)
	assert.Positive(t, h.PhysicalCPUs)
	assert.Positive(t, h.TotalMemory)
	assert.GreaterOrEqual(t, h.DefaultShards(), 1)
}

func TestDefaultShards(t *testing.T) {
	tests := []struct {
		name string
		host Host
		want int
	}{
		{"cpu bound", Host{PhysicalCPUs: 4, AvailableMemory: 16 << 30}, 4},
		{"memory bound", Host{PhysicalCPUs: 16, AvailableMemory: 3 * ShardMemory}, 3},
		{"starved", Host{PhysicalCPUs: 8, AvailableMemory: ShardMemory / 2}, 1},
		{"unknown", Host{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.host.DefaultShards())
		})
	}
}
