// Package system reports host resources used to size sharded runs.
package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ShardMemory is the working set budgeted per shard: one decoder, a few
// analysis-sized Mats and, when configured, a detector network.
const ShardMemory = 512 << 20

type Host struct {
	LogicalCPUs     int
	PhysicalCPUs    int
	TotalMemory     uint64
	AvailableMemory uint64
	MemoryUsed      float64
}

func Snapshot(ctx context.Context) (Host, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Host{}, fmt.Errorf("cpu count: %w", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil || physical == 0 {
		physical = logical
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Host{}, fmt.Errorf("virtual memory: %w", err)
	}

	return Host{
		LogicalCPUs:     logical,
		PhysicalCPUs:    physical,
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
		MemoryUsed:      vm.UsedPercent,
	}, nil
}

// DefaultShards is one shard per physical core, capped by available memory
// and never less than one.
func (h Host) DefaultShards() int {
	shards := h.PhysicalCPUs
	if byMemory := int(h.AvailableMemory / ShardMemory); byMemory < shards {
		shards = byMemory
	}
	return max(1, shards)
}

func (h Host) Fields() map[string]interface{} {
	return map[string]interface{}{
		"logical_cpus":    h.LogicalCPUs,
		"physical_cpus":   h.PhysicalCPUs,
		"total_memory_mb": h.TotalMemory >> 20,
		"avail_memory_mb": h.AvailableMemory >> 20,
		"memory_used_pct": h.MemoryUsed,
	}
}
