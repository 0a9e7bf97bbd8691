package db

import (
	"testing"
)

func TestPoolStats_Snapshot(t *testing.T) {
	stats := &PoolStats{
		TotalConns:    10,
		IdleConns:     5,
		AcquiredConns: 5,
		MaxConns:      20,
	}

	if stats.TotalConns != stats.IdleConns+stats.AcquiredConns {
		t.Errorf("total %d should equal idle %d + acquired %d",
			stats.TotalConns, stats.IdleConns, stats.AcquiredConns)
	}
	if stats.MaxConns != 20 {
		t.Errorf("expected MaxConns 20, got %d", stats.MaxConns)
	}
}
