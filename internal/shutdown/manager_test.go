package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"pitch-sieve/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestShutdownReleasesInReverseOrder(t *testing.T) {
	m := NewManager(context.Background(), logger.Nop())

	var order []string
	m.Register("frame log", func() error { order = append(order, "frame log"); return nil })
	m.Register("detector", func() error { order = append(order, "detector"); return errors.New("busy") })
	m.Register("metrics", func() error { order = append(order, "metrics"); return nil })

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"metrics", "detector", "frame log"}, order)
	assert.ErrorIs(t, m.Context().Err(), context.Canceled)

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownTimesOutSlowResource(t *testing.T) {
	m := NewManager(context.Background(), logger.Nop())
	m.timeout = 10 * time.Millisecond

	block := make(chan struct{})
	defer close(block)
	m.Register("stuck", func() error { <-block; return nil })

	finished := make(chan struct{})
	go func() {
		m.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("shutdown blocked on a stuck resource")
	}
}

func TestParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	m := NewManager(parent, logger.Nop())
	cancel()
	assert.Error(t, m.Context().Err())
}
