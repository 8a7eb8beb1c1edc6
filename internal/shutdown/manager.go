// Package shutdown turns SIGINT/SIGTERM into context cancellation and
// releases registered resources in reverse order.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pitch-sieve/internal/logger"
)

const component = "shutdown"

// DefaultTimeout bounds how long a single release func may take.
const DefaultTimeout = 10 * time.Second

type resource struct {
	name    string
	release func() error
}

type Manager struct {
	resources []resource
	logger    logger.Logger
	timeout   time.Duration
	mu        sync.Mutex
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewManager derives a cancellable context from parent. Cancelling it is the
// only way a running extraction is asked to stop; the extractor notices
// between frames.
func NewManager(parent context.Context, log logger.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)

	return &Manager{
		logger:  log,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a release func. Resources are released last-in first-out.
func (m *Manager) Register(name string, release func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resources = append(m.resources, resource{name: name, release: release})
}

// Listen cancels the context on the first interrupt and exits the process
// on the second.
func (m *Manager) Listen() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		m.logger.Info(component, "signal received, stopping after the current frame", map[string]interface{}{
			"signal": sig.String(),
		})
		m.cancel()

		select {
		case sig = <-sigChan:
			m.logger.Warning(component, "second signal, exiting immediately", map[string]interface{}{
				"signal": sig.String(),
			})
			os.Exit(130)
		case <-m.done:
		}
	}()
}

// Shutdown cancels the context and releases every resource once. Later
// calls are no-ops.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.cancel()

	for i := len(m.resources) - 1; i >= 0; i-- {
		r := m.resources[i]

		errc := make(chan error, 1)
		go func() {
			errc <- r.release()
		}()

		select {
		case err := <-errc:
			if err != nil {
				m.logger.Error(component, err, map[string]interface{}{"resource": r.name})
			}
		case <-time.After(m.timeout):
			m.logger.Warning(component, "resource release timed out", map[string]interface{}{
				"resource": r.name,
			})
		}
	}

	m.logger.Debug(component, "shutdown completed", map[string]interface{}{
		"resources": len(m.resources),
	})
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
