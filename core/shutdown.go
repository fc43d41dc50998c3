package core

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// OnSignalFunc is invoked when a termination signal is received, before the
// shutdown flag is set.
type OnSignalFunc func(os.Signal)

// ShutdownCoordinator is a process-wide waitable flag adapters use to learn
// when to stop their run loop. It's grounded on the single-Event pattern in
// original_source's shutdown_handler.py, generalized for use with
// context.Context-based cancellation as well as blocking waits.
type ShutdownCoordinator struct {
	mu      sync.Mutex
	flagged bool
	done    chan struct{}
	sigCh   chan os.Signal
}

// NewShutdownCoordinator constructs a coordinator with the flag unset.
func NewShutdownCoordinator() *ShutdownCoordinator {
	return &ShutdownCoordinator{done: make(chan struct{})}
}

// Enable installs handlers for SIGINT and SIGTERM that set the flag. If
// onSignal is non-nil, it runs once, synchronously, before the flag is set.
// Adapters embedding the coordinator for tests should skip calling Enable.
func (s *ShutdownCoordinator) Enable(onSignal OnSignalFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	s.mu.Lock()
	s.sigCh = sigCh
	s.mu.Unlock()

	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		if onSignal != nil {
			onSignal(sig)
		}
		s.SetFlag()
	}()
}

// Disable tears down the signal handler installed by Enable, if any.
func (s *ShutdownCoordinator) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sigCh != nil {
		signal.Stop(s.sigCh)
		close(s.sigCh)
		s.sigCh = nil
	}
}

// ShouldExit reports whether the flag has been set.
func (s *ShutdownCoordinator) ShouldExit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flagged
}

// SetFlag sets the flag, waking every goroutine blocked in WaitForFlag or
// selecting on Done. Safe to call more than once.
func (s *ShutdownCoordinator) SetFlag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flagged {
		return
	}
	s.flagged = true
	close(s.done)
}

// WaitForFlag blocks until the flag is set.
func (s *ShutdownCoordinator) WaitForFlag() {
	<-s.done
}

// Done returns a channel closed when the flag is set, for use in select
// statements alongside other channels (e.g. an adapter's message channel).
func (s *ShutdownCoordinator) Done() <-chan struct{} {
	return s.done
}
