package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// ExitInterrupted is the status used when a run is killed after an
// interrupt because cleanup took too long.
const ExitInterrupted = 130

// WatchInterrupt returns a context that is cancelled on SIGINT or SIGTERM.
// If the process is still alive forceShutdownDelay after the signal it
// exits immediately. The returned stop function releases the watcher.
func WatchInterrupt(ctx context.Context, forceShutdownDelay time.Duration, logger log.FieldLogger) (context.Context, func()) {
	if logger == nil {
		logger = log.StandardLogger()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	go func() {
		select {
		case <-sigs:
		case <-stopped:
			return
		}
		logger.Warnf("interrupt signal received, stopping encodes (forced exit in %s)", forceShutdownDelay)
		cancel()

		timer := time.NewTimer(forceShutdownDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			logger.Warnf("still running %s after interrupt, exiting immediately", forceShutdownDelay)
			os.Exit(ExitInterrupted)
		case <-stopped:
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(stopped)
			cancel()
		})
	}
	return ctx, stop
}
