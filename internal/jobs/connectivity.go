package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/aeworks/ops-api/internal/domain"
	"go.uber.org/zap"
)

// ConnectivityJobName is the name of the connectivity probe job
const ConnectivityJobName = "connectivity_probe"

// Pinger probes the vault. vault.Client implements it.
type Pinger interface {
	Ping(ctx context.Context, token string) error
}

// TokenFunc returns the stored cloud token, "" when not connected.
type TokenFunc func(ctx context.Context) string

type linkState int

const (
	stateUnknown linkState = iota
	stateOnline
	stateOffline
)

// ConnectivityWatcher probes the vault and starts a sync when it comes back
// after being unreachable.
type ConnectivityWatcher struct {
	pinger  Pinger
	token   TokenFunc
	job     *CloudSyncJob
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.Mutex
	state linkState
}

// NewConnectivityWatcher creates a new ConnectivityWatcher
func NewConnectivityWatcher(pinger Pinger, token TokenFunc, job *CloudSyncJob, logger *zap.Logger, timeout time.Duration) *ConnectivityWatcher {
	return &ConnectivityWatcher{pinger: pinger, token: token, job: job, logger: logger, timeout: timeout}
}

// Online reports the last probe result.
func (w *ConnectivityWatcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == stateOnline
}

// Check probes once. It returns true when the probe restored connectivity
// and a sync was started.
func (w *ConnectivityWatcher) Check() bool {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	token := w.token(ctx)
	if token == "" {
		return false
	}

	err := w.pinger.Ping(ctx, token)

	w.mu.Lock()
	prev := w.state
	if err != nil {
		w.state = stateOffline
	} else {
		w.state = stateOnline
	}
	w.mu.Unlock()

	if err != nil {
		if prev != stateOffline {
			w.logger.Warn("vault unreachable", zap.Error(err))
		}
		return false
	}
	if prev != stateOffline {
		return false
	}

	w.logger.Info("vault reachable again, syncing")
	w.job.RunTrigger(domain.TriggerConnectivity)
	return true
}

// RegisterConnectivityWatcher schedules the probe.
func RegisterConnectivityWatcher(scheduler *Scheduler, watcher *ConnectivityWatcher, cronExpr string) error {
	return scheduler.AddJob(ConnectivityJobName, cronExpr, func() { watcher.Check() })
}
