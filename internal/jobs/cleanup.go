package jobs

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ananth-NQI/alarab-orderbot/internal/services"
)

// SessionCleanupJob drops conversations that were abandoned mid-order
type SessionCleanupJob struct {
	sessions *services.SessionManager
	history  *services.History
	ttl      time.Duration
	interval time.Duration
	log      logrus.FieldLogger

	mu        sync.Mutex
	isRunning bool
	stop      chan struct{}
	done      chan struct{}
}

// NewSessionCleanupJob creates a new cleanup job. The job checks every
// interval for sessions idle longer than ttl.
func NewSessionCleanupJob(sessions *services.SessionManager, history *services.History, ttl, interval time.Duration, log logrus.FieldLogger) *SessionCleanupJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionCleanupJob{
		sessions: sessions,
		history:  history,
		ttl:      ttl,
		interval: interval,
		log:      log,
	}
}

// Start begins the periodic cleanup. A zero ttl disables the job.
func (j *SessionCleanupJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.isRunning {
		j.log.Info("Session cleanup already running")
		return
	}
	if j.ttl <= 0 {
		j.log.Info("Session expiry disabled")
		return
	}

	j.isRunning = true
	j.stop = make(chan struct{})
	j.done = make(chan struct{})
	go j.loop(j.stop, j.done)

	j.log.WithFields(logrus.Fields{"ttl": j.ttl, "interval": j.interval}).Info("🧹 Session cleanup started")
}

// Stop halts the job and waits for a running sweep to finish
func (j *SessionCleanupJob) Stop() {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = false
	close(j.stop)
	done := j.done
	j.mu.Unlock()

	<-done
	j.log.Info("Stopping session cleanup...")
}

func (j *SessionCleanupJob) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce expires idle sessions and their history, returning the numbers dropped.
func (j *SessionCleanupJob) RunOnce() []string {
	expired := j.sessions.ExpireIdle(j.ttl, j.history.Clear)
	if len(expired) > 0 {
		j.log.WithField("count", len(expired)).Info("Expired idle sessions")
	}
	return expired
}
