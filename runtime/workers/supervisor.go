package workers

import (
	"chat-client/contract"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor keeps the long-lived loops of the client alive: the session
// loop and the terminal input loop. A worker returning nil is done for good.
// A worker that panics or returns an error is restarted after restartInterval,
// until the supervised context ends.
type Supervisor struct {
	Cancel          context.CancelFunc
	wg              *sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run blocks until every worker is done.
// Stop, or cancelling ctx, ends all of them.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start runs worker in its own goroutine under the restart policy.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, worker)
	}()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	for restarts := 0; ; restarts++ {
		if ctx.Err() != nil {
			s.log.Info("Worker not started, context done", "name", name)
			return
		}

		err := runOnce(ctx, worker)
		switch {
		case err == nil:
			s.log.Info("Worker finished", "name", name)
			return
		case ctx.Err() != nil:
			s.log.Info("Worker stopped", "name", name, "reason", ctx.Err())
			return
		}

		s.log.Warn("Worker failed, restarting", "name", name, "error", err, "restarts", restarts)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.restartInterval):
		}
	}
}

// runOnce turns a panic into ErrWorkerPanic so one bad loop cannot take the process down.
func runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
