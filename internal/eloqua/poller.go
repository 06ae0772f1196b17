package eloqua

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/cdosync/internal/logger"
)

// SyncAPI is the subset of Client used to run and observe syncs.
type SyncAPI interface {
	CreateSync(ctx context.Context, instanceURI string) (SyncJob, error)
	GetSync(ctx context.Context, syncURI string) (SyncJob, string, error)
	SyncLogs(ctx context.Context, syncURI string) ([]string, error)
}

// SyncPoller waits for a sync to reach a terminal status.
type SyncPoller struct {
	api      SyncAPI
	interval time.Duration
	maxPolls int
	logger   *logger.Logger
}

// NewSyncPoller creates a poller that checks every interval, at most
// maxPolls times.
func NewSyncPoller(api SyncAPI, interval time.Duration, maxPolls int, log *logger.Logger) *SyncPoller {
	if log == nil {
		log = logger.NewDefault()
	}
	if maxPolls <= 0 {
		maxPolls = 1
	}
	return &SyncPoller{
		api:      api,
		interval: interval,
		maxPolls: maxPolls,
		logger:   log,
	}
}

// Poll checks job until it is no longer pending or active. Success returns
// StatusSuccess with a nil error. Warning, error, and unrecognised statuses
// fetch the sync logs and return a *SyncFailedError. A sync still running
// after maxPolls checks returns a *PollTimeoutError.
func (p *SyncPoller) Poll(ctx context.Context, job SyncJob) (SyncStatus, error) {
	log := p.logger.WithSync(job.URI)

	for poll := 1; poll <= p.maxPolls; poll++ {
		current, raw, err := p.api.GetSync(ctx, job.URI)
		if err != nil {
			return StatusUnknown, err
		}

		switch current.Status {
		case StatusSuccess:
			log.Debugf("Sync succeeded after %d polls", poll)
			return StatusSuccess, nil

		case StatusPending, StatusActive:
			log.Debugf("Sync is %s (poll %d/%d)", current.Status, poll, p.maxPolls)
			if poll == p.maxPolls {
				break
			}
			select {
			case <-ctx.Done():
				return current.Status, ctx.Err()
			case <-time.After(p.interval):
			}

		default:
			logs, logErr := p.api.SyncLogs(ctx, job.URI)
			if logErr != nil {
				log.Warnf("Failed to fetch sync logs: %v", logErr)
			}
			for _, line := range logs {
				log.Warnf("Sync log: %s", line)
			}
			return current.Status, &SyncFailedError{
				URI:    job.URI,
				Status: current.Status,
				Raw:    raw,
				Logs:   logs,
			}
		}
	}

	return StatusUnknown, &PollTimeoutError{URI: job.URI, Polls: p.maxPolls}
}

// Syncer creates syncs and waits for them.
type Syncer struct {
	api       SyncAPI
	poller    *SyncPoller
	tolerate  bool
	tolerated int
	logger    *logger.Logger
}

// NewSyncer creates a Syncer. With tolerateFailure set, a sync that ends in
// warning or error is logged and treated as complete.
func NewSyncer(api SyncAPI, poller *SyncPoller, tolerateFailure bool, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Syncer{api: api, poller: poller, tolerate: tolerateFailure, logger: log}
}

// Sync runs a sync of instanceURI to completion.
func (s *Syncer) Sync(ctx context.Context, instanceURI string) (SyncJob, error) {
	job, err := s.api.CreateSync(ctx, instanceURI)
	if err != nil {
		return SyncJob{}, err
	}

	status, err := s.poller.Poll(ctx, job)
	job.Status = status
	if err == nil {
		return job, nil
	}

	var failed *SyncFailedError
	if s.tolerate && errors.As(err, &failed) && failed.Status != StatusUnknown {
		s.tolerated++
		s.logger.WithSync(job.URI).Warnf("Continuing after sync %s", failed.Status)
		return job, nil
	}
	return job, fmt.Errorf("sync of %s: %w", instanceURI, err)
}

// Tolerated returns how many syncs ended in warning or error and were let
// through.
func (s *Syncer) Tolerated() int {
	return s.tolerated
}
