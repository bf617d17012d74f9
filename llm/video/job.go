package video

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// JobState is the lifecycle state of a remote generation job.
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobReady     JobState = "ready"
	JobFailed    JobState = "failed"
)

// Job tracks one remote generation job on the client side.
type Job struct {
	Name     string
	State    JobState
	Polls    int
	VideoURI string
	Err      error
}

// jobStatus is what a single status check reports.
type jobStatus struct {
	Done     bool
	VideoURI string
	Err      error
}

// apply moves the job according to a status report.
// A report that is not done leaves a submitted job polling.
func (j *Job) apply(s jobStatus) {
	switch {
	case s.Err != nil:
		j.fail(s.Err)
	case s.Done && s.VideoURI == "":
		j.fail(providerErrorf("video job %s finished without a generated sample", j.Name))
	case s.Done:
		j.VideoURI = s.VideoURI
		j.State = JobReady
	default:
		j.State = JobPolling
	}
}

func (j *Job) fail(err error) {
	j.Err = err
	j.State = JobFailed
}

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the real SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type checkFunc func(ctx context.Context, name string) (jobStatus, error)

// poller drives a Job from submitted to ready or failed.
type poller struct {
	interval    time.Duration
	maxAttempts int
	sleep       SleepFunc
	logger      *zap.Logger
}

// run waits one interval before every status check and gives up after
// maxAttempts checks. Cancelling ctx stops local tracking only; the remote
// job keeps running.
func (p *poller) run(ctx context.Context, job *Job, check checkFunc) error {
	for {
		switch job.State {
		case JobSubmitted:
			job.State = JobPolling

		case JobPolling:
			if job.Polls >= p.maxAttempts {
				job.fail(providerErrorf("video job %s not done after %d status checks", job.Name, job.Polls))
				continue
			}
			if err := p.sleep(ctx, p.interval); err != nil {
				job.fail(fmt.Errorf("video job %s: stopped waiting after %d status checks: %w", job.Name, job.Polls, err))
				continue
			}
			job.Polls++
			status, err := check(ctx, job.Name)
			if err != nil {
				job.fail(err)
				continue
			}
			job.apply(status)
			p.logger.Debug("video job status",
				zap.String("operation", job.Name),
				zap.Int("poll", job.Polls),
				zap.String("state", string(job.State)),
			)

		case JobReady:
			return nil

		case JobFailed:
			return job.Err

		default:
			return fmt.Errorf("video job %s in unknown state %q", job.Name, job.State)
		}
	}
}
