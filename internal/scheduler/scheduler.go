// Package scheduler runs periodic catalog refreshes on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is one scheduled run. Errors are logged, never fatal.
type Job func(ctx context.Context) error

type Scheduler struct {
	spec string
	job  Job
	cron *cron.Cron
}

// New validates spec ("@every 30m", "0 7 * * *", ...) and prepares the job.
func New(spec string, job Job) (*Scheduler, error) {
	if _, err := cronParser.Parse(spec); err != nil {
		return nil, fmt.Errorf("failed to parse refresh schedule %q: %w", spec, err)
	}

	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(cron.WithParser(cronParser)),
	}, nil
}

// Run fires the job on schedule until ctx is cancelled. A run still in
// progress when the next tick arrives causes that tick to be skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("❌ Scheduled refresh panicked: %v", r)
			}
		}()

		log.Infof("⏰ Running scheduled catalog refresh")
		if err := s.job(ctx); err != nil {
			log.Warnf("Scheduled catalog refresh failed: %v", err)
		}
	}))

	if _, err := s.cron.AddJob(s.spec, wrapped); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	log.Infof("⏰ Catalog refresh scheduled: %s", s.spec)
	s.cron.Start()

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
