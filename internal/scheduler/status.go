package scheduler

import (
	"fmt"
	"time"

	"github.com/luisz08/notif-svc/pkg/errors"
)

// JobInfo describes one registered job for status reporting.
type JobInfo struct {
	EventID string     `json:"event_id"`
	Cron    string     `json:"cron"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Status is a snapshot of the scheduler state and its jobs.
type Status struct {
	State string    `json:"state"`
	Jobs  []JobInfo `json:"jobs"`
}

// Status reports whether the scheduler is running and what jobs it
// holds, with their next fire times.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return Status{State: "stopped", Jobs: []JobInfo{}}
	}

	jobs := make([]JobInfo, 0, len(s.entries))
	for id, entryID := range s.entries {
		info := JobInfo{
			EventID: id.String(),
			Cron:    s.specs[id],
		}
		if entry := s.c.Entry(entryID); entry.Valid() && !entry.Next.IsZero() {
			next := entry.Next
			info.NextRun = &next
		}
		jobs = append(jobs, info)
	}
	return Status{State: "running", Jobs: jobs}
}

func errBadCron(spec string, err error) error {
	return errors.SchedulerRegistration(fmt.Sprintf("invalid cron expression %q", spec), err)
}

func errUnschedulable(source string) error {
	return errors.SchedulerRegistration(fmt.Sprintf("event source %q is not schedulable", source), nil)
}
