package jobxmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/jobx"
	"github.com/google/uuid"
)

// MemoryQueue implements jobx.Queue in process. It backs the worker when
// no Redis is configured and is used by tests.
type MemoryQueue struct {
	mu        sync.Mutex
	jobs      map[string]*jobx.JobInfo
	ready     map[string][]string
	scheduled map[string][]scheduledJob
	notify    chan struct{}
	now       func() time.Time
}

type scheduledJob struct {
	id  string
	due time.Time
}

var _ jobx.Queue = (*MemoryQueue)(nil)

// NewMemoryQueue creates an empty queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		jobs:      make(map[string]*jobx.JobInfo),
		ready:     make(map[string][]string),
		scheduled: make(map[string][]scheduledJob),
		notify:    make(chan struct{}, 1),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Tests use it to make delayed jobs due.
func (q *MemoryQueue) WithClock(now func() time.Time) *MemoryQueue {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
	return q
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job jobx.Job) (string, error) {
	q.mu.Lock()
	info := jobx.NewJobInfo(uuid.NewString(), job, q.now())
	q.jobs[info.ID] = &info
	q.ready[job.Queue] = append(q.ready[job.Queue], info.ID)
	q.mu.Unlock()

	q.signal()
	return info.ID, nil
}

func (q *MemoryQueue) EnqueueDelayed(ctx context.Context, job jobx.Job, delay time.Duration) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	info := jobx.NewJobInfo(uuid.NewString(), job, now)
	q.jobs[info.ID] = &info
	q.scheduled[job.Queue] = append(q.scheduled[job.Queue], scheduledJob{id: info.ID, due: now.Add(delay)})
	return info.ID, nil
}

// GetJob returns a copy of the stored job.
func (q *MemoryQueue) GetJob(ctx context.Context, jobID string) (*jobx.JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return nil, jobx.NotFound(jobID)
	}
	cp := *info
	return &cp, nil
}

// Dequeue pops the oldest ready job from the first non-empty queue in
// order. It waits up to timeout and returns nil, nil when nothing arrives.
func (q *MemoryQueue) Dequeue(ctx context.Context, queues []string, timeout time.Duration) (*jobx.JobInfo, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if info := q.pop(queues); info != nil {
			return info, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-timer.C:
			return nil, nil
		case <-q.notify:
		}
	}
}

func (q *MemoryQueue) pop(queues []string) *jobx.JobInfo {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, name := range queues {
		ids := q.ready[name]
		if len(ids) == 0 {
			continue
		}
		id := ids[0]
		q.ready[name] = ids[1:]

		info, ok := q.jobs[id]
		if !ok {
			continue
		}
		info.Status = jobx.JobStatusActive
		info.Attempts++
		info.UpdatedAt = q.now()
		cp := *info
		return &cp
	}
	return nil
}

func (q *MemoryQueue) Complete(ctx context.Context, jobID string, result []byte) error {
	return q.update(jobID, func(info *jobx.JobInfo) {
		info.Status = jobx.JobStatusCompleted
		info.Result = result
	})
}

// Fail records the error and reports whether another attempt is allowed.
func (q *MemoryQueue) Fail(ctx context.Context, jobID string, errMsg string) (bool, error) {
	var retry bool
	err := q.update(jobID, func(info *jobx.JobInfo) {
		retry = info.CanRetry()
		if retry {
			info.Status = jobx.JobStatusRetrying
		} else {
			info.Status = jobx.JobStatusFailed
		}
		info.Error = errMsg
	})
	return retry, err
}

func (q *MemoryQueue) Retry(ctx context.Context, jobID string, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return jobx.NotFound(jobID)
	}
	q.scheduled[info.Queue] = append(q.scheduled[info.Queue], scheduledJob{id: jobID, due: q.now().Add(delay)})
	return nil
}

// PromoteScheduled moves due jobs to the ready lists, earliest first.
func (q *MemoryQueue) PromoteScheduled(ctx context.Context, queues []string) error {
	q.mu.Lock()
	now := q.now()
	promoted := 0
	for _, name := range queues {
		pending := q.scheduled[name]
		sort.SliceStable(pending, func(i, j int) bool { return pending[i].due.Before(pending[j].due) })

		keep := pending[:0]
		for _, s := range pending {
			if s.due.After(now) {
				keep = append(keep, s)
				continue
			}
			q.ready[name] = append(q.ready[name], s.id)
			promoted++
		}
		q.scheduled[name] = keep
	}
	q.mu.Unlock()

	if promoted > 0 {
		q.signal()
	}
	return nil
}

// Len reports the number of ready jobs in queue.
func (q *MemoryQueue) Len(queue string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ready[queue])
}

func (q *MemoryQueue) update(jobID string, fn func(*jobx.JobInfo)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	info, ok := q.jobs[jobID]
	if !ok {
		return jobx.NotFound(jobID)
	}
	fn(info)
	info.UpdatedAt = q.now()
	return nil
}

func (q *MemoryQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
