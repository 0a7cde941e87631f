package fetch

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/id"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/utils"
)

// Jobs runs whole-book fetches through a bounded worker pool and tracks
// their lifecycle.
type Jobs struct {
	orch    *Orchestrator
	hub     *Hub
	logger  *logging.Logger
	metrics *monitoring.Metrics
	workers int

	entries sync.Map // job id -> *jobEntry
	active  sync.Map // book fingerprint -> job id
}

// jobEntry guards one job's mutable state.
type jobEntry struct {
	mu        sync.Mutex
	job       types.Job
	cancel    context.CancelFunc
	cancelled bool
	results   []types.ChapterResult
}

func (e *jobEntry) snapshot() types.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job
}

// NewJobs creates the job manager.
func NewJobs(orch *Orchestrator, hub *Hub, cfg config.JobsConfig, logger *logging.Logger, metrics *monitoring.Metrics) *Jobs {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Jobs{
		orch:    orch,
		hub:     hub,
		logger:  logger.Named("jobs"),
		metrics: metrics,
		workers: workers,
	}
}

// Hub returns the event hub jobs publish to.
func (j *Jobs) Hub() *Hub {
	return j.hub
}

// Spawn starts a whole-book fetch. Spawning the same book again while a
// previous job for it is still live returns that job instead.
func (j *Jobs) Spawn(siteID, bookRef string) (types.Job, error) {
	fp := utils.Fingerprint(siteID, bookRef)
	if idVal, ok := j.active.Load(fp); ok {
		if e, ok := j.entries.Load(idVal.(string)); ok {
			entry := e.(*jobEntry)
			if snap := entry.snapshot(); !snap.State.Terminal() {
				return snap, nil
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	entry := &jobEntry{
		job: types.Job{
			ID:        id.NewJobID().String(),
			SiteID:    siteID,
			BookRef:   bookRef,
			State:     types.JobPending,
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	j.entries.Store(entry.job.ID, entry)
	j.active.Store(fp, entry.job.ID)
	if j.metrics != nil {
		j.metrics.IncJobsTotal()
	}
	j.logger.Info("job spawned",
		zap.String("job_id", entry.job.ID),
		logging.Site(siteID),
		zap.String("book_ref", bookRef),
	)

	go j.run(ctx, entry)
	return entry.snapshot(), nil
}

// Get returns a job snapshot plus the chapter results collected so far.
func (j *Jobs) Get(id string) (types.Job, []types.ChapterResult, bool) {
	e, ok := j.entries.Load(id)
	if !ok {
		return types.Job{}, nil, false
	}
	entry := e.(*jobEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	results := make([]types.ChapterResult, len(entry.results))
	copy(results, entry.results)
	return entry.job, results, true
}

// List returns all jobs, newest first.
func (j *Jobs) List() []types.Job {
	var jobs []types.Job
	j.entries.Range(func(_, value any) bool {
		jobs = append(jobs, value.(*jobEntry).snapshot())
		return true
	})
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].CreatedAt.After(jobs[b].CreatedAt) })
	return jobs
}

// Cancel requests cancellation of a live job. Terminal jobs report
// false.
func (j *Jobs) Cancel(id string) bool {
	e, ok := j.entries.Load(id)
	if !ok {
		return false
	}
	entry := e.(*jobEntry)

	entry.mu.Lock()
	if entry.job.State.Terminal() {
		entry.mu.Unlock()
		return false
	}
	entry.cancelled = true
	entry.mu.Unlock()

	entry.cancel()
	return true
}

// run drives one job: TOC fetch, chapter fan-out, terminal transition.
func (j *Jobs) run(ctx context.Context, entry *jobEntry) {
	defer entry.cancel()
	j.setActiveGauge()

	now := time.Now()
	entry.mu.Lock()
	entry.job.State = types.JobRunning
	entry.job.StartedAt = &now
	job := entry.job
	entry.mu.Unlock()
	j.publish(types.Event{JobID: job.ID, Type: "started", Progress: job.Progress})

	book, err := j.orch.FetchBook(ctx, job.SiteID, job.BookRef)
	if err != nil {
		j.finish(entry, err)
		return
	}
	chapters := book.AllChapters()

	entry.mu.Lock()
	entry.job.BookTitle = book.Title
	entry.job.Progress.Total = len(chapters)
	entry.mu.Unlock()

	var wg sync.WaitGroup
	work := make(chan types.ChapterMeta)
	wg.Add(j.workers)
	for i := 0; i < j.workers; i++ {
		go func() {
			defer wg.Done()
			for meta := range work {
				if ctx.Err() != nil {
					continue
				}
				res := j.orch.FetchChapter(ctx, job.SiteID, meta.Ref)
				j.record(entry, res)
			}
		}()
	}

feed:
	for _, meta := range chapters {
		select {
		case <-ctx.Done():
			break feed
		case work <- meta:
		}
	}
	close(work)
	wg.Wait()

	j.finish(entry, nil)
}

// record folds one chapter result into the job and publishes progress.
func (j *Jobs) record(entry *jobEntry, res types.ChapterResult) {
	entry.mu.Lock()
	if res.Status == types.StatusOK {
		entry.job.Progress.Done++
	} else {
		entry.job.Progress.Failed++
	}
	entry.results = append(entry.results, res)
	jobID := entry.job.ID
	progress := entry.job.Progress
	entry.mu.Unlock()

	if j.metrics != nil {
		j.metrics.RecordChapter(string(res.Status))
	}
	j.publish(types.Event{
		JobID:    jobID,
		Type:     "chapter",
		Chapter:  res.Ref,
		Status:   res.Status,
		Progress: progress,
		Error:    res.ErrorMessage(),
	})
}

// finish moves the job to its terminal state.
func (j *Jobs) finish(entry *jobEntry, err error) {
	now := time.Now()

	entry.mu.Lock()
	switch {
	case entry.cancelled:
		entry.job.State = types.JobCancelled
	case err != nil:
		entry.job.State = types.JobFailed
		entry.job.Error = err.Error()
	default:
		entry.job.State = types.JobDone
	}
	entry.job.FinishedAt = &now
	job := entry.job
	entry.mu.Unlock()

	eventType := map[types.JobState]string{
		types.JobDone:      "done",
		types.JobFailed:    "failed",
		types.JobCancelled: "cancelled",
	}[job.State]
	j.publish(types.Event{
		JobID:    job.ID,
		Type:     eventType,
		Progress: job.Progress,
		Error:    job.Error,
	})
	j.logger.Info("job finished",
		zap.String("job_id", job.ID),
		zap.String("state", string(job.State)),
		zap.Int("done", job.Progress.Done),
		zap.Int("failed", job.Progress.Failed),
	)
	j.setActiveGauge()
}

func (j *Jobs) publish(evt types.Event) {
	evt.Timestamp = time.Now().UnixMilli()
	if j.hub != nil {
		j.hub.Publish(evt)
	}
}

func (j *Jobs) setActiveGauge() {
	if j.metrics == nil {
		return
	}
	count := 0
	j.entries.Range(func(_, value any) bool {
		if !value.(*jobEntry).snapshot().State.Terminal() {
			count++
		}
		return true
	})
	j.metrics.SetJobsActive(count)
}
