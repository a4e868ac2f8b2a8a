// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/tubeprint/pkg/types"
)

// JobStatus is the lifecycle state of an export job.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// ExportRequest is the client's job submission. Auto-generated tracks
// are acceptable unless manual_only is set.
type ExportRequest struct {
	URL        string   `json:"url" validate:"required"`
	Languages  []string `json:"languages,omitempty"`
	Timestamps bool     `json:"timestamps,omitempty"`
	ManualOnly bool     `json:"manual_only,omitempty"`
}

// Job tracks one export through the pipeline.
type Job struct {
	ID         string
	Status     JobStatus
	Progress   float64
	Stage      string
	Filename   string
	Error      string
	CreatedAt  time.Time
	FinishedAt time.Time

	request    ExportRequest
	workDir    string
	outputPath string
}

// Exporter runs the fetch, format, and render pipeline for one job.
// It writes the PDF under outDir and returns its path plus the
// download filename. progress reports percent and stage for polling.
type Exporter func(ctx context.Context, req ExportRequest, outDir string, progress func(pct float64, stage string)) (outputPath, filename string, err error)

// Manager owns the job table and the worker pool. Jobs live in memory;
// the PDF output lives in a per-job work directory that download
// cleanup (or the TTL janitor) removes.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Job

	queue  chan string
	export Exporter
	log    *logrus.Logger
	cfg    types.ServerConfig

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewManager builds a Manager and starts its workers and TTL janitor.
func NewManager(cfg types.ServerConfig, export Exporter, log *logrus.Logger) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}

	m := &Manager{
		jobs:   make(map[string]*Job),
		queue:  make(chan string, 64),
		export: export,
		log:    log,
		cfg:    cfg,
		stop:   make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	m.wg.Add(1)
	go m.janitor()

	return m
}

// Shutdown stops the workers after in-flight jobs finish.
func (m *Manager) Shutdown() {
	close(m.stop)
	m.wg.Wait()
}

// Submit queues a new job and returns its ID.
func (m *Manager) Submit(req ExportRequest) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Stage:     "queued",
		CreatedAt: time.Now(),
		request:   req,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.queue <- job.ID
	m.log.WithField("job_id", job.ID).WithField("url", req.URL).Info("export job queued")
	return job
}

// Get returns a snapshot of the job, or nil if unknown.
func (m *Manager) Get(id string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	snapshot := *job
	return &snapshot
}

// Forget removes the job and its work directory. Called after a
// successful download, mirroring the one-shot download semantics.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if ok {
		delete(m.jobs, id)
	}
	m.mu.Unlock()

	if ok && job.workDir != "" {
		if err := os.RemoveAll(job.workDir); err != nil {
			m.log.WithField("job_id", id).WithError(err).Warn("work dir cleanup failed")
		}
	}
}

func (m *Manager) worker(n int) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stop:
			return
		case id := <-m.queue:
			m.run(id)
		}
	}
}

func (m *Manager) run(id string) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	job.Status = StatusProcessing
	req := job.request
	m.mu.Unlock()

	workDir, err := os.MkdirTemp(m.cfg.WorkDir, "tubeprint-job-")
	if err != nil {
		m.finish(id, "", "", "", err)
		return
	}

	progress := func(pct float64, stage string) {
		m.mu.Lock()
		if j, ok := m.jobs[id]; ok {
			j.Progress = pct
			j.Stage = stage
		}
		m.mu.Unlock()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	outputPath, filename, err := m.export(ctx, req, workDir, progress)
	if err != nil {
		os.RemoveAll(workDir)
		m.finish(id, "", "", "", err)
		return
	}
	m.finish(id, workDir, outputPath, filename, nil)
}

func (m *Manager) finish(id, workDir, outputPath, filename string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return
	}
	job.FinishedAt = time.Now()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.Stage = "failed"
		m.log.WithField("job_id", id).WithError(err).Error("export job failed")
		return
	}
	job.Status = StatusComplete
	job.Progress = 100
	job.Stage = "complete"
	job.workDir = workDir
	job.outputPath = outputPath
	job.Filename = filename
	m.log.WithField("job_id", id).WithField("file", filename).Info("export job complete")
}

// janitor sweeps finished jobs past the TTL so abandoned downloads do
// not leak work directories.
func (m *Manager) janitor() {
	defer m.wg.Done()

	interval := m.cfg.JobTTL / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			for _, id := range m.expired() {
				m.log.WithField("job_id", id).Info("expiring abandoned job")
				m.Forget(id)
			}
		}
	}
}

func (m *Manager) expired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, job := range m.jobs {
		done := job.Status == StatusComplete || job.Status == StatusFailed
		if done && time.Since(job.FinishedAt) > m.cfg.JobTTL {
			ids = append(ids, id)
		}
	}
	return ids
}
