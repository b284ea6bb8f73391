// Package ingest feeds generation files from a data directory into the grid
// on a cron schedule.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/logging"
	"tax-credit-model/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SourceFile labels records that arrived through the data directory.
const SourceFile = "file"

// Report is the outcome of one scan.
type Report struct {
	Files       []string          `json:"files"`
	Generations int               `json:"generations"`
	Removed     []string          `json:"removed,omitempty"`
	Failed      map[string]string `json:"failed,omitempty"`
}

type loadedFile struct {
	modTime time.Time
	records int
}

// Job ingests every new or modified *.jsonl file in Dir. A file is loaded once
// per modification time, and a reload replaces what the file contributed
// before. A file that fails is retried on the next scan; a file that vanished
// has its records dropped from the grid.
type Job struct {
	Dir  string
	Grid grid.SourceWriter
	Log  *logrus.Logger

	mu   sync.Mutex
	seen map[string]loadedFile
	cron *cron.Cron
}

func NewJob(dir string, g grid.SourceWriter, log *logrus.Logger) *Job {
	if log == nil {
		log = logging.Discard()
	}
	return &Job{Dir: dir, Grid: g, Log: log, seen: make(map[string]loadedFile)}
}

// RunOnce scans the directory a single time. A missing directory is not an
// error; there is simply nothing to ingest yet.
func (j *Job) RunOnce(ctx context.Context) (Report, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rep := Report{Files: []string{}}
	entries, err := os.ReadDir(j.Dir)
	if os.IsNotExist(err) {
		return rep, nil
	}
	if err != nil {
		return rep, fmt.Errorf("read %s: %w", j.Dir, err)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].Name() < entries[b].Name() })

	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != grid.GenerationFileExt {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		name := entry.Name()
		present[name] = true
		prev, ok := j.seen[name]
		if ok && prev.modTime.Equal(info.ModTime()) {
			continue
		}

		n, err := j.ingestFile(ctx, name, prev.records)
		if err != nil {
			metrics.IngestFailures.Inc()
			if rep.Failed == nil {
				rep.Failed = map[string]string{}
			}
			rep.Failed[name] = err.Error()
			j.Log.WithError(err).WithField("file", name).Warn("generation file rejected")
			continue
		}
		j.seen[name] = loadedFile{modTime: info.ModTime(), records: n}
		rep.Files = append(rep.Files, name)
		rep.Generations += n
	}

	for _, name := range j.seenNames() {
		if present[name] {
			continue
		}
		if err := j.Grid.ReplaceSource(ctx, j.source(name), nil); err != nil {
			return rep, fmt.Errorf("drop %s: %w", name, err)
		}
		delete(j.seen, name)
		rep.Removed = append(rep.Removed, name)
	}

	if len(rep.Files) > 0 || len(rep.Failed) > 0 || len(rep.Removed) > 0 {
		j.Log.WithFields(logrus.Fields{
			"files":       len(rep.Files),
			"generations": rep.Generations,
			"removed":     len(rep.Removed),
			"failed":      len(rep.Failed),
		}).Info("ingest scan complete")
	}
	return rep, nil
}

// ingestFile loads name in full and swaps it in for the records it held
// before. Only the growth counts towards the ingested metric.
func (j *Job) ingestFile(ctx context.Context, name string, previous int) (int, error) {
	gens, err := grid.LoadGenerationsFile(filepath.Join(j.Dir, name))
	if err != nil {
		return 0, err
	}
	if err := j.Grid.ReplaceSource(ctx, j.source(name), gens); err != nil {
		return 0, err
	}
	if added := len(gens) - previous; added > 0 {
		metrics.GenerationsIngested.WithLabelValues(SourceFile).Add(float64(added))
	}
	return len(gens), nil
}

func (j *Job) source(name string) string {
	return SourceFile + ":" + filepath.Join(j.Dir, name)
}

func (j *Job) seenNames() []string {
	names := make([]string, 0, len(j.seen))
	for name := range j.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start registers RunOnce under schedule (standard cron syntax or a
// descriptor like "@every 1h") and starts the scheduler.
func (j *Job) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.Log.WithError(err).Error("ingest scan failed")
		}
	}); err != nil {
		return fmt.Errorf("register ingest job: %w", err)
	}
	j.cron = c
	c.Start()
	j.Log.WithFields(logrus.Fields{"dir": j.Dir, "schedule": schedule}).Info("ingest scheduler started")
	return nil
}

// Stop waits for a running scan to finish.
func (j *Job) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.Log.Info("ingest scheduler stopped")
}
