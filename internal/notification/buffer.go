package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"ticketsale/internal/domain/sales"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

const failedDirName = "failed"

var ErrBufferRecordNotFound = errors.New("buffer record not found")

// Record is the on-disk form of a buffered job.
type Record struct {
	EmailType     JobType    `json:"emailType"`
	Data          Job        `json:"data"`
	Attempts      int        `json:"attempts"`
	BufferRetries int        `json:"bufferRetries"`
	CreatedAt     time.Time  `json:"createdAt"`
	NextRetryAt   time.Time  `json:"nextRetryAt"`
	LastError     string     `json:"lastError,omitempty"`
	FailedAt      *time.Time `json:"failedAt,omitempty"`
}

// fileName keys a record by creation time, type and attempt count.
func (r Record) fileName() string {
	return fmt.Sprintf("%d-%s-%d.json", r.CreatedAt.UnixMilli(), r.EmailType, r.Attempts)
}

type Entry struct {
	Name string `json:"name"`
	Record
}

type BufferStats struct {
	Pending int `json:"pending"`
	Due     int `json:"due"`
	Failed  int `json:"failed"`
}

type SweepReport struct {
	Due         int `json:"due"`
	Delivered   int `json:"delivered"`
	Rescheduled int `json:"rescheduled"`
	Parked      int `json:"parked"`
}

// FileBuffer stores one JSON file per job in dir. Records whose schedule is
// exhausted are moved to dir/failed and never retried automatically.
//
// mu guards the directory and is never held across a delivery. retryMu keeps
// sweeps and manual retries from delivering the same record twice.
type FileBuffer struct {
	mu        sync.Mutex
	retryMu   sync.Mutex
	dir       string
	failedDir string
	deliverer Deliverer
	now       func() time.Time
}

func NewFileBuffer(dir string, deliverer Deliverer) (*FileBuffer, error) {
	if deliverer == nil {
		return nil, errors.New("missing deliverer")
	}

	failedDir := filepath.Join(dir, failedDirName)
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create buffer directory %s: %w", dir, err)
	}

	return &FileBuffer{
		dir:       dir,
		failedDir: failedDir,
		deliverer: deliverer,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (b *FileBuffer) WithClock(now func() time.Time) *FileBuffer {
	b.now = now
	return b
}

func (b *FileBuffer) Add(job Job, cause error) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	delay, _ := BufferDelay(0)
	rec := Record{
		EmailType:   job.Type,
		Data:        job,
		Attempts:    job.Attempts,
		CreatedAt:   now,
		NextRetryAt: now.Add(delay),
	}
	if cause != nil {
		rec.LastError = cause.Error()
	}

	for b.exists(filepath.Join(b.dir, rec.fileName())) {
		rec.CreatedAt = rec.CreatedAt.Add(time.Millisecond)
	}

	name := rec.fileName()
	if err := writeRecord(filepath.Join(b.dir, name), rec); err != nil {
		return "", err
	}
	b.updateGauges()

	return name, nil
}

// Sweep retries every record whose nextRetryAt has passed. It always runs over
// the whole directory; ctx only bounds the individual deliveries. Add is not
// blocked while a delivery is in flight.
func (b *FileBuffer) Sweep(ctx context.Context) (SweepReport, error) {
	b.retryMu.Lock()
	defer b.retryMu.Unlock()
	defer b.updateGauges()

	var report SweepReport

	b.mu.Lock()
	entries, err := readEntries(b.dir)
	b.mu.Unlock()
	if err != nil {
		return report, err
	}

	for _, entry := range entries {
		if entry.NextRetryAt.After(b.now()) {
			continue
		}
		report.Due++

		logger := log.FromContext(ctx).
			WithField("buffer_file", entry.Name).
			WithField("type", entry.EmailType).
			WithField("reference", entry.Data.Reference())

		deliverErr := b.deliverer.Deliver(ctx, entry.Data)

		switch b.settle(entry, deliverErr) {
		case outcomeDelivered:
			report.Delivered++
		case outcomeParked:
			logger.WithError(deliverErr).WithField("attempts", entry.Attempts+1).Error("Notification permanently failed")
			report.Parked++
		case outcomeRescheduled:
			logger.WithError(deliverErr).Warn("Buffered notification failed again")
			report.Rescheduled++
		default:
			logger.WithError(deliverErr).Error("Failed to update buffer record")
		}
	}

	return report, nil
}

// settle records the result of delivering entry and returns the outcome label,
// or "" when the file could not be updated.
func (b *FileBuffer) settle(entry Entry, deliverErr error) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := filepath.Join(b.dir, entry.Name)
	if deliverErr == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return ""
		}
		jobsTotal.WithLabelValues(string(entry.EmailType), outcomeDelivered).Inc()
		return outcomeDelivered
	}

	now := b.now()
	rec := entry.Record
	rec.Attempts++
	rec.BufferRetries++
	rec.Data.Attempts = rec.Attempts
	rec.LastError = deliverErr.Error()

	delay, ok := BufferDelay(rec.BufferRetries)
	if !ok || !sales.IsTransient(deliverErr) {
		rec.FailedAt = &now
		if err := b.move(path, b.failedDir, rec); err != nil {
			return ""
		}
		jobsTotal.WithLabelValues(string(entry.EmailType), outcomeParked).Inc()
		return outcomeParked
	}

	rec.NextRetryAt = now.Add(delay)
	if err := b.move(path, b.dir, rec); err != nil {
		return ""
	}
	jobsTotal.WithLabelValues(string(entry.EmailType), outcomeRescheduled).Inc()
	return outcomeRescheduled
}

// RetryFailed delivers a parked record immediately. On success it is deleted,
// otherwise it stays parked with the new error.
func (b *FileBuffer) RetryFailed(ctx context.Context, name string) error {
	b.retryMu.Lock()
	defer b.retryMu.Unlock()
	defer b.updateGauges()

	if name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("%w: %s", ErrBufferRecordNotFound, name)
	}

	path := filepath.Join(b.failedDir, name)
	b.mu.Lock()
	rec, err := readRecord(path)
	b.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrBufferRecordNotFound, name)
	}
	if err != nil {
		return err
	}

	deliverErr := b.deliverer.Deliver(ctx, rec.Data)

	b.mu.Lock()
	defer b.mu.Unlock()
	if deliverErr == nil {
		return os.Remove(path)
	}

	rec.Attempts++
	rec.Data.Attempts = rec.Attempts
	rec.LastError = deliverErr.Error()
	now := b.now()
	rec.FailedAt = &now
	if err := b.move(path, b.failedDir, rec); err != nil {
		return errors.Join(deliverErr, err)
	}
	return deliverErr
}

func (b *FileBuffer) List() ([]Entry, error) {
	return readEntries(b.dir)
}

func (b *FileBuffer) Failed() ([]Entry, error) {
	return readEntries(b.failedDir)
}

func (b *FileBuffer) Stats() (BufferStats, error) {
	pending, err := b.List()
	if err != nil {
		return BufferStats{}, err
	}
	failed, err := b.Failed()
	if err != nil {
		return BufferStats{}, err
	}

	stats := BufferStats{Pending: len(pending), Failed: len(failed)}
	now := b.now()
	for _, e := range pending {
		if !e.NextRetryAt.After(now) {
			stats.Due++
		}
	}
	return stats, nil
}

// move writes rec under its current file name in dir and removes oldPath.
func (b *FileBuffer) move(oldPath, dir string, rec Record) error {
	newPath := filepath.Join(dir, rec.fileName())
	if err := writeRecord(newPath, rec); err != nil {
		return err
	}
	if newPath == oldPath {
		return nil
	}
	if err := os.Remove(oldPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", oldPath, err)
	}
	return nil
}

func (b *FileBuffer) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (b *FileBuffer) updateGauges() {
	if pending, err := readEntries(b.dir); err == nil {
		bufferSize.WithLabelValues("pending").Set(float64(len(pending)))
	}
	if failed, err := readEntries(b.failedDir); err == nil {
		bufferSize.WithLabelValues("failed").Set(float64(len(failed)))
	}
}

func writeRecord(path string, rec Record) error {
	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal buffer record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write buffer record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit buffer record: %w", err)
	}
	return nil
}

func readRecord(path string) (Record, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal buffer record %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// readEntries lists the records of dir, oldest first. Unreadable files are skipped.
func readEntries(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read buffer directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		rec, err := readRecord(filepath.Join(dir, f.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: f.Name(), Record: rec})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
