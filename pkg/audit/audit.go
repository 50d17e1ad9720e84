// Package audit checks the catalog and the uploads tree against each other.
// A failed half of a delete leaves either an orphaned record or an orphaned
// file; the checker makes those visible. Reconciliation is left to the
// administrator.
package audit

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Sam33128/Gita-pyqvault/pkg/catalog"
	"github.com/Sam33128/Gita-pyqvault/pkg/files"
)

// Report lists the inconsistencies found by one audit run.
type Report struct {
	CheckedAt       time.Time `json:"checked_at"`
	Records         int       `json:"records"`
	Files           int       `json:"files"`
	OrphanedRecords []string  `json:"orphaned_records,omitempty"` // record IDs whose file is missing
	OrphanedFiles   []string  `json:"orphaned_files,omitempty"`   // stored files no record references
}

// Consistent reports whether the run found no orphans.
func (r Report) Consistent() bool {
	return len(r.OrphanedRecords) == 0 && len(r.OrphanedFiles) == 0
}

// Checker compares the record store against the file repository.
type Checker struct {
	store *catalog.Store
	repo  *files.Repository
}

// NewChecker creates a checker over the given store and repository.
func NewChecker(store *catalog.Store, repo *files.Repository) *Checker {
	return &Checker{store: store, repo: repo}
}

// Run performs one consistency check.
func (c *Checker) Run() (Report, error) {
	report := Report{CheckedAt: time.Now()}

	referenced := make(map[string]string) // stored path -> record ID
	for _, p := range c.store.Load() {
		referenced[p.StoredPath] = p.ID
		report.Records++
		if !c.repo.Exists(p.StoredPath) {
			report.OrphanedRecords = append(report.OrphanedRecords, p.ID)
		}
	}

	err := c.repo.Walk(func(ref string) error {
		report.Files++
		if _, ok := referenced[ref]; !ok {
			report.OrphanedFiles = append(report.OrphanedFiles, ref)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to walk uploads: %w", err)
	}

	return report, nil
}

// Scheduler runs the checker on a cron schedule and logs the outcome.
type Scheduler struct {
	checker  *Checker
	schedule string
	cron     *cron.Cron
}

// NewScheduler creates a scheduler with a standard cron expression, e.g.
// "0 3 * * *" for a nightly run.
func NewScheduler(checker *Checker, schedule string) *Scheduler {
	return &Scheduler{checker: checker, schedule: schedule}
}

// Start registers the audit job and starts the cron runner.
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return fmt.Errorf("failed to schedule audit: %w", err)
	}
	s.cron.Start()
	log.Printf("[audit] consistency check scheduled: %s", s.schedule)
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runOnce() {
	report, err := s.checker.Run()
	if err != nil {
		log.Printf("[audit] consistency check failed: %v", err)
		return
	}
	if report.Consistent() {
		log.Printf("[audit] consistent: %d records, %d files", report.Records, report.Files)
		return
	}
	log.Printf("[audit] INCONSISTENT: %d orphaned record(s) %v, %d orphaned file(s) %v",
		len(report.OrphanedRecords), report.OrphanedRecords,
		len(report.OrphanedFiles), report.OrphanedFiles)
}
