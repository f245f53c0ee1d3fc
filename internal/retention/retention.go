package retention

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
)

// Policy binds a sweep target to an age threshold in days.
type Policy struct {
	Target Target
	Days   int
}

// Service runs retention sweeps over registered targets and the audit log.
type Service struct {
	policies []Policy

	auditPath string
	auditDays int

	now func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithAuditLog registers the audit log file for line-level pruning.
func WithAuditLog(path string, days int) Option {
	return func(s *Service) {
		s.auditPath = path
		s.auditDays = days
	}
}

func NewService(policies []Policy, opts ...Option) *Service {
	s := &Service{policies: policies, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep applies every policy once and prunes the audit log. Each target is
// swept independently so one failure does not abort the rest; the first
// error is returned after all targets ran.
func (s *Service) Sweep(ctx context.Context) (map[string]int, error) {
	now := s.now().UTC()
	archived := make(map[string]int)
	var firstErr error

	for _, p := range s.policies {
		if p.Days <= 0 || p.Target == nil {
			continue
		}
		cutoff := now.Add(-time.Duration(p.Days) * 24 * time.Hour)
		n, err := p.Target.ApplyRetention(ctx, cutoff)
		if err != nil {
			obs.Error("retention_target_failed", map[string]any{
				"target": p.Target.Name(),
				"error":  err.Error(),
			})
			if firstErr == nil {
				firstErr = fmt.Errorf("sweep %s: %w", p.Target.Name(), err)
			}
			continue
		}
		archived[p.Target.Name()] = n
	}

	if s.auditPath != "" && s.auditDays > 0 {
		cutoff := now.Add(-time.Duration(s.auditDays) * 24 * time.Hour)
		n, err := s.pruneAuditLog(cutoff)
		if err != nil {
			obs.Error("retention_target_failed", map[string]any{
				"target": "audit-log",
				"error":  err.Error(),
			})
			if firstErr == nil {
				firstErr = fmt.Errorf("prune audit log: %w", err)
			}
		} else {
			archived["audit-log"] = n
		}
	}

	obs.ObserveRetentionSweep(archived)
	return archived, firstErr
}

// pruneAuditLog rewrites the audit log keeping entries newer than cutoff.
// Lines that do not parse as audit entries are kept verbatim; pruned lines
// are appended to a timestamped archive next to the log.
func (s *Service) pruneAuditLog(cutoff time.Time) (int, error) {
	f, err := os.Open(s.auditPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var kept, pruned [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		var probe struct {
			Timestamp time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(line, &probe); err != nil || probe.Timestamp.IsZero() {
			kept = append(kept, line)
			continue
		}
		if probe.Timestamp.Before(cutoff) {
			pruned = append(pruned, line)
			continue
		}
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if len(pruned) == 0 {
		return 0, nil
	}

	if err := s.archiveAuditLines(pruned); err != nil {
		return 0, err
	}
	if err := rewriteLines(s.auditPath, kept); err != nil {
		return 0, err
	}
	return len(pruned), nil
}

func (s *Service) archiveAuditLines(lines [][]byte) error {
	dir := filepath.Dir(s.auditPath)
	name := fmt.Sprintf("audit-%s.jsonl", s.now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, "archive", name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func rewriteLines(path string, lines [][]byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".audit-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	for _, line := range lines {
		if _, err := tmp.Write(append(line, '\n')); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
