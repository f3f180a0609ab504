package checklist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

var (
	// ErrFileRequired indicates an export request without a checklist file.
	ErrFileRequired = errors.New("checklist: file is required")
	// ErrRootRequired indicates the service was built without a checklist root.
	ErrRootRequired = errors.New("checklist: root directory is required")
)

// Service reads checklists from a root directory and writes reports.
type Service struct {
	root   string
	fsys   fs.FS
	logger interfaces.Logger
	now    func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithFS overrides the filesystem checklists are read from.
func WithFS(fsys fs.FS) ServiceOption {
	return func(s *Service) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for report dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a checklist service rooted at root.
func NewService(root string, opts ...ServiceOption) (*Service, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrRootRequired
	}
	s := &Service{
		root:   root,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(root)
	}
	return s, nil
}

// List returns the manifest entries.
func (s *Service) List(ctx context.Context) ([]ManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("checklist: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Load reads and normalises one checklist file.
func (s *Service) Load(ctx context.Context, file string) (List, error) {
	if err := ctx.Err(); err != nil {
		return List{}, err
	}
	if strings.TrimSpace(file) == "" {
		return List{}, ErrFileRequired
	}
	resolved := ResolveFile(s.root, file)
	data, err := fs.ReadFile(s.fsys, resolved)
	if err != nil {
		return List{}, fmt.Errorf("checklist: read %s: %w", resolved, err)
	}
	list, err := Parse(data)
	if err != nil {
		return List{}, fmt.Errorf("checklist: %s: %w", resolved, err)
	}
	s.logger.Debug("checklist.loaded", "file", resolved, "sections", len(list.Sections), "items", list.ItemCount())
	return list, nil
}

// ExportRequest describes a report export.
type ExportRequest struct {
	File      string
	Answers   Answers
	Format    Format
	OutputDir string
	DryRun    bool
}

// ExportResult reports where a report was written.
type ExportResult struct {
	Report Report
	Path   string
	Bytes  int
}

// Export loads the checklist, merges answers, validates and writes the report.
// Validation failures are returned before anything is written.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	list, err := s.Load(ctx, req.File)
	if err != nil {
		return nil, err
	}

	report := Harvest(list, req.File, req.Answers, s.now())
	if err := report.Validate(); err != nil {
		s.logger.Warn("checklist.export.invalid", "file", req.File, "error", err)
		return nil, err
	}

	payload, err := Export(report, req.Format)
	if err != nil {
		return nil, err
	}

	target := filepath.Join(req.OutputDir, FileName(report, req.Format))
	result := &ExportResult{Report: report, Path: target, Bytes: len(payload)}
	if req.DryRun {
		return result, nil
	}

	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("checklist: create output dir: %w", err)
		}
	}
	if err := atomic.WriteFile(target, bytes.NewReader(payload)); err != nil {
		return nil, fmt.Errorf("checklist: write %s: %w", target, err)
	}
	s.logger.Info("checklist.export.completed", "file", req.File, "format", string(req.Format), "path", target)
	return result, nil
}

// LoadAnswers decodes an answers file.
func LoadAnswers(path string) (Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Answers{}, fmt.Errorf("checklist: read answers: %w", err)
	}
	var answers Answers
	if err := json.Unmarshal(data, &answers); err != nil {
		return Answers{}, fmt.Errorf("checklist: decode answers: %w", err)
	}
	return answers, nil
}
