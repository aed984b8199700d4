// Package backup keeps timestamped copies of the backend configuration on a
// cron schedule.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/robfig/cron/v3"

	"github.com/moyoez/upconfig/tool"
	"github.com/moyoez/upconfig/types"
)

const (
	filePrefix = "config-"
	fileSuffix = ".json"
	timeLayout = "20060102-150405"
)

// Source yields the tree to back up.
type Source interface {
	Config() *types.ConfigRoot
}

// Scheduler writes a backup of Source into Dir on every tick of Spec and
// keeps at most Keep files.
type Scheduler struct {
	dir  string
	keep int
	src  Source
	cron *cron.Cron
	now  func() time.Time
}

func NewScheduler(src Source, dir string, keep int) *Scheduler {
	if keep <= 0 {
		keep = 7
	}
	return &Scheduler{
		dir:  dir,
		keep: keep,
		src:  src,
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		now:  time.Now,
	}
}

// Start registers the backup job under spec (six fields, with seconds) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if path, err := s.RunOnce(); err != nil {
			tool.DefaultLogger.Errorf("[Backup] failed: %v", err)
		} else {
			tool.DefaultLogger.Infof("[Backup] written to %s", path)
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	s.cron.Start()
	tool.DefaultLogger.Infof("[Backup] scheduled %q into %s (keep %d)", spec, s.dir, s.keep)
	return nil
}

// Stop waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce writes one backup now and prunes old ones.
func (s *Scheduler) RunOnce() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare backup folder: %w", err)
	}
	data, err := sonic.ConfigStd.MarshalIndent(s.src.Config(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize config: %w", err)
	}
	path := filepath.Join(s.dir, filePrefix+s.now().Format(timeLayout)+fileSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := s.prune(); err != nil {
		tool.DefaultLogger.Warnf("[Backup] cleanup failed: %v", err)
	}
	return path, nil
}

// List returns existing backups, oldest first.
func (s *Scheduler) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	// timestamped names sort chronologically
	slices.Sort(files)
	return files, nil
}

func (s *Scheduler) prune() error {
	files, err := s.List()
	if err != nil {
		return err
	}
	for len(files) > s.keep {
		if err := os.Remove(files[0]); err != nil {
			return err
		}
		tool.DefaultLogger.Debugf("[Backup] removed %s", files[0])
		files = files[1:]
	}
	return nil
}
