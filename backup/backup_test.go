package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moyoez/upconfig/backend"
)

func TestRunOnceKeepsNewest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	a := backend.New(nil, "")
	a.NewUserConfig(100, "alice", nil, nil)

	s := NewScheduler(a, dir, 2)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var written []string
	for i := 0; i < 3; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return tick }
		path, err := s.RunOnce()
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		written = append(written, path)
	}

	files, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 backups, got %v", files)
	}
	if files[0] != written[1] || files[1] != written[2] {
		t.Errorf("expected newest backups kept, got %v", files)
	}
	if _, err := os.Stat(written[0]); !os.IsNotExist(err) {
		t.Error("oldest backup should be pruned")
	}

	data, err := os.ReadFile(files[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("backup is empty")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(backend.New(nil, ""), t.TempDir(), 1)
	if err := s.Start("not a schedule"); err == nil {
		t.Error("expected error for invalid spec")
	}
}
