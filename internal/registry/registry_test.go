package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	mt := time.Now().Add(-age)
	if err := os.Chtimes(p, mt, mt); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return p
}

func TestScan_FiltersAndOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "old.onnx", 2*time.Hour)
	touch(t, dir, "new.ONNX", time.Minute)
	touch(t, dir, "best.pt", 0)
	touch(t, dir, "notes.txt", 0)
	if err := os.Mkdir(filepath.Join(dir, "sub.onnx"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if filepath.Base(got[0].Path) != "new.ONNX" || filepath.Base(got[1].Path) != "old.onnx" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	p := touch(t, dir, "model.onnx", 0)
	w, err := Resolve(p, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.ModelPath != p || w.LabelsPath != "" {
		t.Fatalf("unexpected: %+v", w)
	}
}

func TestResolve_DirectoryPrefersBest(t *testing.T) {
	dir := t.TempDir()
	best := touch(t, dir, "best.onnx", time.Hour)
	touch(t, dir, "last.onnx", 0)
	data := touch(t, dir, "data.yaml", 0)

	w, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.ModelPath != best {
		t.Fatalf("expected %s, got %s", best, w.ModelPath)
	}
	if w.LabelsPath != data {
		t.Fatalf("expected labels %s, got %s", data, w.LabelsPath)
	}
}

func TestResolve_DirectoryFallsBackToNewest(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.onnx", time.Hour)
	b := touch(t, dir, "b.onnx", 0)
	w, err := Resolve(dir, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.ModelPath != b {
		t.Fatalf("expected %s, got %s", b, w.ModelPath)
	}
}

func TestResolve_ExplicitLabelsWin(t *testing.T) {
	dir := t.TempDir()
	p := touch(t, dir, "best.onnx", 0)
	touch(t, dir, "data.yaml", 0)
	w, err := Resolve(p, "/etc/detectd/labels.txt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.LabelsPath != "/etc/detectd/labels.txt" {
		t.Fatalf("labels=%s", w.LabelsPath)
	}
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(filepath.Join(dir, "missing.onnx"), ""); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Resolve(dir, ""); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}
