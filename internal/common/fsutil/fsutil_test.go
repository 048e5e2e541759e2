package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	return home
}

func TestExpandHome(t *testing.T) {
	home := setHome(t)
	if got, err := ExpandHome("/models/best.onnx"); err != nil || got != "/models/best.onnx" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome("~"); err != nil || got != home {
		t.Fatalf("expected %q, got %q err=%v", home, got, err)
	}
	exp, err := ExpandHome("~/weights")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "weights" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestResolve(t *testing.T) {
	home := setHome(t)
	if got, err := Resolve(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	got, err := Resolve("~/best.onnx")
	if err != nil || got != filepath.Join(home, "best.onnx") {
		t.Fatalf("got %q err=%v", got, err)
	}
	rel, err := Resolve("best.onnx")
	if err != nil || !filepath.IsAbs(rel) {
		t.Fatalf("expected absolute path, got %q err=%v", rel, err)
	}
}

func TestPathExistsAndFirstExisting(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "libonnxruntime.so")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !PathExists(f) {
		t.Fatalf("expected %s to exist", f)
	}
	missing := filepath.Join(dir, "nope.so")
	if PathExists(missing) {
		t.Fatalf("expected %s to be missing", missing)
	}
	if got, ok := FirstExisting("", missing, f); !ok || got != f {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := FirstExisting(missing); ok {
		t.Fatal("expected no match")
	}
}
