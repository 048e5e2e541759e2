package detector

import (
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"detectd/internal/common/fsutil"
)

// DefaultLibraryPath returns the onnxruntime shared library location for the
// current platform, relative to the working directory.
func DefaultLibraryPath() string {
	dir := "third_party"
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(dir, "onnxruntime.dll")
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return filepath.Join(dir, "onnxruntime_arm64.dylib")
		}
		return filepath.Join(dir, "onnxruntime.dylib")
	default:
		if runtime.GOARCH == "arm64" {
			return filepath.Join(dir, "onnxruntime_arm64.so")
		}
		return filepath.Join(dir, "onnxruntime.so")
	}
}

// InitEnvironment loads the onnxruntime shared library and initializes the
// process-wide environment. It is a no-op when already initialized.
func InitEnvironment(libPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	candidates := []string{libPath}
	if libPath == "" {
		candidates = []string{DefaultLibraryPath(), "/usr/lib/libonnxruntime.so", "/usr/local/lib/libonnxruntime.so"}
	}
	p, ok := fsutil.FirstExisting(candidates...)
	if !ok {
		return errors.Errorf("onnxruntime library not found (tried %v)", candidates)
	}
	ort.SetSharedLibraryPath(p)
	// Keep the runtime quiet; per-node verbose output is never useful here.
	_ = ort.SetEnvironmentLogLevel(ort.LoggingLevelWarning)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "initialize onnxruntime environment")
	}
	return nil
}

// DestroyEnvironment tears down the onnxruntime environment.
func DestroyEnvironment() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}
