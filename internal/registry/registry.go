// Package registry locates the weights and label files to load. A configured
// model path may name a file or a training output directory.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"detectd/internal/common/fsutil"
)

// PreferredName is picked first when a directory holds several exports.
const PreferredName = "best.onnx"

// datasetFiles are label sources looked up next to the weights.
var datasetFiles = []string{"data.yaml", "data.yml", "labels.txt", "classes.txt"}

// Weights is a resolved model location.
type Weights struct {
	ModelPath  string
	LabelsPath string
}

// Candidate is one *.onnx file found by Scan.
type Candidate struct {
	Path    string
	ModTime int64
}

// Resolve turns the configured paths into concrete files. When modelPath is
// a directory the preferred export is chosen, falling back to the most
// recently modified *.onnx. An empty labelsPath is filled from a dataset file
// next to the weights when one exists.
func Resolve(modelPath, labelsPath string) (Weights, error) {
	p, err := fsutil.Resolve(modelPath)
	if err != nil {
		return Weights{}, err
	}
	fi, err := os.Stat(p)
	if err != nil {
		return Weights{}, fmt.Errorf("model file: %w", err)
	}
	if fi.IsDir() {
		cands, err := Scan(p)
		if err != nil {
			return Weights{}, err
		}
		if len(cands) == 0 {
			return Weights{}, fmt.Errorf("no .onnx files in %s", p)
		}
		p = pick(cands)
	}

	w := Weights{ModelPath: p}
	if labelsPath != "" {
		if w.LabelsPath, err = fsutil.Resolve(labelsPath); err != nil {
			return Weights{}, err
		}
		return w, nil
	}
	dir := filepath.Dir(p)
	for _, name := range datasetFiles {
		if lp := filepath.Join(dir, name); fsutil.PathExists(lp) {
			w.LabelsPath = lp
			break
		}
	}
	return w, nil
}

// Scan lists *.onnx files directly inside dir, newest first.
func Scan(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Candidate
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".onnx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Candidate{Path: filepath.Join(dir, e.Name()), ModTime: info.ModTime().UnixNano()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModTime != out[j].ModTime {
			return out[i].ModTime > out[j].ModTime
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func pick(cands []Candidate) string {
	for _, c := range cands {
		if strings.EqualFold(filepath.Base(c.Path), PreferredName) {
			return c.Path
		}
	}
	return cands[0].Path
}
