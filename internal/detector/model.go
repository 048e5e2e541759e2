package detector

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gopkg.in/yaml.v3"
)

// layout describes the tensors of a YOLO detection export: one NCHW image
// input and one [1, 4+classes, anchors] output, boxes first then class scores.
type layout struct {
	inputName  string
	outputName string
	width      int
	height     int
	channels   int
	anchors    int
}

func (l layout) numClasses() int { return l.channels - 4 }

func (l layout) inputLen() int { return 3 * l.width * l.height }

func (l layout) outputLen() int { return l.channels * l.anchors }

// anchorsFor returns the anchor count of a stride 8/16/32 head for the given
// input size.
func anchorsFor(width, height int) int {
	n := 0
	for _, s := range []int{8, 16, 32} {
		n += (width / s) * (height / s)
	}
	return n
}

// metadata is the subset of Ultralytics export metadata used here.
type metadata struct {
	names string
	imgsz string
}

func readMetadata(path string) (metadata, error) {
	var md metadata
	m, err := ort.GetModelMetadata(path)
	if err != nil {
		return md, errors.Wrap(err, "read model metadata")
	}
	defer m.Destroy()
	if v, ok, err := m.LookupCustomMetadataMap("names"); err == nil && ok {
		md.names = v
	}
	if v, ok, err := m.LookupCustomMetadataMap("imgsz"); err == nil && ok {
		md.imgsz = v
	}
	return md, nil
}

// inspectModel builds the tensor layout from the model file. Dynamic
// dimensions are resolved from imgsz metadata, then from fallbackSize, and the
// class count from the label table when the output is dynamic too.
func inspectModel(path string, md metadata, fallbackSize, labelCount int) (layout, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return layout{}, errors.Wrap(err, "read model inputs and outputs")
	}
	if len(inputs) != 1 {
		return layout{}, errors.Errorf("expected 1 model input, got %d", len(inputs))
	}
	if len(outputs) < 1 {
		return layout{}, errors.New("model has no outputs")
	}
	return resolveLayout(inputs[0].Name, []int64(inputs[0].Dimensions),
		outputs[0].Name, []int64(outputs[0].Dimensions), md, fallbackSize, labelCount)
}

func resolveLayout(inName string, inDims []int64, outName string, outDims []int64, md metadata, fallbackSize, labelCount int) (layout, error) {
	if len(inDims) != 4 {
		return layout{}, errors.Errorf("expected NCHW input, got shape %v", inDims)
	}
	if inDims[1] > 0 && inDims[1] != 3 {
		return layout{}, errors.Errorf("expected 3 input channels, got %d", inDims[1])
	}
	l := layout{inputName: inName, outputName: outName}
	h, w := int(inDims[2]), int(inDims[3])
	if h <= 0 || w <= 0 {
		h, w = parseImgsz(md.imgsz, fallbackSize)
	}
	l.width, l.height = w, h

	if len(outDims) != 3 {
		return layout{}, errors.Errorf("expected [1, 4+classes, anchors] output, got shape %v", outDims)
	}
	l.channels = int(outDims[1])
	if l.channels <= 0 {
		if labelCount <= 0 {
			return layout{}, errors.New("output class count is dynamic and no labels are available")
		}
		l.channels = 4 + labelCount
	}
	if l.channels <= 4 {
		return layout{}, errors.Errorf("output has %d channels, need at least 5", l.channels)
	}
	l.anchors = int(outDims[2])
	if l.anchors <= 0 {
		l.anchors = anchorsFor(w, h)
	}
	return l, nil
}

// parseImgsz reads "[640, 640]" or "640" style metadata as (height, width).
func parseImgsz(s string, fallback int) (int, int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, fallback
	}
	var pair []int
	if err := yaml.Unmarshal([]byte(s), &pair); err == nil && len(pair) == 2 && pair[0] > 0 && pair[1] > 0 {
		return pair[0], pair[1]
	}
	var one int
	if err := yaml.Unmarshal([]byte(s), &one); err == nil && one > 0 {
		return one, one
	}
	return fallback, fallback
}

// parseNames decodes the Ultralytics names metadata, a Python dict literal such
// as {0: 'person', 1: 'bicycle'}. That literal is also a YAML flow mapping.
func parseNames(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		return nil, errors.Wrap(err, "parse names")
	}
	return namesFromNode(&node)
}

func namesFromNode(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return nil, errors.Wrap(err, "decode names list")
		}
		return list, nil
	case yaml.MappingNode:
		var byIndex map[int]string
		if err := node.Decode(&byIndex); err != nil {
			return nil, errors.Wrap(err, "decode names map")
		}
		n := 0
		for i := range byIndex {
			if i < 0 {
				return nil, errors.Errorf("negative class index %d", i)
			}
			if i+1 > n {
				n = i + 1
			}
		}
		out := make([]string, n)
		for i := range out {
			if v, ok := byIndex[i]; ok {
				out[i] = v
			}
		}
		return out, nil
	default:
		return nil, errors.New("names must be a list or an index map")
	}
}

// readLabelsFile loads a label table from a dataset yaml (names key) or a
// plain text file with one label per line.
func readLabelsFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read labels file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc struct {
			Names yaml.Node `yaml:"names"`
		}
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, errors.Wrap(err, "parse labels yaml")
		}
		if doc.Names.Kind == 0 {
			return nil, errors.New("labels yaml has no names key")
		}
		return namesFromNode(&doc.Names)
	default:
		var out []string
		sc := bufio.NewScanner(bytes.NewReader(b))
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				out = append(out, line)
			}
		}
		return out, sc.Err()
	}
}

// completeLabels sizes the table to n entries, naming gaps class_<i>.
func completeLabels(labels []string, n int) []string {
	if n <= 0 {
		n = len(labels)
	}
	out := make([]string, n)
	for i := range out {
		if i < len(labels) && labels[i] != "" {
			out[i] = labels[i]
			continue
		}
		out[i] = fmt.Sprintf("class_%d", i)
	}
	return out
}
