package detector

import "sort"

// Box is one detection in source image pixels.
type Box struct {
	ClassID    int
	Confidence float32
	// XYXY is [x_min, y_min, x_max, y_max].
	XYXY [4]float32
}

// decodeOutput turns a channel-major [4+classes, anchors] output into boxes
// whose best class score reaches confThreshold.
func decodeOutput(out []float32, l layout, g geometry, confThreshold float32) []Box {
	a := l.anchors
	nc := l.numClasses()
	if len(out) < l.outputLen() {
		return nil
	}
	var boxes []Box
	for i := 0; i < a; i++ {
		best, score := 0, out[4*a+i]
		for c := 1; c < nc; c++ {
			if s := out[(4+c)*a+i]; s > score {
				best, score = c, s
			}
		}
		if score < confThreshold {
			continue
		}
		xyxy := g.toSource(out[i], out[a+i], out[2*a+i], out[3*a+i])
		if xyxy[2] <= xyxy[0] || xyxy[3] <= xyxy[1] {
			continue
		}
		boxes = append(boxes, Box{ClassID: best, Confidence: score, XYXY: xyxy})
	}
	return boxes
}

// nms runs class-aware greedy non-maximum suppression and keeps at most
// maxDet boxes, highest confidence first.
func nms(boxes []Box, iouThreshold float32, maxDet int) []Box {
	if len(boxes) == 0 {
		return nil
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Confidence > boxes[j].Confidence
	})
	kept := make([]Box, 0, min(len(boxes), maxDet))
	suppressed := make([]bool, len(boxes))
	for i := range boxes {
		if suppressed[i] {
			continue
		}
		kept = append(kept, boxes[i])
		if len(kept) == maxDet {
			break
		}
		for j := i + 1; j < len(boxes); j++ {
			if suppressed[j] || boxes[j].ClassID != boxes[i].ClassID {
				continue
			}
			if iou(boxes[i].XYXY, boxes[j].XYXY) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

func iou(a, b [4]float32) float32 {
	ix1, iy1 := max(a[0], b[0]), max(a[1], b[1])
	ix2, iy2 := min(a[2], b[2]), min(a[3], b[3])
	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := (a[2]-a[0])*(a[3]-a[1]) + (b[2]-b[0])*(b[3]-b[1]) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
