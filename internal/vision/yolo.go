package vision

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
	ort "github.com/yalue/onnxruntime_go"
)

// Compile-time interface check.
var _ domain.Detector = (*YOLO)(nil)

// YOLOConfig holds the paths and tuning knobs for the ONNX detector.
type YOLOConfig struct {
	// Model paths (required).
	ModelPath  string // e.g. "models/yolov3-tiny.onnx"
	LabelsPath string // e.g. "models/coco.names", one class name per line
	OnnxLib    string // e.g. "bin/libonnxruntime.so"

	// Detection tuning.
	ConfidenceThreshold float64 // min class score to keep (default 0.3)
	NMSThreshold        float64 // IoU above which boxes are suppressed (default 0.4)
	InputSize           int     // square network input (default 416)

	// Preprocessing.
	Alpha float64 // contrast (default 1.2)
	Beta  int     // brightness (default 10)
}

func (c *YOLOConfig) defaults() {
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.3
	}
	if c.NMSThreshold <= 0 {
		c.NMSThreshold = 0.4
	}
	if c.InputSize <= 0 {
		c.InputSize = 416
	}
	if c.Alpha <= 0 {
		c.Alpha = DefaultAlpha
	}
	if c.Beta == 0 {
		c.Beta = DefaultBeta
	}
}

// ortInit guards the process-wide ONNX Runtime environment.
var ortInit sync.Once

// YOLO runs a YOLO-family ONNX model behind the Detector boundary. Any
// environment, session, or inference failure is treated as a broken
// backend and wrapped with domain.ErrDetectorBackend, so the detection
// loop stops calling while the rest of the system keeps going.
type YOLO struct {
	cfg     YOLOConfig
	labels  []string
	session *ort.DynamicAdvancedSession
	inName  string
	outName string
	log     *logger.Logger
}

// NewYOLO loads the class names and opens an inference session.
func NewYOLO(cfg YOLOConfig, log *logger.Logger) (*YOLO, error) {
	cfg.defaults()

	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("loading class names: %w", err)
	}

	var initErr error
	ortInit.Do(func() {
		if cfg.OnnxLib != "" {
			ort.SetSharedLibraryPath(cfg.OnnxLib)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("ONNX init: %w: %v", domain.ErrDetectorBackend, initErr)
	}

	inInfo, outInfo, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("inspecting model %s: %w: %v", cfg.ModelPath, domain.ErrDetectorBackend, err)
	}
	if len(inInfo) == 0 || len(outInfo) == 0 {
		return nil, fmt.Errorf("model %s: %w: no graph inputs/outputs", cfg.ModelPath, domain.ErrDetectorBackend)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{inInfo[0].Name}, []string{outInfo[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w: %v", domain.ErrDetectorBackend, err)
	}

	log.Info("vision: YOLO detector ready (model=%s, classes=%d, input=%dx%d)",
		cfg.ModelPath, len(labels), cfg.InputSize, cfg.InputSize)

	return &YOLO{
		cfg:     cfg,
		labels:  labels,
		session: session,
		inName:  inInfo[0].Name,
		outName: outInfo[0].Name,
		log:     log,
	}, nil
}

// Close releases the inference session.
func (y *YOLO) Close() {
	if y.session != nil {
		y.session.Destroy()
	}
}

// Detect runs one frame through the network and returns the decoded,
// NMS-filtered detections in frame pixel coordinates.
func (y *YOLO) Detect(ctx context.Context, frame image.Image) ([]domain.Detection, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	adjusted := Adjust(frame, y.cfg.Alpha, y.cfg.Beta)
	blob := resizeRGB(adjusted, y.cfg.InputSize)

	input, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(y.cfg.InputSize), int64(y.cfg.InputSize)),
		blob,
	)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w: %v", domain.ErrDetectorBackend, err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := y.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference: %w: %v", domain.ErrDetectorBackend, err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("inference: %w: unexpected output type", domain.ErrDetectorBackend)
	}
	defer out.Destroy()

	b := frame.Bounds()
	dets := decodeRows(out.GetData(), y.labels, b.Dx(), b.Dy(), y.cfg.ConfidenceThreshold)
	dets = suppress(dets, y.cfg.NMSThreshold)

	y.log.Debug("vision: %d detections after NMS", len(dets))
	return dets, nil
}

// decodeRows turns raw network output into detections. Rows are
// [cx, cy, w, h, objectness, class scores…] with box coordinates
// normalized to the input; they are scaled back to frame pixels here.
// The per-class score decides both the label (argmax) and whether the
// row clears the confidence threshold.
func decodeRows(data []float32, labels []string, frameW, frameH int, confThreshold float64) []domain.Detection {
	stride := 5 + len(labels)
	if stride <= 5 || len(data) < stride {
		return nil
	}

	var dets []domain.Detection
	for off := 0; off+stride <= len(data); off += stride {
		scores := data[off+5 : off+stride]
		classID := 0
		best := scores[0]
		for i, s := range scores {
			if s > best {
				best = s
				classID = i
			}
		}
		if float64(best) <= confThreshold {
			continue
		}

		cx := float64(data[off]) * float64(frameW)
		cy := float64(data[off+1]) * float64(frameH)
		w := float64(data[off+2]) * float64(frameW)
		h := float64(data[off+3]) * float64(frameH)

		dets = append(dets, domain.Detection{
			Label:      labels[classID],
			Confidence: float64(best),
			Box: domain.Box{
				X: int(cx - w/2),
				Y: int(cy - h/2),
				W: int(w),
				H: int(h),
			},
		})
	}
	return dets
}

// suppress applies greedy non-maximum suppression across all classes:
// boxes are taken in descending confidence order, and any remaining box
// overlapping a kept one above the IoU threshold is discarded.
func suppress(dets []domain.Detection, iouThreshold float64) []domain.Detection {
	if len(dets) <= 1 {
		return dets
	}

	sorted := make([]domain.Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	var kept []domain.Detection
	for _, d := range sorted {
		overlaps := false
		for _, k := range kept {
			if iou(d.Box, k.Box) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, d)
		}
	}
	return kept
}

// iou returns the intersection-over-union of two boxes.
func iou(a, b domain.Box) float64 {
	inter := a.Rect().Intersect(b.Rect())
	if inter.Empty() {
		return 0
	}
	interArea := float64(inter.Dx() * inter.Dy())
	union := float64(a.W*a.H+b.W*b.H) - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

// loadLabels reads one class name per line.
func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			labels = append(labels, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%s contains no class names", path)
	}
	return labels, nil
}
