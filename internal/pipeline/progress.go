package pipeline

// Stage identifies which part of the pipeline a ProgressEvent came
// from.
type Stage int

const (
	StageSampling Stage = iota
	StageQuantize
	StageRegion
	StageContour
	StageTriangulate
	StageExtrude
	StageSimplify
	StageValidate
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSampling:
		return "sampling"
	case StageQuantize:
		return "quantize"
	case StageRegion:
		return "region"
	case StageContour:
		return "contour"
	case StageTriangulate:
		return "triangulate"
	case StageExtrude:
		return "extrude"
	case StageSimplify:
		return "simplify"
	case StageValidate:
		return "validate"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ProgressEvent reports how far one stage has gotten.
type ProgressEvent struct {
	Stage    Stage
	Progress float64 // 0..1 within the stage
	Message  string
}

// ProgressSink receives progress events. Emit must not block for long;
// the pipeline calls it synchronously on its own goroutine between
// yield points, mirroring the teacher's time.Ticker-driven reporter but
// pushed by the work itself rather than polled on a timer.
type ProgressSink interface {
	Emit(ProgressEvent)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(ProgressEvent) {}

// sinkOrNop returns s if non-nil, else a NopSink so callers can pass a
// nil sink without a guard at every Emit site.
func sinkOrNop(s ProgressSink) ProgressSink {
	if s == nil {
		return NopSink{}
	}
	return s
}
