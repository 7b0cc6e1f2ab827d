package l1frames

// Admission is the frame gate's verdict for one tick.
type Admission string

const (
	// AdmitOpen means the tick has a new frame and a tracked subject.
	AdmitOpen Admission = "open"
	// AdmitStale means the frame was already processed on an earlier tick.
	AdmitStale Admission = "stale_frame"
	// AdmitNoSubject means the subject has no label in this frame.
	AdmitNoSubject Admission = "no_subject"
	// AdmitNoFrame means no frame has been published yet.
	AdmitNoFrame Admission = "no_frame"
)

// Gate deduplicates ticks against frame generations. It remembers only the
// timestamp of the last frame it admitted.
type Gate struct {
	lastTimestamp int64
	primed        bool
}

// Admit decides whether frame should be measured for a subject carrying
// label. The frame timestamp is recorded as the new baseline only when the
// frame is admitted, so a subject that is missing now is retried against the
// same frame on the next tick.
func (g *Gate) Admit(frame *Frame, label uint8) Admission {
	if frame == nil {
		return AdmitNoFrame
	}
	if g.primed && frame.TimestampNanos == g.lastTimestamp {
		return AdmitStale
	}
	if label == NoBody {
		debugf("gate: no subject label in frame ts=%d", frame.TimestampNanos)
		return AdmitNoSubject
	}
	g.lastTimestamp = frame.TimestampNanos
	g.primed = true
	return AdmitOpen
}

// LastTimestamp returns the timestamp of the last admitted frame and whether
// any frame has been admitted.
func (g *Gate) LastTimestamp() (int64, bool) {
	return g.lastTimestamp, g.primed
}

// Reset forgets the last admitted frame.
func (g *Gate) Reset() {
	g.lastTimestamp = 0
	g.primed = false
}
