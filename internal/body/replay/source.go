// Package replay plays back a recorded session directory as a frame source
// and joint source.
//
// A session directory holds session.json, one 8-bit grayscale PNG of body
// labels and one 16-bit grayscale PNG of depth samples per frame.
package replay

import (
	"fmt"
	"sort"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/security"
	"gonum.org/v1/gonum/spatial/r3"
)

type body struct {
	label  uint8
	joints [l1frames.JointCount]r3.Vec
	have   [l1frames.JointCount]bool
}

// Source replays a session one frame per Advance.
//
// Every Advance publishes freshly decoded buffers, so a frame returned by
// LatestFrame is never modified afterwards. Source is not safe for
// concurrent use.
type Source struct {
	dir     string
	session *Session

	next   int
	frame  *l1frames.Frame
	bodies map[l1frames.SubjectID]*body
}

// Open reads the manifest in dir. No frame is current until the first
// Advance.
func Open(dir string) (*Source, error) {
	s, err := ReadSession(dir)
	if err != nil {
		return nil, err
	}
	return &Source{dir: dir, session: s}, nil
}

// Len returns the number of recorded frames.
func (s *Source) Len() int {
	return len(s.session.Frames)
}

// Position returns the index of the current frame, or -1 before the first
// Advance.
func (s *Source) Position() int {
	return s.next - 1
}

// Session returns the parsed manifest.
func (s *Source) Session() *Session {
	return s.session
}

// Advance loads the next recorded frame. It returns false once the
// recording is exhausted, leaving the last frame current.
func (s *Source) Advance() (bool, error) {
	if s.next >= len(s.session.Frames) {
		return false, nil
	}
	entry := s.session.Frames[s.next]
	w, h := s.session.Width, s.session.Height

	labelPath, err := security.ResolveWithin(s.dir, entry.Label)
	if err != nil {
		return false, fmt.Errorf("frame %d labels: %w", s.next, err)
	}
	depthPath, err := security.ResolveWithin(s.dir, entry.Depth)
	if err != nil {
		return false, fmt.Errorf("frame %d depth: %w", s.next, err)
	}

	labels, err := ReadLabels(labelPath, w, h)
	if err != nil {
		return false, fmt.Errorf("frame %d labels: %w", s.next, err)
	}
	depth, err := ReadDepth(depthPath, w, h)
	if err != nil {
		return false, fmt.Errorf("frame %d depth: %w", s.next, err)
	}
	frame, err := l1frames.NewFrame(labels, depth, w, h, entry.TimestampNanos)
	if err != nil {
		return false, fmt.Errorf("frame %d: %w", s.next, err)
	}

	bodies := make(map[l1frames.SubjectID]*body, len(entry.Bodies))
	for key, b := range entry.Bodies {
		id, err := parseSubjectID(key)
		if err != nil {
			return false, err
		}
		nb := &body{label: b.Label}
		for name, p := range b.Joints {
			j, err := l1frames.ParseJointType(name)
			if err != nil {
				return false, err
			}
			nb.joints[j] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
			nb.have[j] = true
		}
		bodies[id] = nb
	}

	s.frame = frame
	s.bodies = bodies
	s.next++
	return true, nil
}

// Rewind restarts playback; the next Advance loads the first frame.
func (s *Source) Rewind() {
	s.next = 0
	s.frame = nil
	s.bodies = nil
}

// LatestFrame returns the current frame, or nil before the first Advance.
func (s *Source) LatestFrame() *l1frames.Frame {
	return s.frame
}

// SubjectLabel returns the label of subject in the current frame, or
// l1frames.NoBody when it is not tracked.
func (s *Source) SubjectLabel(subject l1frames.SubjectID) uint8 {
	if b, ok := s.bodies[subject]; ok {
		return b.label
	}
	return l1frames.NoBody
}

// JointPosition returns a joint of subject in the current frame.
func (s *Source) JointPosition(subject l1frames.SubjectID, joint l1frames.JointType) (r3.Vec, bool) {
	b, ok := s.bodies[subject]
	if !ok || joint < 0 || joint >= l1frames.JointCount || !b.have[joint] {
		return r3.Vec{}, false
	}
	return b.joints[joint], true
}

// Subjects returns every subject id in the recording, ascending.
func (s *Source) Subjects() []l1frames.SubjectID {
	seen := make(map[l1frames.SubjectID]bool)
	for _, f := range s.session.Frames {
		for key := range f.Bodies {
			if id, err := parseSubjectID(key); err == nil {
				seen[id] = true
			}
		}
	}
	ids := make([]l1frames.SubjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
