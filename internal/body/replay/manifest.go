package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
)

// ManifestName is the session manifest file inside a session directory.
const ManifestName = "session.json"

// maxManifestSize bounds the manifest read into memory.
const maxManifestSize = 64 * 1024 * 1024

// Session is the on-disk description of a recording.
type Session struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Frames []FrameEntry `json:"frames"`
}

// FrameEntry names the images of one recorded frame and the bodies
// tracked in it. Paths are relative to the session directory.
type FrameEntry struct {
	TimestampNanos int64           `json:"timestamp_ns"`
	Label          string          `json:"label"`
	Depth          string          `json:"depth"`
	Bodies         map[string]Body `json:"bodies,omitempty"`
}

// Body is one tracked subject: its label byte in this frame and its joints
// as [x, y, depth] in depth-image pixels.
type Body struct {
	Label  uint8                 `json:"label"`
	Joints map[string][3]float64 `json:"joints,omitempty"`
}

// Validate checks dimensions, timestamps and names.
func (s *Session) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid session size %dx%d", s.Width, s.Height)
	}
	var prev int64
	for i, f := range s.Frames {
		if f.Label == "" || f.Depth == "" {
			return fmt.Errorf("frame %d: missing label or depth path", i)
		}
		if i > 0 && f.TimestampNanos <= prev {
			return fmt.Errorf("frame %d: timestamp %d not after %d", i, f.TimestampNanos, prev)
		}
		prev = f.TimestampNanos
		for id, b := range f.Bodies {
			if _, err := parseSubjectID(id); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			if b.Label == l1frames.NoBody {
				return fmt.Errorf("frame %d: body %s uses the background label", i, id)
			}
			for name := range b.Joints {
				if _, err := l1frames.ParseJointType(name); err != nil {
					return fmt.Errorf("frame %d: body %s: %w", i, id, err)
				}
			}
		}
	}
	return nil
}

// ReadSession loads and validates the manifest in dir.
func ReadSession(dir string) (*Session, error) {
	path := filepath.Join(filepath.Clean(dir), ManifestName)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat session manifest: %w", err)
	}
	if info.Size() > maxManifestSize {
		return nil, fmt.Errorf("session manifest too large: %d bytes (max %d)", info.Size(), maxManifestSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session manifest: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session manifest: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session manifest: %w", err)
	}
	return &s, nil
}

// WriteSession writes s as the manifest in dir.
func WriteSession(dir string, s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid session manifest: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write session manifest: %w", err)
	}
	return nil
}

func parseSubjectID(s string) (l1frames.SubjectID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject id %q", s)
	}
	return l1frames.SubjectID(v), nil
}

// FormatSubjectID is the manifest key for id.
func FormatSubjectID(id l1frames.SubjectID) string {
	return strconv.FormatUint(uint64(id), 10)
}
