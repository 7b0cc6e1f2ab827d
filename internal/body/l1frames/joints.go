package l1frames

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// JointType names a skeletal joint supplied by the tracker.
type JointType int

// Joint types, in tracker order.
const (
	JointSpineBase JointType = iota
	JointSpineMid
	JointNeck
	JointHead
	JointShoulderLeft
	JointElbowLeft
	JointWristLeft
	JointHandLeft
	JointShoulderRight
	JointElbowRight
	JointWristRight
	JointHandRight
	JointHipLeft
	JointKneeLeft
	JointAnkleLeft
	JointFootLeft
	JointHipRight
	JointKneeRight
	JointAnkleRight
	JointFootRight
	JointSpineShoulder

	// JointCount is the number of joint types.
	JointCount
)

var jointNames = [JointCount]string{
	"spine_base", "spine_mid", "neck", "head",
	"shoulder_left", "elbow_left", "wrist_left", "hand_left",
	"shoulder_right", "elbow_right", "wrist_right", "hand_right",
	"hip_left", "knee_left", "ankle_left", "foot_left",
	"hip_right", "knee_right", "ankle_right", "foot_right",
	"spine_shoulder",
}

// String returns the snake_case joint name used in settings and recordings.
func (j JointType) String() string {
	if j < 0 || j >= JointCount {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJointType is the inverse of JointType.String.
func ParseJointType(name string) (JointType, error) {
	for i, n := range jointNames {
		if n == name {
			return JointType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// JointSource supplies tracked joint positions for a subject.
type JointSource interface {
	// JointPosition returns the joint already mapped into the depth image:
	// X and Y are depth-pixel coordinates and Z is the depth in sensor units.
	// ok is false when the joint is not tracked this frame.
	JointPosition(subject SubjectID, joint JointType) (pos r3.Vec, ok bool)
}
