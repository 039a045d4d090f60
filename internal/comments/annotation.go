package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"reelreview/internal/geometry"
	"reelreview/internal/services"
)

// Annotation is the spatial payload of a comment. The set of variants is
// closed; each variant reports the comment type it belongs to.
type Annotation interface {
	Type() Type
	annotation()
}

// PointAnnotation marks a position in percent space.
type PointAnnotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RegionAnnotation marks a box in percent space.
type RegionAnnotation struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DrawingAnnotation carries freehand strokes in pixel space.
type DrawingAnnotation struct {
	Drawing geometry.DrawingData `json:"drawing"`
}

// TextAnnotation optionally anchors a text comment to a percent-space point.
type TextAnnotation struct {
	Anchor *geometry.Point `json:"anchor,omitempty"`
}

// ArrowAnnotation points from tail to tip in percent space.
type ArrowAnnotation struct {
	From geometry.Point `json:"from"`
	To   geometry.Point `json:"to"`
}

// AudioAnnotation references a recorded voice note.
type AudioAnnotation struct {
	URL        string `json:"url"`
	DurationMs int64  `json:"duration_ms"`
}

func (PointAnnotation) Type() Type   { return TypePoint }
func (RegionAnnotation) Type() Type  { return TypeRegion }
func (DrawingAnnotation) Type() Type { return TypeDrawing }
func (TextAnnotation) Type() Type    { return TypeText }
func (ArrowAnnotation) Type() Type   { return TypeArrow }
func (AudioAnnotation) Type() Type   { return TypeAudio }

func (PointAnnotation) annotation()   {}
func (RegionAnnotation) annotation()  {}
func (DrawingAnnotation) annotation() {}
func (TextAnnotation) annotation()    {}
func (ArrowAnnotation) annotation()   {}
func (AudioAnnotation) annotation()   {}

// Point returns the annotation position as a geometry point.
func (a PointAnnotation) Point() geometry.Point {
	return geometry.Point{X: a.X, Y: a.Y}
}

// payloadRequired reports whether a comment of type t must carry an
// annotation. Text and audio comments may omit theirs.
func payloadRequired(t Type) bool {
	switch t {
	case TypePoint, TypeRegion, TypeDrawing, TypeArrow:
		return true
	default:
		return false
	}
}

// MarshalAnnotation encodes the payload. A nil annotation encodes to nil.
func MarshalAnnotation(a Annotation) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s annotation: %w", a.Type(), err)
	}
	return data, nil
}

// UnmarshalAnnotation decodes raw as the variant selected by t. Empty input
// and JSON null decode to a nil annotation.
func UnmarshalAnnotation(t Type, raw []byte) (Annotation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var (
		out Annotation
		err error
	)
	switch t {
	case TypePoint:
		var v PointAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	case TypeRegion:
		var v RegionAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	case TypeDrawing:
		var v DrawingAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	case TypeText:
		var v TextAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	case TypeArrow:
		var v ArrowAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	case TypeAudio:
		var v AudioAnnotation
		err = json.Unmarshal(trimmed, &v)
		out = v
	default:
		return nil, services.Wrap(services.ErrValidation, "comments", "decode annotation", fmt.Sprintf("unknown comment type %q", t), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "comments", "decode annotation", string(t), err)
	}
	return out, nil
}

func validateAnnotation(t Type, a Annotation) error {
	if a == nil {
		if payloadRequired(t) {
			return fmt.Errorf("%s comment requires an annotation", t)
		}
		return nil
	}
	if a.Type() != t {
		return fmt.Errorf("annotation %s does not match comment type %s", a.Type(), t)
	}
	switch v := a.(type) {
	case PointAnnotation:
		if !geometry.InPercentRange(v.Point()) {
			return fmt.Errorf("point (%v, %v) outside percent range", v.X, v.Y)
		}
	case RegionAnnotation:
		if !finite(v.X, v.Y, v.Width, v.Height) || v.X < 0 || v.Y < 0 || v.Width <= 0 || v.Height <= 0 ||
			v.X+v.Width > 100 || v.Y+v.Height > 100 {
			return fmt.Errorf("region %v,%v %vx%v outside percent range", v.X, v.Y, v.Width, v.Height)
		}
	case DrawingAnnotation:
		if v.Drawing.IsEmpty() {
			return fmt.Errorf("drawing has no strokes")
		}
		for i, stroke := range v.Drawing.Strokes {
			if len(stroke.Points) == 0 {
				return fmt.Errorf("stroke %d has no points", i)
			}
			if !(stroke.Width > 0) {
				return fmt.Errorf("stroke %d width must be positive", i)
			}
		}
	case TextAnnotation:
		if v.Anchor != nil && !geometry.InPercentRange(*v.Anchor) {
			return fmt.Errorf("text anchor outside percent range")
		}
	case ArrowAnnotation:
		if !geometry.InPercentRange(v.From) || !geometry.InPercentRange(v.To) {
			return fmt.Errorf("arrow outside percent range")
		}
	case AudioAnnotation:
		if v.DurationMs < 0 {
			return fmt.Errorf("audio duration must be >= 0")
		}
	}
	return nil
}

func cloneAnnotation(a Annotation) Annotation {
	switch v := a.(type) {
	case DrawingAnnotation:
		return DrawingAnnotation{Drawing: v.Drawing.Clone()}
	case TextAnnotation:
		if v.Anchor != nil {
			p := *v.Anchor
			return TextAnnotation{Anchor: &p}
		}
		return v
	default:
		return a
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
