package api

import (
	"fmt"
	"math"

	"reelreview/internal/geometry"
	"reelreview/internal/services"
	"reelreview/internal/timecode"
)

// Timecode describes playback position ms at frameRate. A zero frame rate
// uses the configured default.
func (s *Service) Timecode(ms int64, frameRate float64) (TimecodeResponse, error) {
	if frameRate == 0 {
		frameRate = s.cfg.Review.DefaultFrameRate
	}
	tc, err := timecode.FromMillis(ms, frameRate)
	if err != nil {
		return TimecodeResponse{}, err
	}
	frame, err := timecode.FrameIndex(ms, frameRate)
	if err != nil {
		return TimecodeResponse{}, err
	}
	start, err := timecode.FrameStartMillis(frame, frameRate)
	if err != nil {
		return TimecodeResponse{}, err
	}
	return TimecodeResponse{
		Ms:        ms,
		FrameRate: frameRate,
		Timecode:  tc.String(),
		Frame:     frame,
		FrameMs:   start,
	}, nil
}

// SimplifyPath reduces stroke points with Douglas-Peucker.
func (s *Service) SimplifyPath(req PathRequest) (PathResponse, error) {
	if err := s.checkPath(req); err != nil {
		return PathResponse{}, err
	}
	tolerance := s.cfg.Drawing.SimplifyTolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	points := geometry.SimplifyPath(req.Points, tolerance)
	return PathResponse{
		Points:     points,
		InputCount: len(req.Points),
		SVG:        geometry.SmoothPath(points).SVG(),
		Bounds:     geometry.Bounds(points),
	}, nil
}

// SmoothPath renders stroke points as a quadratic midpoint curve without
// dropping points.
func (s *Service) SmoothPath(req PathRequest) (PathResponse, error) {
	if err := s.checkPath(req); err != nil {
		return PathResponse{}, err
	}
	return PathResponse{
		Points:     req.Points,
		InputCount: len(req.Points),
		SVG:        geometry.SmoothPath(req.Points).SVG(),
		Bounds:     geometry.Bounds(req.Points),
	}, nil
}

func (s *Service) checkPath(req PathRequest) error {
	if err := validateRequest("path", req); err != nil {
		return err
	}
	return checkFinite("path", req.Points)
}

func checkFinite(operation string, points []geometry.Point) error {
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return services.Wrap(services.ErrValidation, "api", operation, "points must be finite", nil)
		}
	}
	return nil
}

// Drawing replays req against an undo history bounded by drawing.history_limit.
// Pen strokes pass through a capture that drops samples closer than
// drawing.min_point_distance and simplifies with drawing.simplify_tolerance
// when the gesture ends.
func (s *Service) Drawing(req DrawingRequest) (DrawingResponse, error) {
	if err := validateRequest("drawing", req); err != nil {
		return DrawingResponse{}, err
	}
	cfg := s.cfg.Drawing
	history := geometry.NewHistory(cfg.HistoryLimit)
	if req.Base != nil {
		for _, stroke := range req.Base.Strokes {
			if err := checkFinite("drawing", stroke.Points); err != nil {
				return DrawingResponse{}, err
			}
		}
		history = geometry.NewHistoryFrom(*req.Base, cfg.HistoryLimit)
	}

	for i, op := range req.Operations {
		if err := checkFinite("drawing", op.Points); err != nil {
			return DrawingResponse{}, err
		}
		color := op.Color
		if color == "" {
			color = cfg.DefaultColor
		}
		width := op.Width
		if width == 0 {
			width = cfg.DefaultWidth
		}
		switch op.Op {
		case "stroke":
			if len(op.Points) == 0 {
				return DrawingResponse{}, drawingError(i, "stroke needs at least one point")
			}
			capture := geometry.NewCapture(cfg.MinPointDistance, cfg.SimplifyTolerance)
			capture.Begin(op.Points[0], color, width)
			for _, p := range op.Points[1:] {
				capture.Move(p)
			}
			stroke, _ := capture.End(op.Points[len(op.Points)-1])
			history.Commit(stroke)
		case "shape":
			if len(op.Points) != 2 {
				return DrawingResponse{}, drawingError(i, "shape needs a start and an end point")
			}
			tool, err := geometry.ParseTool(op.Tool)
			if err != nil {
				return DrawingResponse{}, err
			}
			if !tool.IsShape() {
				return DrawingResponse{}, drawingError(i, "shape needs tool arrow, rectangle or circle")
			}
			stroke, err := geometry.ShapeStroke(tool, op.Points[0], op.Points[1], color, width)
			if err != nil {
				return DrawingResponse{}, err
			}
			history.Commit(stroke)
		case "undo":
			history.Undo()
		case "redo":
			history.Redo()
		case "clear":
			history.Clear()
		}
	}

	drawing := history.Drawing()
	return DrawingResponse{
		Drawing:    drawing,
		PointCount: drawing.PointCount(),
		Bounds:     geometry.DrawingBounds(drawing),
		CanUndo:    history.CanUndo(),
		CanRedo:    history.CanRedo(),
	}, nil
}

func drawingError(index int, message string) error {
	return services.Wrap(services.ErrValidation, "api", "drawing", fmt.Sprintf("operation %d: %s", index, message), nil)
}
