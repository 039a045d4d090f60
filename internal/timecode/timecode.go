package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"reelreview/internal/services"
)

// Zero is the fallback SMPTE string returned for unusable input.
const Zero = "00:00:00:00"

const millisPerSecond = 1000

// Timecode is a decomposed SMPTE timecode. Hours do not wrap at 24.
type Timecode struct {
	Hours   int
	Minutes int
	Seconds int
	Frames  int
}

// String renders HH:MM:SS:FF with two-digit zero padding.
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds, t.Frames)
}

// Millis returns the first millisecond covered by the timecode at the given
// frame rate.
func (t Timecode) Millis(frameRate float64) (int64, error) {
	if err := validateRate(frameRate); err != nil {
		return 0, err
	}
	seconds := int64(t.Hours)*3600 + int64(t.Minutes)*60 + int64(t.Seconds)
	frameMs := int64(math.Ceil(float64(t.Frames) * millisPerSecond / frameRate))
	if frameMs >= millisPerSecond {
		frameMs = millisPerSecond - 1
	}
	for frameMs > 0 && frameInSecond(frameMs-1, frameRate) >= t.Frames {
		frameMs--
	}
	for frameMs < millisPerSecond-1 && frameInSecond(frameMs, frameRate) < t.Frames {
		frameMs++
	}
	return seconds*millisPerSecond + frameMs, nil
}

// FramesPerSecond returns the nominal frame count of one second of video,
// round(frameRate), never less than one.
func FramesPerSecond(frameRate float64) int {
	n := int(math.Round(frameRate))
	if n < 1 {
		return 1
	}
	return n
}

// FromMillis decomposes elapsed milliseconds into a Timecode.
func FromMillis(ms int64, frameRate float64) (Timecode, error) {
	if err := validateRate(frameRate); err != nil {
		return Timecode{}, err
	}
	if ms < 0 {
		return Timecode{}, services.Wrap(services.ErrValidation, "timecode", "convert", fmt.Sprintf("negative time %dms", ms), nil)
	}
	totalSeconds := ms / millisPerSecond
	return Timecode{
		Hours:   int(totalSeconds / 3600),
		Minutes: int(totalSeconds % 3600 / 60),
		Seconds: int(totalSeconds % 60),
		Frames:  frameInSecond(ms%millisPerSecond, frameRate),
	}, nil
}

// frameInSecond maps a millisecond remainder to its frame number, clamped to
// [0, round(frameRate)-1].
func frameInSecond(remainder int64, frameRate float64) int {
	frame := int(math.Floor(float64(remainder) / millisPerSecond * frameRate))
	if maxFrame := FramesPerSecond(frameRate) - 1; frame > maxFrame {
		frame = maxFrame
	}
	if frame < 0 {
		frame = 0
	}
	return frame
}

// MsToSMPTE converts elapsed milliseconds to an SMPTE string, returning Zero
// when the input cannot be converted.
func MsToSMPTE(ms int64, frameRate float64) string {
	tc, err := FromMillis(ms, frameRate)
	if err != nil {
		return Zero
	}
	return tc.String()
}

// Parse reads an "HH:MM:SS:FF" string. A semicolon before the frame field
// (drop-frame notation) is accepted.
func Parse(value string) (Timecode, error) {
	trimmed := strings.TrimSpace(value)
	normalized := strings.ReplaceAll(trimmed, ";", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 4 {
		return Timecode{}, services.Wrap(services.ErrValidation, "timecode", "parse", fmt.Sprintf("malformed timecode %q", value), nil)
	}
	fields := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Timecode{}, services.Wrap(services.ErrValidation, "timecode", "parse", fmt.Sprintf("malformed timecode %q", value), err)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return Timecode{}, services.Wrap(services.ErrValidation, "timecode", "parse", fmt.Sprintf("minutes/seconds out of range in %q", value), nil)
	}
	return Timecode{Hours: fields[0], Minutes: fields[1], Seconds: fields[2], Frames: fields[3]}, nil
}

// FrameOf returns the frame field of an SMPTE string.
func FrameOf(value string) (int, error) {
	tc, err := Parse(value)
	if err != nil {
		return 0, err
	}
	return tc.Frames, nil
}

// FrameIndex returns the zero-based frame shown at ms: floor(ms*frameRate/1000).
func FrameIndex(ms int64, frameRate float64) (int64, error) {
	if err := validateRate(frameRate); err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, services.Wrap(services.ErrValidation, "timecode", "frame index", fmt.Sprintf("negative time %dms", ms), nil)
	}
	return int64(math.Floor(float64(ms) * frameRate / millisPerSecond)), nil
}

// FrameStartMillis returns the smallest millisecond whose FrameIndex equals frame.
func FrameStartMillis(frame int64, frameRate float64) (int64, error) {
	if err := validateRate(frameRate); err != nil {
		return 0, err
	}
	if frame < 0 {
		return 0, services.Wrap(services.ErrValidation, "timecode", "frame start", fmt.Sprintf("negative frame %d", frame), nil)
	}
	ms := int64(math.Ceil(float64(frame) * millisPerSecond / frameRate))
	// Floating point can land one millisecond on either side of the boundary.
	for ms > 0 {
		prev, _ := FrameIndex(ms-1, frameRate)
		if prev < frame {
			break
		}
		ms--
	}
	for {
		idx, _ := FrameIndex(ms, frameRate)
		if idx >= frame {
			break
		}
		ms++
	}
	return ms, nil
}

// StepFrames moves ms by delta frames and snaps to the start of the target
// frame, clamped to [0, durationMs].
func StepFrames(ms int64, delta int, frameRate float64, durationMs int64) (int64, error) {
	if err := validateRate(frameRate); err != nil {
		return 0, err
	}
	current, err := FrameIndex(Clamp(ms, durationMs), frameRate)
	if err != nil {
		return 0, err
	}
	target := current + int64(delta)
	if target < 0 {
		target = 0
	}
	start, err := FrameStartMillis(target, frameRate)
	if err != nil {
		return 0, err
	}
	return Clamp(start, durationMs), nil
}

// Clamp bounds ms to [0, durationMs]. A negative duration is treated as zero.
func Clamp(ms, durationMs int64) int64 {
	if durationMs < 0 {
		durationMs = 0
	}
	if ms < 0 {
		return 0
	}
	if ms > durationMs {
		return durationMs
	}
	return ms
}

func validateRate(frameRate float64) error {
	if math.IsNaN(frameRate) || math.IsInf(frameRate, 0) || frameRate <= 0 {
		return services.Wrap(services.ErrValidation, "timecode", "frame rate", fmt.Sprintf("frame rate must be positive, got %v", frameRate), nil)
	}
	return nil
}
