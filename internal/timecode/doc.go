// Package timecode converts between wall-clock milliseconds, frame indices,
// and SMPTE "HH:MM:SS:FF" timecode for a given frame rate.
//
// Every function is pure and deterministic. The typed variants (FromMillis,
// FrameIndex, Parse) return services.ErrValidation for negative times or
// non-positive frame rates; MsToSMPTE never fails and falls back to
// "00:00:00:00" so player overlays can render unconditionally.
//
// Frame numbers inside a second are derived from the millisecond remainder:
// floor((ms mod 1000) / 1000 * frameRate), clamped to [0, round(frameRate)-1].
// This keeps drop-frame style rates such as 29.97 inside a 30-frame second
// and makes the output monotonic non-decreasing in ms.
package timecode
