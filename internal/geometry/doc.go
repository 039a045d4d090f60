// Package geometry turns raw pointer input into the stroke data carried by
// drawing annotations.
//
// Points are plain {X, Y} pairs in whichever coordinate space the caller
// chose (absolute pixels for drawings, percent of the frame for point
// annotations); nothing here mixes the two. SmoothPath produces a render
// descriptor from a stroke's points, SimplifyPath reduces point counts with a
// Douglas-Peucker pass, and the shape helpers express arrows, rectangles and
// circles as small fixed point sets so Stroke stays the single representation
// for every annotation shape.
//
// Capture and History are the only stateful types. Both are owned by one
// caller (typically a UI session) and are not safe for concurrent use.
package geometry
