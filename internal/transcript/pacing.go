package transcript

import "math"

// pacingStride samples every fifth segment so long transcripts stay readable.
const pacingStride = 5

// PacingHeatmap samples segment speaking rates starting with the first
// segment. Times are whole seconds.
func PacingHeatmap(segments []Segment) []PacingPoint {
	points := make([]PacingPoint, 0, (len(segments)+pacingStride-1)/pacingStride)
	for i := 0; i < len(segments); i += pacingStride {
		points = append(points, PacingPoint{
			Time: int(math.Floor(segments[i].Start)),
			WPM:  segments[i].WPM,
		})
	}
	return points
}
