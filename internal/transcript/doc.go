// Package transcript parses SubRip subtitle text into timed segments with
// speaking-rate statistics.
//
// Parsing is lenient: blocks that lack a valid timecode line, or whose end
// does not come after their start, are skipped and counted rather than
// reported as errors. Input with no usable blocks yields an empty Data value.
package transcript
