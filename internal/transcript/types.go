package transcript

// Segment is one timed subtitle cue. Start and End are in seconds.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	WPM   int     `json:"wpm"`
}

// Data aggregates the parsed segments of one transcript.
type Data struct {
	FileName  string    `json:"fileName"`
	Duration  float64   `json:"duration"`
	WordCount int       `json:"wordCount"`
	AvgWPM    int       `json:"avgWpm"`
	Segments  []Segment `json:"segments"`
	FullText  string    `json:"fullText"`
	// SkippedBlocks counts blocks dropped as malformed.
	SkippedBlocks int `json:"skippedBlocks,omitempty"`
}

// Empty reports whether no segment survived parsing.
func (d Data) Empty() bool {
	return len(d.Segments) == 0
}

// PacingPoint is one sample of the speaking-rate heatmap.
type PacingPoint struct {
	Time int `json:"time"`
	WPM  int `json:"wpm"`
}
