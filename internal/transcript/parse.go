package transcript

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// minRateSeconds floors the per-cue duration used for the words-per-minute
// divisor so near-zero cues do not explode the rate.
const minRateSeconds = 0.5

var (
	blockSeparator  = regexp.MustCompile(`\n\s*\n`)
	timecodePattern = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2}),(\d{3})`)
	markupPattern   = regexp.MustCompile(`<[^>]*>`)
)

// Parse converts raw SubRip text into transcript data labelled with name.
func Parse(raw, name string) Data {
	data := Data{FileName: name, Segments: []Segment{}}
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if normalized == "" {
		return data
	}

	for index, block := range blockSeparator.Split(normalized, -1) {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			data.SkippedBlocks++
			continue
		}
		start, end, ok := parseTimecodeLine(lines[1])
		if !ok || end <= start {
			data.SkippedBlocks++
			continue
		}
		text := CleanText(strings.Join(lines[2:], " "))
		data.Segments = append(data.Segments, Segment{
			ID:    index + 1,
			Start: start,
			End:   end,
			Text:  text,
			WPM:   segmentWPM(CountWords(text), end-start),
		})
	}

	texts := make([]string, len(data.Segments))
	for i, seg := range data.Segments {
		texts[i] = seg.Text
	}
	data.FullText = strings.Join(texts, " ")
	data.WordCount = CountWords(data.FullText)
	if n := len(data.Segments); n > 0 {
		data.Duration = data.Segments[n-1].End
	}
	data.AvgWPM = AverageWPM(data.WordCount, data.Duration)
	return data
}

// ParseFile reads a SubRip file and parses it using the file's base name.
func ParseFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read transcript: %w", err)
	}
	return Parse(string(raw), filepath.Base(path)), nil
}

// CleanText strips markup tags and surrounding whitespace from cue text.
func CleanText(text string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(text, ""))
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// AverageWPM returns round(words / minutes), or 0 when duration is not positive.
func AverageWPM(words int, durationSeconds float64) int {
	if durationSeconds <= 0 {
		return 0
	}
	return int(math.Round(float64(words) / (durationSeconds / 60)))
}

func segmentWPM(words int, durationSeconds float64) int {
	return AverageWPM(words, math.Max(durationSeconds, minRateSeconds))
}

func parseTimecodeLine(line string) (float64, float64, bool) {
	match := timecodePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, 0, false
	}
	return timecodeSeconds(match[1:5]), timecodeSeconds(match[5:9]), true
}

// timecodeSeconds converts hour, minute, second, and millisecond digit groups.
// The pattern guarantees each group is numeric.
func timecodeSeconds(parts []string) float64 {
	values := make([]int, len(parts))
	for i, part := range parts {
		values[i], _ = strconv.Atoi(part)
	}
	return float64(values[0]*3600+values[1]*60+values[2]) + float64(values[3])/1000
}
