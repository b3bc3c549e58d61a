package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"scriptdna/internal/textutil"
	"scriptdna/internal/transcript"
)

const segmentPreviewChars = 60

func newParseCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "parse <transcript.srt>",
		Short:       "Parse a transcript and print its pacing statistics",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := transcript.ParseFile(args[0])
			if err != nil {
				return err
			}
			printTranscriptSummary(cmd.OutOrStdout(), data, limit)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum segments to list (0 lists all)")
	return cmd
}

func printTranscriptSummary(out io.Writer, data transcript.Data, limit int) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Transcript", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("File", statusInfo, data.FileName, colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatSeconds(data.Duration), colorize))
	fmt.Fprintln(out, renderStatusLine("Words", statusInfo, strconv.Itoa(data.WordCount), colorize))
	fmt.Fprintln(out, renderStatusLine("Average WPM", statusInfo, strconv.Itoa(data.AvgWPM), colorize))
	if data.Empty() {
		fmt.Fprintln(out, renderStatusLine("Cues", statusWarn, "no valid subtitle blocks found", colorize))
	}
	if data.SkippedBlocks > 0 {
		fmt.Fprintln(out, renderStatusLine("Skipped blocks", statusWarn, strconv.Itoa(data.SkippedBlocks), colorize))
	}
	fmt.Fprintln(out)

	segments := data.Segments
	if limit > 0 && len(segments) > limit {
		segments = segments[:limit]
	}
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.ID),
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			strconv.Itoa(seg.WPM),
			preview(seg.Text, segmentPreviewChars),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Start", "End", "WPM", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	if hidden := len(data.Segments) - len(segments); hidden > 0 {
		fmt.Fprintf(out, "... %d more segments\n", hidden)
	}
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func preview(text string, limit int) string {
	head := textutil.Head(text, limit)
	if head != text {
		return head + "..."
	}
	return head
}
