package export

import (
	"fmt"
	"strings"

	"scriptdna/internal/stages"
	"scriptdna/internal/textutil"
)

const rowSeparator = "\n\n"

// PartText renders one part: row texts joined by blank lines.
func PartText(part stages.ScriptPart) string {
	return part.Join(rowSeparator)
}

// FullScript renders every part under a title header.
func FullScript(topic string, parts []stages.ScriptPart) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n\n", topic)
	for _, part := range parts {
		fmt.Fprintf(&b, "\n\n=== PART %d ===\n\n", part.PartNumber)
		b.WriteString(PartText(part))
	}
	return b.String()
}

// PartFileName is the default file name for a single part.
func PartFileName(partNumber int) string {
	return fmt.Sprintf("script-part-%d.txt", partNumber)
}

// FullScriptFileName is the default file name for the full script.
func FullScriptFileName(topic string) string {
	return fmt.Sprintf("full-narrator-script-%s.txt", textutil.Slug(topic))
}
