package notify

import (
	"fmt"
	"strings"

	"procwatch/internal/report"
)

// Subject is the fixed subject line of every failure digest email.
const Subject = "Procwatch Failure Report"

// FormatFailureDigest renders the failed report rows as the plain-text
// digest section of the email body.
func FormatFailureDigest(failed []report.Row) string {
	if len(failed) == 0 {
		return "All monitored processes are healthy."
	}

	lines := []string{"The following processes failed:"}
	for _, row := range failed {
		lines = append(lines, fmt.Sprintf("- %s (%s):", row.TagName, row.FolderPath))
		for _, reason := range row.Reasons {
			lines = append(lines, fmt.Sprintf("  * %s", reason))
		}
	}
	return strings.Join(lines, "\n")
}

// BuildBody combines the user-supplied message with the failure digest.
func BuildBody(message string, failed []report.Row) string {
	return message + "\n\n" + FormatFailureDigest(failed)
}
