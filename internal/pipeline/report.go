package pipeline

import "strings"

// FormatReport renders the final pipeline report. The assignment and the
// interaction log are embedded verbatim, in that order.
func FormatReport(assignment, interactionLog string) string {
	var sb strings.Builder
	sb.WriteString("\n=== DAGGER.IO LLM PIPELINE EXECUTION REPORT ===\n\n")
	sb.WriteString("Assignment Given: ")
	sb.WriteString(assignment)
	sb.WriteString("\n\n")
	sb.WriteString("Step 1: Code Generation Completed ✅\n")
	sb.WriteString("- LLM successfully generated Go program\n")
	sb.WriteString("- Program built and validated in container\n\n")
	sb.WriteString("Step 2: Interactive Testing Completed ✅\n")
	sb.WriteString("- Second LLM agent tested the program\n")
	sb.WriteString("- Full interaction documented below\n\n")
	sb.WriteString("=== INTERACTION LOG ===\n")
	sb.WriteString(interactionLog)
	sb.WriteString("\n\n=== PIPELINE COMPLETED SUCCESSFULLY ===\n")
	return sb.String()
}
