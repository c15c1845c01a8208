package feedback

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced interview coach. Review the interview transcript and give the candidate concise, encouraging, actionable feedback.

Respond with:
- exactly three strengths
- exactly three areas for improvement
- one or two next steps
- a one sentence summary

Keep the whole review between 150 and 200 words. Refer to specific moments in the transcript. Do not invent answers the candidate did not give.`

func userPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Interview details:\n")
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", name, value)
		}
	}
	field("Candidate", req.UserName)
	field("Target role", req.Role)
	field("Job level", humanize(req.JobLevel))
	field("Interview type", humanize(req.InterviewType))
	sb.WriteString("\nTranscript:\n")
	if t := strings.TrimSpace(req.Transcript); t != "" {
		sb.WriteString(t)
	} else {
		sb.WriteString("(the candidate did not speak)")
	}
	sb.WriteString("\n")
	return sb.String()
}

// humanize turns ENUM_VALUES into "enum values".
func humanize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}
