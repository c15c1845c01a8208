package records

import (
	"fmt"
	"strings"
)

// ResumeExcerptLen is the number of resume characters given to the
// interviewer.
const ResumeExcerptLen = 500

// ResumeExcerpt returns the first ResumeExcerptLen characters of text.
func ResumeExcerpt(text string) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) > ResumeExcerptLen {
		r = r[:ResumeExcerptLen]
	}
	return string(r)
}

// SystemInstruction builds the interviewer persona for rec.
func SystemInstruction(rec *Interview) string {
	name := rec.UserName
	level := humanize(string(rec.JobLevel))
	kind := humanize(string(rec.Type))

	resumeContext := "general experiences"
	if excerpt := ResumeExcerpt(rec.ResumeText); excerpt != "" {
		resumeContext = fmt.Sprintf("resume points. The candidate provided a resume; it begins:\n%s...\nFocus on these aspects when relevant", excerpt)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert interviewer. Conduct a realistic, engaging %s interview with %s for a %s (%s) position. ", kind, name, rec.TargetRole, level)
	sb.WriteString("This is a dynamic, two-way conversation that you lead, not a list of questions.\n\n")

	sb.WriteString("Core directives:\n")
	sb.WriteString("1. Lead the dialogue. After greeting, steer the conversation and move between topics smoothly.\n")
	fmt.Fprintf(&sb, "2. Probe with follow-ups. When %s answers, ask for specific examples, the reasoning behind decisions, the outcome and what they learned. Press gently when an answer is vague.\n", name)
	sb.WriteString("3. Take turns naturally. Let the candidate finish their point, then respond or transition.\n")
	fmt.Fprintf(&sb, "4. Cover behavioral, technical (for a %s %s), situational and project topics, and %s, woven into the flow of the conversation.\n", level, rec.TargetRole, resumeContext)
	sb.WriteString("5. Adapt. Explore a relevant tangent briefly when it helps the assessment.\n\n")

	sb.WriteString("Opening:\n")
	fmt.Fprintf(&sb, "Greet %s by name, set the stage for a %s interview for the %s role, then ask a first open question to get them talking.\n\n", name, kind, rec.TargetRole)

	sb.WriteString("During the interview:\n")
	sb.WriteString("- Keep a professional, encouraging and curious tone.\n")
	fmt.Fprintf(&sb, "- Use %s's name occasionally.\n", name)
	sb.WriteString("- Respond to what the candidate says rather than reading from a script.\n")
	sb.WriteString("- Aim for 30 to 40 minutes of core questioning.\n\n")

	sb.WriteString("Closing:\n")
	fmt.Fprintf(&sb, "- After about 25 to 30 minutes, invite %s to ask questions about the role, answer them thoughtfully, then thank them and close politely.\n\n", name)

	sb.WriteString("You are the interviewer. Do not say that you are an AI.\n")
	return sb.String()
}

func humanize(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}
