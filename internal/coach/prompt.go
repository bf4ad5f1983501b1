package coach

import (
	"fmt"
	"strings"
)

const debriefSystemPrompt = `You are an experienced technical interview coach. You read a candidate's timed screening results and give honest, specific, encouraging feedback. Never invent scores; use only the numbers provided.`

func buildDebriefUserMessage(in Input) string {
	r := in.Result
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", or(r.Role, "unspecified"))
	fmt.Fprintf(&b, "Experience level: %s\n", or(r.Level, "unspecified"))
	fmt.Fprintf(&b, "Target company: %s\n", r.Company)
	if in.Company.Style != "" {
		fmt.Fprintf(&b, "Interview style: %s\n", in.Company.Style)
	}
	if in.Company.Tone != "" {
		fmt.Fprintf(&b, "Tone to use: %s\n", in.Company.Tone)
	}

	fmt.Fprintf(&b, "\nOverall score: %d/100 (%s)\n", r.Overall, r.Band)
	fmt.Fprintf(&b, "Company alignment: %d/100\n", r.Alignment)

	b.WriteString("\nSections:\n")
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "- %s: %d/100 (%d of %d correct, %.0fs average per question, company weight %.2f)\n",
			s.Section, s.Score, s.Correct, s.Total, s.AvgSeconds, s.Weight)
	}

	writeList(&b, "Strengths", r.Strengths)
	writeList(&b, "Weaknesses", r.Weaknesses)
	writeList(&b, "Available courses", in.Courses)

	b.WriteString(`
Instructions:
1. Summarise readiness for this company in 2-4 sentences, referring to the section scores.
2. List the focus areas that would raise the score the most, weakest first.
3. Give an ordered study plan of 2-5 steps. Where an available course fits a step, name it exactly.
4. Plain text only. No markdown.`)

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(items) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
