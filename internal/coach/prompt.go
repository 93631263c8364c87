package coach

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a friendly career counsellor for Indian school students choosing a stream after class 10 or a path after class 12. Keep advice practical, specific to the recommendation you are given, and free of jargon. Never contradict the recommended streams.`

var stageNames = map[string]string{
	"ssc": "after class 10 (SSC)",
	"hsc": "after class 12 (HSC)",
}

func buildUserMessage(in Input) string {
	var b strings.Builder

	stage := stageNames[in.Mode]
	if stage == "" {
		stage = in.Mode
	}
	fmt.Fprintf(&b, "Stage: %s\n", stage)
	if in.ClassLevel != "" {
		fmt.Fprintf(&b, "Class level: %s\n", in.ClassLevel)
	}
	if in.Name != "" {
		fmt.Fprintf(&b, "Student name: %s\n", in.Name)
	}
	if in.State != "" {
		fmt.Fprintf(&b, "State: %s\n", in.State)
	}

	b.WriteString("\nRecommended streams:\n")
	writeList(&b, in.Recommendation.Streams)
	b.WriteString("\nSuggested careers:\n")
	writeList(&b, in.Recommendation.Careers)

	if a := strings.TrimSpace(in.Recommendation.Analysis); a != "" {
		fmt.Fprintf(&b, "\nCounsellor analysis:\n%s\n", a)
	}

	b.WriteString("\nWrite an action plan for this student.")
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
