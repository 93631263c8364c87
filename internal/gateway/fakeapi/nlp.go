package fakeapi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var nonWord = regexp.MustCompile(`[^a-z0-9 ]`)

var (
	positiveWords = wordSet("love enjoy like excited interested passionate great awesome good fond really very")
	negativeWords = wordSet("hate dislike bored boring dont don't not hard difficult confused struggle worried")
	intensifiers  = wordSet("really very extremely super absolutely totally")
)

func wordSet(s string) map[string]bool {
	m := map[string]bool{}
	for _, w := range strings.Fields(s) {
		m[w] = true
	}
	return m
}

func normalize(text string) []string {
	return strings.Fields(nonWord.ReplaceAllString(strings.ToLower(text), " "))
}

// keywords returns the distinct words longer than two letters, sorted.
func keywords(text string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, w := range normalize(text) {
		if len(w) > 2 && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// sentiment scores text in [-1, 1] from positive and negative word counts.
func sentiment(text string) float64 {
	var pos, neg, inten int
	for _, w := range normalize(text) {
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
		if intensifiers[w] {
			inten++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	base := float64(pos-neg) / float64(pos+neg)
	if inten > 0 {
		base *= 1 + float64(inten)*0.2
	}
	return max(-1, min(1, base))
}

type streamProfile struct {
	title   string
	careers []string
	cues    []string
}

var streamProfiles = []streamProfile{
	{"Science (PCM)", []string{"Engineering", "Data Science", "Architecture", "Robotics"},
		[]string{"math", "physics", "coding", "computer", "puzzles", "logic", "engineering", "technology", "jee"}},
	{"Science (PCB)", []string{"Medicine", "Biotech", "Pharmacy", "Physiotherapy"},
		[]string{"biology", "medical", "doctor", "health", "medicine", "neet", "healthcare", "helping"}},
	{"Commerce", []string{"Chartered Accountant", "Banking", "Business Analyst", "Entrepreneur"},
		[]string{"commerce", "accounts", "business", "salary", "financial", "entrepreneurship", "numbers"}},
	{"Humanities / Arts", []string{"Civil Services", "Journalism", "Psychology", "Content Writing"},
		[]string{"history", "geography", "languages", "reading", "writing", "communication", "law", "society"}},
	{"Diploma / Polytechnic", []string{"Junior Engineer", "Technician", "CAD Designer"},
		[]string{"diploma", "polytechnic", "hands", "building", "fixing", "practical"}},
}

// recommend scores each stream by cue words in the answers.
func recommend(answers []answer) recommendation {
	words := map[string]int{}
	for _, a := range answers {
		for _, w := range normalize(a.Answer) {
			words[w]++
		}
	}

	type scored struct {
		p     streamProfile
		score int
	}
	ranked := make([]scored, len(streamProfiles))
	for i, p := range streamProfiles {
		s := 0
		for _, cue := range p.cues {
			s += words[cue]
		}
		ranked[i] = scored{p, s}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	rec := recommendation{Streams: []string{}, Careers: []string{}}
	for _, r := range ranked[:2] {
		rec.Streams = append(rec.Streams, r.p.title)
		rec.Careers = append(rec.Careers, r.p.careers...)
	}
	rec.Analysis = fmt.Sprintf(
		"Based on your %d responses, your interests point most strongly towards %s, with %s as a good alternative.",
		len(answers), ranked[0].p.title, ranked[1].p.title)
	return rec
}
