package service

import (
	"net/url"
	"strings"

	"github.com/gymbro/gymbro-api/internal/domain"
	"github.com/gymbro/gymbro-api/pkg/youtube"
)

const (
	maxYouTubeLinks   = 3
	minTutorialPoints = 3
	maxTutorialPoints = 5
)

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// normalizePlan enforces the plan contract on provider output in place:
// exactly 7 days (padding with rest days), at most 3 valid YouTube links per
// exercise, tutorial points clamped to [3,5]. Invalid links are dropped
// rather than failing the exercise.
func normalizePlan(plan *domain.WeeklyRoutine) {
	for len(plan.Days) < 7 {
		name := weekdayNames[len(plan.Days)] + " - Rest Day"
		plan.Days = append(plan.Days, domain.DayRoutine{Day: name, Exercises: []domain.Exercise{}})
	}

	for di := range plan.Days {
		if plan.Days[di].Exercises == nil {
			plan.Days[di].Exercises = []domain.Exercise{}
		}
		for ei := range plan.Days[di].Exercises {
			ex := &plan.Days[di].Exercises[ei]
			ex.YouTubeURLs = youtube.SanitizeURLs(ex.YouTubeURLs, maxYouTubeLinks)
			ex.TutorialPoints = clampTutorialPoints(ex.TutorialPoints)
			if !isWikiHowURL(ex.WikiHowURL) {
				ex.WikiHowURL = ""
			}
		}
	}
}

// clampTutorialPoints trims the list into the [3,5] band. Oversized lists
// are truncated. Undersized lists are re-split on sentence boundaries, since
// models sometimes return one long paragraph instead of discrete cues; if
// there is genuinely not enough text, fewer points are kept as-is.
func clampTutorialPoints(points []string) []string {
	cleaned := make([]string, 0, len(points))
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	if len(cleaned) < minTutorialPoints {
		expanded := splitSentences(cleaned)
		if len(expanded) > len(cleaned) {
			cleaned = expanded
		}
	}

	if len(cleaned) > maxTutorialPoints {
		cleaned = cleaned[:maxTutorialPoints]
	}
	return cleaned
}

func splitSentences(points []string) []string {
	var out []string
	for _, p := range points {
		for _, s := range strings.Split(p, ". ") {
			s = strings.TrimSpace(strings.TrimSuffix(s, "."))
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func isWikiHowURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikihow.com" || strings.HasSuffix(host, ".wikihow.com")
}
