package service

import (
	"math"
	"strings"
	"time"
	"unicode"

	"eventrate/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFD and drops combining marks, so "fête"
// compares equal to "fete".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases, strips diacritics and collapses whitespace.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripDiacritics, s); err == nil {
		s = stripped
	}
	return strings.Join(strings.Fields(s), " ")
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// similarity scores two strings 0-100 after normalization. Identical
// normalized strings score 100; otherwise the score is the edit distance
// scaled by the longer string's length.
func similarity(a, b string) int {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein(na, nb)
	return int(math.Round(100 * float64(maxLen-dist) / float64(maxLen)))
}

// duplicateQuery is the prospective event being checked.
type duplicateQuery struct {
	Title     string
	City      string
	DateStart *time.Time
}

// scoreDuplicate grades a candidate against the query. Confidence tiers run
// from near-certain (same title, same city, within a day) down to a loose
// title match; candidates below 50 are discarded by the caller.
func scoreDuplicate(q duplicateQuery, candidate *models.Event) (confidence int, reason string, titleSim, citySim int, dateDiff *float64) {
	titleSim = similarity(q.Title, candidate.Title)
	citySim = similarity(q.City, candidate.LocationCity)

	if q.DateStart != nil {
		diff := math.Abs(q.DateStart.Sub(candidate.DateStart).Hours() / 24)
		dateDiff = &diff
	}

	switch {
	case titleSim == 100 && citySim >= 90 && dateDiff != nil && *dateDiff <= 1:
		confidence, reason = 95, "Titre identique, même ville et même période"
	case titleSim >= 85 && citySim >= 90 && dateDiff != nil && *dateDiff <= 3:
		confidence, reason = 80, "Titre très similaire, même ville et dates proches"
	case titleSim >= 70 && dateDiff != nil && *dateDiff == 0:
		confidence, reason = 70, "Titre similaire et même date"
	case titleSim >= 60 && citySim >= 90:
		confidence, reason = 50, "Titre similaire et même ville"
	case titleSim >= 60:
		confidence, reason = 40, "Titre similaire"
	}
	return
}
