package agent

import (
	"slices"
	"strings"
	"unicode"
)

// Intents, in tie-break priority order.
const (
	IntentEmotionalSupport = "emotional_support"
	IntentAnalytics        = "analytics_request"
	IntentMotivation       = "motivation"
	IntentGeneral          = "general"
)

// Sentiments.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{IntentEmotionalSupport, []string{
		"stressed", "stress", "anxious", "anxiety", "sad", "depressed", "lonely", "overwhelmed",
		"burnout", "burned out", "tired", "exhausted", "upset", "worried", "cry", "struggling", "hopeless",
	}},
	{IntentAnalytics, []string{
		"how am i doing", "progress", "stats", "statistics", "analytics", "trend", "average", "streak",
		"report", "data", "numbers", "summary", "how much", "how many", "compare", "week", "month",
	}},
	{IntentMotivation, []string{
		"motivate", "motivation", "motivated", "inspire", "encourage", "lazy", "procrastinate",
		"procrastinating", "can't start", "give up", "push me", "keep going", "discipline",
	}},
}

var (
	positiveWords = []string{"good", "great", "happy", "glad", "proud", "excited", "better", "awesome", "love", "calm", "thanks", "thank"}
	negativeWords = []string{"bad", "sad", "awful", "terrible", "worse", "hate", "angry", "stressed", "anxious", "tired", "exhausted", "upset", "lonely", "overwhelmed", "worried"}
)

// tokenize lowercases s and splits it into words. Typographic apostrophes
// become ASCII so "can’t" matches "can't".
func tokenize(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "\u2019", "'")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// countMatches counts every occurrence of every phrase, adjacent ones
// included.
func countMatches(words []string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		pw := strings.Fields(p)
		for i := 0; i+len(pw) <= len(words); i++ {
			if slices.Equal(words[i:i+len(pw)], pw) {
				n++
			}
		}
	}
	return n
}

// ClassifyIntent scores the message against each intent's keywords. The
// highest score wins; ties go to the earlier intent. No match is general.
func ClassifyIntent(message string) string {
	words := tokenize(message)
	best, bestScore := IntentGeneral, 0
	for _, ik := range intentKeywords {
		if score := countMatches(words, ik.keywords); score > bestScore {
			best, bestScore = ik.intent, score
		}
	}
	return best
}

func ClassifySentiment(message string) string {
	words := tokenize(message)
	pos, neg := countMatches(words, positiveWords), countMatches(words, negativeWords)
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	}
	return SentimentNeutral
}
