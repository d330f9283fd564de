package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/newsmill/newsmill/app/article"
)

const (
	// sentiment thresholds on the [-1, 1] polarity scale
	positiveThreshold = 0.1
	negativeThreshold = -0.1

	wordsPerMinute   = 200
	summarySentences = 3
	maxCategories    = 5
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	sentencePattern   = regexp.MustCompile(`[^.!?]+[.!?]?`)
	wordPattern       = regexp.MustCompile(`[a-zA-Z]+`)
)

// Enricher analyzes article text: sentiment polarity, a loaded-language bias
// score, and an extractive summary. It implements pipeline.Transformer.
type Enricher struct{}

func NewEnricher() *Enricher {
	return &Enricher{}
}

// Transform returns an enriched copy of the article. The input article is
// never mutated, so a failed attempt leaves the raw article intact for retry.
func (e *Enricher) Transform(ctx context.Context, a *article.Article) (*article.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := cleanText(a.Content)
	title := cleanText(a.Title)
	if content == "" && title == "" {
		return nil, fmt.Errorf("article %s has no content to analyze", a.ID)
	}
	if content == "" {
		content = title
	}

	words := extractWords(content)

	sentimentScore := sentimentPolarity(words)
	enriched := *a
	enriched.Content = content
	enriched.Enrichment = &article.Enrichment{
		Sentiment:      sentimentLabel(sentimentScore),
		SentimentScore: sentimentScore,
		BiasScore:      biasScore(words),
		Summary:        summarize(content, summarySentences),
		WordCount:      len(words),
		ReadingTime:    readingTime(len(words)),
		EnrichedAt:     time.Now().UTC(),
	}

	if len(enriched.Categories) == 0 {
		enriched.Categories = topKeywords(words, maxCategories)
	}

	slog.Debug("Article enriched", "article_id", a.ID,
		"sentiment", enriched.Enrichment.Sentiment,
		"bias_score", enriched.Enrichment.BiasScore,
		"word_count", enriched.Enrichment.WordCount)

	return &enriched, nil
}

// cleanText strips markup and collapses whitespace, normalizing to NFC so
// lexicon lookups behave for composed characters.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func extractWords(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

// sentimentPolarity scores text on [-1, 1]: the balance of positive versus
// negative lexicon hits.
func sentimentPolarity(words []string) float64 {
	var positive, negative int
	for _, w := range words {
		if _, ok := positiveWords[w]; ok {
			positive++
		}
		if _, ok := negativeWords[w]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

func sentimentLabel(score float64) string {
	switch {
	case score > positiveThreshold:
		return "positive"
	case score < negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}

// biasScore estimates bias on [0, 1] from the density of loaded terms.
// A text where 5% of words are loaded saturates at 1.0.
func biasScore(words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	var loaded int
	for _, w := range words {
		if _, ok := loadedWords[w]; ok {
			loaded++
		}
	}

	score := float64(loaded) / float64(len(words)) * 20
	if score > 1 {
		score = 1
	}
	return score
}

func readingTime(wordCount int) int {
	minutes := wordCount / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// summarize picks the highest-scoring sentences by document word frequency
// and returns them in original order.
func summarize(content string, limit int) string {
	sentences := splitSentences(content)
	if len(sentences) <= limit {
		return content
	}

	freq := make(map[string]int)
	for _, w := range extractWords(content) {
		if _, ok := stopWords[w]; ok {
			continue
		}
		freq[w]++
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, 0, len(sentences))
	for i, sentence := range sentences {
		var score int
		for _, w := range extractWords(sentence) {
			score += freq[w]
		}
		ranked = append(ranked, scored{index: i, score: score})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	ranked = ranked[:limit]
	sort.Slice(ranked, func(a, b int) bool {
		return ranked[a].index < ranked[b].index
	})

	parts := make([]string, 0, limit)
	for _, r := range ranked {
		parts = append(parts, strings.TrimSpace(sentences[r.index]))
	}
	return strings.Join(parts, " ")
}

func splitSentences(content string) []string {
	raw := sentencePattern.FindAllString(content, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// topKeywords returns the most frequent non-stopword terms for use as
// fallback categories.
func topKeywords(words []string, limit int) []string {
	freq := make(map[string]int)
	for _, w := range words {
		if len(w) <= 3 {
			continue
		}
		if _, ok := stopWords[w]; ok {
			continue
		}
		freq[w]++
	}

	keywords := make([]string, 0, len(freq))
	for w := range freq {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(a, b int) bool {
		if freq[keywords[a]] != freq[keywords[b]] {
			return freq[keywords[a]] > freq[keywords[b]]
		}
		return keywords[a] < keywords[b]
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}
