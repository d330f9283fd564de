package enrich

import (
	"bytes"
	"fmt"
	"log/slog"

	readability "codeberg.org/readeck/go-readability"
)

// ContentExtractor pulls the readable article body out of a fetched HTML
// page. Used for sources whose feeds carry only teaser descriptions.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	result, err := readability.FromReader(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if result.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", result.Title,
		"content_length", len(result.Content))

	return result.Content, nil
}
