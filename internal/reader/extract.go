// Package reader turns uploaded documents into plain text for detection.
package reader

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
)

// DefaultBodyByteLimit caps uploaded document size.
const DefaultBodyByteLimit = 2 * 1024 * 1024

var ErrUnsupportedType = errors.New("unsupported file type")

type kind int

const (
	kindUnknown kind = iota
	kindText
	kindHTML
)

// ExtractText returns the readable text of an uploaded file. Plain text and
// HTML are supported; the type is taken from the content type and falls back
// to the file extension.
func ExtractText(filename, contentType string, body []byte) (string, error) {
	switch detectKind(filename, contentType) {
	case kindText:
		if !utf8.Valid(body) {
			return "", fmt.Errorf("text file is not valid UTF-8")
		}
		return CleanText(string(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))), nil
	case kindHTML:
		return extractHTML(filename, body)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, describe(filename, contentType))
	}
}

func extractHTML(filename string, body []byte) (string, error) {
	pageURL := &url.URL{Scheme: "file", Path: path.Join("/", filepath.Base(filename))}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability parse: %w", err)
	}

	var renderedText bytes.Buffer
	if err := article.RenderText(&renderedText); err != nil {
		return "", fmt.Errorf("render readability text: %w", err)
	}

	text := CleanText(renderedText.String())
	if text == "" {
		text = CleanText(article.Excerpt())
	}
	if text == "" {
		return "", fmt.Errorf("reader extracted empty content")
	}
	return text, nil
}

func detectKind(filename, contentType string) kind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch strings.ToLower(mediaType) {
		case "text/plain":
			return kindText
		case "text/html", "application/xhtml+xml":
			return kindHTML
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return kindText
	case ".html", ".htm", ".xhtml":
		return kindHTML
	}
	return kindUnknown
}

func describe(filename, contentType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	if strings.TrimSpace(contentType) != "" {
		return contentType
	}
	return "unknown"
}

// CleanText normalizes line endings and collapses extra in-line whitespace.
func CleanText(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		clean := strings.Join(strings.Fields(strings.TrimSpace(line)), " ")
		if clean == "" {
			continue
		}
		paragraphs = append(paragraphs, clean)
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
}

// CountWords counts whitespace separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
