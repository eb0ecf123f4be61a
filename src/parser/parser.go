// Package parser turns uploaded proposal documents into title, abstract
// and body text. Plain text and markdown are parsed natively; PDFs are
// converted with the pdftotext tool when it is installed.
package parser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const defaultTitle = "Untitled Proposal"

const (
	titleScanLines = 10
	minTitleRunes  = 10
	maxTitleRunes  = 200

	maxAbstractRunes = 1000
	maxFallbackRunes = 500

	// End-of-abstract keywords are only honored past this offset so the
	// section label itself cannot terminate the match.
	endKeywordSkip = 50
)

const (
	minPDFBytes    = 100
	maxPDFBytes    = 50000
	truncationNote = "\n\n[PDF content truncated...]"
)

var (
	abstractMarkers = []string{"abstract", "summary"}
	endMarkers      = []string{"introduction", "1.", "keywords", "background"}
)

// Proposal is the parsed form of an uploaded document.
type Proposal struct {
	Title    string
	Abstract string
	Content  string
}

// Parse reads the file at path and extracts proposal fields based on the
// file extension.
func Parse(path string) (*Proposal, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return parsePDF(path)
	case ".txt", ".md", ".text", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("parser: read %s: %w", filepath.Base(path), err)
		}
		return ParseText(string(data)), nil
	default:
		return nil, fmt.Errorf("parser: unsupported file type %q", ext)
	}
}

// ParseBytes parses in-memory file data. PDF data is staged through a
// temporary file because pdftotext only reads from disk.
func ParseBytes(name string, data []byte) (*Proposal, error) {
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return ParseText(string(data)), nil
	}
	tmp, err := os.CreateTemp("", "peerpanel-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("parser: stage pdf: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("parser: stage pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("parser: stage pdf: %w", err)
	}
	return parsePDF(tmp.Name())
}

// ParseText applies the title and abstract heuristics to raw text.
func ParseText(text string) *Proposal {
	return &Proposal{
		Title:    titleFrom(text),
		Abstract: abstractFrom(text),
		Content:  text,
	}
}

func parsePDF(path string) (*Proposal, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("parser: pdftotext is not installed: %w", err)
	}

	cmd := exec.Command("pdftotext", "-layout", "-nopgbrk", "-enc", "UTF-8", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("parser: pdftotext %s: %w", filepath.Base(path), err)
	}

	text := strings.ReplaceAll(string(out), "\x00", "")
	text = strings.TrimSpace(text)

	if len(text) < minPDFBytes {
		return nil, fmt.Errorf("parser: extracted text too short (%d bytes)", len(text))
	}
	if len(text) > maxPDFBytes {
		text = text[:maxPDFBytes] + truncationNote
	}

	return ParseText(text), nil
}

// titleFrom picks the first plausibly title-sized line near the top of the
// document. Markdown heading markers are stripped before measuring.
func titleFrom(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if n := utf8.RuneCountInString(line); n > minTitleRunes && n < maxTitleRunes {
			return line
		}
	}
	return defaultTitle
}

// abstractFrom slices the abstract section out of the document. Without an
// abstract or summary marker it settles for the first substantial paragraph.
func abstractFrom(text string) string {
	lower := strings.ToLower(text)

	start := -1
	for _, marker := range abstractMarkers {
		if idx := strings.Index(lower, marker); idx != -1 {
			start = idx
			break
		}
	}

	if start == -1 {
		for _, para := range strings.Split(text, "\n\n") {
			if utf8.RuneCountInString(para) > 100 {
				return truncateRunes(para, maxFallbackRunes)
			}
		}
		return truncateRunes(text, maxFallbackRunes)
	}

	// Lowercasing shifts byte offsets for a handful of unicode runes.
	if start > len(text) {
		start = len(text)
	}
	section := text[start:]
	sectionLower := lower[start:]

	end := len(section)
	for _, marker := range endMarkers {
		if idx := indexFrom(sectionLower, marker, endKeywordSkip); idx != -1 && idx < end {
			end = idx
		}
	}

	abstract := strings.TrimSpace(section[:end])
	abstract = strings.ReplaceAll(abstract, "Abstract", "")
	abstract = strings.ReplaceAll(abstract, "ABSTRACT", "")
	abstract = strings.TrimSpace(abstract)

	return truncateRunes(abstract, maxAbstractRunes)
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	if idx := strings.Index(s[from:], substr); idx != -1 {
		return from + idx
	}
	return -1
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
