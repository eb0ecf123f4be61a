package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategy recovers whatever profile fields one source on the page can
// provide. Strategies are pure: they read the document and return a
// partial without side effects.
type Strategy func(*Document) *Partial

// genericStrategies is the cascade for unknown sites, applied left to
// right with first-non-empty-wins merging per field. A linked-data block
// that names the person is authoritative and stops the cascade.
var genericStrategies = []Strategy{fromJSONLD, fromOpenGraph, fromHeuristics}

func genericProfile(doc *Document, pageURL string) *Profile {
	merged := &Partial{}
	for i, strategy := range genericStrategies {
		merged.fillFrom(strategy(doc))
		if i == 0 && merged.Name != "" {
			break
		}
	}
	return merged.profile(SourceWebsite, pageURL)
}

// fromHeuristics mines the page itself: headings, bio containers, a fixed
// research vocabulary over the cleaned text, and publication-looking links.
func fromHeuristics(doc *Document) *Partial {
	clean := CleanText(doc)
	return &Partial{
		Name:         headingName(doc),
		Bio:          bioText(doc, clean),
		Expertise:    vocabularyMatches(clean),
		Publications: publicationAnchors(doc),
	}
}

// titleSuffix strips site names like " - Example University" from <title>.
var titleSuffix = regexp.MustCompile(`\s*[-|]\s*.*$`)

func headingName(doc *Document) string {
	if h1 := doc.Select("h1"); h1 != nil {
		if name := Text(h1); runeLen(name) < 50 {
			return name
		}
	}
	if title := doc.Title(); title != "" {
		if name := titleSuffix.ReplaceAllString(title, ""); runeLen(name) < 50 {
			return name
		}
	}
	return "Unknown"
}

// Containers that commonly hold a biography, tried in order.
var bioSelectors = []string{".bio", ".about", "#about", ".description", ".profile-description", ".summary"}

func bioText(doc *Document, clean string) string {
	for _, selector := range bioSelectors {
		if n := doc.Select(selector); n != nil {
			if bio := Text(n); runeLen(bio) > 50 && runeLen(bio) < 1000 {
				return bio
			}
		}
	}
	for _, p := range doc.SelectAll("p") {
		if text := Text(p); runeLen(text) > 100 && runeLen(text) < 1000 {
			return text
		}
	}
	if runeLen(clean) > 100 {
		return truncateRunes(clean, 500)
	}
	return ""
}

// researchVocabulary is the fixed term set matched as substrings of the
// cleaned, lowercased page text.
var researchVocabulary = []string{
	"machine learning", "artificial intelligence", "deep learning",
	"computer vision", "natural language processing", "nlp",
	"data science", "robotics", "computer science",
	"neuroscience", "biology", "chemistry", "physics",
	"mathematics", "statistics", "genomics", "bioinformatics",
	"engineering", "electrical engineering", "mechanical engineering",
	"civil engineering", "materials science",
	"medicine", "public health", "epidemiology", "clinical research",
	"climate science", "environmental science", "energy",
	"quantum computing", "cryptography", "cybersecurity",
	"economics", "finance", "social science", "psychology",
}

func vocabularyMatches(clean string) []string {
	lower := strings.ToLower(clean)
	var matched []string
	for _, term := range researchVocabulary {
		if strings.Contains(lower, term) {
			matched = append(matched, titleCase(term))
		}
	}
	return matched
}

// Keywords that mark a link as a likely publication.
var publicationKeywords = []string{"paper", "publication", "article", "research", "pdf", "doi"}

func publicationAnchors(doc *Document) []Publication {
	var pubs []Publication
	scanned := 0
	for _, a := range doc.Anchors() {
		if a.Href == "" {
			continue
		}
		if scanned >= 30 {
			break
		}
		scanned++

		lowerText := strings.ToLower(a.Text)
		lowerHref := strings.ToLower(a.Href)
		if !containsAny(lowerText, lowerHref, publicationKeywords) {
			continue
		}
		if n := runeLen(a.Text); n > 10 && n < 200 {
			pubs = append(pubs, Publication{Title: a.Text, Link: a.Href})
		}
		if len(pubs) >= maxPublications {
			break
		}
	}
	return pubs
}

func containsAny(text, href string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first letter of each word. The vocabulary is
// all-ASCII lowercase, so this is enough.
func titleCase(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
