package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ankidiff/ankidiff/internal/model"
)

// ContentType classifies the markup flavor of card text.
type ContentType string

const (
	ContentPlainText ContentType = "plain_text"
	ContentHTML      ContentType = "html"
	ContentMarkdown  ContentType = "markdown"
	ContentCloze     ContentType = "cloze" // Anki cloze deletion format
	ContentMixed     ContentType = "mixed"
)

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
	clozePattern    = regexp.MustCompile(`\{\{c\d+::(.*?)(?:::.*?)?\}\}`)
	fieldRefPattern = regexp.MustCompile(`\{\{[^}]+\}\}`)
	punctPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	wsPattern       = regexp.MustCompile(`\s+`)
)

// Structural tags flatten to spaces so adjacent blocks don't fuse into one word.
var htmlReplacer = strings.NewReplacer(
	"<br>", " ", "<br/>", " ", "<br />", " ",
	"<p>", " ", "</p>", " ",
	"<div>", " ", "</div>", " ",
	"<b>", " ", "</b>", " ",
	"<i>", " ", "</i>", " ",
	"<u>", " ", "</u>", " ",
	"<strong>", " ", "</strong>", " ",
	"<em>", " ", "</em>", " ",
)

// markdownRules unwrap common Markdown markers to their inner text. Code
// blocks go before inline code and images before links so the longer form
// wins.
var markdownRules = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile("(?s)```.*?```"), ""},
	{regexp.MustCompile("`(.*?)`"), "${1}"},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "${1}"},
	{regexp.MustCompile(`\*(.*?)\*`), "${1}"},
	{regexp.MustCompile(`__(.*?)__`), "${1}"},
	{regexp.MustCompile(`_(.*?)_`), "${1}"},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), "${1}"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "${1}"},
	{regexp.MustCompile(`(?m)^#+\s*`), ""},
	{regexp.MustCompile(`(?m)^>\s*`), ""},
}

var markdownIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\*\*.*?\*\*`),
	regexp.MustCompile(`\*.*?\*`),
	regexp.MustCompile("`.*?`"),
	regexp.MustCompile("```"),
	regexp.MustCompile(`(?m)^#+\s`),
	regexp.MustCompile(`(?m)^>\s`),
	regexp.MustCompile(`\[.*?\]\(.*?\)`),
}

// Normalizer canonicalizes raw card text before comparison. Normalization is
// total: any input, including empty, yields a string and never an error.
type Normalizer struct {
	caseSensitive     bool
	ignoreHTML        bool
	ignorePunctuation bool
}

// New creates a normalizer from the comparison configuration.
func New(cfg model.SimilarityConfig) *Normalizer {
	return &Normalizer{
		caseSensitive:     cfg.CaseSensitive,
		ignoreHTML:        cfg.IgnoreHTML,
		ignorePunctuation: cfg.IgnorePunctuation,
	}
}

// Normalize canonicalizes text, auto-detecting its content type.
func (n *Normalizer) Normalize(text string) string {
	return n.NormalizeAs(text, n.DetectContentType(text))
}

// NormalizeAs canonicalizes text with a known content type. The pipeline
// order is fixed: entity decode, content-type rewrite, tag strip, punctuation
// strip, case fold, whitespace collapse.
func (n *Normalizer) NormalizeAs(text string, contentType ContentType) string {
	if text == "" {
		return ""
	}

	processed := html.UnescapeString(text)

	if contentType == ContentHTML || contentType == ContentMixed {
		processed = htmlReplacer.Replace(processed)
	}
	if contentType == ContentCloze || contentType == ContentMixed {
		processed = clozePattern.ReplaceAllString(processed, "${1}")
		processed = fieldRefPattern.ReplaceAllString(processed, "")
	}
	if contentType == ContentMarkdown || contentType == ContentMixed {
		for _, rule := range markdownRules {
			processed = rule.pattern.ReplaceAllString(processed, rule.repl)
		}
	}

	if n.ignoreHTML {
		processed = stripTags(processed)
	}
	if n.ignorePunctuation {
		processed = punctPattern.ReplaceAllString(processed, "")
	}
	if !n.caseSensitive {
		processed = strings.ToLower(processed)
	}

	return strings.TrimSpace(wsPattern.ReplaceAllString(processed, " "))
}

// DetectContentType probes the text for markup. Detection is best-effort: a
// wrong guess only changes which rewrite rules fire, and absent markup simply
// does not match.
func (n *Normalizer) DetectContentType(text string) ContentType {
	if text == "" {
		return ContentPlainText
	}

	hasHTML := htmlTagPattern.MatchString(text)
	hasCloze := clozePattern.MatchString(text)
	hasMarkdown := hasMarkdownSyntax(text)

	switch {
	case hasCloze:
		return ContentCloze
	case hasHTML && hasMarkdown:
		return ContentMixed
	case hasHTML:
		return ContentHTML
	case hasMarkdown:
		return ContentMarkdown
	default:
		return ContentPlainText
	}
}

func hasMarkdownSyntax(text string) bool {
	for _, pattern := range markdownIndicators {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// stripTags removes remaining tag spans by parsing the fragment and keeping
// visible text, skipping script/style subtrees. Falls back to a regex sweep
// if parsing fails.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return htmlTagPattern.ReplaceAllString(s, " ")
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}
