package scrape

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion
const MaxHTMLSize = 10 * 1024 * 1024

// Ops provides shared scraping helpers: a sanitizer policy and a cache
// of compiled regexps for site cleanup patterns.
type Ops struct {
	regexCache sync.Map
	sanitizer  *bluemonday.Policy
}

// NewOps creates ops with the UGC sanitizer policy.
func NewOps() *Ops {
	return &Ops{
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// ValidateHTML checks HTML size and returns error if too large
func ValidateHTML(htmlStr string) error {
	if len(htmlStr) == 0 {
		return fmt.Errorf("html content required")
	}
	if len(htmlStr) > MaxHTMLSize {
		return fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	}
	return nil
}

// DetectCharset detects and returns the charset label for raw page
// bytes. Chinese fiction sites commonly serve GBK or GB18030 without
// declaring it.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// LoadBytes parses raw page bytes into a goquery document, converting
// to UTF-8 from the detected charset first.
func LoadBytes(data []byte) (*goquery.Document, error) {
	if err := ValidateHTML(string(data)); err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(decodeReader(data))
}

// LoadHTML parses an HTML string with automatic charset detection.
func LoadHTML(htmlStr string) (*goquery.Document, error) {
	return LoadBytes([]byte(htmlStr))
}

// LoadNode parses raw page bytes into an xpath-compatible node tree.
func LoadNode(data []byte) (*html.Node, error) {
	if err := ValidateHTML(string(data)); err != nil {
		return nil, err
	}
	return htmlquery.Parse(decodeReader(data))
}

// charsetAliases maps the ICU-style names chardet reports to the WHATWG
// labels the charset package understands.
var charsetAliases = map[string]string{
	"gb-18030": "gb18030",
}

// decodeReader wraps data in a UTF-8 converting reader for the detected
// charset, falling back to the raw bytes when the label is unknown.
func decodeReader(data []byte) *bytes.Reader {
	label := DetectCharset(data)
	if alias, ok := charsetAliases[label]; ok {
		label = alias
	}
	if label == "utf-8" {
		return bytes.NewReader(data)
	}
	utf8Reader, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return bytes.NewReader(data)
	}
	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return bytes.NewReader(data)
	}
	return bytes.NewReader(decoded)
}

// SanitizeHTML strips scripts and event handlers from untrusted markup.
func (o *Ops) SanitizeHTML(htmlStr string) string {
	return o.sanitizer.Sanitize(htmlStr)
}

// GetCachedRegex returns cached compiled regex
func (o *Ops) GetCachedRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := o.regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	o.regexCache.Store(pattern, re)
	return re, nil
}

// ExtractText safely extracts text from node
func ExtractText(n *html.Node) string {
	var buf bytes.Buffer
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.TrimSpace(buf.String())
}

// NormalizeWhitespace collapses multiple spaces into one
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateText truncates text to maxLen runes with ellipsis. Cuts are
// rune-aligned so CJK titles never end mid-character.
func TruncateText(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// Deduplicate removes duplicate strings while preserving order
func Deduplicate(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
