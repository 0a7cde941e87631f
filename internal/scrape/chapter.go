package scrape

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	xhtml "golang.org/x/net/html"
)

var (
	brPattern    = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	blockPattern = regexp.MustCompile(`(?i)</?(?:p|div|h[1-6]|li|tr)(?:\s[^>]*)?>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// Link is one anchor extracted from a listing page.
type Link struct {
	Href string
	Text string
}

// Title returns the normalized text of the first selector match.
func Title(doc *goquery.Document, selector string) string {
	return NormalizeWhitespace(doc.Find(selector).First().Text())
}

// BodyText extracts a chapter body from the first selector match.
// Paragraph-structured markup joins <p> blocks with blank lines; flat
// markup splits on <br> instead, which is how most of the supported
// sites lay chapters out.
func BodyText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}

	paras := sel.Find("p")
	if paras.Length() > 0 {
		var parts []string
		paras.Each(func(_ int, p *goquery.Selection) {
			if t := NormalizeWhitespace(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}

	inner, err := sel.Html()
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}
	return FlattenHTML(inner)
}

// FlattenHTML turns an HTML fragment into newline-separated plain text:
// <br> runs and block tag boundaries become line breaks, remaining tags
// are stripped, entities unescaped, blank lines dropped.
func FlattenHTML(fragment string) string {
	text := brPattern.ReplaceAllString(fragment, "\n")
	text = blockPattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var parts []string
	for _, line := range strings.Split(text, "\n") {
		if t := NormalizeWhitespace(line); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Links extracts deduplicated anchors matching selector, resolving
// relative hrefs against base. Fragment and javascript pseudo-links are
// skipped.
func Links(doc *goquery.Document, selector string, base *url.URL) []Link {
	var links []Link
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		href = resolveURL(base, href)
		if seen[href] {
			return
		}
		seen[href] = true
		links = append(links, Link{Href: href, Text: NormalizeWhitespace(a.Text())})
	})
	return links
}

// ImageURLs extracts image sources matching selector, preferring src
// and falling back to the data-src lazy-load attribute.
func ImageURLs(doc *goquery.Document, selector string, base *url.URL) []string {
	var urls []string
	doc.Find(selector).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			src, ok = img.Attr("data-src")
		}
		if !ok {
			return
		}
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		urls = append(urls, resolveURL(base, src))
	})
	return Deduplicate(urls)
}

// Attr returns the named attribute of the first selector match.
func Attr(doc *goquery.Document, selector, name string) string {
	v, _ := doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// XPathText extracts trimmed text of the first node matching expr.
func XPathText(n *xhtml.Node, expr string) (string, error) {
	node, err := htmlquery.Query(n, expr)
	if err != nil || node == nil {
		return "", err
	}
	return ExtractText(node), nil
}

// XPathAll returns every node matching expr.
func XPathAll(n *xhtml.Node, expr string) ([]*xhtml.Node, error) {
	return htmlquery.QueryAll(n, expr)
}

// XPathAttr extracts an attribute from the first node matching expr.
func XPathAttr(n *xhtml.Node, expr, attr string) (string, error) {
	node, err := htmlquery.Query(n, expr)
	if err != nil || node == nil {
		return "", err
	}
	return htmlquery.SelectAttr(node, attr), nil
}

// CleanText drops body lines matching any of the given patterns. Sites
// inject ad and watermark lines into chapter bodies; patterns come from
// the per-site source config.
func (o *Ops) CleanText(text string, patterns []string) string {
	if len(patterns) == 0 {
		return text
	}
	var kept []string
	blanks := 0
	for _, line := range strings.Split(text, "\n") {
		drop := false
		for _, p := range patterns {
			re, err := o.GetCachedRegex(p)
			if err != nil {
				continue
			}
			if re.MatchString(line) {
				drop = true
				break
			}
		}
		if drop {
			continue
		}
		// Dropped lines leave blank-line holes; cap runs at one.
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		kept = append(kept, line)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), "\n")
}
