package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/saudadez21/novel-downloader-sub001/internal/scrape"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
)

// SelectorConfig drives the generic CSS source. Paths are printf
// patterns taking the book or chapter ref; selectors address the site's
// markup. Optional fields switch features on when set.
type SelectorConfig struct {
	BaseURL     string
	BookPath    string
	ChapterPath string

	TitleSel   string
	AuthorSel  string
	CoverSel   string
	TOCSel     string
	VolumeSel  string
	BodySel    string
	HeadingSel string
	ImageSel   string

	// BodyXPath is tried when BodySel finds nothing. Some sites bury
	// the body in markup CSS selectors cannot reach cleanly.
	BodyXPath string

	SearchPath    string
	SearchRowSel  string
	SearchLinkSel string

	CleanPatterns []string
}

// maxTitleLen caps search hit titles in runes. Some sites stuff whole
// synopsis blocks inside the result anchor.
const maxTitleLen = 120

// cssSource parses a site purely through CSS selectors. One instance
// per site, configured from the builtin table or an overlay.
type cssSource struct {
	id   string
	cfg  SelectorConfig
	base *url.URL
	ops  *scrape.Ops
}

// NewCSS builds a generic source for one site.
func NewCSS(id string, cfg SelectorConfig) (Source, error) {
	if id == "" {
		return nil, fmt.Errorf("source ID cannot be empty")
	}
	if cfg.BaseURL == "" || cfg.BookPath == "" || cfg.ChapterPath == "" {
		return nil, fmt.Errorf("source %s: base URL and path patterns are required", id)
	}
	if cfg.TOCSel == "" || cfg.BodySel == "" {
		return nil, fmt.Errorf("source %s: toc and body selectors are required", id)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: bad base URL: %w", id, err)
	}
	return &cssSource{id: id, cfg: cfg, base: base, ops: scrape.NewOps()}, nil
}

func (s *cssSource) ID() string {
	return s.id
}

// pageURL expands a printf path pattern against the base URL. Refs that
// are already absolute URLs pass through untouched.
func (s *cssSource) pageURL(pattern, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimSuffix(s.cfg.BaseURL, "/") + fmt.Sprintf(pattern, ref)
}

func (s *cssSource) Book(ctx context.Context, client Client, ref string) (*types.Book, error) {
	data, err := client.GetBytes(ctx, s.pageURL(s.cfg.BookPath, ref))
	if err != nil {
		return nil, fmt.Errorf("%s: fetch book %s: %w", s.id, ref, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: parse book %s: %w", s.id, ref, err)
	}

	book := &types.Book{
		SiteID: s.id,
		Ref:    ref,
		Title:  scrape.Title(doc, s.cfg.TitleSel),
		Author: scrape.Title(doc, s.cfg.AuthorSel),
		Cover:  scrape.Attr(doc, s.cfg.CoverSel, "src"),
	}

	if s.cfg.VolumeSel != "" {
		book.Volumes = s.volumeTOC(doc)
	} else {
		links := scrape.Links(doc, s.cfg.TOCSel, s.base)
		book.Volumes = []types.Volume{{Chapters: chaptersFromLinks(links)}}
	}
	if book.ChapterCount() == 0 {
		return nil, fmt.Errorf("%s: book %s: no chapters found", s.id, ref)
	}
	return book, nil
}

// volumeTOC walks volume headers and chapter anchors in document order,
// grouping each anchor under the preceding header.
func (s *cssSource) volumeTOC(doc *goquery.Document) []types.Volume {
	var volumes []types.Volume
	current := types.Volume{}

	flush := func() {
		if len(current.Chapters) > 0 || current.Title != "" {
			volumes = append(volumes, current)
		}
	}

	doc.Find(s.cfg.VolumeSel + ", " + s.cfg.TOCSel).Each(func(_ int, sel *goquery.Selection) {
		if sel.Is(s.cfg.VolumeSel) {
			flush()
			current = types.Volume{Title: scrape.NormalizeWhitespace(sel.Text())}
			return
		}
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		if u, err := url.Parse(href); err == nil {
			href = s.base.ResolveReference(u).String()
		}
		current.Chapters = append(current.Chapters, types.ChapterMeta{
			Ref:   href,
			Title: scrape.NormalizeWhitespace(sel.Text()),
			URL:   href,
		})
	})
	flush()
	return volumes
}

func chaptersFromLinks(links []scrape.Link) []types.ChapterMeta {
	chapters := make([]types.ChapterMeta, 0, len(links))
	for _, l := range links {
		chapters = append(chapters, types.ChapterMeta{Ref: l.Href, Title: l.Text, URL: l.Href})
	}
	return chapters
}

func (s *cssSource) Chapter(ctx context.Context, client Client, ref string) (*types.ChapterPayload, error) {
	data, err := client.GetBytes(ctx, s.pageURL(s.cfg.ChapterPath, ref))
	if err != nil {
		return nil, fmt.Errorf("%s: fetch chapter %s: %w", s.id, ref, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: parse chapter %s: %w", s.id, ref, err)
	}

	body := scrape.BodyText(doc, s.cfg.BodySel)
	if strings.TrimSpace(body) == "" && s.cfg.BodyXPath != "" {
		body = s.xpathBody(data)
	}
	body = s.ops.CleanText(body, s.cfg.CleanPatterns)
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%s: chapter %s: empty body", s.id, ref)
	}

	payload := &types.ChapterPayload{
		Ref:   ref,
		Title: scrape.Title(doc, s.cfg.HeadingSel),
		Body:  body,
	}
	if s.cfg.ImageSel != "" {
		for _, src := range scrape.ImageURLs(doc, s.cfg.ImageSel, s.base) {
			payload.Images = append(payload.Images, types.Image{URL: src})
		}
	}
	return payload, nil
}

// xpathBody extracts the chapter body through the configured XPath
// expression.
func (s *cssSource) xpathBody(data []byte) string {
	node, err := scrape.LoadNode(data)
	if err != nil {
		return ""
	}
	text, err := scrape.XPathText(node, s.cfg.BodyXPath)
	if err != nil {
		return ""
	}
	return text
}

// Search implements site-internal search for configs that declare a
// search path. Sites without one report it as unsupported.
func (s *cssSource) Search(ctx context.Context, client Client, query string) ([]types.SearchHit, error) {
	if s.cfg.SearchPath == "" {
		return nil, fmt.Errorf("%s: search not configured", s.id)
	}
	data, err := client.GetBytes(ctx, s.pageURL(s.cfg.SearchPath, url.QueryEscape(query)))
	if err != nil {
		return nil, fmt.Errorf("%s: search %q: %w", s.id, query, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: parse search %q: %w", s.id, query, err)
	}

	var hits []types.SearchHit
	doc.Find(s.cfg.SearchRowSel).Each(func(_ int, row *goquery.Selection) {
		link := row
		if s.cfg.SearchLinkSel != "" {
			link = row.Find(s.cfg.SearchLinkSel).First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
			href = s.base.ResolveReference(u).String()
		}
		hits = append(hits, types.SearchHit{
			SiteID: s.id,
			Ref:    href,
			Title:  scrape.TruncateText(scrape.NormalizeWhitespace(link.Text()), maxTitleLen),
			URL:    href,
		})
	})
	return hits, nil
}
