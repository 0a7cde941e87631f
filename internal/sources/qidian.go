package sources

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/scrape"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
)

const (
	qidianSiteID = "qidian"
	qidianHost   = "vipreader.qidian.com"
)

// qidianSource handles the reference encrypted site. VIP chapter pages
// carry the ciphertext body, the chapter id, a per-session key packet
// in an inline script, and the reader's user id; the vendor unlocking
// module itself ships separately and is loaded from a configured path,
// never embedded here.
type qidianSource struct {
	env decrypt.Env
}

// NewQidian builds the qidian source with the vendor module read from
// modulePath.
func NewQidian(modulePath string) (Source, error) {
	if modulePath == "" {
		return nil, fmt.Errorf("qidian: vendor module path is required")
	}
	js, err := os.ReadFile(modulePath)
	if err != nil {
		return nil, fmt.Errorf("qidian: read vendor module: %w", err)
	}
	return &qidianSource{
		env: decrypt.Env{
			SiteID:   qidianSiteID,
			Hostname: qidianHost,
			Module:   decrypt.VendorModule{Source: string(js)},
		},
	}, nil
}

func (s *qidianSource) ID() string {
	return qidianSiteID
}

// UnlockEnv supplies the decryption bridge inputs.
func (s *qidianSource) UnlockEnv() decrypt.Env {
	return s.env
}

func (s *qidianSource) bookURL(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return "https://" + qidianHost + "/ajax/chapter/chapterList?bookId=" + url.QueryEscape(ref)
}

func (s *qidianSource) chapterURL(ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return "https://" + qidianHost + "/chapter/" + ref
}

func (s *qidianSource) Book(ctx context.Context, client Client, ref string) (*types.Book, error) {
	data, err := client.GetBytes(ctx, s.bookURL(ref))
	if err != nil {
		return nil, fmt.Errorf("qidian: fetch book %s: %w", ref, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("qidian: parse book %s: %w", ref, err)
	}

	book := &types.Book{
		SiteID: qidianSiteID,
		Ref:    ref,
		Title:  scrape.Title(doc, "h1.book-title, .book-info h1"),
		Author: scrape.Title(doc, ".author, .book-info .writer"),
	}

	base, _ := url.Parse("https://" + qidianHost + "/")
	doc.Find(".volume").Each(func(_ int, vol *goquery.Selection) {
		v := types.Volume{Title: scrape.NormalizeWhitespace(vol.Find("h3").First().Text())}
		vol.Find("li a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
				href = base.ResolveReference(u).String()
			}
			v.Chapters = append(v.Chapters, types.ChapterMeta{
				Ref:   href,
				Title: scrape.NormalizeWhitespace(a.Text()),
				URL:   href,
			})
		})
		if len(v.Chapters) > 0 {
			book.Volumes = append(book.Volumes, v)
		}
	})
	if book.ChapterCount() == 0 {
		return nil, fmt.Errorf("qidian: book %s: no chapters found", ref)
	}
	return book, nil
}

// Chapter pulls the four decrypt inputs off a VIP chapter page. Body
// stays cipher-wrapped; the orchestrator routes it through the bridge.
func (s *qidianSource) Chapter(ctx context.Context, client Client, ref string) (*types.ChapterPayload, error) {
	data, err := client.GetBytes(ctx, s.chapterURL(ref))
	if err != nil {
		return nil, fmt.Errorf("qidian: fetch chapter %s: %w", ref, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("qidian: parse chapter %s: %w", ref, err)
	}

	content := doc.Find("#j_chapterBox .read-content").First()
	if content.Length() == 0 {
		content = doc.Find("#j_chapterBox").First()
	}
	body := strings.TrimSpace(content.Text())
	if body == "" {
		return nil, fmt.Errorf("qidian: chapter %s: empty payload", ref)
	}

	payload := &types.ChapterPayload{
		Ref:       ref,
		Title:     scrape.Title(doc, "h3.j_chapterName, .j_chapterName"),
		Body:      body,
		ChapterID: scrape.Attr(doc, "#j_chapterBox", "data-cid"),
		KeyPacket: strings.TrimSpace(doc.Find("script#fkp").First().Text()),
		UserID:    scrape.Attr(doc, `meta[name="userId"]`, "content"),
	}
	return payload, nil
}

// Search queries the site-internal book search.
func (s *qidianSource) Search(ctx context.Context, client Client, query string) ([]types.SearchHit, error) {
	u := "https://" + qidianHost + "/search?kw=" + url.QueryEscape(query)
	data, err := client.GetBytes(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("qidian: search %q: %w", query, err)
	}
	doc, err := scrape.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("qidian: parse search %q: %w", query, err)
	}

	var hits []types.SearchHit
	doc.Find(".res-book-item").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("h4 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if bid, ok := row.Attr("data-bid"); ok && bid != "" {
			href = bid
		}
		hits = append(hits, types.SearchHit{
			SiteID: qidianSiteID,
			Ref:    strings.TrimSpace(href),
			Title:  scrape.NormalizeWhitespace(link.Text()),
			Author: scrape.NormalizeWhitespace(row.Find(".author a").First().Text()),
		})
	})
	return hits, nil
}
