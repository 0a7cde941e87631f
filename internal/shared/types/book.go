package types

// Book is the table of contents for one title on one site.
type Book struct {
	SiteID  string   `json:"site_id"`
	Ref     string   `json:"ref"`
	Title   string   `json:"title"`
	Author  string   `json:"author,omitempty"`
	Cover   string   `json:"cover,omitempty"`
	Volumes []Volume `json:"volumes"`
}

// Volume groups chapters. Sites without native volume structure get a
// single unnamed volume.
type Volume struct {
	Title    string        `json:"title,omitempty"`
	Chapters []ChapterMeta `json:"chapters"`
}

// ChapterMeta identifies one chapter within a book's table of contents.
type ChapterMeta struct {
	Ref   string `json:"ref"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// ChapterCount returns the total chapter count across all volumes.
func (b *Book) ChapterCount() int {
	n := 0
	for _, v := range b.Volumes {
		n += len(v.Chapters)
	}
	return n
}

// AllChapters flattens the volume structure in reading order.
func (b *Book) AllChapters() []ChapterMeta {
	out := make([]ChapterMeta, 0, b.ChapterCount())
	for _, v := range b.Volumes {
		out = append(out, v.Chapters...)
	}
	return out
}

// SearchHit is one result from a site-internal search.
type SearchHit struct {
	SiteID string `json:"site_id"`
	Ref    string `json:"ref"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	URL    string `json:"url,omitempty"`
}
