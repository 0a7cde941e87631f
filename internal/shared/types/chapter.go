package types

// Image is an inline chapter image: a bare external reference, or the
// fetched bytes plus sniffed content type when the site supports native
// images. Digest identifies inlined bytes so readers can dedupe across
// chapters.
type Image struct {
	URL         string `json:"url"`
	Alt         string `json:"alt,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
	Digest      string `json:"digest,omitempty"`
}

// ChapterPayload is what a site parser produces for one chapter before
// any decryption. For encrypted sites the four decrypt inputs are
// populated; Body then holds the cipher-wrapped payload exactly as the
// site returned it.
type ChapterPayload struct {
	Ref   string `json:"ref"`
	Title string `json:"title"`
	Body  string `json:"body"`

	// Decrypt inputs, set only by parsers for encrypted sites.
	ChapterID string `json:"chapter_id,omitempty"`
	KeyPacket string `json:"key_packet,omitempty"`
	UserID    string `json:"user_id,omitempty"`

	Images []Image `json:"images,omitempty"`
}

// FetchStatus is the terminal status of one chapter fetch.
type FetchStatus string

const (
	StatusOK               FetchStatus = "ok"
	StatusDecryptionFailed FetchStatus = "decryption_failed"
	StatusSiteError        FetchStatus = "site_error"
)

// ChapterResult is the outcome of one chapter fetch. Content is set only
// when Status is StatusOK; partial content is never carried on failure
// paths.
type ChapterResult struct {
	Ref     string      `json:"ref"`
	Title   string      `json:"title,omitempty"`
	Status  FetchStatus `json:"status"`
	Content string      `json:"content,omitempty"`
	Images  []Image     `json:"images,omitempty"`

	Err error `json:"-"`
}

// ErrorMessage returns the failure detail, or "" on success.
func (r ChapterResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
