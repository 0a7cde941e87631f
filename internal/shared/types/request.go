package types

// FetchChapterRequest asks for one chapter from one site.
type FetchChapterRequest struct {
	SiteID     string `json:"site_id" binding:"required"`
	ChapterRef string `json:"chapter_ref" binding:"required"`
}

// FetchBookRequest starts a whole-book fetch job.
type FetchBookRequest struct {
	SiteID  string `json:"site_id" binding:"required"`
	BookRef string `json:"book_ref" binding:"required"`
}

// DecryptRequest invokes the bridge directly with parser-supplied fields.
// All four decrypt fields are part of the contract; user_id may be empty.
type DecryptRequest struct {
	SiteID           string `json:"site_id" binding:"required"`
	EncryptedContent string `json:"encrypted_content" binding:"required"`
	ChapterID        string `json:"chapter_id" binding:"required"`
	KeyPacket        string `json:"key_packet" binding:"required"`
	UserID           string `json:"user_id"`
}

// SearchRequest queries a site-internal search.
type SearchRequest struct {
	SiteID string `json:"site_id" binding:"required"`
	Query  string `json:"query" binding:"required"`
}

// WSMessage represents a WebSocket message.
type WSMessage struct {
	Type  string `json:"type"`
	JobID string `json:"job_id,omitempty"`
}
