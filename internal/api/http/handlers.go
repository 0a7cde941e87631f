package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/fetch"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
	"github.com/saudadez21/novel-downloader-sub001/internal/resilience"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/utils"
	"github.com/saudadez21/novel-downloader-sub001/internal/sites"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	sites   *sites.Registry
	orch    *fetch.Orchestrator
	jobs    *fetch.Jobs
	metrics *monitoring.Metrics
	version string
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(
	reg *sites.Registry,
	orch *fetch.Orchestrator,
	jobs *fetch.Jobs,
	metrics *monitoring.Metrics,
	version string,
) *Handlers {
	return &Handlers{
		sites:   reg,
		orch:    orch,
		jobs:    jobs,
		metrics: metrics,
		version: version,
		started: time.Now(),
	}
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "novel-downloader",
		"version": h.version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"sites":          h.sites.Len(),
		"jobs":           len(h.jobs.List()),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// ListSites lists every registered capability vector
func (h *Handlers) ListSites(c *gin.Context) {
	records := h.sites.List()
	c.JSON(http.StatusOK, gin.H{
		"sites": records,
		"count": len(records),
	})
}

// GetSite returns one site's capability vector
func (h *Handlers) GetSite(c *gin.Context) {
	siteID := c.Param("id")

	caps, err := h.sites.Lookup(siteID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, caps)
}

// chapterResponse is the fetch result envelope. Content appears only on
// ok; failures carry the error detail instead.
type chapterResponse struct {
	types.ChapterResult
	Error string `json:"error,omitempty"`
}

// FetchChapter fetches one chapter and reports the outcome envelope.
// Failures stay inside the envelope; the HTTP status diverges only for
// unknown sites and tripped breakers.
func (h *Handlers) FetchChapter(c *gin.Context) {
	var req types.FetchChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := firstError(utils.ValidateSiteID(req.SiteID), utils.ValidateRef(req.ChapterRef)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.orch.FetchChapter(c.Request.Context(), req.SiteID, req.ChapterRef)

	code := http.StatusOK
	switch {
	case errors.Is(res.Err, sites.ErrUnknownSite):
		code = http.StatusNotFound
	case errors.Is(res.Err, resilience.ErrCircuitOpen):
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, chapterResponse{res, res.ErrorMessage()})
}

// Decrypt invokes the unlock bridge directly with parser-supplied
// fields and returns the bare plaintext. Unlike FetchChapter this maps
// failure classes onto HTTP codes because there is no envelope.
func (h *Handlers) Decrypt(c *gin.Context) {
	var req types.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := firstError(
		utils.ValidateSiteID(req.SiteID),
		utils.ValidateDecryptSizes(req.EncryptedContent, req.KeyPacket),
	); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plaintext, err := h.orch.Decrypt(req.SiteID, map[string]any{
		"encrypted_content": req.EncryptedContent,
		"chapter_id":        req.ChapterID,
		"key_packet":        req.KeyPacket,
		"user_id":           req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, sites.ErrUnknownSite):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, fetch.ErrNotEncrypted), errors.Is(err, fetch.ErrNoUnlockEnv), errors.Is(err, fetch.ErrNoSource):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case decrypt.IsMalformed(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"status":  types.StatusDecryptionFailed,
				"outcome": decrypt.Outcome(err),
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    types.StatusOK,
		"plaintext": plaintext,
	})
}

// FetchBook spawns a whole-book fetch job
func (h *Handlers) FetchBook(c *gin.Context) {
	var req types.FetchBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := firstError(utils.ValidateSiteID(req.SiteID), utils.ValidateRef(req.BookRef)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.sites.Has(req.SiteID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown site: " + req.SiteID})
		return
	}

	job, err := h.jobs.Spawn(req.SiteID, req.BookRef)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

// ListJobs lists all jobs, newest first
func (h *Handlers) ListJobs(c *gin.Context) {
	jobs := h.jobs.List()
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJob returns one job with its collected chapter results
func (h *Handlers) GetJob(c *gin.Context) {
	jobID := c.Param("id")

	job, results, ok := h.jobs.Get(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job: " + jobID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"results": results,
	})
}

// CancelJob requests cancellation of a running job
func (h *Handlers) CancelJob(c *gin.Context) {
	jobID := c.Param("id")

	if _, _, ok := h.jobs.Get(jobID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job: " + jobID})
		return
	}

	cancelled := h.jobs.Cancel(jobID)
	c.JSON(http.StatusOK, gin.H{
		"success": cancelled,
		"job_id":  jobID,
	})
}

// Search runs a site-internal search
func (h *Handlers) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := firstError(utils.ValidateSiteID(req.SiteID), utils.ValidateQuery(req.Query)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hits, err := h.orch.Search(c.Request.Context(), req.SiteID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, sites.ErrUnknownSite):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, fetch.ErrSearchUnsupported):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":  hits,
		"count": len(hits),
	})
}
