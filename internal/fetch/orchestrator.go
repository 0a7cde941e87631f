package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
	"github.com/saudadez21/novel-downloader-sub001/internal/resilience"
	"github.com/saudadez21/novel-downloader-sub001/internal/scrape"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
	"github.com/saudadez21/novel-downloader-sub001/internal/sites"
	"github.com/saudadez21/novel-downloader-sub001/internal/sources"
)

var (
	// ErrNoSource means the capability registry knows the site but no
	// parser is registered for it.
	ErrNoSource = errors.New("no source registered")

	// ErrNoUnlockEnv means the site requires decryption but its source
	// cannot supply an unlock environment.
	ErrNoUnlockEnv = errors.New("source has no unlock environment")

	// ErrSearchUnsupported means the site's capability vector does not
	// declare internal search.
	ErrSearchUnsupported = errors.New("site search not supported")

	// ErrNotEncrypted guards the direct decrypt surface: only sites
	// whose vector sets requires_decryption may be routed through it.
	ErrNotEncrypted = errors.New("site does not require decryption")
)

// Orchestrator routes chapter fetches through capability gating, the
// site parser, and the decryption bridge. The capability vector is
// authoritative: decryption runs exactly when requires_decryption is
// set, and image handling follows the declared support level.
type Orchestrator struct {
	caps     *sites.Registry
	sources  *sources.Registry
	bridge   *decrypt.Bridge
	client   sources.Client
	breakers *resilience.Group
	ops      *scrape.Ops
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewOrchestrator wires the fetch pipeline together.
func NewOrchestrator(
	caps *sites.Registry,
	srcs *sources.Registry,
	bridge *decrypt.Bridge,
	client sources.Client,
	logger *logging.Logger,
	metrics *monitoring.Metrics,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Orchestrator{
		caps:    caps,
		sources: srcs,
		bridge:  bridge,
		client:  client,
		ops:     scrape.NewOps(),
		logger:  logger.Named("orchestrator"),
		metrics: metrics,
	}
	o.breakers = resilience.NewGroup(resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Content sites flap; trip only on sustained failure.
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			o.logger.Warn("breaker state change",
				logging.Site(name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if o.metrics != nil {
				o.metrics.SetBreakerState(name, int(to))
			}
		},
	})
	return o
}

// FetchChapter fetches one chapter and resolves it to a terminal
// result. Content is set only on ok; failures carry the error and
// never partial content.
func (o *Orchestrator) FetchChapter(ctx context.Context, siteID, chapterRef string) types.ChapterResult {
	start := time.Now()
	res := o.fetchChapter(ctx, siteID, chapterRef)
	if o.metrics != nil {
		o.metrics.RecordFetch(siteID, string(res.Status), time.Since(start))
	}
	o.logger.Debug("chapter fetch finished",
		logging.Site(siteID),
		logging.Chapter(chapterRef),
		zap.String("status", string(res.Status)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(res.Err),
	)
	return res
}

func (o *Orchestrator) fetchChapter(ctx context.Context, siteID, chapterRef string) types.ChapterResult {
	caps, err := o.caps.Lookup(siteID)
	if err != nil {
		return siteError(chapterRef, err)
	}
	src, ok := o.sources.Get(siteID)
	if !ok {
		return siteError(chapterRef, fmt.Errorf("%w: %s", ErrNoSource, siteID))
	}

	var payload *types.ChapterPayload
	err = o.breakers.Do(siteID, func() error {
		var ferr error
		payload, ferr = src.Chapter(ctx, o.client, chapterRef)
		return ferr
	})
	if err != nil {
		return siteError(chapterRef, err)
	}

	if !caps.RequiresDecryption {
		return types.ChapterResult{
			Ref:     chapterRef,
			Title:   payload.Title,
			Status:  types.StatusOK,
			Content: payload.Body,
			Images:  o.resolveImages(ctx, caps, payload.Images),
		}
	}

	unl, ok := src.(sources.Unlockable)
	if !ok {
		return siteError(chapterRef, fmt.Errorf("%w: %s", ErrNoUnlockEnv, siteID))
	}

	// Vendor rejections and timeouts are definitive per-attempt
	// outcomes, not site health signals; they bypass the breaker.
	req := decrypt.Request{
		EncryptedContent: payload.Body,
		ChapterID:        payload.ChapterID,
		KeyPacket:        payload.KeyPacket,
		UserID:           payload.UserID,
	}
	plaintext, err := o.bridge.Decrypt(unl.UnlockEnv(), req)
	if err != nil {
		return types.ChapterResult{
			Ref:    chapterRef,
			Title:  payload.Title,
			Status: types.StatusDecryptionFailed,
			Err:    err,
		}
	}

	return types.ChapterResult{
		Ref:     chapterRef,
		Title:   payload.Title,
		Status:  types.StatusOK,
		Content: o.renderDecrypted(plaintext),
		Images:  o.resolveImages(ctx, caps, payload.Images),
	}
}

// renderDecrypted turns vendor plaintext into reader text. VIP payloads
// decrypt to HTML fragments; markup is sanitized and flattened, plain
// payloads pass through unchanged.
func (o *Orchestrator) renderDecrypted(plaintext string) string {
	return scrape.FlattenHTML(o.ops.SanitizeHTML(plaintext))
}

// FetchBook fetches and parses a book's table of contents.
func (o *Orchestrator) FetchBook(ctx context.Context, siteID, bookRef string) (*types.Book, error) {
	caps, err := o.caps.Lookup(siteID)
	if err != nil {
		return nil, err
	}
	src, ok := o.sources.Get(siteID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, siteID)
	}

	var book *types.Book
	err = o.breakers.Do(siteID, func() error {
		var ferr error
		book, ferr = src.Book(ctx, o.client, bookRef)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	// Sites without native volume structure flatten to a single pane no
	// matter how the parser grouped the anchors.
	if caps.Volumes == sites.VolumesNone && len(book.Volumes) > 1 {
		book.Volumes = []types.Volume{{Chapters: book.AllChapters()}}
	}
	return book, nil
}

// Search runs a site-internal search when the capability vector allows
// it.
func (o *Orchestrator) Search(ctx context.Context, siteID, query string) ([]types.SearchHit, error) {
	caps, err := o.caps.Lookup(siteID)
	if err != nil {
		return nil, err
	}
	if caps.Search != sites.SearchInternal {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnsupported, siteID)
	}
	src, ok := o.sources.Get(siteID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, siteID)
	}
	searcher, ok := src.(sources.Searcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnsupported, siteID)
	}

	var hits []types.SearchHit
	err = o.breakers.Do(siteID, func() error {
		var serr error
		hits, serr = searcher.Search(ctx, o.client, query)
		return serr
	})
	return hits, err
}

// Decrypt invokes the bridge directly with parser-declared fields for
// an encrypted site. The raw plaintext is returned unrendered.
func (o *Orchestrator) Decrypt(siteID string, fields map[string]any) (string, error) {
	caps, err := o.caps.Lookup(siteID)
	if err != nil {
		return "", err
	}
	if !caps.RequiresDecryption {
		return "", fmt.Errorf("%w: %s", ErrNotEncrypted, siteID)
	}
	src, ok := o.sources.Get(siteID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSource, siteID)
	}
	unl, ok := src.(sources.Unlockable)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoUnlockEnv, siteID)
	}

	req, err := decrypt.RequestFromFields(fields)
	if err != nil {
		return "", err
	}
	return o.bridge.Decrypt(unl.UnlockEnv(), req)
}

// BreakerStates exposes per-site breaker states for the stats surface.
func (o *Orchestrator) BreakerStates() map[string]resilience.State {
	return o.breakers.States()
}

func siteError(ref string, err error) types.ChapterResult {
	return types.ChapterResult{Ref: ref, Status: types.StatusSiteError, Err: err}
}
