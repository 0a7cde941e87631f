package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/time/rate"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
)

// maxBodySize caps a single response body. Chapter pages are tens of
// kilobytes; anything near this limit is not a chapter.
const maxBodySize = 20 * 1024 * 1024

// Client wraps resty with a retrying transport, per-host rate limiting,
// and content-encoding aware body reading. It satisfies sources.Client.
type Client struct {
	resty  *resty.Client
	logger *logging.Logger

	global *rate.Limiter
	hosts  sync.Map // hostname -> *rate.Limiter
	rps    float64
	burst  int
}

// NewClient creates the outbound HTTP client.
func NewClient(cfg config.FetchConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(1*time.Second).
		SetRetryMaxWaitTime(15*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8").
		SetHeader("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8").
		SetHeader("Accept-Encoding", "gzip, deflate, zstd")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	rps := cfg.PerSiteRPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.PerSiteBurst
	if burst <= 0 {
		burst = int(rps) + 1
	}

	// Unlimited unless the deployment caps aggregate throughput.
	global := rate.NewLimiter(rate.Inf, 0)
	if cfg.GlobalRPS > 0 {
		global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), int(cfg.GlobalRPS)+1)
	}

	return &Client{
		resty:  restyClient,
		logger: logger.Named("fetch"),
		global: global,
		rps:    rps,
		burst:  burst,
	}
}

// limiterFor returns the rate limiter for one host, creating it on
// first use.
func (c *Client) limiterFor(host string) *rate.Limiter {
	if lim, ok := c.hosts.Load(host); ok {
		return lim.(*rate.Limiter)
	}
	created := rate.NewLimiter(rate.Limit(c.rps), c.burst)
	actual, _ := c.hosts.LoadOrStore(host, created)
	return actual.(*rate.Limiter)
}

// GetBytes fetches one URL and returns the decoded body. Rate limits
// apply per host so one slow site cannot starve the rest.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bad url %q: %w", rawURL, err)
	}

	if err := c.global.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if err := c.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", u.Hostname(), err)
	}

	resp, err := c.resty.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", rawURL, maxBodySize)
	}

	decoded, err := decompress(resp.Header().Get("Content-Encoding"), body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: decode body: %w", rawURL, err)
	}
	return decoded, nil
}

// decompress reverses the response content encoding. The transport does
// not auto-decode because Accept-Encoding is set explicitly.
func decompress(encoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(io.LimitReader(zr, maxBodySize))
	case "deflate":
		// Some origins send raw deflate streams instead of zlib.
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			return io.ReadAll(io.LimitReader(zr, maxBodySize))
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return io.ReadAll(io.LimitReader(fr, maxBodySize))
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(io.LimitReader(zr, maxBodySize))
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}
