package fetch

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/utils"
	"github.com/saudadez21/novel-downloader-sub001/internal/sites"
)

const (
	maxInlineImages = 16
	maxImageBytes   = 5 * 1024 * 1024
)

// resolveImages applies the site's declared image support to the
// references the parser collected: dropped entirely, kept as external
// URLs, or fetched and inlined with a sniffed content type.
func (o *Orchestrator) resolveImages(ctx context.Context, caps sites.Capabilities, images []types.Image) []types.Image {
	if len(images) == 0 {
		return nil
	}
	switch caps.Images {
	case sites.ImagesExternalOnly:
		out := make([]types.Image, 0, len(images))
		for _, img := range images {
			out = append(out, types.Image{URL: img.URL, Alt: img.Alt})
		}
		return out
	case sites.ImagesNative:
		return o.inlineImages(ctx, images)
	default:
		return nil
	}
}

// inlineImages fetches image bytes and keeps only payloads that sniff
// as images. Fetch failures and oversized or non-image payloads degrade
// to the bare external reference.
func (o *Orchestrator) inlineImages(ctx context.Context, images []types.Image) []types.Image {
	if len(images) > maxInlineImages {
		images = images[:maxInlineImages]
	}
	out := make([]types.Image, 0, len(images))
	for _, img := range images {
		data, err := o.client.GetBytes(ctx, img.URL)
		if err != nil {
			o.logger.Warn("inline image fetch failed", zap.String("url", img.URL), zap.Error(err))
			out = append(out, types.Image{URL: img.URL, Alt: img.Alt})
			continue
		}
		mtype := mimetype.Detect(data)
		if len(data) > maxImageBytes || !strings.HasPrefix(mtype.String(), "image/") {
			out = append(out, types.Image{URL: img.URL, Alt: img.Alt})
			continue
		}
		out = append(out, types.Image{
			URL:         img.URL,
			Alt:         img.Alt,
			ContentType: mtype.String(),
			Data:        data,
			Digest:      utils.DefaultHasher().Hash(data),
		})
	}
	return out
}
