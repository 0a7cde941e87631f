package sources

import (
	"context"

	"github.com/saudadez21/novel-downloader-sub001/internal/decrypt"
	"github.com/saudadez21/novel-downloader-sub001/internal/shared/types"
)

// Client is the transport a source fetches pages with. The orchestrator
// passes its shared rate-limited client; tests pass fixtures.
type Client interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// Source parses one site's pages into domain objects. Implementations
// are stateless and safe for concurrent use.
type Source interface {
	// ID matches the capability registry's site_id.
	ID() string

	// Book fetches and parses the table of contents for a book ref.
	Book(ctx context.Context, client Client, ref string) (*types.Book, error)

	// Chapter fetches and parses one chapter. For encrypted sites the
	// payload carries the decrypt inputs and Body holds ciphertext.
	Chapter(ctx context.Context, client Client, ref string) (*types.ChapterPayload, error)
}

// Searcher is implemented by sources whose site supports internal
// search. Consulted only when the capability vector says so.
type Searcher interface {
	Search(ctx context.Context, client Client, query string) ([]types.SearchHit, error)
}

// Unlockable is implemented by sources for encrypted sites. The
// orchestrator requires it whenever the capability vector sets
// requires_decryption.
type Unlockable interface {
	// UnlockEnv supplies the vendor module and expected hostname for
	// the decryption bridge.
	UnlockEnv() decrypt.Env
}
