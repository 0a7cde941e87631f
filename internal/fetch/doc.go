/*
Package fetch is the dispatch layer: it turns (site, chapter) requests
into terminal results by combining the capability registry, the site
parsers, the outbound HTTP client, and the decryption bridge.

# Result Boundary

FetchChapter always resolves to exactly one of three statuses:

	ok                 plaintext content attached
	decryption_failed  the unlock attempt failed (timeout, rejection,
	                   vendor fault, malformed inputs)
	site_error         everything upstream of decryption (unknown site,
	                   no parser, transport or parse failure)

Content is carried only on ok. Failures never substitute partial or
cipher-wrapped content.

# Site Health

Transport calls run through per-site circuit breakers and rate
limiters. Decrypt outcomes deliberately bypass the breakers: a vendor
rejection is a definitive answer about one chapter, not evidence the
site is down.

# Jobs

Whole-book fetches run as jobs: the table of contents is expanded and
chapters fan out across a bounded worker pool, with progress events
published to the hub for streaming consumers.
*/
package fetch
