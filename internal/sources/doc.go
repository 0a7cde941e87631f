/*
Package sources maps site IDs to parsers that turn fetched pages into
books and chapters.

A Source is stateless: it receives the shared transport client per call
and returns domain objects. Most sites are served by the generic
CSS-selector source driven by the builtin config table; sites with
non-standard markup or encrypted payloads get dedicated
implementations. Optional Searcher and Unlockable interfaces surface
site search and decryption inputs to the orchestrator, which consults
them only when the capability vector says the site supports the
feature.
*/
package sources
