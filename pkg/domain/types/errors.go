package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so the pipeline can decide, per kind, whether
// to abort the poll cycle, skip the release, or continue the batch.
var (
	// ErrTagUpstreamFetch marks failures to reach the upstream release feed.
	// Aborts the current poll cycle only.
	ErrTagUpstreamFetch = goerr.NewTag("upstream_fetch")

	// ErrTagPersistence marks store read/write failures. Fatal for the
	// release being processed, otherwise it would be reprocessed forever.
	ErrTagPersistence = goerr.NewTag("persistence")

	// ErrTagDelivery marks chat post or ticket creation failures. Logged and
	// skipped, never blocks remaining releases or remaining ticket systems.
	ErrTagDelivery = goerr.NewTag("delivery")

	// ErrTagMissingVersion marks lookups of versions unknown to the store or
	// to upstream. An explicit error value, not an internal failure.
	ErrTagMissingVersion = goerr.NewTag("missing_version")
)
