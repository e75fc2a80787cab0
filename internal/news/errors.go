package news

import "errors"

// Sentinel errors for the error taxonomy. Transient fetch failures and
// quality rejections are expected outcomes; only persistence and
// configuration errors abort a batch.
var (
	// ErrNoContent means no extraction layer cleared its quality gate.
	ErrNoContent = errors.New("no extraction layer produced qualifying content")

	// ErrBlocked means the target served a bot challenge or a 403 and the
	// rendering-proxy fallback also failed.
	ErrBlocked = errors.New("blocked by target")

	// ErrVideoPage means the page is a video player page, which is not a
	// supported content type.
	ErrVideoPage = errors.New("video-only page")

	// ErrTitleNotFound means the page title matched a not-found heuristic.
	ErrTitleNotFound = errors.New("page title indicates missing article")

	// ErrMissingDSN is returned at startup when storage credentials are absent.
	ErrMissingDSN = errors.New("database DSN is not configured")
)
