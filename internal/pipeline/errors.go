package pipeline

import "errors"

// Failure taxonomy. Lower layers wrap into one of these before crossing a
// component boundary; the orchestrator is the only place deciding
// degrade-vs-fail and the server maps them onto HTTP statuses.
var (
	// ErrInvalidRequest: bad input, user-correctable.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSearchUnavailable: one search call failed at transport/auth level.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrNoSources: every search query failed; generation may still degrade.
	ErrNoSources = errors.New("no sources available")

	// ErrGenerationFailed: the model output could not be parsed into the
	// expected structure even after the stricter-format retry.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrUpstreamUnavailable: transport/auth/quota failure of the reasoning
	// backend.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrExportFailed: the document could not be written; the guide data is
	// still returned.
	ErrExportFailed = errors.New("export failed")
)
