package sdk

// VERSION is replaced at build time:
// -ldflags "-X github.com/checkmate-ci/covcheck/sdk.VERSION=..."
var (
	VERSION   = "snapshot"
	GITHASH   = ""
	BUILDTIME = ""
)
