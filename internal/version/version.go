package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/ideafmt/ideafmt/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/ideafmt/ideafmt/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/ideafmt/ideafmt/internal/version.Date={{.Date}}
)
