// Package version holds build metadata injected via -ldflags.
package version

// Set with -ldflags "-X github.com/ricirt/problem-interpretation/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const Name = "problem-interpretation"

const Description = "Interprets food safety scenarios and runs broth-model growth predictions"
