package ports

import (
	"context"
	"encoding/json"
)

// RepoFetcher looks up a GitHub user's public repositories. The payload is
// passed through to the client untouched.
type RepoFetcher interface {
	Repos(ctx context.Context, username string) (json.RawMessage, error)
}
