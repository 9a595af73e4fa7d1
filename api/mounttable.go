package api

import "context"

// MountTable locates the tmpfs directory backing files are created in.
type MountTable interface {
	DiscoverTmpfs(ctx context.Context) (string, error)
}
