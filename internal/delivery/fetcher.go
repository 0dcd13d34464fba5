// ABOUTME: Fetcher interface implemented per source kind
// ABOUTME: A fetch materializes a module at a destination path that does not yet exist

package delivery

import "context"

// Fetcher materializes a module from its source at dest. dest does not
// exist when Fetch is called; on error the caller removes whatever is left.
// The returned version is recorded in the manifest.
type Fetcher interface {
	Fetch(ctx context.Context, name string, src Source, dest string) (version string, err error)
}
