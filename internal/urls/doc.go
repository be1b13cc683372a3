// Package urls provides centralized constants for the external URLs used
// throughout the application.
//
// All endpoints are defined here as exported constants so they can be
// updated in a single location.
//
// Usage:
//
//	import "github.com/muurk/danmaku/internal/urls"
//
//	fmt.Printf("Watching %s\n", urls.RoomPage(3470615))
package urls
