// Package services implements typed HTTP clients for the three remote
// collaborators the orchestrator drives.
//
// [SpotifyClient] covers the music-service contract: OAuth authorize-URL
// construction, code exchange, refresh grants, track search, playlist
// creation, item attachment, and cover upload. It holds no per-user token
// state; tokens are supplied per call by the auth package.
//
// [GeminiGenerator] turns a free-text theme into {artist, song} candidates
// via the generateContent endpoint with a JSON response mime type. Output
// that fails to parse surfaces as [shared.ErrGenerationFailed].
//
// [ArtworkClient] fetches generated cover images. All of its failures are
// non-fatal to playlist assembly.
package services
