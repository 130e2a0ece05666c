// Package cache keeps decoded audio clips so replaying a clip, or re-rendering
// a document that embeds it, does not decode the file again. MemoryCache
// serves the current session and DiskCache keeps zstd compressed clips
// between runs.
package cache
