// Package store persists encoded font artifacts on the local filesystem.
//
// Artifacts live under a root directory in one subdirectory per font:
//
//	{root}/{font-id}/{cp}.woff2             single code point
//	{root}/{font-id}/cache/{a,b,c}.woff2    composite sets
//
// Writes are published atomically: readers observe either the previous
// artifact or the complete new one, never a partial file. An optional
// in-memory hot layer (package cache) fronts reads.
//
// Composite artifacts are disposable and may be swept by age; singleton
// artifacts are kept.
package store
