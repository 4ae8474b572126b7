// Package woff2 wraps TrueType fonts in the WOFF2 container.
//
// Tables are stored with the null transform and compressed as one brotli
// stream, which every WOFF2 decoder accepts. The glyf/loca transform is not
// applied.
package woff2
