package vipscodec

// Options tune the libvips runtime.
type Options struct {
	Concurrency  int
	MaxCacheMem  int
	MaxCacheSize int
}
