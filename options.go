package camstream

// ContextOption configures a GPUContext during creation.
//
// Example:
//
//	gc, err := camstream.NewGPUContext(dev,
//	    camstream.WithCacheConfig(camstream.CacheConfig{MaxMemoryMB: 64}))
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for GPUContext creation.
type contextOptions struct {
	cache CacheConfig
}

// defaultContextOptions returns the default context options.
func defaultContextOptions() contextOptions {
	return contextOptions{
		cache: CacheConfig{
			MaxMemoryMB:  DefaultMaxMemoryMB,
			MaxPerBucket: DefaultMaxPerBucket,
		},
	}
}

// WithCacheConfig sets the framebuffer cache limits.
func WithCacheConfig(config CacheConfig) ContextOption {
	return func(o *contextOptions) {
		o.cache = config
	}
}

// DefaultFramesToIgnore is the number of warm-up frames excluded from the
// average frame time.
const DefaultFramesToIgnore = 5

// StreamOption configures a Stream during creation.
//
// Example:
//
//	s, err := camstream.NewStream(gc, source,
//	    camstream.WithLabel("front"),
//	    camstream.WithFPSLogging(true))
type StreamOption func(*streamOptions)

// streamOptions holds optional configuration for Stream creation.
type streamOptions struct {
	label          string
	framesToIgnore int
	forceUpload    bool
	logFPS         bool
}

// defaultStreamOptions returns the default stream options.
func defaultStreamOptions() streamOptions {
	return streamOptions{
		framesToIgnore: DefaultFramesToIgnore,
	}
}

// WithLabel names the stream in log output.
func WithLabel(label string) StreamOption {
	return func(o *streamOptions) {
		o.label = label
	}
}

// WithFramesToIgnore sets how many converted frames are excluded from the
// average frame time while the pipeline warms up. Negative values are
// treated as zero.
func WithFramesToIgnore(n int) StreamOption {
	return func(o *streamOptions) {
		o.framesToIgnore = max(n, 0)
	}
}

// WithUploadPath forces the copy-upload texture binder even when the device
// offers a texture cache. Output is then bit-reproducible.
func WithUploadPath() StreamOption {
	return func(o *streamOptions) {
		o.forceUpload = true
	}
}

// WithFPSLogging enables a debug log line with the measured frame rate
// about once per second.
func WithFPSLogging(enabled bool) StreamOption {
	return func(o *streamOptions) {
		o.logFPS = enabled
	}
}
