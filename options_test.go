package camstream

import (
	"testing"

	"github.com/gogpu/camstream/backend/software"
)

func TestDefaultStreamOptions(t *testing.T) {
	o := defaultStreamOptions()
	if o.framesToIgnore != DefaultFramesToIgnore {
		t.Errorf("framesToIgnore = %d, want %d", o.framesToIgnore, DefaultFramesToIgnore)
	}
	if o.forceUpload || o.logFPS || o.label != "" {
		t.Errorf("defaults = %+v, want zero flags", o)
	}
}

func TestStreamOptions(t *testing.T) {
	tests := []struct {
		name  string
		opt   StreamOption
		check func(streamOptions) bool
	}{
		{"WithLabel", WithLabel("rear"), func(o streamOptions) bool { return o.label == "rear" }},
		{"WithFramesToIgnore", WithFramesToIgnore(2), func(o streamOptions) bool { return o.framesToIgnore == 2 }},
		{"WithFramesToIgnore negative", WithFramesToIgnore(-3), func(o streamOptions) bool { return o.framesToIgnore == 0 }},
		{"WithUploadPath", WithUploadPath(), func(o streamOptions) bool { return o.forceUpload }},
		{"WithFPSLogging", WithFPSLogging(true), func(o streamOptions) bool { return o.logFPS }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultStreamOptions()
			tt.opt(&o)
			if !tt.check(o) {
				t.Errorf("option not applied: %+v", o)
			}
		})
	}
}

func TestWithCacheConfig(t *testing.T) {
	gc, _ := newTestContext(t, software.Options{}, WithCacheConfig(CacheConfig{MaxMemoryMB: 8}))
	if got := gc.Cache().Stats().BudgetBytes; got != 8<<20 {
		t.Errorf("BudgetBytes = %d, want %d", got, 8<<20)
	}
}

func TestNewGPUContextNilDevice(t *testing.T) {
	if _, err := NewGPUContext(nil); err != ErrNilDevice {
		t.Errorf("NewGPUContext(nil) error = %v, want ErrNilDevice", err)
	}
}
