// Package backend provides a pluggable device backend registry.
//
// A backend opens the gpucore.Device that a camstream GPU context runs on.
// Backends register themselves from init() functions and are selected at
// runtime:
//
//	import (
//		_ "github.com/gogpu/camstream/backend/software"
//		_ "github.com/gogpu/camstream/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Open("") to initialize the best available backend, falling back in
// priority order (wgpu, then software) when initialization fails, or
// Open(name) to require a specific one:
//
//	b, err := backend.Open("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	gc, err := camstream.NewGPUContext(b.Device())
package backend
