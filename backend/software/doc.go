// Package software implements gpucore.Device on the CPU.
//
// The device keeps textures in host memory and runs the YUV conversion
// program pixel by pixel, sampling exactly like the WGSL compute shader
// (nearest filtering, clamp to edge, texel centers). Output is therefore
// deterministic and identical on every platform, which makes the package
// the reference device for tests and the fallback when no GPU adapter is
// available.
//
// The device also provides a zero-copy TextureCache whose textures alias
// the plane memory of the pixel buffer they were created from.
//
// Options can slow dispatches down or cap the number of live textures to
// reproduce a busy or exhausted GPU:
//
//	dev := software.New(software.Options{
//	    DispatchDelay: 50 * time.Millisecond,
//	    MaxTextures:   8,
//	})
//
// Importing the package registers the "software" backend with the
// backend registry.
package software
