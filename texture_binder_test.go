package camstream

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/camstream/backend/software"
	"github.com/gogpu/camstream/gpucore"
)

func TestNewTextureBinderPath(t *testing.T) {
	tests := []struct {
		name        string
		opts        software.Options
		forceUpload bool
		want        BindPath
	}{
		{"texture cache", software.Options{}, false, BindZeroCopy},
		{"forced upload", software.Options{}, true, BindUpload},
		{"no texture cache", software.Options{DisableTextureCache: true}, false, BindUpload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc, _ := newTestContext(t, tt.opts)
			b, err := NewTextureBinder(gc, tt.forceUpload)
			if err != nil {
				t.Fatalf("NewTextureBinder() error = %v", err)
			}
			defer b.Close()
			if got := b.Path(); got != tt.want {
				t.Errorf("Path() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextureBinderChromaIsHalfSize(t *testing.T) {
	for _, path := range []BindPath{BindZeroCopy, BindUpload} {
		t.Run(path.String(), func(t *testing.T) {
			forceUpload := path == BindUpload
			gc, _ := newTestContext(t, software.Options{})
			b, err := NewTextureBinder(gc, forceUpload)
			if err != nil {
				t.Fatal(err)
			}
			defer b.Close()

			buf, err := NewNV12BufferWithStride(64, 48, PixelFormatNV12FullRange, 80, 80)
			if err != nil {
				t.Fatal(err)
			}
			bd, err := b.Bind(context.Background(), buf)
			if err != nil {
				t.Fatalf("Bind() error = %v", err)
			}
			defer bd.Release()

			if bd.Luma.Width != 64 || bd.Luma.Height != 48 || bd.Luma.Format != gpucore.TextureFormatR8Unorm {
				t.Errorf("luma = %dx%d %v, want 64x48 R8Unorm", bd.Luma.Width, bd.Luma.Height, bd.Luma.Format)
			}
			if bd.Chroma.Width != 32 || bd.Chroma.Height != 24 || bd.Chroma.Format != gpucore.TextureFormatRG8Unorm {
				t.Errorf("chroma = %dx%d %v, want 32x24 RG8Unorm", bd.Chroma.Width, bd.Chroma.Height, bd.Chroma.Format)
			}
			wantOwnership := Borrowed
			if forceUpload {
				wantOwnership = Owned
			}
			if bd.Luma.Ownership != wantOwnership || bd.Chroma.Ownership != wantOwnership {
				t.Errorf("ownership = %v/%v, want %v", bd.Luma.Ownership, bd.Chroma.Ownership, wantOwnership)
			}
		})
	}
}

func TestCacheBinderRelease(t *testing.T) {
	gc, dev := newTestContext(t, software.Options{})
	b, err := NewTextureBinder(gc, false)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	buf := mustNV12(t, 16, 16, PixelFormatNV12VideoRange)
	bd, err := b.Bind(context.Background(), buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := dev.LiveTextures(); got != 2 {
		t.Errorf("LiveTextures() while bound = %d, want 2", got)
	}

	bd.Release()
	bd.Release()
	if got := dev.LiveTextures(); got != 0 {
		t.Errorf("LiveTextures() after Release = %d, want 0", got)
	}
	if got := dev.CacheFlushes(); got != 1 {
		t.Errorf("CacheFlushes() = %d, want 1", got)
	}
}

func TestCacheBinderChromaFailureReleasesLuma(t *testing.T) {
	gc, dev := newTestContext(t, software.Options{MaxTextures: 1})
	b, err := NewTextureBinder(gc, false)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_, err = b.Bind(context.Background(), mustNV12(t, 16, 16, PixelFormatNV12FullRange))
	if !errors.Is(err, gpucore.ErrOutOfMemory) {
		t.Fatalf("Bind() error = %v, want ErrOutOfMemory", err)
	}
	if got := dev.LiveTextures(); got != 0 {
		t.Errorf("LiveTextures() = %d, want 0", got)
	}
}

func TestUploadBinderRelease(t *testing.T) {
	gc, _ := newTestContext(t, software.Options{})
	b, err := NewTextureBinder(gc, true)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	buf := mustNV12(t, 16, 16, PixelFormatNV12VideoRange)
	for range 3 {
		bd, err := b.Bind(context.Background(), buf)
		if err != nil {
			t.Fatal(err)
		}
		bd.Release()
	}

	st := gc.Cache().Stats()
	if st.InUse != 0 || st.Idle != 2 {
		t.Errorf("cache Stats() = %+v, want 0 in use, 2 idle", st)
	}
	if st.Hits != 4 || st.Misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 4/2", st.Hits, st.Misses)
	}
}

func TestUploadBinderCopiesPlanes(t *testing.T) {
	gc, dev := newTestContext(t, software.Options{})
	b, err := NewTextureBinder(gc, true)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	buf, err := NewNV12BufferWithStride(4, 2, PixelFormatNV12FullRange, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	buf.Fill(10, 20, 30)
	buf.SetLuma(3, 1, 77)

	bd, err := b.Bind(context.Background(), buf)
	if err != nil {
		t.Fatal(err)
	}
	defer bd.Release()

	luma, err := dev.ReadTexture(bd.Luma.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{10, 10, 10, 10, 10, 10, 10, 77}
	if string(luma) != string(want) {
		t.Errorf("luma texture = %v, want %v", luma, want)
	}

	// Later writes to the buffer do not reach an uploaded texture.
	buf.SetLuma(0, 0, 1)
	luma, _ = dev.ReadTexture(bd.Luma.ID)
	if luma[0] != 10 {
		t.Errorf("uploaded texture changed with the buffer: %d", luma[0])
	}

	chroma, err := dev.ReadTexture(bd.Chroma.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(chroma) != string([]byte{20, 30, 20, 30}) {
		t.Errorf("chroma texture = %v", chroma)
	}
}

func TestBindPathString(t *testing.T) {
	if BindZeroCopy.String() != "zero-copy" || BindUpload.String() != "upload" {
		t.Errorf("BindPath strings = %q, %q", BindZeroCopy, BindUpload)
	}
}
