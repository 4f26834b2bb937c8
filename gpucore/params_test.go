// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"encoding/binary"
	"math"
	"testing"
)

// bt601Video mirrors the video-range matrix used by the pipeline.
var bt601Video = ConversionParams{
	Columns: [3][3]float32{
		{1.164, 1.164, 1.164},
		{0, -0.392, 2.017},
		{1.596, -0.813, 0},
	},
	Offset: [3]float32{16.0 / 255.0, 0.5, 0.5},
}

func TestConversionParamsApply(t *testing.T) {
	tests := []struct {
		name    string
		y, u, v uint8
		wantMin [3]uint8
		wantMax [3]uint8
	}{
		{"black", 16, 128, 128, [3]uint8{0, 0, 0}, [3]uint8{2, 0, 2}},
		{"white", 235, 128, 128, [3]uint8{253, 253, 253}, [3]uint8{255, 255, 255}},
		{"below black clamps", 0, 128, 128, [3]uint8{0, 0, 0}, [3]uint8{0, 0, 0}},
		{"above white clamps", 255, 128, 128, [3]uint8{255, 255, 255}, [3]uint8{255, 255, 255}},
		{"red", 81, 90, 240, [3]uint8{250, 0, 0}, [3]uint8{255, 5, 5}},
		{"blue", 41, 240, 110, [3]uint8{0, 0, 250}, [3]uint8{5, 5, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := bt601Video.Apply(tt.y, tt.u, tt.v)
			got := [3]uint8{r, g, b}
			for i := range got {
				if got[i] < tt.wantMin[i] || got[i] > tt.wantMax[i] {
					t.Errorf("Apply(%d,%d,%d) = %v, want within %v..%v",
						tt.y, tt.u, tt.v, got, tt.wantMin, tt.wantMax)
					break
				}
			}
		})
	}
}

func TestConversionParamsApplyDeterministic(t *testing.T) {
	for y := 0; y < 256; y += 17 {
		for u := 0; u < 256; u += 31 {
			r1, g1, b1 := bt601Video.Apply(uint8(y), uint8(u), 200)
			r2, g2, b2 := bt601Video.Apply(uint8(y), uint8(u), 200)
			if r1 != r2 || g1 != g2 || b1 != b2 {
				t.Fatalf("Apply(%d,%d,200) not deterministic", y, u)
			}
		}
	}
}

func TestConversionParamsBytes(t *testing.T) {
	buf := bt601Video.Bytes()
	if len(buf) != ParamsSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(buf), ParamsSize)
	}

	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}

	// Column 2 row 0 is the Cr contribution to red.
	if got := read(2*16 + 0); got != 1.596 {
		t.Errorf("col2.x = %v, want 1.596", got)
	}
	// vec4 padding stays zero.
	if got := read(0*16 + 12); got != 0 {
		t.Errorf("col0.w = %v, want 0", got)
	}
	if got := read(48); got != float32(16.0/255.0) {
		t.Errorf("offset.x = %v, want %v", got, float32(16.0/255.0))
	}
	if got := read(52); got != 0.5 {
		t.Errorf("offset.y = %v, want 0.5", got)
	}
}
