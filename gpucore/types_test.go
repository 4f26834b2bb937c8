// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"errors"
	"testing"
)

func TestTextureFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		format TextureFormat
		want   int
	}{
		{TextureFormatR8Unorm, 1},
		{TextureFormatRG8Unorm, 2},
		{TextureFormatRGBA8Unorm, 4},
		{TextureFormat(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.BytesPerPixel(); got != tt.want {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTextureDescValidate(t *testing.T) {
	tests := []struct {
		name    string
		desc    *TextureDesc
		wantErr bool
	}{
		{"valid", &TextureDesc{Width: 4, Height: 2, Format: TextureFormatRG8Unorm}, false},
		{"nil", nil, true},
		{"zero width", &TextureDesc{Width: 0, Height: 2, Format: TextureFormatR8Unorm}, true},
		{"negative height", &TextureDesc{Width: 4, Height: -1, Format: TextureFormatR8Unorm}, true},
		{"unknown format", &TextureDesc{Width: 4, Height: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("Validate() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestPlaneRow(t *testing.T) {
	p := Plane{
		Data:        []byte{1, 2, 9, 9, 3, 4, 9, 9},
		Width:       1,
		Height:      2,
		BytesPerRow: 4,
	}
	row := p.Row(1, 2)
	if len(row) != 2 || row[0] != 3 || row[1] != 4 {
		t.Errorf("Row(1, 2) = %v, want [3 4]", row)
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{1, 1},
		{8, 1},
		{9, 2},
		{1920, 240},
		{1081, 136},
	}
	for _, tt := range tests {
		if got := WorkgroupCount(tt.n); got != tt.want {
			t.Errorf("WorkgroupCount(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
