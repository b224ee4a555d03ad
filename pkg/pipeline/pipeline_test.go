package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"reflect"
	"testing"

	"github.com/matzehuels/dithermask/pkg/errors"
)

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		want    []string
		wantErr bool
	}{
		{[]string{"png"}, []string{"png"}, false},
		{[]string{"PNG", "tif", "bmp", "json"}, []string{"png", "tiff", "bmp", "json"}, false},
		{[]string{"png", "png", "tiff", "tif"}, []string{"png", "tiff"}, false},
		{nil, []string{}, false},
		{[]string{"png", "svg"}, nil, true},
		{[]string{""}, nil, true},
	}

	for _, tt := range tests {
		got, err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%q) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ValidateFormats(%q) = %q, want %q", tt.formats, got, tt.want)
		}
	}
}

func TestValidateDepth(t *testing.T) {
	for _, d := range []int{8, 16} {
		if err := ValidateDepth(d); err != nil {
			t.Errorf("ValidateDepth(%d) = %v", d, err)
		}
	}
	for _, d := range []int{0, 1, 12, 32} {
		if err := ValidateDepth(d); err == nil {
			t.Errorf("ValidateDepth(%d) should fail", d)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Dims: []int{16, 16}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Sigma != DefaultSigma {
		t.Errorf("Sigma = %v, want %v", opts.Sigma, DefaultSigma)
	}
	if opts.SeedFraction != DefaultSeedFraction {
		t.Errorf("SeedFraction = %v, want %v", opts.SeedFraction, DefaultSeedFraction)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("Seed = %v, want %v", opts.Seed, DefaultSeed)
	}
	if opts.Depth != DefaultDepth {
		t.Errorf("Depth = %v, want %v", opts.Depth, DefaultDepth)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"png"}) {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	before := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !reflect.DeepEqual(before, opts) {
		t.Error("ValidateAndSetDefaults should be idempotent")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no dims", Options{}, errors.ErrCodeInvalidDimensions},
		{"zero extent", Options{Dims: []int{8, 0}}, errors.ErrCodeInvalidDimensions},
		{"negative sigma", Options{Dims: []int{8}, Sigma: -1}, errors.ErrCodeInvalidInput},
		{"seed fraction", Options{Dims: []int{8}, SeedFraction: 0.7}, errors.ErrCodeInvalidInput},
		{"max iterations", Options{Dims: []int{8}, MaxIterations: -3}, errors.ErrCodeInvalidInput},
		{"format", Options{Dims: []int{8}, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"depth", Options{Dims: []int{8}, Depth: 4}, errors.ErrCodeInvalidInput},
		{"level", Options{Dims: []int{8}, Level: 1.5}, errors.ErrCodeInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Depth: 8, Level: 0.5}
	if got := opts.ArtifactKeyOpts("png"); got.Depth != 8 || got.Level != 0.5 {
		t.Errorf("png key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts("json"); got.Depth != 0 || got.Level != 0 {
		t.Errorf("json key opts should ignore depth and level: %+v", got)
	}
}

func TestGenerate(t *testing.T) {
	gen, err := Generate(context.Background(), Options{Dims: []int{8, 8}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Mask.Len() != 64 {
		t.Errorf("mask has %d pixels, want 64", gen.Mask.Len())
	}
	if gen.Seeds != 6 {
		t.Errorf("Seeds = %d, want 6", gen.Seeds)
	}

	seen := make([]bool, 64)
	for i := 0; i < gen.Mask.Len(); i++ {
		r := gen.Mask.Rank(i)
		if seen[r] {
			t.Fatalf("rank %d assigned twice", r)
		}
		seen[r] = true
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, Options{Dims: []int{8, 8}}); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRender(t *testing.T) {
	gen, err := Generate(context.Background(), Options{Dims: []int{8, 4}})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(context.Background(), gen.Mask, Options{Formats: []string{"png", "tiff", "bmp", "json"}, Depth: 8})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, f := range []string{"png", "tiff", "bmp", "json"} {
		if len(artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}

	img, err := png.Decode(bytes.NewReader(artifacts["png"]))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("png bounds = %v, want 8x4", b)
	}
	if !bytes.HasPrefix(artifacts["json"], []byte(`{"dims":[8,4]`)) {
		t.Errorf("json artifact = %.40s", artifacts["json"])
	}
}
