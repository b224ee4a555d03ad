package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dithermask/pkg/io"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// Render encodes m in every format of opts.Formats concurrently. It does not
// touch any cache.
func Render(ctx context.Context, m *mask.Mask, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := encode(m, mask.Format(format), opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// encode writes one artifact. JSON goes through package io; every other
// format is an image.
func encode(m *mask.Mask, f mask.Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if f == mask.FormatJSON {
		err = io.WriteJSON(m, &buf)
	} else {
		err = mask.Encode(&buf, m, f, mask.WithDepth(opts.Depth), mask.WithLevel(opts.Level))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
