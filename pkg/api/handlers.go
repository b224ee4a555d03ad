package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/dithermask/pkg/buildinfo"
	derrors "github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/mask"
	"github.com/matzehuels/dithermask/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// handleCreateMask runs the pipeline for the options in the body and returns
// the artifact in the format named by the format query parameter.
func (s *Server) handleCreateMask(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		writeError(w, r, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode options"))
		return
	}

	format := mask.FormatPNG
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := mask.ParseFormat(q)
		if err != nil {
			writeError(w, r, err)
			return
		}
		format = f
	}
	opts.Formats = []string{string(format)}

	if err := derrors.ValidateDimensions(opts.Dims); err != nil {
		writeError(w, r, err)
		return
	}
	if n := opts.Pixels(); n > s.maxPixels {
		writeError(w, r, derrors.New(derrors.ErrCodeTooLarge, "grid has %d pixels, limit is %d", n, s.maxPixels))
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	opts.Logger = s.logger.With("id", RequestID(ctx))

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheInfo.GenerateHit && res.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	data := res.Artifacts[string(format)]

	h := w.Header()
	h.Set("Content-Type", format.ContentType())
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Cache", cacheStatus)
	h.Set("X-Mask-Hash", res.MaskHash)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
