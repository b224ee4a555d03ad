package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dithermask/pkg/errors"
	"github.com/matzehuels/dithermask/pkg/mask"
)

// ReadJSON decodes a JSON mask from r.
//
// The input must be an object with "dims" and "values" arrays. ReadJSON
// returns an error if the JSON is malformed, or if the mask fails
// validation: empty or non-positive dims, a value count that disagrees with
// dims, or a value outside [0, 1]. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*mask.Mask, error) {
	var data mask.Mask
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode mask")
	}
	m, err := mask.New(data.Dims, data.Values)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ImportJSON reads a JSON file at path and returns the decoded mask.
// A missing file is reported with FILE_NOT_FOUND.
func ImportJSON(path string) (*mask.Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
