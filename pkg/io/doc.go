// Package io provides JSON import and export for threshold masks.
//
// # JSON Format
//
// A mask is stored as its grid extent and its normalized values, with the
// first axis varying fastest:
//
//	{
//	  "dims": [4, 2],
//	  "values": [0, 0.857, 0.286, 0.571, 0.714, 0.143, 1, 0.429]
//	}
//
// Values are written with full float64 precision, so an exported mask
// re-imports bit-for-bit. This is the form the generate command writes for
// later use by threshold, inspect and preview, and the form the pipeline
// cache stores.
//
// # Import
//
// Use [ImportJSON] to read a mask from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	m, err := io.ImportJSON("mask.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both validate the decoded mask with [mask.New].
//
// # Export
//
// Use [ExportJSON] to write a mask to a file, or [WriteJSON] to write to any
// io.Writer.
package io
