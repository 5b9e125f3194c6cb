package httpengine

import (
	"encoding/json"
	"io"
)

// ndjsonEncoder writes the newline-delimited JSON the engine's bulk API
// expects: one line of action metadata followed by one line of source per
// operation.
type ndjsonEncoder struct {
	w io.Writer
}

func newNDJSONEncoder(w io.Writer) *ndjsonEncoder {
	return &ndjsonEncoder{w: w}
}

func (e *ndjsonEncoder) encode(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	_, err = e.w.Write([]byte("\n"))
	return err
}
