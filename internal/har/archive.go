// Package har turns browser HAR captures into host lists.
package har

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// HAR is a HAR 1.2 document reduced to what host extraction reads.
type HAR struct {
	Log *Log `json:"log"`
}

type Log struct {
	Version string   `json:"version"`
	Entries []*Entry `json:"entries"`
}

// Entry is one captured exchange. Response is nil for aborted requests.
type Entry struct {
	Request  *Request  `json:"request"`
	Response *Response `json:"response"`
}

type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type Response struct {
	Status int `json:"status"`
}

var errNoLog = errors.New("invalid HAR: no log object")

// ParseFile decodes the capture stored at path.
func ParseFile(path string) (*HAR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open HAR %s: %w", path, err)
	}
	defer f.Close()

	h, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Parse decodes a single HAR document from r.
func Parse(r io.Reader) (*HAR, error) {
	var h HAR
	switch err := json.NewDecoder(r).Decode(&h); {
	case errors.Is(err, io.EOF):
		return nil, errors.New("empty HAR data")
	case err != nil:
		return nil, fmt.Errorf("decode HAR: %w", err)
	case h.Log == nil:
		return nil, errNoLog
	}
	return &h, nil
}
