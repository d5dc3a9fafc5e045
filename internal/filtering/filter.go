package filtering

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
)

// ILineFilter decides which lines survive into the cleaned log.
type ILineFilter interface {
	IsLineIncluded(line []byte) bool
	Marker() string
}

// MarkerFilter excludes every line that contains a literal marker.
type MarkerFilter struct {
	marker  []byte
	decoder *encoding.Decoder
}

// NewMarkerFilter creates a MarkerFilter for the given marker.
// enc is optional: when set, lines are decoded with it before the containment
// test so that a UTF-8 marker matches logs written in a legacy charset.
// An empty marker is accepted and excludes every line.
func NewMarkerFilter(marker string, enc encoding.Encoding) (ILineFilter, error) {
	mf := &MarkerFilter{marker: []byte(marker)}
	if enc != nil {
		mf.decoder = enc.NewDecoder()
		if mf.decoder == nil {
			return nil, fmt.Errorf("encoding %v provides no decoder", enc)
		}
	}
	return mf, nil
}

// IsLineIncluded reports whether line (terminator included) is free of the marker.
func (mf *MarkerFilter) IsLineIncluded(line []byte) bool {
	return !bytes.Contains(mf.decode(line), mf.marker)
}

// Marker returns the literal marker text.
func (mf *MarkerFilter) Marker() string {
	return string(mf.marker)
}

func (mf *MarkerFilter) decode(line []byte) []byte {
	if mf.decoder == nil {
		return line
	}
	decoded, err := mf.decoder.Bytes(line)
	if err != nil {
		// Undecodable input still gets a raw-byte test rather than slipping through.
		return line
	}
	return decoded
}
