package block

import (
	"fmt"

	"github.com/shenwei356/breader"
)

// Decoder streams Records from a block-stream file (or "-" for stdin, the
// convention xopen/breader use throughout the teacher's own readers, e.g.
// taxonomy.go's NewTaxonomy), preserving input order the way
// taxonomy.go's "for chunk := range reader.Ch { for _, data := range
// chunk.Data }" loop does.
type Decoder struct {
	reader  *breader.BufferedReader
	pending []interface{}
	pos     int
	err     error
	done    bool
}

// NewDecoder opens path and prepares to decode its block-stream lines
// against k. threads/chunkSize are breader's own buffering knobs (see
// breader.NewBufferedReader); a value <= 0 selects 4 threads or 100-line
// chunks respectively.
func NewDecoder(path string, k, threads, chunkSize int) (*Decoder, error) {
	if threads <= 0 {
		threads = 4
	}
	if chunkSize <= 0 {
		chunkSize = 100
	}
	parseFunc := func(line string) (interface{}, bool, error) {
		rec, err := ParseLine(line, k)
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}
	r, err := breader.NewBufferedReader(path, threads, chunkSize, parseFunc)
	if err != nil {
		return nil, fmt.Errorf("block: %s", err)
	}
	return &Decoder{reader: r}, nil
}

// Next returns the next Record, or ok=false at end of stream. A malformed
// line surfaces its ParseLine error here; per spec §4.6's "malformed
// block line → fatal for that read" the caller decides whether that's
// fatal for the whole run or just that read.
func (d *Decoder) Next() (rec *Record, ok bool, err error) {
	for d.pos >= len(d.pending) {
		if d.done {
			return nil, false, d.err
		}
		chunk, open := <-d.reader.Ch
		if !open {
			d.done = true
			return nil, false, nil
		}
		if chunk.Err != nil {
			d.done = true
			d.err = chunk.Err
			return nil, false, chunk.Err
		}
		d.pending = chunk.Data
		d.pos = 0
	}
	data := d.pending[d.pos]
	d.pos++
	return data.(*Record), true, nil
}
