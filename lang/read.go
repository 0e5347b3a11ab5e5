package lang

import (
	"io"

	"github.com/klauspost/readahead"
)

// ParseReader parses source text from an io.Reader. The reader is wrapped
// with asynchronous read-ahead so input is pre-fetched while earlier chunks
// are consumed.
func ParseReader(r io.Reader, opts ...ParseOption) (*Config, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(string(data), opts...)
}
