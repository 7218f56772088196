package history

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodePayload decodes one JSON document from r into a generic value.
// Numbers are kept as json.Number so large epoch values keep their digits
// until ParseTimestamp sees them.
func DecodePayload(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return payload, nil
}
