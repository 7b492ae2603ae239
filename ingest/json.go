package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

var errNotObjectArray = errors.New("expected a JSON array of objects")

// FromJSON reads an array of objects. The header row lists keys in the order
// they are first seen across all objects; each object becomes one row. null
// becomes "", numbers and booleans keep their literal text and nested values
// are stored as compact JSON.
func FromJSON(r io.Reader) (grid.Grid, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	fail := func(err error) (grid.Grid, error) {
		return nil, grid.NewIngestError(SourceJSON, err)
	}

	if err := expectDelim(dec, '['); err != nil {
		return fail(err)
	}

	header := grid.Row{}
	column := map[string]int{}
	var body []grid.Row

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return fail(err)
		}
		var row grid.Row
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fail(err)
			}
			key, ok := tok.(string)
			if !ok {
				return fail(fmt.Errorf("object key: unexpected %v", tok))
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fail(fmt.Errorf("value of %q: %w", key, err))
			}
			text, err := jsonCellText(raw)
			if err != nil {
				return fail(fmt.Errorf("value of %q: %w", key, err))
			}

			idx, seen := column[key]
			if !seen {
				idx = len(header)
				column[key] = idx
				header = append(header, key)
			}
			if idx >= len(row) {
				row = row.Padded(idx + 1)
			}
			row[idx] = text
		}
		if err := expectDelim(dec, '}'); err != nil {
			return fail(err)
		}
		body = append(body, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return fail(err)
	}

	if len(body) == 0 {
		return grid.Grid{}, nil
	}
	g := make(grid.Grid, 0, len(body)+1)
	g = append(g, header)
	for _, row := range body {
		g = append(g, row.Padded(len(header)))
	}
	return g, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errNotObjectArray
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: unexpected %v", errNotObjectArray, tok)
	}
	return nil
}

func jsonCellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}
