package codec

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
)

func init() {
	Register("raw", rawCodec{}, "txt")
	Register("json", jsonCodec{}, "json")
	Register("csv", csvCodec{}, "csv")
	Register("gob", gobCodec{}, "gob")
}

// rawCodec passes bytes through untouched.
type rawCodec struct{}

func (rawCodec) Decode(r io.Reader) (any, error) {
	return io.ReadAll(r)
}

func (rawCodec) Encode(w io.Writer, v any) error {
	switch b := v.(type) {
	case []byte:
		_, err := w.Write(b)
		return err
	case string:
		_, err := io.WriteString(w, b)
		return err
	default:
		return fmt.Errorf("codec: raw wants []byte or string, got %T", v)
	}
}

// jsonCodec handles arbitrary JSON documents.
type jsonCodec struct{}

func (jsonCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// csvCodec handles tabular data as [][]string.
type csvCodec struct{}

func (csvCodec) Decode(r io.Reader) (any, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (csvCodec) Encode(w io.Writer, v any) error {
	records, ok := v.([][]string)
	if !ok {
		return fmt.Errorf("codec: csv wants [][]string, got %T", v)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// gobCodec handles arbitrary Go values in gob's binary encoding.
// Non-builtin concrete types must be registered with gob.Register by the
// caller, on both the encode and decode side.
type gobCodec struct{}

func (gobCodec) Decode(r io.Reader) (any, error) {
	var v any
	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (gobCodec) Encode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(&v)
}
