// Package parquetcodec registers a columnar dataset codec under the
// "parquet" format name. It is kept out of the base codec package so the
// parquet dependency is only linked when wanted:
//
//	import _ "github.com/nuln/pathio/codec/parquetcodec"
//
// Datasets are represented as []map[string]any with one map per row; the
// schema is derived from the first row's column types.
package parquetcodec

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/nuln/pathio/codec"
)

func init() {
	codec.Register("parquet", parquetCodec{}, "parquet")
}

type parquetCodec struct{}

func (parquetCodec) Decode(r io.Reader) (any, error) {
	// The parquet footer needs random access.
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rows, err := parquet.Read[map[string]any](bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (parquetCodec) Encode(w io.Writer, v any) error {
	rows, ok := v.([]map[string]any)
	if !ok {
		return fmt.Errorf("codec: parquet wants []map[string]any, got %T", v)
	}
	if len(rows) == 0 {
		return fmt.Errorf("codec: parquet needs at least one row to derive a schema")
	}
	schema, err := schemaOf(rows[0])
	if err != nil {
		return err
	}
	return parquet.Write[map[string]any](w, rows, schema)
}

// schemaOf derives a flat parquet schema from one row's column types.
func schemaOf(row map[string]any) (*parquet.Schema, error) {
	group := parquet.Group{}
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	for _, col := range cols {
		switch row[col].(type) {
		case string:
			group[col] = parquet.String()
		case int, int32, int64:
			group[col] = parquet.Int(64)
		case float32, float64:
			group[col] = parquet.Leaf(parquet.DoubleType)
		case bool:
			group[col] = parquet.Leaf(parquet.BooleanType)
		case []byte:
			group[col] = parquet.Leaf(parquet.ByteArrayType)
		default:
			return nil, fmt.Errorf("codec: parquet column %q has unsupported type %T", col, row[col])
		}
	}
	return parquet.NewSchema("dataset", group), nil
}
