package apifit

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
)

// CSVDecode is a Decode hook for endpoints whose response body is CSV
// with a header row. Each data row becomes a mapping from header cell
// to value, the whole body a sequence of those mappings, so a CSV
// response fits Sequence(Mapping(String())) or a record sequence with
// string fields:
//
//	apifit.WithHooks(apifit.Hooks{Decode: apifit.CSVDecode})
func CSVDecode(ctx context.Context, res *http.Response, hint interface{}) (interface{}, error) {
	reader := csv.NewReader(res.Body)

	header, err := reader.Read()
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	rows := []interface{}{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, &DecodeError{Err: err}
		}
		row := make(map[string]interface{}, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}
}
