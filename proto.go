package apifit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ProtoDecode returns a Decode hook for endpoints whose response body
// is the protobuf binary form of the given message type. The message
// is transcoded through protojson into a value tree, so the endpoint's
// declared shape fits it like any JSON response.
func ProtoDecode(prototype proto.Message) func(ctx context.Context, res *http.Response, hint interface{}) (interface{}, error) {
	return func(ctx context.Context, res *http.Response, hint interface{}) (interface{}, error) {
		buf, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		message := prototype.ProtoReflect().New().Interface()
		if err := proto.Unmarshal(buf, message); err != nil {
			return nil, &DecodeError{Err: err}
		}
		jsonBytes, err := protojson.Marshal(message)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		decoder := json.NewDecoder(bytes.NewReader(jsonBytes))
		decoder.UseNumber()
		var tree interface{}
		if err := decoder.Decode(&tree); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return tree, nil
	}
}
