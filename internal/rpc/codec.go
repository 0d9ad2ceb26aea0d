// Package rpc is the concrete transport binding for the Worker RPC surface
// (§6, C9), grounded on the teacher's client.go/master_client.go pattern of
// wrapping a generated grpc client (client/client.go). Nebula's result
// serialization and wire codec are explicitly out of scope (§1), so rather
// than fabricate a protoc-generated stub, the service methods are
// registered by hand against grpc.ServiceDesc and carried over a JSON
// content-subtype codec: the RPC shape (services and their unary methods)
// is real; the bytes on the wire are JSON instead of protobuf.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// CodecName is the grpc content-subtype this codec registers under; the
// node client dials with grpc.CallContentSubtype(CodecName), and servers
// look the codec up in grpc's registry by the request's content-subtype.
const CodecName = "nebula-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("nebula-json marshal: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("nebula-json unmarshal: %w", err)
	}
	return nil
}
