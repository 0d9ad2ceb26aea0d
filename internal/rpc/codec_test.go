package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/encoding"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec, "the nebula-json codec must self-register via init()")

	in := &EchoRequest{Message: "ping"}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	out := new(EchoRequest)
	require.NoError(t, codec.Unmarshal(data, out))
	require.Equal(t, in.Message, out.Message)
}

func TestJSONCodecName(t *testing.T) {
	require.Equal(t, "nebula-json", CodecName)
}

func TestJSONCodecRoundTripsQueryRequest(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)

	in := &QueryRequest{Table: "requests"}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	out := new(QueryRequest)
	require.NoError(t, codec.Unmarshal(data, out))
	require.Equal(t, in.Table, out.Table)
}
