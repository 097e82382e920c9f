package operator

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

const codecName = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonCodec carries the operator messages over gRPC as JSON
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

// Codec returns the codec both operator servers and clients must use
func Codec() encoding.Codec {
	return jsonCodec{}
}
