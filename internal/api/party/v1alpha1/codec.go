// Package partyv1alpha1 defines the party.v1alpha1 gRPC services: wire
// messages, service descriptors and clients. Messages travel as JSON over a
// codec registered under the "json" content subtype.
package partyv1alpha1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content subtype every party.v1alpha1 call uses
const CodecName = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(codec{})
}
