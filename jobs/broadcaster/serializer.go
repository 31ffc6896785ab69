package broadcaster

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Serializer turns a report into a message payload.
type Serializer interface {
	Encode(FillReport) ([]byte, error)
	Decode([]byte) (map[string]any, error)
	Name() string
}

// NewSerializer picks an encoding by name: "json" or "proto".
func NewSerializer(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case "json", "":
		return JSONSerializer{}, nil
	case "proto", "protobuf":
		return ProtoSerializer{}, nil
	default:
		return nil, errors.Newf("unknown report encoding %q", name)
	}
}

// ---------- JSON ----------

type JSONSerializer struct{}

func (JSONSerializer) Name() string { return "json" }

func (JSONSerializer) Encode(r FillReport) ([]byte, error) {
	return json.Marshal(r)
}

func (JSONSerializer) Decode(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decode json report")
	}
	return m, nil
}

// ---------- Protobuf ----------

// ProtoSerializer carries the report as a google.protobuf.Struct, so
// consumers need no generated code. Numbers come back as float64.
type ProtoSerializer struct{}

func (ProtoSerializer) Name() string { return "proto" }

func (ProtoSerializer) Encode(r FillReport) ([]byte, error) {
	msg, err := structpb.NewStruct(r.fields())
	if err != nil {
		return nil, errors.Wrap(err, "build report struct")
	}
	return proto.Marshal(msg)
}

func (ProtoSerializer) Decode(data []byte) (map[string]any, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "decode proto report")
	}
	return msg.AsMap(), nil
}
