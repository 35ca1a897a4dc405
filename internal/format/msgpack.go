package format

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// MessagePack serializes with ugorji's codec msgpack handle.
type MessagePack struct{}

var msgpackHandle codec.MsgpackHandle

func (MessagePack) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return buf.Bytes(), nil
}

func (MessagePack) Deserialize(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, &msgpackHandle)
	return wrapDeserializeErr(dec.Decode(v))
}
