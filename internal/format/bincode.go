package format

import (
	"bytes"
	"encoding/gob"

	"canary/internal/errkind"
)

// Bincode is the default format for both directions of a new channel,
// backed by encoding/gob, the standard library's compact binary wire
// format.
type Bincode struct{}

func (Bincode) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errkind.Wrap(errkind.InvalidData, err)
	}
	return buf.Bytes(), nil
}

func (Bincode) Deserialize(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return wrapDeserializeErr(err)
	}
	return nil
}
