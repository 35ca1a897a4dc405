package format

import "github.com/fxamacker/cbor/v2"

// Postcard is the compact deterministic binary variant, backed by
// canonical-mode CBOR.
type Postcard struct{}

var postcardEncMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

func (Postcard) Serialize(v any) ([]byte, error) {
	b, err := postcardEncMode.Marshal(v)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return b, nil
}

func (Postcard) Deserialize(data []byte, v any) error {
	return wrapDeserializeErr(cbor.Unmarshal(data, v))
}
