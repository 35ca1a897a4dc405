package format

import "encoding/json"

// JSON is the stdlib-backed format variant.
type JSON struct{}

func (JSON) Serialize(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return b, nil
}

func (JSON) Deserialize(data []byte, v any) error {
	return wrapDeserializeErr(json.Unmarshal(data, v))
}
