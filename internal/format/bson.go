package format

import "go.mongodb.org/mongo-driver/bson"

// BSON serializes with the mongo driver's standalone bson package.
type BSON struct{}

func (BSON) Serialize(v any) ([]byte, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return b, nil
}

func (BSON) Deserialize(data []byte, v any) error {
	return wrapDeserializeErr(bson.Unmarshal(data, v))
}
