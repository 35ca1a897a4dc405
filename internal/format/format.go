// Package format implements the serialization contract of the channel
// layer: formats are values (so they may carry state), not types.
package format

import "canary/internal/errkind"

// Format serializes and deserializes Go values to/from bytes. Implementations
// may hold state across calls (the cipher-composed format in particular),
// which is why Format is a value, not a stateless function pair.
type Format interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

// Tag identifies a recognized Format variant, used by callers that need to
// name a format (e.g. on the wire, or in configuration external to this
// module).
type Tag uint8

const (
	TagBincode Tag = iota
	TagJSON
	TagBSON
	TagPostcard
	TagMessagePack
)

func (t Tag) String() string {
	switch t {
	case TagBincode:
		return "bincode"
	case TagJSON:
		return "json"
	case TagBSON:
		return "bson"
	case TagPostcard:
		return "postcard"
	case TagMessagePack:
		return "messagepack"
	default:
		return "unknown"
	}
}

// New constructs the default, stateless instance of the format named by tag.
func New(tag Tag) (Format, error) {
	switch tag {
	case TagBincode:
		return Bincode{}, nil
	case TagJSON:
		return JSON{}, nil
	case TagBSON:
		return BSON{}, nil
	case TagPostcard:
		return Postcard{}, nil
	case TagMessagePack:
		return MessagePack{}, nil
	default:
		return nil, errkind.New(errkind.InvalidInput, "unrecognized format tag")
	}
}

// wrapDeserializeErr maps any backend serialization failure to
// errkind.InvalidData, regardless of backend.
func wrapDeserializeErr(err error) error {
	if err == nil {
		return nil
	}
	return errkind.Wrap(errkind.InvalidData, err)
}
