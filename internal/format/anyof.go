package format

// AnyOf builds the "try A then B" read-time combinator. On Serialize it
// always uses a; the combinator exists for read-time flexibility only, the
// write side still commits to one format. On Deserialize it tries a first;
// on any error from a it tries b. This is first-success with no
// second-chance: if a succeeds but decoded the wrong variant, that result
// is returned rather than falling through to b.
func AnyOf(a, b Format) Format {
	return anyOf{a: a, b: b}
}

type anyOf struct {
	a, b Format
}

func (f anyOf) Serialize(v any) ([]byte, error) {
	return f.a.Serialize(v)
}

func (f anyOf) Deserialize(data []byte, v any) error {
	if err := f.a.Deserialize(data, v); err == nil {
		return nil
	}
	return f.b.Deserialize(data, v)
}
