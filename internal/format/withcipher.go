package format

import "canary/internal/cipher"

// WithCipher composes an AEAD record layer into a Format: serialize first
// encodes with the wrapped format, then seals the result into packets;
// deserialize reverses the order. This is what keeps Channel.Send/Receive a
// single code path regardless of encryption: the framing layer only ever
// sees a Format, never a Cipher.
type WithCipher struct {
	Format Format
	Cipher *cipher.Cipher
}

func (w WithCipher) Serialize(v any) ([]byte, error) {
	plain, err := w.Format.Serialize(v)
	if err != nil {
		return nil, err
	}
	return w.Cipher.EncryptPackets(plain)
}

func (w WithCipher) Deserialize(data []byte, v any) error {
	plain, err := w.Cipher.Decrypt(data)
	if err != nil {
		return err
	}
	return w.Format.Deserialize(plain, v)
}
