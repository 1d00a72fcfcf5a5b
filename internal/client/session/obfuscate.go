package session

import (
	"encoding/base64"
	"fmt"
	"os"
)

// Obfuscator hides the stored session from casual inspection. It XORs the
// bytes with a repeating key and base64-encodes the result. This is
// obfuscation, not encryption: anyone with the key or the code can undo it.
type Obfuscator struct {
	key []byte
}

// NewObfuscator creates an Obfuscator for key. An empty key is rejected.
func NewObfuscator(key string) (*Obfuscator, error) {
	if key == "" {
		return nil, fmt.Errorf("obfuscation key is empty")
	}
	return &Obfuscator{key: []byte(key)}, nil
}

// HostKey is the per-machine key: "default-key-" followed by the hostname
func HostKey() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return "default-key-" + host
}

func (o *Obfuscator) xor(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ o.key[i%len(o.key)]
	}
	return out
}

// Encode obfuscates plain
func (o *Obfuscator) Encode(plain []byte) string {
	return base64.StdEncoding.EncodeToString(o.xor(plain))
}

// Decode reverses Encode
func (o *Obfuscator) Decode(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return o.xor(raw), nil
}
