package entry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is one stored secret exactly as persisted: four base64 strings.
// Ciphertext is serialized under the "password" key.
type Envelope struct {
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
	Ciphertext string `json:"password"`
}

// Retrieved is the result of a successful Retrieve.
type Retrieved struct {
	Title      string `json:"title" yaml:"title"`
	Secret     string `json:"secret" yaml:"secret"`
	Salt       string `json:"salt" yaml:"salt"`
	Ciphertext string `json:"encrypted_password" yaml:"encrypted_password"`
}

type wireEnvelope struct {
	Salt       *string `json:"salt"`
	IV         *string `json:"iv"`
	Tag        *string `json:"tag"`
	Ciphertext *string `json:"password"`
}

// ParseEnvelope decodes a stored JSON envelope. All four fields must be present;
// an empty ciphertext is valid (it is what an empty secret encrypts to).
func ParseEnvelope(data []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
	}

	var missing []string
	if w.Salt == nil {
		missing = append(missing, "salt")
	}
	if w.IV == nil {
		missing = append(missing, "iv")
	}
	if w.Tag == nil {
		missing = append(missing, "tag")
	}
	if w.Ciphertext == nil {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return Envelope{}, fmt.Errorf("%w: missing %s", ErrMalformedEntry, strings.Join(missing, ", "))
	}

	return Envelope{
		Salt:       *w.Salt,
		IV:         *w.IV,
		Tag:        *w.Tag,
		Ciphertext: *w.Ciphertext,
	}, nil
}
