// Package roundid generates sortable identifiers for dealt rounds.
package roundid

import (
	"github.com/google/uuid"
)

// Crockford base32, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the encoded size of a round ID.
const Length = 26

// New returns a UUIDv7 encoded as a 26-character base32 string. IDs created
// later sort after IDs created earlier.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("roundid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID in the round ID alphabet.
func Encode(id uuid.UUID) string {
	result := make([]byte, Length)

	// 128 bits plus two trailing zero bits, five bits per character.
	for i := range Length {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if bitIndex <= 3 {
			value = (id[byteIndex] >> (3 - bitIndex)) & 0x1f
		} else {
			value = (id[byteIndex] << (bitIndex - 3)) & 0x1f
			if byteIndex+1 < len(id) {
				value |= id[byteIndex+1] >> (11 - bitIndex)
			}
		}
		result[i] = alphabet[value]
	}

	return string(result)
}
