package hex

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(str []byte) string {
	return "0x" + hex.EncodeToString(str)
}

// EncodeToFelt generates the short felt form of a big-endian value: '0x' prefix
// and no leading zeros. A zero value encodes as "0x0".
func EncodeToFelt(b []byte) string {
	s := strings.TrimLeft(hex.EncodeToString(b), "0")
	if s == "" {
		return "0x0"
	}

	return "0x" + s
}

// DecodeHex converts a hex string to a byte array.
// Odd-length input is left padded with a zero nibble
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(str, "0x")

	if len(str)%2 == 1 {
		str = "0" + str
	}

	return hex.DecodeString(str)
}

// MustDecodeHex type-checks and converts a hex string to a byte array
func MustDecodeHex(str string) []byte {
	buf, err := DecodeHex(str)
	if err != nil {
		panic(fmt.Errorf("could not decode hex: %w", err))
	}

	return buf
}

// EncodeUint64 encodes a number as a hex string with 0x prefix.
func EncodeUint64(i uint64) string {
	enc := make([]byte, 2, 10)
	copy(enc, "0x")

	return string(strconv.AppendUint(enc, i, 16))
}

// DecodeUint64 decodes a hex string with 0x prefix to uint64
func DecodeUint64(hexStr string) (uint64, error) {
	// remove 0x suffix if found in the input string
	cleaned := strings.TrimPrefix(hexStr, "0x")

	return strconv.ParseUint(cleaned, 16, 64)
}
