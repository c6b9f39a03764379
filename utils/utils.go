package utils

import (
	"encoding/binary"
	"fmt"
	"github.com/twmb/murmur3"
	"math"
)

func HashString(s string) uint64 {
	return HashBytes([]byte(s))
}

func HashBytes(bytes ...[]byte) uint64 {
	hash := murmur3.New64()
	for _, b := range bytes {
		_, err := hash.Write(b)
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// HashFloats hashes the IEEE 754 bits of values, so equal vectors always hash
// equally and -0 differs from +0.
func HashFloats(values []float64) uint64 {
	hash := murmur3.New64()
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, err := hash.Write(buf[:])
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// FormatHash renders a hash the way it is reported in responses.
func FormatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}
