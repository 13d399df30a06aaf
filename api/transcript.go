package api

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	transcriptEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	transcriptDec, _ = zstd.NewReader(nil)
)

// EncodeTranscript packs the choices of both sides, one byte per turn
// holding first<<1|second, and compresses the result with zstd. Both
// slices must have the same length and hold only 0 and 1.
func EncodeTranscript(first, second []int32) ([]byte, error) {
	if len(first) != len(second) {
		return nil, fmt.Errorf("transcript sides differ in length: %d and %d", len(first), len(second))
	}
	raw := make([]byte, len(first))
	for i := range first {
		a, b := first[i], second[i]
		if a&^1 != 0 || b&^1 != 0 {
			return nil, fmt.Errorf("turn %d holds invalid choices %d and %d", i+1, a, b)
		}
		raw[i] = byte(a<<1 | b)
	}
	return transcriptEnc.EncodeAll(raw, nil), nil
}

func DecodeTranscript(data []byte) (first, second []int32, err error) {
	raw, err := transcriptDec.DecodeAll(data, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decompress transcript: %w", err)
	}
	first = make([]int32, len(raw))
	second = make([]int32, len(raw))
	for i, t := range raw {
		if t > 3 {
			return nil, nil, fmt.Errorf("turn %d holds invalid byte %d", i+1, t)
		}
		first[i] = int32(t >> 1)
		second[i] = int32(t & 1)
	}
	return first, second, nil
}
