package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"

	"campusguard/internal/model"
)

// encodeEmbedding packs an embedding as little-endian float32 values.
func encodeEmbedding(e model.Embedding) []byte {
	if len(e) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(e))
	for i, v := range e {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(b []byte) (model.Embedding, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob has invalid length %d", len(b))
	}
	e := make(model.Embedding, len(b)/4)
	for i := range e {
		e[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return e, nil
}
