package zkproof

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func word(n uint64) []byte {
	var out [32]byte
	new(big.Int).SetUint64(n).FillBytes(out[:])
	return out[:]
}

// TestResultEncoder_Layout 测试 (bytes, bytes32[]) 的头尾布局
func TestResultEncoder_Layout(t *testing.T) {
	encoder, err := NewResultEncoder()
	require.NoError(t, err)

	proof := bytes.Repeat([]byte{0xab}, 40)
	public := [][32]byte{field32(big.NewInt(50)), field32(big.NewInt(7))}

	encoded, err := encoder.Encode(proof, public)
	require.NoError(t, err)

	// 头部：两个偏移量；证明尾部：长度 + 2个字；公开输入尾部：个数 + 2个字
	require.Len(t, encoded, 32*2+32*3+32*3)
	require.Equal(t, word(0x40), []byte(encoded[0:32]))
	require.Equal(t, word(0x40+32*3), []byte(encoded[32:64]))
	require.Equal(t, word(40), []byte(encoded[64:96]))
	require.Equal(t, proof, []byte(encoded[96:136]))
	require.Equal(t, make([]byte, 24), []byte(encoded[136:160]))
	require.Equal(t, word(2), []byte(encoded[160:192]))
	require.Equal(t, word(50), []byte(encoded[192:224]))
	require.Equal(t, word(7), []byte(encoded[224:256]))
}

// TestResultEncoder_RoundTrip 解码恢复证明和公开输入
func TestResultEncoder_RoundTrip(t *testing.T) {
	encoder, err := NewResultEncoder()
	require.NoError(t, err)

	cases := []struct {
		proof  []byte
		public [][32]byte
	}{
		{bytes.Repeat([]byte{1}, 256), [][32]byte{field32(big.NewInt(50)), field32(big.NewInt(99))}},
		{[]byte{}, nil},
		{bytes.Repeat([]byte{2}, 33), [][32]byte{field32(big.NewInt(0))}},
	}
	for _, tc := range cases {
		encoded, err := encoder.Encode(tc.proof, tc.public)
		require.NoError(t, err)
		require.Zero(t, len(encoded)%32)

		proof, public, err := encoder.Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, tc.proof, proof)
		require.Len(t, public, len(tc.public))
		for i := range tc.public {
			require.Equal(t, tc.public[i], public[i])
		}
	}
}

// TestResultEncoder_DecodeInvalid 测试截断的数据
func TestResultEncoder_DecodeInvalid(t *testing.T) {
	encoder, err := NewResultEncoder()
	require.NoError(t, err)

	_, _, err = encoder.Decode(nil)
	require.ErrorIs(t, err, ErrEncodingFailed)

	encoded, err := encoder.Encode([]byte{1, 2, 3}, [][32]byte{field32(big.NewInt(1))})
	require.NoError(t, err)
	_, _, err = encoder.Decode(encoded[:len(encoded)-32])
	require.ErrorIs(t, err, ErrEncodingFailed)
}

// TestEncodedResult_Hex 测试十六进制输出
func TestEncodedResult_Hex(t *testing.T) {
	require.Equal(t, "0x00ff10", EncodedResult{0x00, 0xff, 0x10}.Hex())

	encoder, err := NewResultEncoder()
	require.NoError(t, err)
	encoded, err := encoder.Encode([]byte{1}, nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded.Hex(), "0x"))
	require.Len(t, encoded.Hex(), 2+2*len(encoded))
}
