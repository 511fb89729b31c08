package zkproof

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EncodedResult ABI 编码的 (bytes proof, bytes32[] publicInputs)
type EncodedResult []byte

// Hex 返回 0x 前缀的十六进制文本
func (r EncodedResult) Hex() string {
	return hexutil.Encode(r)
}

// ResultEncoder 结果编码器
//
// 布局与校验合约一致：两个动态类型的头部偏移量，之后依次是
// 长度前缀加32字节对齐的证明，以及元素个数前缀加各公开输入。
type ResultEncoder struct {
	arguments abi.Arguments
}

// NewResultEncoder 创建结果编码器
func NewResultEncoder() (*ResultEncoder, error) {
	bytesType, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, WrapEncodingFailedError(err)
	}
	bytes32ArrayType, err := abi.NewType("bytes32[]", "", nil)
	if err != nil {
		return nil, WrapEncodingFailedError(err)
	}
	return &ResultEncoder{
		arguments: abi.Arguments{
			{Name: "proof", Type: bytesType},
			{Name: "publicInputs", Type: bytes32ArrayType},
		},
	}, nil
}

// Encode 编码证明和公开输入
func (e *ResultEncoder) Encode(proof []byte, publicInputs [][32]byte) (EncodedResult, error) {
	if proof == nil {
		proof = []byte{}
	}
	if publicInputs == nil {
		publicInputs = [][32]byte{}
	}
	data, err := e.arguments.Pack(proof, publicInputs)
	if err != nil {
		return nil, WrapEncodingFailedError(err)
	}
	return EncodedResult(data), nil
}

// Decode 解码结果，返回证明和公开输入
func (e *ResultEncoder) Decode(data EncodedResult) ([]byte, [][32]byte, error) {
	values, err := e.arguments.Unpack(data)
	if err != nil {
		return nil, nil, WrapEncodingFailedError(err)
	}
	if len(values) != 2 {
		return nil, nil, WrapEncodingFailedError(fmt.Errorf("期望2个字段，实际%d个", len(values)))
	}
	proof, ok := values[0].([]byte)
	if !ok {
		return nil, nil, WrapEncodingFailedError(fmt.Errorf("proof 类型错误: %T", values[0]))
	}
	publicInputs, ok := values[1].([][32]byte)
	if !ok {
		return nil, nil, WrapEncodingFailedError(fmt.Errorf("publicInputs 类型错误: %T", values[1]))
	}
	return proof, publicInputs, nil
}
