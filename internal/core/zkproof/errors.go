// Package zkproof provides the sulphur compliance proof generation pipeline.
package zkproof

import (
	"errors"
	"fmt"
)

// ============================================================================
//                            证明生成错误定义
// ============================================================================

var (
	// ErrArtifactNotFound 电路产物不存在
	ErrArtifactNotFound = errors.New("circuit artifact not found")

	// ErrArtifactMalformed 电路产物格式错误
	ErrArtifactMalformed = errors.New("circuit artifact malformed")

	// ErrInvalidArgumentCount 参数数量不足
	ErrInvalidArgumentCount = errors.New("invalid argument count")

	// ErrInvalidInputFormat 输入格式无法解析
	ErrInvalidInputFormat = errors.New("invalid input format")

	// ErrConstraintViolation 输入不满足电路约束
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrProofGenerationFailed 证明生成失败
	ErrProofGenerationFailed = errors.New("proof generation failed")

	// ErrEncodingFailed 结果编码失败
	ErrEncodingFailed = errors.New("result encoding failed")
)

// ============================================================================
//                               错误包装函数
// ============================================================================

// WrapArtifactNotFoundError 包装电路产物不存在错误
func WrapArtifactNotFoundError(path string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: path=%s", ErrArtifactNotFound, path)
	}
	return fmt.Errorf("%w: path=%s, cause=%v", ErrArtifactNotFound, path, err)
}

// WrapArtifactMalformedError 包装电路产物格式错误
func WrapArtifactMalformedError(path, reason string) error {
	return fmt.Errorf("%w: path=%s, reason=%s", ErrArtifactMalformed, path, reason)
}

// WrapInvalidArgumentCountError 包装参数数量错误，列出缺失的参数名
func WrapInvalidArgumentCountError(expected, actual int, missing []string) error {
	return fmt.Errorf("%w: expected=%d, actual=%d, missing=%v", ErrInvalidArgumentCount, expected, actual, missing)
}

// WrapInvalidInputFormatError 包装输入格式错误
func WrapInvalidInputFormatError(name, value, reason string) error {
	return fmt.Errorf("%w: input=%s, value=%q, reason=%s", ErrInvalidInputFormat, name, value, reason)
}

// WrapConstraintViolationError 包装约束不满足错误
func WrapConstraintViolationError(circuit, reason string) error {
	return fmt.Errorf("%w: circuit=%s, reason=%s", ErrConstraintViolation, circuit, reason)
}

// WrapProofGenerationFailedError 包装证明生成失败错误
func WrapProofGenerationFailedError(circuit string, err error) error {
	return fmt.Errorf("%w: circuit=%s, cause=%v", ErrProofGenerationFailed, circuit, err)
}

// WrapEncodingFailedError 包装结果编码失败错误
func WrapEncodingFailedError(err error) error {
	return fmt.Errorf("%w: cause=%v", ErrEncodingFailed, err)
}

// ============================================================================
//                               错误分类
// ============================================================================

// ErrorKind 错误类别
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindArtifactNotFound
	KindArtifactMalformed
	KindInvalidArgumentCount
	KindInvalidInputFormat
	KindConstraintViolation
	KindProofGeneration
	KindEncoding
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindArtifactNotFound, ErrArtifactNotFound},
	{KindArtifactMalformed, ErrArtifactMalformed},
	{KindInvalidArgumentCount, ErrInvalidArgumentCount},
	{KindInvalidInputFormat, ErrInvalidInputFormat},
	{KindConstraintViolation, ErrConstraintViolation},
	{KindProofGeneration, ErrProofGenerationFailed},
	{KindEncoding, ErrEncodingFailed},
}

// String 返回类别名称
func (k ErrorKind) String() string {
	switch k {
	case KindArtifactNotFound:
		return "ArtifactNotFound"
	case KindArtifactMalformed:
		return "ArtifactMalformed"
	case KindInvalidArgumentCount:
		return "InvalidArgumentCount"
	case KindInvalidInputFormat:
		return "InvalidInputFormat"
	case KindConstraintViolation:
		return "ConstraintViolation"
	case KindProofGeneration:
		return "ProofGenerationError"
	case KindEncoding:
		return "EncodingError"
	default:
		return "Unknown"
	}
}

// KindOf 返回错误链中第一个可识别的类别
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnknown
}

// StageError 携带失败阶段的错误
//
// Stage 为失败时正在进入的状态。
type StageError struct {
	Stage Stage
	Err   error
}

// Error 实现 error 接口
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap 返回底层错误
func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf 返回错误链中的失败阶段
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return StageFailed, false
}
