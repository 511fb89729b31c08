package zkproof

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/sulphurproof/pkg/interfaces/infrastructure/log"
)

// RawInputs 命令行原始输入，按位置保存
type RawInputs struct {
	SulphurContent string
	Threshold      string
	Salt           string
}

// Ordered 按位置顺序返回原始输入
func (r RawInputs) Ordered() []string {
	return []string{r.SulphurContent, r.Threshold, r.Salt}
}

// CircuitInputs 电路输入名到整数值的映射
//
// 数值可能为负或超出标量域，域范围由见证执行器判定。
type CircuitInputs map[string]*big.Int

// InputValidator 输入校验器
type InputValidator struct {
	logger log.Logger
}

// NewInputValidator 创建输入校验器
func NewInputValidator(logger log.Logger) *InputValidator {
	return &InputValidator{logger: logger}
}

// ParseArguments 检查参数数量并按位置取出原始输入
//
// 少于三个参数返回 ErrInvalidArgumentCount，多余参数被忽略。
func (v *InputValidator) ParseArguments(args []string) (RawInputs, error) {
	if len(args) < len(RequiredArguments) {
		return RawInputs{}, WrapInvalidArgumentCountError(len(RequiredArguments), len(args), RequiredArguments[len(args):])
	}
	if len(args) > len(RequiredArguments) && v.logger != nil {
		v.logger.Debugf("忽略多余参数: %d个", len(args)-len(RequiredArguments))
	}
	return RawInputs{
		SulphurContent: args[0],
		Threshold:      args[1],
		Salt:           args[2],
	}, nil
}

// Validate 把原始输入按位置映射到电路声明的参数名
func (v *InputValidator) Validate(cs ConstraintSystem, raw RawInputs) (CircuitInputs, error) {
	names := cs.ArgumentNames()
	values := raw.Ordered()
	if len(names) != len(values) {
		return nil, WrapArtifactMalformedError(cs.Name(), fmt.Sprintf("电路声明了%d个参数", len(names)))
	}

	inputs := make(CircuitInputs, len(names))
	for i, name := range names {
		value := values[i]
		n, err := parseInteger(value)
		if err != nil {
			if name != cs.SaltArgument() {
				return nil, WrapInvalidInputFormatError(name, value, err.Error())
			}
			if value == "" {
				return nil, WrapInvalidInputFormatError(name, value, "盐值不能为空")
			}
			n = textToField(value, cs.Field())
		}
		inputs[name] = n
	}
	return inputs, nil
}

// parseInteger 解析十进制或 0x 十六进制整数，允许前导负号
func parseInteger(s string) (*big.Int, error) {
	negative := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
		base = 16
	}
	if digits == "" {
		return nil, fmt.Errorf("不是整数")
	}
	for _, c := range digits {
		if !isDigit(c, base) {
			return nil, fmt.Errorf("不是整数")
		}
	}

	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("不是整数")
	}
	if negative {
		n.Neg(n)
	}
	return n, nil
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')):
		return true
	default:
		return false
	}
}

// textToField 把文本盐值映射为域元素：Keccak-256(utf8) mod r
func textToField(s string, modulus *big.Int) *big.Int {
	digest := crypto.Keccak256([]byte(s))
	n := new(big.Int).SetBytes(digest)
	return n.Mod(n, modulus)
}
