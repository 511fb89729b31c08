package zkproof

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/hash"

	// 注册原生 MiMC 实现
	_ "github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	_ "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// DerivationFunc 派生函数：在宿主侧由参数计算电路的派生输入（例如承诺值）
//
// 参数已经过域范围检查，返回值必须是域内元素。
type DerivationFunc func(curve ecc.ID, args []*big.Int) (*big.Int, error)

// DerivationMiMC MiMC 派生函数名，与电路内 std/hash/mimc 的 Write/Sum 一致
const DerivationMiMC = "mimc"

var (
	derivationsMu sync.RWMutex
	derivations   = map[string]DerivationFunc{
		DerivationMiMC: deriveMiMC,
	}
)

// RegisterDerivation 注册派生函数，同名函数会被覆盖
func RegisterDerivation(name string, fn DerivationFunc) {
	if name == "" || fn == nil {
		return
	}
	derivationsMu.Lock()
	defer derivationsMu.Unlock()
	derivations[name] = fn
}

func lookupDerivation(name string) (DerivationFunc, bool) {
	derivationsMu.RLock()
	defer derivationsMu.RUnlock()
	fn, ok := derivations[name]
	return fn, ok
}

// mimcHashes 曲线到原生 MiMC 的映射
var mimcHashes = map[ecc.ID]hash.Hash{
	ecc.BN254:     hash.MIMC_BN254,
	ecc.BLS12_381: hash.MIMC_BLS12_381,
}

// deriveMiMC 计算 MiMC(args...)
//
// 每个参数按域元素宽度大端写入，与电路内逐个 Write 变量等价。
func deriveMiMC(curve ecc.ID, args []*big.Int) (*big.Int, error) {
	id, ok := mimcHashes[curve]
	if !ok {
		return nil, fmt.Errorf("曲线 %s 没有 MiMC 实现", curve)
	}

	h := id.New()
	size := (curve.ScalarField().BitLen() + 7) / 8
	buf := make([]byte, size)
	for i, arg := range args {
		arg.FillBytes(buf)
		if _, err := h.Write(buf); err != nil {
			return nil, fmt.Errorf("MiMC 写入第%d个参数失败: %w", i, err)
		}
	}
	return new(big.Int).SetBytes(h.Sum(nil)), nil
}
