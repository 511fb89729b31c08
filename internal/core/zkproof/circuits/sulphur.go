// Package circuits 定义含硫量合规证明的参考电路
package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/weisyn/sulphurproof/pkg/types"
)

// ============================================================================
// 含硫量合规电路
// ============================================================================
//
// 🎯 **证明内容**：
// 证明者知道 sulphur_content 和 salt，使得
//   commitment == MiMC(sulphur_content, salt)
//   sulphur_content <= threshold
// threshold 和 commitment 公开，sulphur_content 和 salt 保密。
//
// ⚠️ **注意**：
// - 字段顺序决定见证向量布局，修改顺序必须同步修改清单
// - 比较在整个标量域上进行，调用方负责保证输入为非负整数
//
// ============================================================================

// 电路标识
const (
	SulphurCircuitName    = "sulphur_compliance"
	SulphurCircuitVersion = 1
)

// SulphurCircuit 含硫量合规电路
type SulphurCircuit struct {
	// 公开输入
	Threshold  frontend.Variable `gnark:"threshold,public"`
	Commitment frontend.Variable `gnark:"commitment,public"`

	// 私有输入
	SulphurContent frontend.Variable `gnark:"sulphur_content,secret"`
	Salt           frontend.Variable `gnark:"salt,secret"`
}

// Define 定义电路约束
func (c *SulphurCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// 承诺绑定含硫量和盐值
	h.Write(c.SulphurContent, c.Salt)
	api.AssertIsEqual(c.Commitment, h.Sum())

	api.AssertIsLessOrEqual(c.SulphurContent, c.Threshold)
	return nil
}

// SulphurManifest 返回电路的外部契约
//
// 方案、曲线、哈希配置和文件摘要由可信设置工具填写。
func SulphurManifest() types.CircuitManifest {
	return types.CircuitManifest{
		Name:          SulphurCircuitName,
		Version:       SulphurCircuitVersion,
		Arguments:     []string{"sulphur_content", "threshold", "salt"},
		SaltArgument:  "salt",
		PublicInputs:  []string{"threshold", "commitment"},
		PrivateInputs: []string{"sulphur_content", "salt"},
		Derived: []types.DerivedOutput{
			{Name: "commitment", Function: "mimc", Arguments: []string{"sulphur_content", "salt"}},
		},
	}
}
