package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/sulphurproof/configs"
	"github.com/weisyn/sulphurproof/pkg/interfaces/config"
	"github.com/weisyn/sulphurproof/pkg/types"
)

// appOptions 应用配置选项实现
type appOptions struct {
	appConfig *types.AppConfig
}

// GetAppConfig 获取应用配置
func (o *appOptions) GetAppConfig() *types.AppConfig {
	return o.appConfig
}

// NewAppOptions 使用已解析的配置创建配置选项
func NewAppOptions(appConfig *types.AppConfig) config.AppOptions {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &appOptions{appConfig: appConfig}
}

// LoadAppOptions 加载应用配置
//
// configPath 为空时使用内嵌的默认配置；指定路径时文件必须存在且为合法JSON。
// 与节点程序不同，证明程序不会在配置错误时静默回退到默认值，
// 否则可能用错误的电路产物生成证明。
func LoadAppOptions(configPath string) (config.AppOptions, error) {
	data := configs.GetDefaultProverConfig()
	if configPath != "" {
		fileData, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", configPath, err)
		}
		data = fileData
	}

	appConfig, err := ParseAppConfig(data)
	if err != nil {
		if configPath == "" {
			configPath = "<embedded>"
		}
		return nil, fmt.Errorf("解析配置文件失败 %s: %w", configPath, err)
	}
	return NewAppOptions(appConfig), nil
}

// ParseAppConfig 解析JSON配置为标准的AppConfig结构
func ParseAppConfig(data []byte) (*types.AppConfig, error) {
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, err
	}
	return &appConfig, nil
}
