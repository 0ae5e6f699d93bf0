package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultNameAliases 已知的受访者姓名写法 -> 规范姓名
var DefaultNameAliases = map[string]string{
	"maria":        "Maria Iob",
	"maria iob":    "Maria Iob",
	"sarah c":      "Sarah Cetola",
	"sarah c.":     "Sarah Cetola",
	"sarah cetola": "Sarah Cetola",
	"raia claudia": "Claudia Raia",
	"claudia raia": "Claudia Raia",
}

// aliasFile 别名文件格式：
//
//	aliases:
//	  "sarah c.": Sarah Cetola
//
// 别名键中可能含 "."，因此不放进 viper 管理的主配置。
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases 读取别名文件；path 为空时返回内置别名表的副本
func LoadAliases(path string) (map[string]string, error) {
	if path == "" {
		out := make(map[string]string, len(DefaultNameAliases))
		for k, v := range DefaultNameAliases {
			out[k] = v
		}
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse aliases file: %w", err)
	}
	if f.Aliases == nil {
		f.Aliases = map[string]string{}
	}
	return f.Aliases, nil
}
