// Package source 从文件、数据库、Redis 读取模型配置与规则参数
// 所有来源都在构造时读取一次，之后只返回同一份配置
package source

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"katydid-common-validation/pkg/ruleconf"
)

// ErrUnknownFormat 文件扩展名不是 json、yaml、yml、xml
var ErrUnknownFormat = errors.New("unknown config file format")

// FileModelSource 文件中的模型配置
type FileModelSource struct {
	Path   string
	config *ruleconf.ValidationModelConfig
}

// NewFileModelSource 读取模型配置文件，格式由扩展名决定
func NewFileModelSource(path string) (*FileModelSource, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	return NewFileModelSourceAs(format, path)
}

// NewFileModelSourceAs 按指定格式读取模型配置文件，忽略扩展名
func NewFileModelSourceAs(format, path string) (*FileModelSource, error) {
	cfg := &ruleconf.ValidationModelConfig{}
	if err := decodeFile(format, path, cfg); err != nil {
		return nil, err
	}
	return &FileModelSource{Path: path, config: cfg}, nil
}

// ModelConfig 实现 ruleconf.ModelSource
func (s *FileModelSource) ModelConfig() *ruleconf.ValidationModelConfig {
	return s.config
}

// FileArgumentSource 文件中的规则参数
type FileArgumentSource struct {
	Path   string
	config *ruleconf.RuleArgumentConfig
}

// NewFileArgumentSource 读取规则参数文件，格式由扩展名决定
func NewFileArgumentSource(path string) (*FileArgumentSource, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	return NewFileArgumentSourceAs(format, path)
}

// NewFileArgumentSourceAs 按指定格式读取规则参数文件
func NewFileArgumentSourceAs(format, path string) (*FileArgumentSource, error) {
	cfg := &ruleconf.RuleArgumentConfig{}
	if err := decodeFile(format, path, cfg); err != nil {
		return nil, err
	}
	return &FileArgumentSource{Path: path, config: cfg}, nil
}

// ArgumentConfig 实现 ruleconf.ArgumentSource
func (s *FileArgumentSource) ArgumentConfig() *ruleconf.RuleArgumentConfig {
	return s.config
}

func decodeFile(format, path string, out any) error {
	switch format {
	case "json", "yaml", "xml":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := Decode(format, data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Decode 按格式解码配置
func Decode(format string, data []byte, out any) error {
	switch format {
	case "json":
		return json.Unmarshal(data, out)
	case "yaml":
		return yaml.Unmarshal(data, out)
	case "xml":
		return xml.Unmarshal(data, out)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Encode 按格式编码配置，用于导出
func Encode(format string, in any) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(in, "", "  ")
	case "yaml":
		return yaml.Marshal(in)
	case "xml":
		return xml.MarshalIndent(in, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// formatOf 扩展名 → 格式
func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".xml":
		return "xml", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}
