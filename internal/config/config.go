// Package config 实现 kite.toml 项目配置
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// 常量定义
const (
	FileName = "kite.toml" // 配置文件名

	DefaultOutputDir = "build"
	DefaultCacheDir  = ".kite-cache"
)

// Config 项目配置
type Config struct {
	Project ProjectInfo `toml:"project"`
	Build   BuildConfig `toml:"build"`
}

// ProjectInfo 项目信息
type ProjectInfo struct {
	// Name 项目名
	Name string `toml:"name"`

	// Version 版本号（遵循语义化版本，如 1.0.0）
	Version string `toml:"version"`

	// Entry 入口文件，相对于项目根目录
	Entry string `toml:"entry"`
}

// BuildConfig 编译选项
type BuildConfig struct {
	// Output RA 文件输出目录
	Output string `toml:"output"`

	// Annotate 在输出中附带源代码注释
	Annotate bool `toml:"annotate"`

	// Include import 的额外搜索目录
	Include []string `toml:"include"`

	// Extensions 编译前加载的扩展动态库
	Extensions []string `toml:"extensions"`

	// Cache 是否启用编译缓存
	Cache bool `toml:"cache"`

	// CacheDir 缓存目录
	CacheDir string `toml:"cache_dir"`
}

// Load 从文件加载配置，缺省项以默认值补齐
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析配置文件内容
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.fillDefaults()
	return &config, nil
}

func (c *Config) fillDefaults() {
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutputDir
	}
	if c.Build.CacheDir == "" {
		c.Build.CacheDir = DefaultCacheDir
	}
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Resolve 把相对于项目根目录的路径转为绝对路径
func (c *Config) Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// IncludeDirs 绝对路径形式的搜索目录
func (c *Config) IncludeDirs(root string) []string {
	dirs := make([]string, 0, len(c.Build.Include))
	for _, dir := range c.Build.Include {
		dirs = append(dirs, c.Resolve(root, dir))
	}
	return dirs
}

// GenerateDefault 生成默认配置
// dir 是项目目录路径，用于生成默认的项目名
func GenerateDefault(dir string) *Config {
	baseName := filepath.Base(dir)
	if baseName == "" || baseName == "." || baseName == "/" {
		baseName = "my-app"
	}

	c := &Config{
		Project: ProjectInfo{
			Name:    sanitizeName(baseName),
			Version: "0.1.0",
			Entry:   "main.kite",
		},
	}
	c.fillDefaults()
	return c
}

// sanitizeName 清理项目名
func sanitizeName(name string) string {
	// 转换为小写，替换空格和下划线为连字符
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")

	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			result.WriteRune(r)
		}
	}

	s := result.String()
	if s == "" {
		return "my-app"
	}
	return s
}

// FindConfigFile 从指定路径向上查找配置文件
// 返回配置文件的完整路径，如果找不到则返回空字符串
func FindConfigFile(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	var dir string
	if info.IsDir() {
		dir = startPath
	} else {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ProjectRoot 获取项目根目录（配置文件所在目录）
func ProjectRoot(startPath string) string {
	configPath := FindConfigFile(startPath)
	if configPath == "" {
		return ""
	}
	return filepath.Dir(configPath)
}

// Discover 查找并加载 startPath 所属项目的配置
//
// 找不到配置文件时返回默认配置与空的根目录。
func Discover(startPath string) (cfg *Config, root string, err error) {
	path := FindConfigFile(startPath)
	if path == "" {
		cfg = &Config{}
		cfg.fillDefaults()
		return cfg, "", nil
	}
	cfg, err = Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(path), nil
}
