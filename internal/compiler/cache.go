// cache.go - RA 代码缓存
//
// 编译结果按入口文件缓存在磁盘上：
// 1. 键为 BLAKE2b(编译器版本 + 编译选项 + 内置函数表 + 源代码)
// 2. 同时记录每个被导入文件的哈希，任一变化即失效
// 3. 索引为 JSON，条目过多或过大时按 LRU 清理

package compiler

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/loader"
)

const (
	// Version 编译器版本，参与缓存键计算
	Version = "0.1.0"

	// CacheVersion 缓存格式版本，版本不匹配时清空缓存
	CacheVersion = "1"

	// MaxCacheEntries 最大缓存条目数
	MaxCacheEntries = 1000

	// MaxCacheSize 最大缓存大小（字节）
	MaxCacheSize = 64 * 1024 * 1024

	cacheExt  = ".ra"
	indexFile = "index.json"
)

// Cache RA 代码缓存
type Cache struct {
	mu     sync.Mutex
	dir    string
	index  *CacheIndex
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheIndex 缓存索引
type CacheIndex struct {
	Version   string                 `json:"version"`
	Entries   map[string]*CacheEntry `json:"entries"`
	TotalSize int64                  `json:"total_size"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// CacheEntry 缓存条目
type CacheEntry struct {
	SourcePath   string            `json:"source_path"`
	Key          string            `json:"key"`
	CacheFile    string            `json:"cache_file"`
	Size         int64             `json:"size"`
	Dependencies map[string]string `json:"dependencies"` // 被导入文件 -> 内容哈希
	CompiledAt   time.Time         `json:"compiled_at"`
	AccessedAt   time.Time         `json:"accessed_at"`
	AccessCount  int               `json:"access_count"`
}

// CacheStats 缓存统计
type CacheStats struct {
	Entries   int
	TotalSize int64
	Hits      int64
	Misses    int64
	Dir       string
}

// OpenCache 打开（必要时创建）缓存目录
func OpenCache(dir string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	c := &Cache{dir: dir, logger: logger}
	if err := c.loadIndex(); err != nil || c.index.Version != CacheVersion {
		c.index = newIndex()
		c.removeFiles()
	}
	return c, nil
}

func newIndex() *CacheIndex {
	return &CacheIndex{Version: CacheVersion, Entries: make(map[string]*CacheEntry)}
}

// CacheKey 源代码与编译选项对应的缓存键
func CacheKey(source string, opts Options) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "kite %s\nannotate=%t\n", Version, opts.Annotate)
	registry := opts.Builtins
	if registry == nil {
		registry = builtin.Default()
	}
	fmt.Fprintf(h, "builtins=%s\n", strings.Join(registry.Names(), ","))
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// contentHash 文件内容哈希
func contentHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get 取出缓存的 RA 代码
func (c *Cache) Get(sourcePath, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[sourcePath]
	if !ok {
		c.misses.Inc()
		return "", false
	}
	if entry.Key != key || c.dependenciesChanged(entry) {
		c.logger.Debug("cache stale", zap.String("file", sourcePath))
		c.removeEntry(sourcePath)
		c.misses.Inc()
		return "", false
	}
	data, err := os.ReadFile(entry.CacheFile)
	if err != nil {
		c.removeEntry(sourcePath)
		c.misses.Inc()
		return "", false
	}

	entry.AccessedAt = time.Now()
	entry.AccessCount++
	c.hits.Inc()
	return string(data), true
}

// Put 写入编译结果；deps 为编译过程中加载的其他文件
func (c *Cache) Put(sourcePath, key, text string, deps []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	hashes := make(map[string]string, len(deps))
	for _, dep := range deps {
		if dep == sourcePath {
			continue
		}
		h, err := contentHash(dep)
		if err != nil {
			return err
		}
		hashes[dep] = h
	}

	c.removeEntry(sourcePath)
	file := filepath.Join(c.dir, key[:32]+cacheExt)
	if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
		return err
	}

	now := time.Now()
	entry := &CacheEntry{
		SourcePath:   sourcePath,
		Key:          key,
		CacheFile:    file,
		Size:         int64(len(text)),
		Dependencies: hashes,
		CompiledAt:   now,
		AccessedAt:   now,
		AccessCount:  1,
	}
	c.index.Entries[sourcePath] = entry
	c.index.TotalSize += entry.Size
	c.index.UpdatedAt = now

	c.cleanupIfNeeded()
	return c.saveIndex()
}

// Invalidate 使条目失效
func (c *Cache) Invalidate(sourcePath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeEntry(sourcePath)
	return c.saveIndex()
}

// Clear 清空缓存
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeFiles()
	c.index = newIndex()
	return c.saveIndex()
}

// Flush 保存索引（Get 会更新访问信息）
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndex()
}

// Stats 缓存统计
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.index.Entries),
		TotalSize: c.index.TotalSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Dir:       c.dir,
	}
}

// CompileFileCached 编译源文件，命中缓存时直接返回缓存的 RA 代码
func CompileFileCached(path string, opts Options, cache *Cache) (string, error) {
	if cache == nil {
		return CompileFile(path, opts)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	source, err := os.ReadFile(abs)
	if err != nil {
		return CompileFile(abs, opts)
	}
	key := CacheKey(string(source), opts)
	if text, ok := cache.Get(abs, key); ok {
		cache.logger.Debug("cache hit", zap.String("file", abs))
		return text, nil
	}

	if opts.Loader == nil {
		l, err := loader.ForFile(abs, loader.WithLogger(opts.Logger))
		if err != nil {
			return "", err
		}
		opts.Loader = l
	}
	text, err := CompileFile(abs, opts)
	if err != nil {
		return "", err
	}
	if err := cache.Put(abs, key, text, opts.Loader.Loaded()); err != nil {
		cache.logger.Warn("cache write failed", zap.String("file", abs), zap.Error(err))
	}
	return text, nil
}

// ============================================================================
// 内部方法
// ============================================================================

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if err != nil {
		return err
	}
	c.index = newIndex()
	if err := json.Unmarshal(data, c.index); err != nil {
		return err
	}
	if c.index.Entries == nil {
		c.index.Entries = make(map[string]*CacheEntry)
	}
	return nil
}

func (c *Cache) saveIndex() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, indexFile), data, 0o644)
}

func (c *Cache) removeFiles() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == cacheExt {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
}

// removeEntry 删除条目（调用方持有锁）
func (c *Cache) removeEntry(sourcePath string) {
	entry, ok := c.index.Entries[sourcePath]
	if !ok {
		return
	}
	os.Remove(entry.CacheFile)
	c.index.TotalSize -= entry.Size
	delete(c.index.Entries, sourcePath)
}

func (c *Cache) dependenciesChanged(entry *CacheEntry) bool {
	for dep, hash := range entry.Dependencies {
		current, err := contentHash(dep)
		if err != nil || current != hash {
			return true
		}
	}
	return false
}

func (c *Cache) cleanupIfNeeded() {
	if len(c.index.Entries) <= MaxCacheEntries && c.index.TotalSize <= MaxCacheSize {
		return
	}
	entries := make([]*CacheEntry, 0, len(c.index.Entries))
	for _, e := range c.index.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessedAt.Before(entries[j].AccessedAt)
	})
	for _, e := range entries {
		if len(c.index.Entries) <= MaxCacheEntries && c.index.TotalSize <= MaxCacheSize {
			break
		}
		c.removeEntry(e.SourcePath)
	}
}
