package lsp

import (
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/loader"
	"github.com/tangzhangming/kite/internal/parser"
	"github.com/tangzhangming/kite/internal/token"
)

// Document 表示一个打开的文档
type Document struct {
	URI     string
	Path    string
	Content string
	Version int
	Lines   []string // 按行分割的内容

	// 最近一次分析的结果；语法错误时 Program 可能不完整
	Program     *ast.Program
	Diagnostics []*errors.CompileError
}

// DocumentManager 文档管理器
type DocumentManager struct {
	documents map[string]*Document
	mu        sync.RWMutex

	builtins *builtin.Registry
	logger   *zap.Logger
}

// NewDocumentManager 创建文档管理器
func NewDocumentManager(builtins *builtin.Registry, logger *zap.Logger) *DocumentManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentManager{
		documents: make(map[string]*Document),
		builtins:  builtins,
		logger:    logger,
	}
}

// Open 打开文档并立即分析
func (dm *DocumentManager) Open(uri, content string, version int) *Document {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc := &Document{
		URI:     uri,
		Path:    uriToPath(uri),
		Content: content,
		Version: version,
		Lines:   splitLines(content),
	}
	dm.analyze(doc)
	dm.documents[uri] = doc
	return doc
}

// Close 关闭文档
func (dm *DocumentManager) Close(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.documents, uri)
}

// Get 获取文档
func (dm *DocumentManager) Get(uri string) *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.documents[uri]
}

// UpdateContent 整体替换文档内容
func (dm *DocumentManager) UpdateContent(uri, content string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[uri]
	if !ok {
		return
	}
	doc.Content = content
	doc.Lines = splitLines(content)
	doc.Version++
	dm.analyze(doc)
}

// ApplyChanges 按顺序应用一组变更后重新分析
func (dm *DocumentManager) ApplyChanges(uri string, changes []protocol.TextDocumentContentChangeEvent, version int) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.documents[uri]
	if !ok {
		return
	}

	for _, change := range changes {
		// 省略 range 表示整体替换
		isFullReplace := change.Range.Start.Line == 0 &&
			change.Range.Start.Character == 0 &&
			change.Range.End.Line == 0 &&
			change.Range.End.Character == 0 &&
			change.RangeLength == 0

		if isFullReplace {
			doc.Content = change.Text
		} else {
			doc.Content = applyTextEdit(doc.Content, change.Range, change.Text)
		}
	}
	doc.Lines = splitLines(doc.Content)
	doc.Version = version
	dm.analyze(doc)
}

// maxDocumentSize 超过这个大小的文档不做分析
const maxDocumentSize = 500 * 1024

// analyze 解析并编译文档，收集诊断（调用方持有锁）
func (dm *DocumentManager) analyze(doc *Document) {
	doc.Program = nil
	doc.Diagnostics = nil

	if len(doc.Content) > maxDocumentSize {
		doc.Diagnostics = []*errors.CompileError{
			errors.New(errors.KindSemantic, errors.E0900, token.Position{Filename: doc.Path, Line: 1, Column: 1},
				"document too large to analyze"),
		}
		return
	}

	program, err := parser.ParseSource(doc.Content, doc.Path)
	doc.Program = program
	if err == nil {
		opts := compiler.Options{Builtins: dm.builtins, Logger: dm.logger}
		if doc.Path != "" {
			if l, lerr := loader.ForFile(doc.Path, loader.WithLogger(dm.logger)); lerr == nil {
				opts.Loader = l
			}
		}
		_, err = compiler.CompileSource(doc.Content, doc.Path, opts)
	}
	doc.Diagnostics = compiler.Diagnostics(err, doc.Path, doc.Content)
	if err != nil && len(doc.Diagnostics) == 0 {
		doc.Diagnostics = []*errors.CompileError{
			errors.New(errors.KindSemantic, errors.E0900, token.Position{Filename: doc.Path, Line: 1, Column: 1}, err.Error()),
		}
	}

	dm.logger.Debug("document analyzed",
		zap.String("uri", doc.URI),
		zap.Int("version", doc.Version),
		zap.Int("diagnostics", len(doc.Diagnostics)))
}

// GetLine 获取指定行内容（0-based）
func (doc *Document) GetLine(line int) string {
	if line < 0 || line >= len(doc.Lines) {
		return ""
	}
	return doc.Lines[line]
}

// WordBefore 光标前正在输入的单词
func (doc *Document) WordBefore(line, character int) string {
	lineText := doc.GetLine(line)
	if character > len(lineText) {
		character = len(lineText)
	}
	if character < 0 {
		return ""
	}
	start := character
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}
	return lineText[start:character]
}

// splitLines 将内容按行分割
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// applyTextEdit 应用一次增量编辑
func applyTextEdit(content string, rang protocol.Range, newText string) string {
	lines := splitLines(content)

	startLine := clamp(int(rang.Start.Line), 0, len(lines)-1)
	endLine := clamp(int(rang.End.Line), 0, len(lines)-1)
	startLineText := lines[startLine]
	endLineText := lines[endLine]
	startChar := clamp(int(rang.Start.Character), 0, len(startLineText))
	endChar := clamp(int(rang.End.Character), 0, len(endLineText))

	var result strings.Builder
	for i := 0; i < startLine; i++ {
		result.WriteString(lines[i])
		result.WriteString("\n")
	}
	result.WriteString(startLineText[:startChar])
	result.WriteString(newText)
	result.WriteString(endLineText[endChar:])
	for i := endLine + 1; i < len(lines); i++ {
		result.WriteString("\n")
		result.WriteString(lines[i])
	}
	return result.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isWordChar 判断是否是单词字符
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}
