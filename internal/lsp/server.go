// Package lsp 基于 stdio 的语言服务器
//
// 打开、修改、保存文档时完整编译一次并发布诊断；另外提供
// 关键字/内置函数/全局定义补全与文档符号。
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/compiler"
)

// JSON-RPC 错误码
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
)

// Server LSP 服务器
type Server struct {
	documents *DocumentManager
	builtins  *builtin.Registry
	logger    *zap.Logger

	// 工作区根目录
	workspaceRoot string

	// 输入输出
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex

	// 服务器状态
	initialized bool
	shutdown    bool
}

// Options 服务器选项
type Options struct {
	Builtins *builtin.Registry // 为 nil 时使用默认内置函数
	Logger   *zap.Logger
}

// NewServer 创建使用给定输入输出的 LSP 服务器
func NewServer(in io.Reader, out io.Writer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		documents: NewDocumentManager(opts.Builtins, logger),
		builtins:  opts.Builtins,
		logger:    logger,
		reader:    bufio.NewReader(in),
		writer:    out,
	}
}

// Run 启动 LSP 服务器主循环，直到 exit 通知或输入结束
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("kite language server started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				s.logger.Info("client disconnected")
				return nil
			}
			s.logger.Warn("read message", zap.Error(err))
			if err == io.ErrUnexpectedEOF {
				return err
			}
			continue
		}

		s.handleMessage(ctx, msg)

		if s.shutdown {
			s.logger.Info("server shutdown")
			return nil
		}
	}
}

// readMessage 读取一条 Content-Length 分帧的消息
func (s *Server) readMessage() ([]byte, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length:") {
			lengthStr := strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:"))
			contentLength, err = strconv.Atoi(lengthStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %s", lengthStr)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, content); err != nil {
		return nil, err
	}
	s.logger.Debug("received", zap.ByteString("content", content))
	return content, nil
}

// sendMessage 发送一条消息
func (s *Server) sendMessage(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.logger.Debug("sending", zap.ByteString("content", content))

	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(content)); err != nil {
		return err
	}
	_, err = s.writer.Write(content)
	return err
}

// handleMessage 按方法分发
func (s *Server) handleMessage(ctx context.Context, msg []byte) {
	var baseMsg struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}
	if err := json.Unmarshal(msg, &baseMsg); err != nil {
		s.logger.Warn("parse message", zap.Error(err))
		return
	}

	switch baseMsg.Method {
	case "initialize":
		s.handleInitialize(baseMsg.ID, baseMsg.Params)
	case "initialized":
		s.initialized = true
	case "shutdown":
		s.sendResult(baseMsg.ID, nil)
	case "exit":
		s.shutdown = true
	case "textDocument/didOpen":
		s.handleDidOpen(baseMsg.Params)
	case "textDocument/didChange":
		s.handleDidChange(baseMsg.Params)
	case "textDocument/didClose":
		s.handleDidClose(baseMsg.Params)
	case "textDocument/didSave":
		s.handleDidSave(baseMsg.Params)
	case "textDocument/completion":
		s.handleCompletion(baseMsg.ID, baseMsg.Params)
	case "textDocument/documentSymbol":
		s.handleDocumentSymbol(baseMsg.ID, baseMsg.Params)
	case "$/cancelRequest", "$/setTrace":
	default:
		s.logger.Debug("unknown method", zap.String("method", baseMsg.Method))
		if baseMsg.ID != nil {
			s.sendError(baseMsg.ID, codeMethodNotFound, "Method not found: "+baseMsg.Method)
		}
	}
}

// handleInitialize 返回服务器能力
func (s *Server) handleInitialize(id json.RawMessage, params json.RawMessage) {
	var initParams protocol.InitializeParams
	if err := json.Unmarshal(params, &initParams); err != nil {
		s.sendError(id, codeParseError, "Parse error")
		return
	}
	if initParams.RootURI != "" {
		s.workspaceRoot = uriToPath(string(initParams.RootURI))
	}
	s.logger.Info("initialize", zap.String("workspace", s.workspaceRoot))

	result := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"textDocumentSync": map[string]interface{}{
				"openClose": true,
				"change":    protocol.TextDocumentSyncKindIncremental,
				"save": map[string]interface{}{
					"includeText": true,
				},
			},
			"completionProvider": map[string]interface{}{
				"resolveProvider": false,
			},
			"documentSymbolProvider": true,
		},
		"serverInfo": map[string]interface{}{
			"name":    "kite-ls",
			"version": compiler.Version,
		},
	}
	s.sendResult(id, result)
}

func (s *Server) handleDidOpen(params json.RawMessage) {
	var p protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("didOpen params", zap.Error(err))
		return
	}
	docURI := string(p.TextDocument.URI)
	s.documents.Open(docURI, p.TextDocument.Text, int(p.TextDocument.Version))
	s.publishDiagnostics(docURI)
}

func (s *Server) handleDidChange(params json.RawMessage) {
	var p protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("didChange params", zap.Error(err))
		return
	}
	docURI := string(p.TextDocument.URI)
	s.documents.ApplyChanges(docURI, p.ContentChanges, int(p.TextDocument.Version))
	s.publishDiagnostics(docURI)
}

func (s *Server) handleDidClose(params json.RawMessage) {
	var p protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("didClose params", zap.Error(err))
		return
	}
	s.documents.Close(string(p.TextDocument.URI))

	// 清除诊断
	s.sendNotification("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         p.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
}

func (s *Server) handleDidSave(params json.RawMessage) {
	var p protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.logger.Warn("didSave params", zap.Error(err))
		return
	}
	docURI := string(p.TextDocument.URI)
	if p.Text != "" {
		s.documents.UpdateContent(docURI, p.Text)
	}
	s.publishDiagnostics(docURI)
}

// publishDiagnostics 发布文档的诊断
func (s *Server) publishDiagnostics(docURI string) {
	doc := s.documents.Get(docURI)
	if doc == nil {
		return
	}
	s.sendNotification("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Version:     uint32(doc.Version),
		Diagnostics: s.getDiagnostics(doc),
	})
}

// sendResult 发送成功响应
func (s *Server) sendResult(id json.RawMessage, result interface{}) {
	s.send(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

// sendError 发送错误响应
func (s *Server) sendError(id json.RawMessage, code int, message string) {
	s.send(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

// sendNotification 发送通知
func (s *Server) sendNotification(method string, params interface{}) {
	s.send(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (s *Server) send(msg interface{}) {
	if err := s.sendMessage(msg); err != nil {
		s.logger.Warn("send message", zap.Error(err))
	}
}

// uriToPath 将 file:// URI 转换为文件路径
func uriToPath(docURI string) string {
	if !strings.HasPrefix(docURI, uri.FileScheme+"://") {
		return docURI
	}
	return uri.URI(docURI).Filename()
}
