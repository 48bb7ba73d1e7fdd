package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

const testURI = "file:///tmp/kite-lsp/test.kite"

// frame 按 Content-Length 分帧
func frame(t *testing.T, msgs ...map[string]interface{}) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		m["jsonrpc"] = "2.0"
		content, err := json.Marshal(m)
		require.NoError(t, err)
		fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n%s", len(content), content)
	}
	return &buf
}

type rpcMessage struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// readAll 解析服务器写出的全部消息
func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	r := bufio.NewReader(out)
	var msgs []rpcMessage
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return msgs
		}
		require.NoError(t, err)
		length, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
		require.NoError(t, err)
		_, err = r.ReadString('\n')
		require.NoError(t, err)

		content := make([]byte, length)
		_, err = io.ReadFull(r, content)
		require.NoError(t, err)

		var m rpcMessage
		require.NoError(t, json.Unmarshal(content, &m))
		msgs = append(msgs, m)
	}
}

func run(t *testing.T, msgs ...map[string]interface{}) []rpcMessage {
	t.Helper()
	var out bytes.Buffer
	s := NewServer(frame(t, msgs...), &out, Options{})
	require.NoError(t, s.Run(context.Background()))
	return readAll(t, &out)
}

func didOpen(text string) map[string]interface{} {
	return map[string]interface{}{
		"method": "textDocument/didOpen",
		"params": map[string]interface{}{
			"textDocument": map[string]interface{}{
				"uri":        testURI,
				"languageId": "kite",
				"version":    1,
				"text":       text,
			},
		},
	}
}

func request(id int, method string, params interface{}) map[string]interface{} {
	return map[string]interface{}{"id": id, "method": method, "params": params}
}

func byID(msgs []rpcMessage, id string) *rpcMessage {
	for i := range msgs {
		if string(msgs[i].ID) == id {
			return &msgs[i]
		}
	}
	return nil
}

func diagnosticsOf(t *testing.T, msgs []rpcMessage) []protocol.PublishDiagnosticsParams {
	t.Helper()
	var out []protocol.PublishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p protocol.PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(m.Params, &p))
		out = append(out, p)
	}
	return out
}

// ============================================================================
// 生命周期
// ============================================================================

func TestInitialize(t *testing.T) {
	msgs := run(t,
		request(1, "initialize", map[string]interface{}{"rootUri": "file:///tmp/kite-lsp"}),
		map[string]interface{}{"method": "initialized", "params": map[string]interface{}{}},
		request(2, "shutdown", nil),
		map[string]interface{}{"method": "exit"},
	)

	resp := byID(msgs, "1")
	require.NotNil(t, resp)
	var result struct {
		Capabilities struct {
			TextDocumentSync struct {
				Change int `json:"change"`
			} `json:"textDocumentSync"`
			DocumentSymbolProvider bool `json:"documentSymbolProvider"`
		} `json:"capabilities"`
		ServerInfo struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, 2, result.Capabilities.TextDocumentSync.Change)
	assert.True(t, result.Capabilities.DocumentSymbolProvider)
	assert.Equal(t, "kite-ls", result.ServerInfo.Name)

	assert.NotNil(t, byID(msgs, "2"))
}

func TestUnknownMethod(t *testing.T) {
	msgs := run(t, request(7, "textDocument/hover", map[string]interface{}{}))

	resp := byID(msgs, "7")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

// ============================================================================
// 诊断
// ============================================================================

func TestDiagnosticsForUnresolvedName(t *testing.T) {
	msgs := run(t, didOpen("var x = 1\nsout(y)"))

	published := diagnosticsOf(t, msgs)
	require.Len(t, published, 1)
	require.Len(t, published[0].Diagnostics, 1)

	d := published[0].Diagnostics[0]
	assert.Equal(t, "E0100", d.Code)
	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	assert.Equal(t, diagnosticSource, d.Source)
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, uint32(5), d.Range.Start.Character)
	assert.Contains(t, d.Message, "y")
}

func TestDiagnosticsClearedAfterFix(t *testing.T) {
	msgs := run(t,
		didOpen("sout(y)"),
		map[string]interface{}{
			"method": "textDocument/didChange",
			"params": map[string]interface{}{
				"textDocument": map[string]interface{}{"uri": testURI, "version": 2},
				"contentChanges": []interface{}{
					map[string]interface{}{"text": "var y = 1\nsout(y)"},
				},
			},
		},
	)

	published := diagnosticsOf(t, msgs)
	require.Len(t, published, 2)
	assert.NotEmpty(t, published[0].Diagnostics)
	assert.Empty(t, published[1].Diagnostics)
	assert.Equal(t, uint32(2), published[1].Version)
}

func TestDiagnosticsForParseErrors(t *testing.T) {
	dm := NewDocumentManager(nil, nil)
	doc := dm.Open(testURI, "var = 1\nvar b = (", 1)

	require.NotEmpty(t, doc.Diagnostics)
	for _, d := range doc.Diagnostics {
		assert.Equal(t, "/tmp/kite-lsp/test.kite", d.File)
	}
}

// ============================================================================
// 补全与符号
// ============================================================================

func TestCompletion(t *testing.T) {
	msgs := run(t,
		didOpen("fun length(s: str): int { return len(s) }\nle"),
		request(3, "textDocument/completion", map[string]interface{}{
			"textDocument": map[string]interface{}{"uri": testURI},
			"position":     map[string]interface{}{"line": 1, "character": 2},
		}),
	)

	resp := byID(msgs, "3")
	require.NotNil(t, resp)
	var items []protocol.CompletionItem
	require.NoError(t, json.Unmarshal(resp.Result, &items))

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	assert.Contains(t, labels, "length")
	assert.Contains(t, labels, "len")
	for _, l := range labels {
		assert.True(t, strings.HasPrefix(l, "le"), l)
	}
}

func TestDocumentSymbols(t *testing.T) {
	symbols := documentSymbols(mustOpen(t, `class Point {
    var x: int = 0
    fun init(x: int) { this.x = x }
    fun norm(): int { return this.x * this.x }
}
var origin = Point(0)`).Program.Body, false)

	require.Len(t, symbols, 2)
	assert.Equal(t, "Point", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindClass, symbols[0].Kind)
	assert.Equal(t, uint32(0), symbols[0].SelectionRange.Start.Line)
	assert.Equal(t, uint32(6), symbols[0].SelectionRange.Start.Character)

	children := symbols[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, protocol.SymbolKindField, children[0].Kind)
	assert.Equal(t, "norm", children[2].Name)
	assert.Equal(t, protocol.SymbolKindMethod, children[2].Kind)

	assert.Equal(t, "origin", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[1].Kind)
}

func mustOpen(t *testing.T, content string) *Document {
	t.Helper()
	doc := NewDocumentManager(nil, nil).Open(testURI, content, 1)
	require.Empty(t, doc.Diagnostics)
	require.NotNil(t, doc.Program)
	return doc
}

// ============================================================================
// 文本编辑
// ============================================================================

func TestApplyTextEdit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rang    protocol.Range
		text    string
		want    string
	}{
		{
			name:    "insert",
			content: "var a = 1",
			rang:    protocol.Range{Start: protocol.Position{Character: 8}, End: protocol.Position{Character: 8}},
			text:    "4",
			want:    "var a = 41",
		},
		{
			name:    "replace across lines",
			content: "var a = 1\nvar b = 2\nsout(a)",
			rang: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 8},
				End:   protocol.Position{Line: 1, Character: 9},
			},
			text: "3",
			want: "var a = 3\nsout(a)",
		},
		{
			name:    "clamped",
			content: "x",
			rang: protocol.Range{
				Start: protocol.Position{Line: 5, Character: 9},
				End:   protocol.Position{Line: 5, Character: 9},
			},
			text: "y",
			want: "xy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyTextEdit(tt.content, tt.rang, tt.text))
		})
	}
}

func TestWordBefore(t *testing.T) {
	doc := &Document{Lines: splitLines("sout(leng\r\nx")}
	assert.Equal(t, "leng", doc.WordBefore(0, 9))
	assert.Equal(t, "", doc.WordBefore(0, 5))
	assert.Equal(t, "x", doc.WordBefore(1, 10))
	assert.Equal(t, "", doc.WordBefore(4, 0))
}
