package lsp

import (
	"encoding/json"
	"sort"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/token"
)

// handleCompletion 处理代码补全请求
func (s *Server) handleCompletion(id json.RawMessage, params json.RawMessage) {
	var p protocol.CompletionParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.sendError(id, codeParseError, "Parse error")
		return
	}

	doc := s.documents.Get(string(p.TextDocument.URI))
	if doc == nil {
		s.sendResult(id, []protocol.CompletionItem{})
		return
	}
	items := s.getCompletionItems(doc, int(p.Position.Line), int(p.Position.Character))
	s.sendResult(id, items)
}

// getCompletionItems 关键字、内置函数与文档中的全局定义
func (s *Server) getCompletionItems(doc *Document, line, character int) []protocol.CompletionItem {
	prefix := doc.WordBefore(line, character)
	items := []protocol.CompletionItem{}
	seen := make(map[string]bool)

	add := func(label string, kind protocol.CompletionItemKind, detail string) {
		if seen[label] || !strings.HasPrefix(label, prefix) {
			return
		}
		seen[label] = true
		items = append(items, protocol.CompletionItem{Label: label, Kind: kind, Detail: detail})
	}

	if doc.Program != nil {
		for _, item := range doc.Program.Body {
			switch n := item.(type) {
			case *ast.FunctionDefinition:
				add(n.Name.Name, protocol.CompletionItemKindFunction, signature(n.Name, n.Params, n.Labels))
			case *ast.FunctionDeclaration:
				add(n.Name.Name, protocol.CompletionItemKindFunction, signature(n.Name, n.Params, n.Labels))
			case *ast.ClassDefinition:
				add(n.Name.Name, protocol.CompletionItemKindClass, "class")
			case *ast.ClassDeclaration:
				add(n.Name.Name, protocol.CompletionItemKindClass, "class")
			case *ast.VariableDefinition:
				for _, name := range n.Names {
					add(name.Name, protocol.CompletionItemKindVariable, name.String())
				}
			}
		}
	}

	registry := s.builtins
	if registry == nil {
		registry = builtin.Default()
	}
	for _, name := range registry.Names() {
		entry, _ := registry.Lookup(name)
		add(name, protocol.CompletionItemKindFunction, "builtin, "+entry.Usage())
	}
	for _, kw := range token.Keywords() {
		add(kw, protocol.CompletionItemKindKeyword, "keyword")
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Kind < items[j].Kind })
	return items
}

// signature 函数签名文本
func signature(name *ast.Identifier, params []*ast.Parameter, labels []*ast.Label) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	sig := "fun " + name.Name + "(" + strings.Join(parts, ", ") + ")"
	if len(labels) > 0 {
		names := make([]string, len(labels))
		for i, l := range labels {
			names[i] = l.String()
		}
		sig += ": " + strings.Join(names, " ")
	}
	return sig
}
