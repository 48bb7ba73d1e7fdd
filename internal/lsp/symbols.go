package lsp

import (
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/token"
)

// handleDocumentSymbol 处理文档符号请求
func (s *Server) handleDocumentSymbol(id json.RawMessage, params json.RawMessage) {
	var p protocol.DocumentSymbolParams
	if err := json.Unmarshal(params, &p); err != nil {
		s.sendError(id, codeParseError, "Parse error")
		return
	}

	doc := s.documents.Get(string(p.TextDocument.URI))
	if doc == nil || doc.Program == nil {
		s.sendResult(id, []protocol.DocumentSymbol{})
		return
	}
	s.sendResult(id, documentSymbols(doc.Program.Body, false))
}

// documentSymbols 全局定义与类成员；inClass 时函数为方法、变量为字段
func documentSymbols(items []ast.Node, inClass bool) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, item := range items {
		switch n := item.(type) {
		case *ast.FunctionDefinition:
			kind := protocol.SymbolKindFunction
			if inClass {
				kind = protocol.SymbolKindMethod
			}
			symbols = append(symbols, symbolOf(n, n.Name, kind, signature(n.Name, n.Params, n.Labels)))

		case *ast.FunctionDeclaration:
			kind := protocol.SymbolKindFunction
			if inClass {
				kind = protocol.SymbolKindMethod
			}
			symbols = append(symbols, symbolOf(n, n.Name, kind, signature(n.Name, n.Params, n.Labels)))

		case *ast.ConstructorDefinition:
			symbols = append(symbols, symbolOf(n, n.Name, protocol.SymbolKindConstructor, signature(n.Name, n.Params, n.Labels)))

		case *ast.ClassDefinition:
			sym := symbolOf(n, n.Name, protocol.SymbolKindClass, n.Name.String())
			sym.Children = documentSymbols(n.Body.Items, true)
			symbols = append(symbols, sym)

		case *ast.ClassDeclaration:
			symbols = append(symbols, symbolOf(n, n.Name, protocol.SymbolKindClass, "declaration"))

		case *ast.VariableDefinition:
			kind := protocol.SymbolKindVariable
			if inClass {
				kind = protocol.SymbolKindField
			}
			for _, name := range n.Names {
				symbols = append(symbols, symbolOf(name, name, kind, name.String()))
			}
		}
	}
	return symbols
}

func symbolOf(n ast.Node, name *ast.Identifier, kind protocol.SymbolKind, detail string) protocol.DocumentSymbol {
	return protocol.DocumentSymbol{
		Name:           name.Name,
		Detail:         detail,
		Kind:           kind,
		Range:          rangeOf(n.Pos(), n.End()),
		SelectionRange: rangeOf(name.Pos(), name.End()),
	}
}

// rangeOf 把 1-based 的源码位置转换为 LSP 范围
func rangeOf(start, end token.Position) protocol.Range {
	return protocol.Range{
		Start: lspPosition(start),
		End:   lspPosition(end),
	}
}

func lspPosition(p token.Position) protocol.Position {
	line, col := p.Line-1, p.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}
