package lsp

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/tangzhangming/kite/internal/errors"
)

// diagnosticSource 诊断来源
const diagnosticSource = "kite"

// getDiagnostics 把文档的编译错误转换为 LSP 诊断
func (s *Server) getDiagnostics(doc *Document) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(doc.Diagnostics))
	for _, ce := range doc.Diagnostics {
		diagnostics = append(diagnostics, toDiagnostic(doc, ce))
	}
	return diagnostics
}

// toDiagnostic 转换一个编译错误
//
// 其它文件（被导入文件）中的错误放在第一行，消息带上原位置。
func toDiagnostic(doc *Document, ce *errors.CompileError) protocol.Diagnostic {
	message := ce.Message
	line, col, end := ce.Line, ce.Column, ce.EndColumn
	if ce.File != "" && ce.File != doc.Path {
		message = fmt.Sprintf("%s:%d:%d: %s", ce.File, ce.Line, ce.Column, ce.Message)
		line, col, end = 1, 1, 0
	}
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if end <= col {
		end = col + wordLength(doc.GetLine(line-1), col-1)
	}

	if len(ce.Infos) > 0 {
		message += "\n" + strings.Join(ce.Infos, "\n")
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(col - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(end - 1)},
		},
		Severity: severityOf(ce.Level),
		Code:     ce.Code,
		Source:   diagnosticSource,
		Message:  message,
	}
}

func severityOf(level errors.Level) protocol.DiagnosticSeverity {
	switch level {
	case errors.LevelWarning:
		return protocol.DiagnosticSeverityWarning
	case errors.LevelNote:
		return protocol.DiagnosticSeverityInformation
	case errors.LevelHelp:
		return protocol.DiagnosticSeverityHint
	}
	return protocol.DiagnosticSeverityError
}

// wordLength 从 col 开始的单词长度，至少为 1
func wordLength(line string, col int) int {
	n := 0
	for col+n < len(line) && isWordChar(line[col+n]) {
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}
