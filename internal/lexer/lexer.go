package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// Lexer - 词法分析器
// ============================================================================
//
// 词法分析器把源代码逐字符累积成词素（lexeme），遇到分隔字符时把缓冲区
// 刷新为一个 Token，Token 的类型由字面量推导（token.Classify）。
//
// 几条规则：
// 1. 空白与控制字符只负责刷新缓冲区
// 2. ';' 与 '\n' 都产生 NEWLINE，连续换行合并，开头的换行丢弃
// 3. 运算符字符逐个产生，能与前一个运算符组成合法运算符时贪婪合并
// 4. 整数词素后紧跟 '.' 且 '.' 后是数字时，'.' 视为小数点
// 5. '-' 紧跟数字、且前面既没有词素也没有待定运算符时，作为数字的负号
// 6. 任何错误都是致命的：返回错误时不产生 Token 序列
//
// 流的末尾总是 NEWLINE 后跟 EOF（空输入只有 EOF）。
//
// ============================================================================

type commentMode int

const (
	commentNone commentMode = iota
	commentLine
	commentBlock
)

// Lexer 词法分析器结构体
type Lexer struct {
	source   string        // 源代码字符串
	filename string        // 源文件名（用于错误报告）
	tokens   []token.Token // 已扫描的 Token 列表

	current int // 当前扫描位置（字节偏移）
	line    int // 当前行号（从1开始）
	column  int // 当前列号（从1开始，按字符计）

	buf      strings.Builder // 词素缓冲区
	bufStart token.Position  // 缓冲区起始位置

	groupSign    string         // 待定的运算符（可能与下一个字符合并）
	groupSignPos token.Position // 待定运算符的位置

	quote    rune           // 当前引号（0 表示不在字符串中）
	quotePos token.Position // 引号起始位置

	comment    commentMode    // 注释状态
	commentPos token.Position // 块注释起始位置
}

// New 创建一个新的词法分析器
func New(source, filename string) *Lexer {
	estimatedTokens := len(source) / 4
	if estimatedTokens < 16 {
		estimatedTokens = 16
	}
	return &Lexer{
		source:   source,
		filename: filename,
		tokens:   make([]token.Token, 0, estimatedTokens),
		line:     1,
		column:   1,
	}
}

// Tokenize 对源代码做词法分析
func Tokenize(source, filename string) ([]token.Token, error) {
	return New(source, filename).ScanTokens()
}

// ============================================================================
// 公共方法
// ============================================================================

// ScanTokens 扫描所有 tokens
//
// 出错时返回 *errors.CompileError（KindSyntax），Token 序列为 nil。
func (l *Lexer) ScanTokens() ([]token.Token, error) {
	for l.current < len(l.source) {
		if err := l.scanChar(); err != nil {
			return nil, err
		}
	}

	switch {
	case l.quote != 0:
		return nil, l.errorAt(l.quotePos, errors.E0003,
			i18n.T(i18n.ErrUnclosedQuote, l.quotePos))
	case l.comment == commentBlock:
		return nil, l.errorAt(l.commentPos, errors.E0004,
			i18n.T(i18n.ErrUnclosedComment, l.commentPos))
	}

	if err := l.flush(); err != nil {
		return nil, err
	}
	if err := l.flushGroupSign(); err != nil {
		return nil, err
	}
	l.addNewline(l.pos())
	l.tokens = append(l.tokens, token.NewSentinel(token.EOF, l.pos()))
	return l.tokens, nil
}

// ============================================================================
// 核心扫描逻辑
// ============================================================================

// scanChar 处理一个字符
func (l *Lexer) scanChar() error {
	ch, size := l.peekRune(0)
	pos := l.pos()

	switch {
	case l.comment == commentLine:
		if ch == '\n' {
			l.comment = commentNone
			l.addNewline(pos)
		}
		l.advance(size)
		return nil

	case l.comment == commentBlock:
		if ch == '*' && l.peekByte(1) == '/' {
			l.comment = commentNone
			l.advance(1)
		}
		l.advance(size)
		return nil

	case l.quote != 0:
		return l.scanQuoted(ch, size)
	}

	switch {
	case ch == '/' && (l.peekByte(1) == '/' || l.peekByte(1) == '*'):
		if err := l.flushAll(); err != nil {
			return err
		}
		if l.peekByte(1) == '/' {
			l.comment = commentLine
		} else {
			l.comment = commentBlock
			l.commentPos = pos
			l.advance(1)
		}

	case ch == '"' || ch == '\'':
		if err := l.flushAll(); err != nil {
			return err
		}
		l.quote = ch
		l.quotePos = pos

	case ch == '\n' || ch == ';':
		if err := l.flushAll(); err != nil {
			return err
		}
		l.addNewline(pos)

	case ch == ' ' || ch == '\t' || ch == '\r' || (ch < 0x20 && ch != 0):
		if err := l.flushAll(); err != nil {
			return err
		}

	case ch == ',' || ch == '(' || ch == ')' || ch == '[' || ch == ']' || ch == '{' || ch == '}':
		if err := l.flushAll(); err != nil {
			return err
		}
		l.tokens = append(l.tokens, token.New(string(ch), pos))

	case ch == '.' && l.isIntLexeme() && isDigit(l.peekByte(1)):
		l.buf.WriteByte('.')

	case ch == '-' && l.buf.Len() == 0 && l.groupSign == "" && isDigit(l.peekByte(1)):
		l.bufStart = pos
		l.buf.WriteByte('-')

	case ch < utf8.RuneSelf && token.IsOperatorChar(byte(ch)):
		if err := l.flush(); err != nil {
			return err
		}
		if err := l.pushOperator(byte(ch), pos); err != nil {
			return err
		}

	case isIdentChar(ch):
		if err := l.flushGroupSign(); err != nil {
			return err
		}
		if l.buf.Len() == 0 {
			l.bufStart = pos
		}
		l.buf.WriteRune(ch)

	default:
		return l.errorAt(pos, errors.E0002, i18n.T(i18n.ErrIllegalChar, ch)).WithSpan(1)
	}

	l.advance(size)
	return nil
}

// scanQuoted 处理字符串内部的字符
func (l *Lexer) scanQuoted(ch rune, size int) error {
	switch ch {
	case l.quote:
		l.tokens = append(l.tokens, token.NewString(l.buf.String(), l.quotePos))
		l.buf.Reset()
		l.quote = 0
		l.advance(size)
		return nil

	case '\\':
		escPos := l.pos()
		next, nsize := l.peekRune(size)
		if nsize == 0 {
			// 反斜杠在文件末尾，留给未闭合引号报告
			l.advance(size)
			return nil
		}
		unescaped, ok := unescape(next)
		if !ok {
			return l.errorAt(escPos, errors.E0005, i18n.T(i18n.ErrIllegalEscape, next)).WithSpan(2)
		}
		l.buf.WriteRune(unescaped)
		l.advance(size)
		l.advance(nsize)
		return nil

	default:
		l.buf.WriteRune(ch)
		l.advance(size)
		return nil
	}
}

// pushOperator 处理一个运算符字符（贪婪合并）
func (l *Lexer) pushOperator(c byte, pos token.Position) error {
	if l.groupSign != "" {
		combined := l.groupSign + string(c)
		if token.LookupOperator(combined) != token.ILLEGAL {
			l.groupSign = combined
			return nil
		}
		if err := l.flushGroupSign(); err != nil {
			return err
		}
	}
	l.groupSign = string(c)
	l.groupSignPos = pos
	return nil
}

// flushGroupSign 输出待定的运算符
func (l *Lexer) flushGroupSign() error {
	if l.groupSign == "" {
		return nil
	}
	sign := l.groupSign
	l.groupSign = ""
	if token.IsPartialOperator(sign) || token.LookupOperator(sign) == token.ILLEGAL {
		return l.errorAt(l.groupSignPos, errors.E0006, i18n.T(i18n.ErrIllegalOperator, sign)).
			WithSpan(len(sign))
	}
	l.tokens = append(l.tokens, token.New(sign, l.groupSignPos))
	return nil
}

// flush 把缓冲区输出为一个 Token
func (l *Lexer) flush() error {
	if l.buf.Len() == 0 {
		return nil
	}
	lexeme := l.buf.String()
	l.buf.Reset()
	tok := token.New(lexeme, l.bufStart)
	if tok.Type == token.ILLEGAL {
		return l.errorAt(l.bufStart, errors.E0007, i18n.T(i18n.ErrInvalidIdentifier, lexeme)).
			WithSpan(utf8.RuneCountInString(lexeme))
	}
	l.tokens = append(l.tokens, tok)
	return nil
}

// flushAll 依次输出缓冲区与待定运算符
func (l *Lexer) flushAll() error {
	if err := l.flush(); err != nil {
		return err
	}
	return l.flushGroupSign()
}

// addNewline 添加换行 Token（合并连续换行，丢弃开头的换行）
func (l *Lexer) addNewline(pos token.Position) {
	if len(l.tokens) == 0 || l.tokens[len(l.tokens)-1].Type == token.NEWLINE {
		return
	}
	l.tokens = append(l.tokens, token.Token{Type: token.NEWLINE, Literal: "\n", Pos: pos})
}

// ============================================================================
// 辅助函数
// ============================================================================

func (l *Lexer) pos() token.Position {
	return token.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.current,
	}
}

func (l *Lexer) peekRune(offset int) (rune, int) {
	if l.current+offset >= len(l.source) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.source[l.current+offset:])
}

func (l *Lexer) peekByte(offset int) byte {
	if l.current+offset >= len(l.source) {
		return 0
	}
	return l.source[l.current+offset]
}

// advance 前进 size 个字节（一个字符）
func (l *Lexer) advance(size int) {
	if size <= 0 {
		return
	}
	if l.source[l.current] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.current += size
}

// isIntLexeme 缓冲区是否为不带小数点的整数词素
func (l *Lexer) isIntLexeme() bool {
	s := l.buf.String()
	return token.IsNumberLiteral(s) && !strings.ContainsRune(s, '.')
}

// errorAt 创建词法错误，附带出错行与已扫描的输入
func (l *Lexer) errorAt(pos token.Position, code, message string) *errors.CompileError {
	err := errors.New(errors.KindSyntax, code, pos, message).WithSource(l.source)
	start := strings.LastIndexByte(l.source[:l.current], '\n') + 1
	if scanned := strings.TrimSpace(l.source[start:l.current]); scanned != "" {
		err.WithInfo(i18n.T(i18n.InfoScannedSoFar, scanned))
	}
	return err
}

func unescape(c rune) (rune, bool) {
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '"', '\'':
		return c, true
	}
	return 0, false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isIdentChar 可以累积进词素的字符
func isIdentChar(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
