package parser

import "github.com/tangzhangming/kite/internal/token"

// Precedence order for operators（从低到高）
const (
	_ int = iota
	LOWEST
	PARALLEL    // ,
	ASSIGN      // = += -= *= /= %=
	PAIR        // :
	INDICATOR   // ->
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / % **
	PREFIX      // -x !x *x **x
	CALL        // f(x) a[i] a.b
)

// precedences 中缀位置的优先级
//
// ** 有优先级但没有中缀 builder：kite 没有乘方运算，出现在中缀位置时报告 builder 缺失。
var precedences = map[token.TokenType]int{
	token.COMMA:          PARALLEL,
	token.ASSIGN:         ASSIGN,
	token.PLUS_ASSIGN:    ASSIGN,
	token.MINUS_ASSIGN:   ASSIGN,
	token.STAR_ASSIGN:    ASSIGN,
	token.SLASH_ASSIGN:   ASSIGN,
	token.PERCENT_ASSIGN: ASSIGN,
	token.COLON:          PAIR,
	token.ARROW:          INDICATOR,
	token.OR:             OR,
	token.AND:            AND,
	token.EQ:             EQUALS,
	token.NE:             EQUALS,
	token.LT:             LESSGREATER,
	token.LE:             LESSGREATER,
	token.GT:             LESSGREATER,
	token.GE:             LESSGREATER,
	token.PLUS:           SUM,
	token.MINUS:          SUM,
	token.STAR:           PRODUCT,
	token.SLASH:          PRODUCT,
	token.PERCENT:        PRODUCT,
	token.POW:            PRODUCT,
	token.LPAREN:         CALL,
	token.LBRACKET:       CALL,
	token.DOT:            CALL,
}

func precedenceOf(t token.TokenType) int {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}
