package lexer

import (
	"strings"
	"testing"
)

// ============================================================================
// Lexer 基准测试
// ============================================================================
//
// 运行基准测试：
//   go test -bench=. -benchmem ./internal/lexer/...
//
// ============================================================================

var benchSource = `
// 基准测试用的示例代码
import "lib/shapes.kite"

class Shape {
    var name: str = "shape"
    fun area(): flt { return 0.0 }
}

class Circle: Shape public {
    var r: flt = 1.0
    var count: int static = 0
    fun init(r: flt) { this.r = r }
    fun area(): flt overwrite { return this.r * this.r * 3.14 }
}

fun sum(values: list, start: int = 0): int {
    var total: int = start
    for (var i = 0; i < len(values); i += 1) {
        total += values[i]
    }
    return total
}

/* 块注释
   跨越多行 */
var c = Circle(2.5)
var d = {"a": 1, "b": -2, "c": 'three'}
while (c.r > 0) { c.r -= 0.5 }
if (sum([1, 2, 3]) == 6) { sout("ok\n") } elif (c.r < 0) { sout("neg") } else { pass }
`

func BenchmarkLexerSmall(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchSource)))
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(benchSource, "bench.kite"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLexerLarge(b *testing.B) {
	src := strings.Repeat(benchSource, 100)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(src, "bench.kite"); err != nil {
			b.Fatal(err)
		}
	}
}
