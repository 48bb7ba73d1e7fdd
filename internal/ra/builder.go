package ra

import (
	"bytes"
	"strings"
	"sync"
)

// ============================================================================
// 缓冲区对象池
// ============================================================================
// 每个函数体、循环体都会占用一个临时缓冲区，复用它们减少分配

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// Builder 分层的 RA 代码缓冲
//
// 指令总是写入栈顶缓冲区。Enter 压入新的缓冲区，Exit 弹出并返回其内容，
// 由外层决定把它放在序言与尾声之间的什么位置。
type Builder struct {
	buffers  []*bytes.Buffer
	annotate bool
}

// NewBuilder 创建只有根缓冲区的 Builder；annotate 为 false 时忽略注释
func NewBuilder(annotate bool) *Builder {
	return &Builder{
		buffers:  []*bytes.Buffer{getBuffer()},
		annotate: annotate,
	}
}

// Depth 当前嵌套层数，根缓冲区为 0
func (b *Builder) Depth() int {
	return len(b.buffers) - 1
}

func (b *Builder) active() *bytes.Buffer {
	return b.buffers[len(b.buffers)-1]
}

// Enter 压入新的缓冲区
func (b *Builder) Enter() {
	b.buffers = append(b.buffers, getBuffer())
}

// Exit 弹出栈顶缓冲区并返回其内容
//
// 每个 Enter 必须恰好对应一个 Exit；在根缓冲区上调用属于编程错误。
func (b *Builder) Exit() string {
	if len(b.buffers) == 1 {
		panic("ra: Exit without matching Enter")
	}
	buf := b.active()
	b.buffers = b.buffers[:len(b.buffers)-1]
	text := buf.String()
	bufferPool.Put(buf)
	return text
}

// Scoped 在新缓冲区中执行 fn，无论成败都弹出缓冲区并返回其内容
//
// fn 中未配对的 Enter 会被一并弹出。
func (b *Builder) Scoped(fn func() error) (text string, err error) {
	b.Enter()
	depth := b.Depth()
	defer func() {
		for b.Depth() > depth {
			b.Exit()
		}
		text = b.Exit()
	}()
	err = fn()
	return
}

// Emit 写入一条指令
func (b *Builder) Emit(op Op, args ...string) {
	b.EmitInstr(New(op, args...))
}

// EmitInstr 写入一条已构造的指令
func (b *Builder) EmitInstr(in Instr) {
	buf := b.active()
	buf.WriteString(in.Render())
	buf.WriteByte('\n')
}

// Annotate 写入注释行（未开启注释时忽略）
func (b *Builder) Annotate(format string, args ...interface{}) {
	if !b.annotate {
		return
	}
	buf := b.active()
	buf.WriteString(Annotation(format, args...))
	buf.WriteByte('\n')
}

// Annotating 是否开启了注释
func (b *Builder) Annotating() bool {
	return b.annotate
}

// Raw 原样写入一段文本，缺少结尾换行时补上
func (b *Builder) Raw(text string) {
	if text == "" {
		return
	}
	buf := b.active()
	buf.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		buf.WriteByte('\n')
	}
}

// String 根缓冲区的内容
func (b *Builder) String() string {
	return b.buffers[0].String()
}

// Reset 丢弃全部内容，回到只有根缓冲区的状态
func (b *Builder) Reset() {
	for b.Depth() > 0 {
		b.Exit()
	}
	b.buffers[0].Reset()
}
