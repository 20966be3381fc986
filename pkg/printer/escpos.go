package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// Control bytes shared by ESC/POS compatible thermal printers.
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment selects how subsequent lines sit on the paper.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// FontSize selects the character magnification.
type FontSize byte

const (
	FontNormal FontSize = 0x00
	FontDouble FontSize = 0x11 // double width and height, for the shop name
	FontWide   FontSize = 0x10
	FontTall   FontSize = 0x01
)

// Builder accumulates the ESC/POS byte stream for a sales receipt.
// Width is the number of characters per line: 32 on 58mm paper, 48 on
// 80mm paper.
type Builder struct {
	buf   bytes.Buffer
	width int
}

// NewBuilder returns a Builder whose stream opens with ESC @ so the
// printer starts from a clean state.
func NewBuilder(width int) *Builder {
	if width <= 0 {
		width = 48
	}
	b := &Builder{width: width}
	b.buf.Write([]byte{ESC, '@'})
	return b
}

// Align sets the alignment for the lines that follow.
func (b *Builder) Align(a Alignment) *Builder {
	b.buf.Write([]byte{ESC, 'a', byte(a)})
	return b
}

// Bold switches emphasised printing on or off.
func (b *Builder) Bold(on bool) *Builder {
	v := byte(0)
	if on {
		v = 1
	}
	b.buf.Write([]byte{ESC, 'E', v})
	return b
}

// Size sets the character magnification.
func (b *Builder) Size(s FontSize) *Builder {
	b.buf.Write([]byte{GS, '!', byte(s)})
	return b
}

// Line prints one line of text.
func (b *Builder) Line(s string) *Builder {
	b.buf.WriteString(s)
	b.buf.WriteByte(LF)
	return b
}

// Linef prints one formatted line of text.
func (b *Builder) Linef(format string, args ...interface{}) *Builder {
	return b.Line(fmt.Sprintf(format, args...))
}

// Divider prints a rule across the full paper width.
func (b *Builder) Divider(ch byte) *Builder {
	return b.Line(strings.Repeat(string(ch), b.width))
}

// LabelAmount prints a label on the left and an amount flush against
// the right edge, the layout every money row on a receipt uses. A
// label too long for the paper is truncated so the amount column stays
// aligned; the amount itself is never cut.
func (b *Builder) LabelAmount(label, amount string) *Builder {
	room := b.width - len(amount) - 1
	if room < 0 {
		room = 0
	}
	if len(label) > room {
		label = label[:room]
	}
	pad := b.width - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	b.buf.WriteString(label)
	b.buf.WriteString(strings.Repeat(" ", pad))
	b.buf.WriteString(amount)
	b.buf.WriteByte(LF)
	return b
}

// Feed advances the paper n lines.
func (b *Builder) Feed(n int) *Builder {
	for i := 0; i < n; i++ {
		b.buf.WriteByte(LF)
	}
	return b
}

// Cut performs a full paper cut.
func (b *Builder) Cut() *Builder {
	b.buf.Write([]byte{GS, 'V', 0x00})
	return b
}

// PartialCut leaves the receipt hanging by a strip so it can be torn
// off in front of the customer.
func (b *Builder) PartialCut() *Builder {
	b.buf.Write([]byte{GS, 'V', 0x01})
	return b
}

// Bytes returns the accumulated ESC/POS stream.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}
