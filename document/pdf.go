package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// pdfWriter serializes numbered indirect objects and appends the
// cross-reference table and trailer on finish.
type pdfWriter struct {
	buf     bytes.Buffer
	offsets []int // by object id - 1; -1 while unwritten
}

func newPDFWriter() *pdfWriter {
	w := &pdfWriter{}
	w.buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	return w
}

func (w *pdfWriter) begin(id int) {
	for len(w.offsets) < id {
		w.offsets = append(w.offsets, -1)
	}
	w.offsets[id-1] = w.buf.Len()
	fmt.Fprintf(&w.buf, "%d 0 obj\n", id)
}

// object writes a non-stream object.
func (w *pdfWriter) object(id int, body string) {
	w.begin(id)
	w.buf.WriteString(body)
	w.buf.WriteString("\nendobj\n")
}

// stream writes a stream object; dict holds the entries besides /Length.
func (w *pdfWriter) stream(id int, dict string, data []byte) {
	w.begin(id)
	fmt.Fprintf(&w.buf, "<<%s /Length %d>>\nstream\n", dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

// finish writes the xref table and trailer. Every id from 1 to the highest
// written must have been written.
func (w *pdfWriter) finish(root int) ([]byte, error) {
	xref := w.buf.Len()
	size := len(w.offsets) + 1

	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for i, off := range w.offsets {
		if off < 0 {
			return nil, fmt.Errorf("%w: object %d not written", ErrProducer, i+1)
		}
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, root, xref)

	return w.buf.Bytes(), nil
}

func ref(id int) string {
	return strconv.Itoa(id) + " 0 R"
}

func num(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

func rect(r [4]float32) string {
	return "[" + num(r[0]) + " " + num(r[1]) + " " + num(r[2]) + " " + num(r[3]) + "]"
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)

// literal returns s as a PDF literal string.
func literal(s string) string {
	return "(" + stringEscaper.Replace(s) + ")"
}

// content builds a page content stream.
type content struct {
	buf bytes.Buffer
}

func (c *content) op(operator string, operands ...string) *content {
	for _, o := range operands {
		c.buf.WriteString(o)
		c.buf.WriteByte(' ')
	}
	c.buf.WriteString(operator)
	c.buf.WriteByte('\n')
	return c
}

func (c *content) nums(operator string, fs ...float32) *content {
	ops := make([]string, len(fs))
	for i, f := range fs {
		ops[i] = num(f)
	}
	return c.op(operator, ops...)
}

func (c *content) saveState() *content    { return c.op("q") }
func (c *content) restoreState() *content { return c.op("Q") }

func (c *content) transform(m [6]float32) *content { return c.nums("cm", m[:]...) }
func (c *content) xObject(name string) *content     { return c.op("Do", "/"+name) }

func (c *content) beginText() *content { return c.op("BT") }
func (c *content) endText() *content   { return c.op("ET") }
func (c *content) setFont(name string, size float32) *content {
	return c.op("Tf", "/"+name, num(size))
}
func (c *content) nextLine(x, y float32) *content { return c.nums("Td", x, y) }
func (c *content) show(text string) *content      { return c.op("Tj", literal(text)) }

func (c *content) setLineWidth(w float32) *content { return c.nums("w", w) }
func (c *content) setLineJoin(j int) *content      { return c.op("j", strconv.Itoa(j)) }
func (c *content) setLineCap(cp int) *content      { return c.op("J", strconv.Itoa(cp)) }
func (c *content) setStrokeRGB(r, g, b float32) *content {
	return c.nums("RG", r, g, b)
}
func (c *content) moveTo(x, y float32) *content { return c.nums("m", x, y) }
func (c *content) lineTo(x, y float32) *content { return c.nums("l", x, y) }
func (c *content) cubicTo(x1, y1, x2, y2, x3, y3 float32) *content {
	return c.nums("c", x1, y1, x2, y2, x3, y3)
}
func (c *content) stroke() *content { return c.op("S") }

func (c *content) bytes() []byte { return c.buf.Bytes() }
