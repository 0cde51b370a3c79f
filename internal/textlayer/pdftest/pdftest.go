// Package pdftest builds minimal uncompressed PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Build returns a PDF with one page per content stream. Every page is US
// Letter sized and has a WinAnsi Helvetica font bound to /F1.
func Build(contents ...string) []byte {
	n := len(contents)
	fontObj := 3 + 2*n
	total := fontObj

	var buf bytes.Buffer
	offsets := make([]int, total+1)
	buf.WriteString("%PDF-1.4\n")
	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	var kids bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&kids, "%d 0 R ", 3+2*i)
	}
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), n))
	for i, c := range contents {
		page := 3 + 2*i
		obj(page, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontObj, page+1))
		obj(page+1, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c))
	}
	obj(fontObj, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", total+1)
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}

// Text returns a content stream showing s at (x, y) in 12pt /F1.
func Text(s string, x, y float64) string {
	return fmt.Sprintf("BT /F1 12 Tf %g %g Td (%s) Tj ET", x, y, s)
}

// BadTj is a content stream whose Tj operator has no operand.
const BadTj = "BT /F1 12 Tf Tj ET"
