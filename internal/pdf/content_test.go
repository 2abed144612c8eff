package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTextShowOperators(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
72 720 Td
(Master Services Agreement) Tj
0 -14 Td
(Effective: 2024-01-15) Tj
T*
[(Acme) -250 (Corp)] TJ
(and Globex) '
ET`)

	assert.Equal(t, "Master Services Agreement\nEffective: 2024-01-15\nAcme Corp\nand Globex", contentText(stream))
}

func TestContentTextEscapesAndHex(t *testing.T) {
	stream := []byte(`BT (Fee \(net\) \0500) Tj 0 -12 Td <48656C6C6F> Tj 0 -12 Td <FEFF00E9> Tj ET`)
	assert.Equal(t, "Fee (net) (0\nHello\né", contentText(stream))
}

func TestContentTextSameLineMove(t *testing.T) {
	stream := []byte(`BT (Section) Tj 40 0 Td (12) Tj ET BT (Next) Tj ET`)
	assert.Equal(t, "Section 12\nNext", contentText(stream))
}

func TestContentTextIgnoresGraphicsAndImages(t *testing.T) {
	stream := []byte(`q 1 0 0 1 0 0 cm [3 2] 0 d
BI /W 2 /H 2 /BPC 8 /CS /G ID ` + "\x00\xff(\x01)" + ` EI
Q
/Span <</ActualText (x)>> BDC
BT (Visible) Tj ET
EMC`)
	assert.Equal(t, "Visible", contentText(stream))
}

func TestContentTextLatin1Fallback(t *testing.T) {
	stream := []byte("BT (Gew\xe4hr) Tj ET")
	assert.Equal(t, "Gewähr", contentText(stream))
}

func TestContentTextEmpty(t *testing.T) {
	assert.Equal(t, "", contentText(nil))
	assert.Equal(t, "", contentText([]byte("q 0 0 612 792 re f Q")))
}
