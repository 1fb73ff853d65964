package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecode(t *testing.T) {
	t.Run("utf-8", func(t *testing.T) {
		assert.Equal(t, "héllo wörld", Decode([]byte("héllo wörld")))
	})

	t.Run("latin-1 fallback", func(t *testing.T) {
		// "café" in ISO-8859-1 is not valid UTF-8.
		assert.Equal(t, "café", Decode([]byte{0x63, 0x61, 0x66, 0xe9}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", Decode(nil))
	})
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"a b  c", 3},
		{"hello world", 2},
		{"Hello\nWorld", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WordCount(tt.in), "WordCount(%q)", tt.in)
	}
}

func TestFirstWords(t *testing.T) {
	assert.Equal(t, "a, b", FirstWords("a, b", 15))
	assert.Equal(t, "one two three", FirstWords("one  two\tthree four", 3))
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "abc", TruncateUTF8("abc", 10))
	assert.Equal(t, "ab", TruncateUTF8("abc", 2))
	// "é" is two bytes; cutting inside it must drop the whole rune.
	assert.Equal(t, "a", TruncateUTF8("aé", 2))
	assert.Equal(t, "abc", TruncateUTF8("abc", 0))
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxText(t *testing.T) {
	t.Run("runs in document order", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r><w:r><w:t xml:space="preserve"> continues</w:t></w:r></w:p>
    <w:p><w:r><w:t></w:t></w:r></w:p>
    <w:p><w:r><w:t>Second &amp; last</w:t></w:r></w:p>
  </w:body>
</w:document>`
		got := DocxText(buildDocx(t, doc))
		assert.Equal(t, "First paragraph\n continues\nSecond & last", got)
	})

	t.Run("no runs", func(t *testing.T) {
		doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`
		assert.Equal(t, EmptyDocxText, DocxText(buildDocx(t, doc)))
	})

	t.Run("not a zip", func(t *testing.T) {
		got := DocxText([]byte("plain text"))
		assert.True(t, strings.HasPrefix(got, "Error extracting .docx text: "), got)
	})

	t.Run("malformed xml", func(t *testing.T) {
		got := DocxText(buildDocx(t, `<w:document xmlns:w="x"><w:body>`))
		assert.True(t, strings.HasPrefix(got, "Error extracting .docx text: "), got)
	})
}

func TestXLSXText(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Cost"))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "Coffee"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 4))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	assert.Equal(t, "Item\tCost\nCoffee\t4", XLSXText(buf.Bytes()))

	bad := XLSXText([]byte("nope"))
	assert.True(t, strings.HasPrefix(bad, "Error extracting .xlsx text: "), bad)
}

func TestExtractDispatchesOnSuffix(t *testing.T) {
	assert.Equal(t, "hello world", Extract("report.txt", []byte("hello world")))
	assert.Equal(t, EmptyDocxText, Extract("Letter.DOCX", buildDocx(t,
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`)))
}
