package render

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	docOpen  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	docClose = `</w:body></w:document>`
	styles   = `<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:styleId="x">{{city}}</w:style></w:styles>`
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml", "word/header1.xml", "word/styles.xml"} {
		body, ok := parts[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docx(t *testing.T, body string) []byte {
	return buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   docOpen + body + docClose,
		"word/styles.xml":     styles,
	})
}

func part(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestRender_Paragraph(t *testing.T) {
	tpl := docx(t, `<w:p><w:r><w:t xml:space="preserve">Сторона: {{city}}</w:t></w:r></w:p>`)

	out, err := Render(tpl, map[string]string{"city": "Львів"})
	require.NoError(t, err)

	doc := part(t, out, "word/document.xml")
	assert.Contains(t, doc, `<w:t xml:space="preserve">Сторона: Львів</w:t>`)
	assert.NotContains(t, doc, "{{")
}

func TestRender_UnknownPlaceholderIsLeftVerbatim(t *testing.T) {
	body := `<w:p><w:r><w:t>{{unknown_key}} та {{city}}</w:t></w:r></w:p>`
	out, err := Render(docx(t, body), map[string]string{"city": "Київ"})
	require.NoError(t, err)

	assert.Contains(t, part(t, out, "word/document.xml"), "{{unknown_key}} та Київ")
}

func TestRender_NothingToReplaceKeepsParagraphBytes(t *testing.T) {
	body := `<w:p w:rsidR="00A1"><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>{{unknown_key}}</w:t></w:r></w:p>`
	out, err := Render(docx(t, body), map[string]string{"city": "Київ"})
	require.NoError(t, err)

	assert.Equal(t, docOpen+body+docClose, part(t, out, "word/document.xml"))
}

func TestRender_TableCell(t *testing.T) {
	body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>ЄДРПОУ</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>{{customer_edrpou}}</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

	out, err := Render(docx(t, body), map[string]string{"customer_edrpou": "12345678"})
	require.NoError(t, err)

	assert.Contains(t, part(t, out, "word/document.xml"),
		`<w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">12345678</w:t></w:r></w:p></w:tc>`)
}

func TestRender_SplitRunsTakeFirstRunStyle(t *testing.T) {
	body := `<w:p>` +
		`<w:r><w:t xml:space="preserve">Замовник: </w:t></w:r>` +
		`<w:r><w:rPr><w:b/><w:rFonts w:ascii="Arial"/></w:rPr><w:t>{{full_</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t>name_customer</w:t></w:r>` +
		`<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>}}, далі</w:t></w:r>` +
		`</w:p>`

	out, err := Render(docx(t, body), map[string]string{"full_name_customer": "Іванов Іван"})
	require.NoError(t, err)

	want := `<w:p>` +
		`<w:r><w:t xml:space="preserve">Замовник: </w:t></w:r>` +
		`<w:r><w:rPr><w:b/><w:rFonts w:ascii="Arial"/></w:rPr><w:t xml:space="preserve">Іванов Іван</w:t></w:r>` +
		`<w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve"></w:t></w:r>` +
		`<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t xml:space="preserve">, далі</w:t></w:r>` +
		`</w:p>`
	assert.Equal(t, docOpen+want+docClose, part(t, out, "word/document.xml"))
}

func TestRender_TabAndBreakStayBetweenText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "tab after label",
			body: `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Сторона:</w:t><w:tab/><w:t>{{city}}</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Сторона:</w:t><w:tab/><w:t xml:space="preserve">Львів</w:t></w:r></w:p>`,
		},
		{
			name: "break before address line",
			body: `<w:p><w:r><w:t>{{city}}</w:t><w:br/><w:t>вул. Хрещатик</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t xml:space="preserve">Львів</w:t><w:br/><w:t>вул. Хрещатик</w:t></w:r></w:p>`,
		},
		{
			name: "placeholder split around a tab",
			body: `<w:p><w:r><w:t>{{ci</w:t><w:tab/><w:t>ty}} кінець</w:t></w:r></w:p>`,
			want: `<w:p><w:r><w:t xml:space="preserve">Львів</w:t><w:tab/><w:t xml:space="preserve"> кінець</w:t></w:r></w:p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(docx(t, tt.body), map[string]string{"city": "Львів"})
			require.NoError(t, err)
			assert.Equal(t, docOpen+tt.want+docClose, part(t, out, "word/document.xml"))
		})
	}
}

func TestRender_SelfClosingParagraphKeepsBoundaries(t *testing.T) {
	body := `<w:p w:rsidR="1"/><w:p w:rsidR="2"><w:r><w:t>{{city}}</w:t></w:r></w:p><w:p/>`
	out, err := Render(docx(t, body), map[string]string{"city": "Київ"})
	require.NoError(t, err)

	want := `<w:p w:rsidR="1"/><w:p w:rsidR="2"><w:r><w:t xml:space="preserve">Київ</w:t></w:r></w:p><w:p/>`
	assert.Equal(t, docOpen+want+docClose, part(t, out, "word/document.xml"))
	assert.Equal(t, []string{`<w:p w:rsidR="2"><w:r><w:t>{{city}}</w:t></w:r></w:p>`},
		stringsOf(paragraphRe.FindAll([]byte(body), -1)))
}

func stringsOf(bs [][]byte) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func TestRender_CaseInsensitiveWhitespaceTolerantKeys(t *testing.T) {
	out, err := Render(docx(t, `<w:p><w:r><w:t>{{ CITY }}</w:t></w:r></w:p>`), map[string]string{"City": "Одеса"})
	require.NoError(t, err)

	assert.Contains(t, part(t, out, "word/document.xml"), ">Одеса<")
}

func TestRender_EscapesValuesAndUnescapesTemplate(t *testing.T) {
	body := `<w:p><w:r><w:t>{{enterprise}} &amp; партнери</w:t></w:r></w:p>`
	out, err := Render(docx(t, body), map[string]string{"enterprise": `ТОВ "A<B>"`})
	require.NoError(t, err)

	assert.Contains(t, part(t, out, "word/document.xml"), `ТОВ &#34;A&lt;B&gt;&#34; &amp; партнери`)
}

func TestRender_HeadersAndUntouchedParts(t *testing.T) {
	tpl := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   docOpen + `<w:p><w:r><w:t>тіло</w:t></w:r></w:p>` + docClose,
		"word/header1.xml":    `<w:hdr><w:p><w:r><w:t>м. {{city}}</w:t></w:r></w:p></w:hdr>`,
		"word/styles.xml":     styles,
	})

	out, err := Render(tpl, map[string]string{"city": "Київ"})
	require.NoError(t, err)

	assert.Contains(t, part(t, out, "word/header1.xml"), "м. Київ")
	assert.Equal(t, styles, part(t, out, "word/styles.xml"))
	assert.Equal(t, `<Types/>`, part(t, out, "[Content_Types].xml"))
}

func TestRender_InvalidTemplates(t *testing.T) {
	_, err := Render([]byte("not a zip"), nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	noDocument := buildDocx(t, map[string]string{"[Content_Types].xml": `<Types/>`})
	_, err = Render(noDocument, nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = Placeholders(nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRender_IsRepeatable(t *testing.T) {
	tpl := docx(t, `<w:p><w:r><w:t>{{city}}</w:t></w:r></w:p>`)

	first, err := Render(tpl, map[string]string{"city": "Київ"})
	require.NoError(t, err)
	second, err := Render(tpl, map[string]string{"city": "Львів"})
	require.NoError(t, err)

	assert.Contains(t, part(t, first, "word/document.xml"), "Київ")
	assert.Contains(t, part(t, second, "word/document.xml"), "Львів")
}

func TestPlaceholders(t *testing.T) {
	tpl := buildDocx(t, map[string]string{
		"word/document.xml": docOpen +
			`<w:p><w:r><w:t>{{City}} {{ enterprise }}</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>{{cus</w:t></w:r><w:r><w:t>tomer_iban}} {{city}}</w:t></w:r></w:p>` +
			docClose,
		"word/header1.xml": `<w:hdr><w:p><w:r><w:t>{{date}}</w:t></w:r></w:p></w:hdr>`,
	})

	got, err := Placeholders(tpl)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "customer_iban", "date", "enterprise"}, got)
}
