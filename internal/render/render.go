// Package render fills {{key}} placeholders in .docx templates.
//
// A placeholder may be split across several runs by the word processor. The text elements a
// placeholder spans are merged into the one where it starts, so the substituted value takes that
// run's formatting. Everything outside the placeholder, tabs and breaks included, is left
// byte-for-byte intact.
package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidTemplate is returned when the template is not a readable .docx package.
var ErrInvalidTemplate = errors.New("invalid docx template")

var (
	// Self-closing <w:p .../> and <w:r .../> elements hold no text and never open a match.
	paragraphRe   = regexp.MustCompile(`(?s)<w:p(?:\s(?:[^>]*[^/>])?)?>.*?</w:p>`)
	runRe         = regexp.MustCompile(`(?s)<w:r(?:\s(?:[^>]*[^/>])?)?>.*?</w:r>`)
	textRe        = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
	placeholderRe = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	partRe        = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)
)

// Render returns a copy of template with every placeholder whose key is in answers replaced by
// its value. Keys match case-insensitively. Placeholders without an answer are left verbatim.
func Render(template []byte, answers map[string]string) ([]byte, error) {
	values := make(map[string]string, len(answers))
	for k, v := range answers {
		values[strings.ToLower(strings.TrimSpace(k))] = v
	}

	zr, err := openPackage(template)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range zr.File {
		if !partRe.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(fillPart(data, values)); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx: %w", err)
	}
	return out.Bytes(), nil
}

// Placeholders lists the distinct lowercase keys referenced by template, sorted.
func Placeholders(template []byte) ([]string, error) {
	zr, err := openPackage(template)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, f := range zr.File {
		if !partRe.MatchString(f.Name) {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		for _, p := range paragraphRe.FindAll(data, -1) {
			for _, m := range placeholderRe.FindAllStringSubmatch(paragraphText(p), -1) {
				seen[strings.ToLower(m[1])] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func openPackage(template []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return zr, nil
		}
	}
	return nil, fmt.Errorf("%w: word/document.xml not found", ErrInvalidTemplate)
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func fillPart(data []byte, values map[string]string) []byte {
	if !bytes.Contains(data, []byte("{{")) {
		return data
	}
	return paragraphRe.ReplaceAllFunc(data, func(p []byte) []byte {
		return fillParagraph(p, values)
	})
}

// segment is one non-empty <w:t> of a paragraph.
type segment struct {
	loc        []int // byte range of the <w:t> element within the paragraph
	start, end int   // byte range of its text within the paragraph text
}

func paragraphText(p []byte) string {
	var b strings.Builder
	for _, loc := range runRe.FindAllIndex(p, -1) {
		b.WriteString(runText(p[loc[0]:loc[1]]))
	}
	return b.String()
}

func runText(r []byte) string {
	var b strings.Builder
	for _, m := range textRe.FindAllSubmatch(r, -1) {
		b.WriteString(html.UnescapeString(string(m[1])))
	}
	return b.String()
}

// fillParagraph rewrites only the <w:t> elements a matched placeholder touches. The value goes
// into the element where the placeholder starts, so it keeps that run's formatting, and tabs,
// breaks and other run children stay where they are.
func fillParagraph(p []byte, values map[string]string) []byte {
	var segs []segment
	var text strings.Builder
	for _, rloc := range runRe.FindAllIndex(p, -1) {
		for _, m := range textRe.FindAllSubmatchIndex(p[rloc[0]:rloc[1]], -1) {
			t := html.UnescapeString(string(p[rloc[0]+m[2] : rloc[0]+m[3]]))
			if t == "" {
				continue
			}
			segs = append(segs, segment{
				loc:   []int{rloc[0] + m[0], rloc[0] + m[1]},
				start: text.Len(),
				end:   text.Len() + len(t),
			})
			text.WriteString(t)
		}
	}
	full := text.String()

	var matches [][]int
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(full, -1) {
		if _, ok := values[strings.ToLower(full[m[2]:m[3]])]; ok {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return p
	}

	rebuilt := make([]strings.Builder, len(segs))
	owner := func(pos int) int {
		for i, sg := range segs {
			if pos >= sg.start && pos < sg.end {
				return i
			}
		}
		return len(segs) - 1
	}
	keep := func(from, to int) {
		for i, sg := range segs {
			lo, hi := max(from, sg.start), min(to, sg.end)
			if lo < hi {
				rebuilt[i].WriteString(full[lo:hi])
			}
		}
	}

	pos := 0
	for _, m := range matches {
		keep(pos, m[0])
		rebuilt[owner(m[0])].WriteString(values[strings.ToLower(full[m[2]:m[3]])])
		pos = m[1]
	}
	keep(pos, len(full))

	var out bytes.Buffer
	last := 0
	for i, sg := range segs {
		newText := rebuilt[i].String()
		if newText == full[sg.start:sg.end] {
			continue
		}
		out.Write(p[last:sg.loc[0]])
		out.WriteString(textElement(newText))
		last = sg.loc[1]
	}
	out.Write(p[last:])
	return out.Bytes()
}

func textElement(text string) string {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	return `<w:t xml:space="preserve">` + esc.String() + `</w:t>`
}
