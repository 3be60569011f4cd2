package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escrituras/internal/common"
)

// fakeRunner stubs the external binaries. pdftoppm calls materialize page
// PNGs under the prefix the extractor passes, so the glob in pdfToOCR finds
// them exactly as it would with the real tool.
type fakeRunner struct {
	calls        [][]string
	pdftotextOut string
	pdftotextErr error
	renderPages  int
	renderErr    error
	pageTexts    []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	switch name {
	case "pdftotext":
		if f.pdftotextErr != nil {
			return nil, []byte("pdftotext failed"), f.pdftotextErr
		}
		return []byte(f.pdftotextOut), nil, nil
	case "pdftoppm":
		if f.renderErr != nil {
			return nil, []byte("pdftoppm failed"), f.renderErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.renderPages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		base := filepath.Base(args[0]) // page-N.png
		numStr := strings.TrimSuffix(strings.TrimPrefix(base, "page-"), ".png")
		n, err := strconv.Atoi(numStr)
		if err != nil || n < 1 || n > len(f.pageTexts) {
			return nil, nil, fmt.Errorf("unexpected page image %q", base)
		}
		return []byte(f.pageTexts[n-1]), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %q", name)
}

func (f *fakeRunner) commands() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c[0]
	}
	return out
}

func newTestExtractor(t *testing.T, fake *fakeRunner) *Extractor {
	t.Helper()
	e := NewExtractor(Config{}, nil)
	e.runner = fake
	return e
}

func TestExtractDirectTextSkipsRecognition(t *testing.T) {
	fake := &fakeRunner{
		pdftotextOut: "ESCRITURA NÚMERO CUATROCIENTOS TREINTA Y CINCO\n\ftexto de la segunda página\n",
	}
	e := newTestExtractor(t, fake)

	res, err := e.Extract(context.Background(), "escritura.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, fake.pdftotextOut, res.Text, "selectable text must come back verbatim")
	assert.NotContains(t, fake.commands(), "pdftoppm")
	assert.NotContains(t, fake.commands(), "tesseract")
}

func TestExtractFallsBackToOCRInPageOrder(t *testing.T) {
	fake := &fakeRunner{
		pdftotextOut: "   \n\t ",
		renderPages:  2,
		pageTexts:    []string{"texto de la primera página", "texto de la segunda página"},
	}
	e := newTestExtractor(t, fake)

	res, err := e.Extract(context.Background(), "escaneada.pdf")
	require.NoError(t, err)

	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "spa", res.Language)
	assert.Equal(t, "texto de la primera página\ntexto de la segunda página", res.Text)

	var pages []string
	for _, call := range fake.calls {
		if call[0] == "tesseract" {
			pages = append(pages, filepath.Base(call[1]))
			assert.Contains(t, call, "spa", "tesseract must receive the language hint")
		}
	}
	assert.Equal(t, []string{"page-1.png", "page-2.png"}, pages, "pages must be recognized in order")
}

func TestExtractOCRKeepsNumericPageOrder(t *testing.T) {
	texts := make([]string, 11)
	for i := range texts {
		texts[i] = fmt.Sprintf("texto de la página %d", i+1)
	}
	fake := &fakeRunner{
		pdftotextOut: "",
		renderPages:  11,
		pageTexts:    texts,
	}
	e := newTestExtractor(t, fake)

	res, err := e.Extract(context.Background(), "larga.pdf")
	require.NoError(t, err)

	assert.Equal(t, 11, res.Pages)
	assert.Equal(t, strings.Join(texts, "\n"), res.Text,
		"pages 10 and 11 must follow page 9, not page 1")
}

func TestExtractDirectErrorStillFallsBack(t *testing.T) {
	fake := &fakeRunner{
		pdftotextErr: errors.New("corrupt xref"),
		renderPages:  1,
		pageTexts:    []string{"texto recuperado por ocr"},
	}
	e := newTestExtractor(t, fake)

	res, err := e.Extract(context.Background(), "rota.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Equal(t, "texto recuperado por ocr", res.Text)
}

func TestExtractNoTextAnywhere(t *testing.T) {
	fake := &fakeRunner{
		pdftotextOut: "",
		renderPages:  1,
		pageTexts:    []string{"  \n"},
	}
	e := newTestExtractor(t, fake)

	_, err := e.Extract(context.Background(), "vacia.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoExtractableText)
}

func TestExtractRenderFailure(t *testing.T) {
	fake := &fakeRunner{
		pdftotextOut: "",
		renderErr:    errors.New("poppler exploded"),
	}
	e := newTestExtractor(t, fake)

	_, err := e.Extract(context.Background(), "mala.pdf")
	assert.ErrorIs(t, err, common.ErrNoExtractableText)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	fake := &fakeRunner{}
	e := newTestExtractor(t, fake)
	_, err := e.Extract(context.Background(), "foto.jpg")
	require.Error(t, err)
	assert.Empty(t, fake.calls, "no external tool may run for unsupported input")
}
