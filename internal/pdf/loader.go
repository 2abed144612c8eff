// Package pdf turns a PDF file into ordered per-page text.
package pdf

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"contractqa/internal/domain"
)

// Loader reads pages with pdfcpu. A page that cannot be decoded is returned
// with empty text and an error note instead of failing the document.
type Loader struct {
	logger *zap.Logger
}

func NewLoader() *Loader {
	return &Loader{logger: zap.L().With(zap.String("component", "pdf"))}
}

// Load returns one Page per PDF page, numbered from 1.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.E(domain.ErrInvalidInput, "pdf", eris.Wrapf(err, "open %s", path))
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, domain.E(domain.ErrInvalidInput, "pdf", eris.Wrapf(err, "read %s", path))
	}

	pages := make([]domain.Page, 0, pdfCtx.PageCount)
	failed := 0
	for nr := 1; nr <= pdfCtx.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(pdfCtx, nr)
		if err != nil {
			failed++
			l.logger.Warn("page unreadable", zap.Int("page", nr), zap.Error(err))
			pages = append(pages, domain.Page{Number: nr, Err: err.Error()})
			continue
		}
		pages = append(pages, domain.Page{Number: nr, Text: text})
	}

	l.logger.Info("pdf loaded",
		zap.String("path", path),
		zap.Int("pages", len(pages)),
		zap.Int("unreadable", failed))
	return pages, nil
}

// pageText decodes one page. pdfcpu can panic on malformed objects; that is
// reported as a page error.
func pageText(pdfCtx *model.Context, nr int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("page %d: %v", nr, r)
		}
	}()

	r, err := pdfcpu.ExtractPageContent(pdfCtx, nr)
	if err != nil {
		return "", eris.Wrapf(err, "page %d", nr)
	}
	if r == nil {
		return "", nil
	}
	stream, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrapf(err, "page %d", nr)
	}
	return contentText(stream), nil
}

// FullText joins page texts with blank lines, skipping empty pages.
func FullText(pages []domain.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
