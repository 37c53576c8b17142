package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/studynotes/constants"
	"github.com/joseph-ayodele/studynotes/internal/common"
)

// Document is the page-level view of a parsed PDF. Pages are 1-indexed.
type Document interface {
	NumPage() int
	PageText(i int) (string, error)
}

// Opener parses raw bytes into a Document.
type Opener func(data []byte) (Document, error)

type Config struct {
	MaxPages int // 0 = no limit
}

type PDFExtractor struct {
	cfg    Config
	open   Opener
	logger *zap.Logger
}

func NewPDFExtractor(cfg Config, logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	return &PDFExtractor{cfg: cfg, open: openLedongthuc, logger: logger}
}

// Extract reads the file at path and extracts its text.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("extract.read_failed", zap.String("path", path), zap.Error(err))
		return TextExtractionResult{}, common.NewExtractionError(MsgExtractionFailed, err)
	}
	return e.ExtractBytes(ctx, data)
}

// ExtractBytes extracts the text of every page in order. A page that cannot be
// decoded contributes "" and a warning; a document that cannot be opened fails.
func (e *PDFExtractor) ExtractBytes(ctx context.Context, data []byte) (res TextExtractionResult, err error) {
	start := time.Now()
	res.Method = "pdf-text"

	if len(data) == 0 {
		return res, common.NewExtractionError(MsgExtractionFailed, fmt.Errorf("document is empty"))
	}
	if !bytes.HasPrefix(data, []byte(constants.PDFMagic)) {
		return res, common.NewExtractionError(MsgExtractionFailed, fmt.Errorf("missing %s header", constants.PDFMagic))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract.panic", zap.Any("panic", r))
			res = TextExtractionResult{Method: "pdf-text"}
			err = common.NewExtractionError(MsgExtractionFailed, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	doc, err := e.open(data)
	if err != nil {
		e.logger.Warn("extract.open_failed", zap.Int("bytes", len(data)), zap.Error(err))
		return res, common.NewExtractionError(MsgExtractionFailed, err)
	}

	n := doc.NumPage()
	if n <= 0 {
		return res, common.NewExtractionError(MsgExtractionFailed, fmt.Errorf("document has no pages"))
	}
	limit := n
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		limit = e.cfg.MaxPages
		res.Warnings = append(res.Warnings, fmt.Sprintf("read %d of %d pages", limit, n))
	}

	var b strings.Builder
	res.PageTexts = make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return TextExtractionResult{Method: "pdf-text"}, err
		}
		txt, perr := pageText(doc, i)
		if perr != nil {
			e.logger.Warn("extract.page_failed", zap.Int("page", i), zap.Error(perr))
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
			txt = ""
		}
		res.PageTexts = append(res.PageTexts, txt)
		b.WriteString(txt)
	}

	res.Text = b.String()
	res.Pages = limit
	res.Duration = time.Since(start)
	e.logger.Info("extract.ok",
		zap.Int("pages", res.Pages),
		zap.Int("chars", len(res.Text)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int64("elapsed_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}

// pageText reads one page, turning a reader panic into an error so the
// remaining pages are still read.
func pageText(doc Document, i int) (txt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			txt, err = "", fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	return doc.PageText(i)
}

type ledongthucDoc struct {
	r *pdf.Reader
}

func openLedongthuc(data []byte) (Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucDoc{r: r}, nil
}

func (d ledongthucDoc) NumPage() int { return d.r.NumPage() }

func (d ledongthucDoc) PageText(i int) (string, error) {
	p := d.r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
