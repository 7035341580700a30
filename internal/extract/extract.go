// Package extract pulls plain text out of uploaded PDFs by trying a chain of
// extraction methods, from cheapest to most expensive.
package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyquiz/internal/logger"
)

// minUsefulText is the trimmed length above which a method's output is
// accepted without trying the next method.
const minUsefulText = 100

// Method is one way of turning PDF bytes into text.
type Method interface {
	Name() string
	Extract(ctx context.Context, data []byte) (string, error)
}

type PDF struct {
	methods []Method
	log     *logger.Logger
}

// NewPDF chains methods in order. Nil methods are skipped, so an unconfigured
// OCR backend can be passed as is.
func NewPDF(log *logger.Logger, methods ...Method) *PDF {
	p := &PDF{log: logger.OrNop(log).With("component", "extract.PDF")}
	for _, m := range methods {
		if m != nil {
			p.methods = append(p.methods, m)
		}
	}
	return p
}

// Default is plain-text extraction followed by row-layout extraction, then
// ocr when it is non-nil.
func Default(log *logger.Logger, ocr *OCR) *PDF {
	if ocr == nil {
		return NewPDF(log, PlainText{}, Rows{})
	}
	return NewPDF(log, PlainText{}, Rows{}, ocr)
}

// Text returns the first method output longer than minUsefulText characters,
// otherwise the output of the last method that succeeded. Total failure
// yields "".
func (p *PDF) Text(ctx context.Context, data []byte) string {
	best := ""
	for _, m := range p.methods {
		if ctx.Err() != nil {
			break
		}
		text, err := run(ctx, m, data)
		if err != nil {
			p.log.Warn("pdf extraction method failed", "method", m.Name(), "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		best = text
		if utf8.RuneCountInString(text) > minUsefulText {
			p.log.Debug("pdf text extracted", "method", m.Name(), "chars", len(text))
			return text
		}
		p.log.Info("pdf extraction produced little text, trying next method", "method", m.Name(), "chars", len(text))
	}
	return best
}

// run guards against parser panics on malformed documents.
func run(ctx context.Context, m Method, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", m.Name(), r)
		}
	}()
	return m.Extract(ctx, data)
}
