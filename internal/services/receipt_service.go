package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"raseed/internal/core"
	"raseed/internal/log"
	"raseed/internal/passes"
)

// MaxReceiptFileSize is the largest receipt upload accepted for analysis.
const MaxReceiptFileSize = 10 << 20

var (
	ErrNoFile              = errors.New("no selected file")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnknownCategory     = errors.New("unknown category")
	// ErrExtraction wraps failures of the receipt reading model.
	ErrExtraction = errors.New("receipt extraction failed")
)

var receiptMIMETypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"bmp":  "image/bmp",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

// ReceiptMIMEType maps an upload filename to the MIME type sent to the model.
func ReceiptMIMEType(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrNoFile
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	mime, ok := receiptMIMETypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	return mime, nil
}

// ReceiptExtractor reads structured data from a receipt file.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, mimeType string, data []byte) (core.ScannedReceipt, error)
}

// ReceiptService analyses uploaded receipts and stores confirmed receipts as
// wallet passes.
type ReceiptService struct {
	extractor ReceiptExtractor
	writer    passes.Writer
	table     core.CategoryTable
	issuerID  string
	newID     func() string
	logger    *log.Logger
}

func NewReceiptService(extractor ReceiptExtractor, writer passes.Writer, table core.CategoryTable, issuerID string, logger *log.Logger) *ReceiptService {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentReceipt)
	}
	return &ReceiptService{
		extractor: extractor,
		writer:    writer,
		table:     table,
		issuerID:  issuerID,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// Analyze extracts receipt fields from an uploaded image or PDF.
func (s *ReceiptService) Analyze(ctx context.Context, filename string, data []byte) (core.ScannedReceipt, error) {
	mime, err := ReceiptMIMEType(filename)
	if err != nil {
		return core.ScannedReceipt{}, err
	}
	if len(data) == 0 {
		return core.ScannedReceipt{}, ErrNoFile
	}
	if len(data) > MaxReceiptFileSize {
		return core.ScannedReceipt{}, ErrFileTooLarge
	}
	if s.extractor == nil {
		return core.ScannedReceipt{}, fmt.Errorf("%w: no model configured", ErrExtraction)
	}

	out, err := s.extractor.ExtractReceipt(ctx, mime, data)
	if err != nil {
		return core.ScannedReceipt{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	s.logger.InfoContext(ctx, "Receipt analyzed",
		log.FieldOperation, log.OpAnalyze,
		"mime_type", mime,
		"size_bytes", len(data),
		"items", len(out.Items))
	return out, nil
}

// Create validates a confirmed receipt and writes it as a generic pass in
// the class of its category. It returns the new pass and class ids.
func (s *ReceiptService) Create(ctx context.Context, r core.NewReceipt) (string, string, error) {
	if err := r.Validate(); err != nil {
		return "", "", err
	}
	suffix, ok := s.table.SuffixFor(r.Category)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}

	p := s.buildPass(r, suffix)
	id, err := s.writer.UpsertPass(ctx, p)
	if err != nil {
		return "", "", fmt.Errorf("write receipt pass: %w", err)
	}
	s.logger.InfoContext(ctx, "Receipt pass created",
		log.FieldOperation, log.OpUpsert,
		log.FieldPassID, id,
		log.FieldClassID, p.ClassID,
		log.FieldTotal, core.FormatAmount(r.Currency, r.Total))
	return id, p.ClassID, nil
}

func (s *ReceiptService) buildPass(r core.NewReceipt, suffix string) core.Pass {
	id := core.QualifiedID(s.issuerID, s.newID())
	merchant := strings.TrimSpace(r.Merchant)

	modules := []core.TextModule{
		{ID: core.ModuleMerchant, Header: "Merchant", Body: merchant},
		{ID: core.ModuleDate, Header: "Date", Body: strings.TrimSpace(r.Date)},
		{ID: core.ModuleTotal, Header: "Total", Body: core.FormatAmount(r.Currency, r.Total)},
	}
	if r.Tax != nil {
		modules = append(modules, core.TextModule{ID: core.ModuleTax, Header: "Tax", Body: core.FormatAmount(r.Currency, *r.Tax)})
	}
	if items := r.ItemDescriptions(); items != "" {
		modules = append(modules, core.TextModule{ID: core.ModuleItems, Header: "Items", Body: items})
	}

	return core.Pass{
		ID:                 id,
		ClassID:            core.QualifiedID(s.issuerID, suffix),
		State:              "ACTIVE",
		CardTitle:          "Receipt for " + merchant,
		Header:             "Receipt Details",
		HexBackgroundColor: "#4285f4",
		Barcode:            id,
		TextModules:        modules,
	}
}
