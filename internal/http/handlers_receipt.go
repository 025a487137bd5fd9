package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"raseed/internal/core"
	"raseed/internal/log"
	"raseed/internal/services"
)

// multipartOverhead leaves room for multipart framing around the file.
const multipartOverhead = 1 << 20

func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxReceiptFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(services.MaxReceiptFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, log.OpAnalyze, services.ErrFileTooLarge)
			return
		}
		BadRequestError("invalid multipart form").Write(w)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("no file part in the request").Write(w)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxReceiptFileSize+1))
	if err != nil {
		BadRequestError(fmt.Sprintf("failed to read file: %v", err)).Write(w)
		return
	}

	receipt, err := s.deps.Receipts.Analyze(r.Context(), header.Filename, data)
	if err != nil {
		s.writeError(w, r, log.OpAnalyze, err)
		return
	}
	if receipt.Items == nil {
		receipt.Items = []core.ScannedItem{}
	}
	OK(w, receipt)
}

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var in core.NewReceipt
	if err := DecodeJSON(w, r, &in); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		ErrorResponse(status, err.Error()).Write(w)
		return
	}
	in.Merchant = sanitizeInput(in.Merchant)
	in.Category = sanitizeInput(in.Category)
	in.Currency = sanitizeInput(in.Currency)
	in.Date = sanitizeInput(in.Date)
	for i := range in.Items {
		in.Items[i].Description = sanitizeInput(in.Items[i].Description)
	}

	passID, classID, err := s.deps.Receipts.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpUpsert, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Body(createdReceiptView{PassID: passID, ClassID: classID}).
		Write(w)
}
