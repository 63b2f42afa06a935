// Package handler: export.go implements the ledger interchange routes.
// GET .../export returns every expense as a flat table, as JSON or, with
// ?format=csv, as CSV. POST .../import accepts the same table in either form.
package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
)

// GetExport handles GET /trips/{tripId}/export.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		badParam(w, "format", fmt.Errorf("want csv or json, got %q", format))
		return
	}

	rows, err := s.Export.Export(r.Context(), owner, tripID)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	if format != "csv" {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	buf := buildCSV(rows)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.csv"`, tripID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// PostImport handles POST /trips/{tripId}/import. A text/csv body is read as
// CSV with a header row; anything else as a JSON array of rows.
func (s *Server) PostImport(w http.ResponseWriter, r *http.Request) {
	owner, tripID, ok := tripScope(w, r)
	if !ok {
		return
	}

	var rows []domain.InterchangeRow
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		var err error
		rows, err = parseCSV(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
					Code: "payload_too_large", Message: "request body too large",
				}})
				return
			}
			writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
			return
		}
	} else if !decodeJSON(w, r, &rows) {
		return
	}

	imported, err := s.Export.Import(r.Context(), owner, tripID, rows)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, ImportResult{Imported: len(imported), Data: expensesToResponse(imported)})
}

// buildCSV encodes rows with a header line in domain.InterchangeColumns order.
func buildCSV(rows []domain.InterchangeRow) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(domain.InterchangeColumns)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(rowToRecord(r))
	}
	cw.Flush()
	return &buf
}

func rowToRecord(r domain.InterchangeRow) []string {
	return []string{r.Date, r.Title, r.Category, r.Amount, r.Currency, r.Rate, r.Payer, r.Beneficiary, r.Note}
}

// parseCSV reads a CSV table whose first line names the columns. Columns
// are matched by name, case-insensitively, so their order is free; unknown
// columns are ignored and missing ones read as empty.
func parseCSV(body io.Reader) ([]domain.InterchangeRow, error) {
	cr := csv.NewReader(body)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.InterchangeRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	rows := []domain.InterchangeRow{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		field := func(name string) string {
			if i, ok := pos[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		rows = append(rows, domain.InterchangeRow{
			Date:        field("date"),
			Title:       field("title"),
			Category:    field("category"),
			Amount:      field("amount"),
			Currency:    field("currency"),
			Rate:        field("rate"),
			Payer:       field("payer"),
			Beneficiary: field("beneficiary"),
			Note:        field("note"),
		})
	}
}
