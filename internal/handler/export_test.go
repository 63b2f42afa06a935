package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler"
)

type mockExportServicer struct {
	export     func(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.InterchangeRow, error)
	importRows func(ctx context.Context, ownerID string, tripID uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error)
}

func (m *mockExportServicer) Export(ctx context.Context, ownerID string, tripID uuid.UUID) ([]domain.InterchangeRow, error) {
	return m.export(ctx, ownerID, tripID)
}
func (m *mockExportServicer) Import(ctx context.Context, ownerID string, tripID uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error) {
	return m.importRows(ctx, ownerID, tripID, rows)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func exportServices(svc handler.ExportServicer) http.Handler {
	return newHTTPHandler(handler.Services{Export: svc})
}

var sampleRow = domain.InterchangeRow{
	Date: "2025-11-03", Title: "Ramen, large", Category: "Food", Amount: "1200",
	Currency: "JPY", Rate: "0.21", Payer: "Amy", Beneficiary: "ALL", Note: "",
}

func TestGetExport_JSON(t *testing.T) {
	tripID := uuid.New()
	svc := &mockExportServicer{
		export: func(_ context.Context, ownerID string, id uuid.UUID) ([]domain.InterchangeRow, error) {
			assert.Equal(t, owner, ownerID)
			assert.Equal(t, tripID, id)
			return []domain.InterchangeRow{sampleRow}, nil
		},
	}

	rec := do(exportServices(svc), http.MethodGet, "/trips/"+tripID.String()+"/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, []domain.InterchangeRow{sampleRow}, decode[[]domain.InterchangeRow](t, rec))
}

func TestGetExport_CSV(t *testing.T) {
	tripID := uuid.New()
	svc := &mockExportServicer{
		export: func(context.Context, string, uuid.UUID) ([]domain.InterchangeRow, error) {
			return []domain.InterchangeRow{sampleRow}, nil
		},
	}

	rec := do(exportServices(svc), http.MethodGet, "/trips/"+tripID.String()+"/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="trip-%s.csv"`, tripID), rec.Header().Get("Content-Disposition"))
	assert.Equal(t,
		"date,title,category,amount,currency,rate,payer,beneficiary,note\n"+
			"2025-11-03,\"Ramen, large\",Food,1200,JPY,0.21,Amy,ALL,\n",
		rec.Body.String())
}

func TestGetExport_400_UnknownFormat(t *testing.T) {
	rec := do(exportServices(&mockExportServicer{}), http.MethodGet, "/trips/"+uuid.New().String()+"/export?format=xlsx", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decode[handler.ErrorResponse](t, rec).Error.Code)
}

func TestGetExport_404(t *testing.T) {
	svc := &mockExportServicer{
		export: func(context.Context, string, uuid.UUID) ([]domain.InterchangeRow, error) {
			return nil, fmt.Errorf("service.ExportService.Export: %w", domain.ErrNotFound)
		},
	}

	rec := do(exportServices(svc), http.MethodGet, "/trips/"+uuid.New().String()+"/export", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func postCSV(h http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostImport_CSV_ColumnsByName(t *testing.T) {
	var got []domain.InterchangeRow
	svc := &mockExportServicer{
		importRows: func(_ context.Context, _ string, tripID uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error) {
			got = rows
			out := make([]domain.Expense, len(rows))
			for i := range rows {
				out[i] = domain.Expense{ID: uuid.New(), TripID: tripID, Title: rows[i].Title}
			}
			return out, nil
		},
	}

	body := "\ufeffPayer,Amount,Title,extra,Beneficiary\n" +
		"Amy,1200,Ramen,x,Ben\n" +
		"Ben, 30 ,Taxi,y\n"
	rec := postCSV(exportServices(svc), "/trips/"+uuid.New().String()+"/import", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, domain.InterchangeRow{Payer: "Amy", Amount: "1200", Title: "Ramen", Beneficiary: "Ben"}, got[0])
	assert.Equal(t, domain.InterchangeRow{Payer: "Ben", Amount: "30", Title: "Taxi"}, got[1])

	resp := decode[handler.ImportResult](t, rec)
	assert.Equal(t, 2, resp.Imported)
	assert.Len(t, resp.Data, 2)
}

func TestPostImport_CSV_EmptyBody(t *testing.T) {
	svc := &mockExportServicer{
		importRows: func(_ context.Context, _ string, _ uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error) {
			assert.Empty(t, rows)
			return []domain.Expense{}, nil
		},
	}

	rec := postCSV(exportServices(svc), "/trips/"+uuid.New().String()+"/import", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, decode[handler.ImportResult](t, rec).Imported)
}

func TestPostImport_CSV_Malformed(t *testing.T) {
	rec := postCSV(exportServices(&mockExportServicer{}), "/trips/"+uuid.New().String()+"/import",
		"title,amount\n\"unterminated,1\n")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostImport_JSON(t *testing.T) {
	var got []domain.InterchangeRow
	svc := &mockExportServicer{
		importRows: func(_ context.Context, _ string, _ uuid.UUID, rows []domain.InterchangeRow) ([]domain.Expense, error) {
			got = rows
			return []domain.Expense{{ID: uuid.New(), Title: rows[0].Title}}, nil
		},
	}

	rec := do(exportServices(svc), http.MethodPost, "/trips/"+uuid.New().String()+"/import",
		jsonBody(t, []domain.InterchangeRow{sampleRow}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []domain.InterchangeRow{sampleRow}, got)
}

func TestPostImport_422_KeepsRowNumber(t *testing.T) {
	svc := &mockExportServicer{
		importRows: func(context.Context, string, uuid.UUID, []domain.InterchangeRow) ([]domain.Expense, error) {
			return nil, fmt.Errorf("row 3: %w: payer is required", domain.ErrValidation)
		},
	}

	rec := do(exportServices(svc), http.MethodPost, "/trips/"+uuid.New().String()+"/import",
		jsonBody(t, []domain.InterchangeRow{sampleRow}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "row 3: payer is required", decode[handler.ErrorResponse](t, rec).Error.Message)
}
