package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"inmova/bank-import/internal/detector"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/models"
	"inmova/bank-import/internal/pipeline"
	"inmova/bank-import/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedStatement struct {
	importID  uuid.UUID
	companyID string
	stmt      models.BankStatement
}

// recordingSink stores imports atomically. When failAt is set, the import
// fails on that statement (1-based) and nothing is stored.
type recordingSink struct {
	saved  []savedStatement
	err    error
	failAt int
	calls  int
}

func (s *recordingSink) SaveImport(_ context.Context, importID uuid.UUID, statements []pipeline.CompanyStatement) ([]uuid.UUID, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var pending []savedStatement
	ids := make([]uuid.UUID, 0, len(statements))
	for i, cs := range statements {
		if s.failAt == i+1 {
			return nil, errors.New("duplicate statement")
		}
		pending = append(pending, savedStatement{importID: importID, companyID: cs.CompanyID, stmt: cs.Statement})
		ids = append(ids, uuid.New())
	}
	s.saved = append(s.saved, pending...)
	return ids, nil
}

var testCompanies = []models.CompanyRecord{
	{ID: "c-ejemplo", Name: "Inmobiliaria Ejemplo SL", IBAN: "ES5601280250590100083954"},
}

func newTestServer(t *testing.T, directory pipeline.CompanyDirectory, sink pipeline.StatementSink) http.Handler {
	t.Helper()
	logger := logging.NewDiscardLogger()
	p := pipeline.New(pipeline.Config{Detector: detector.Default()}, nil, logger)
	return NewServer(p, directory, sink, 0, logger).NewRouter()
}

func feeFile(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "fee.n43"))
	require.NoError(t, err)
	return data
}

func uploadRequest(t *testing.T, path string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		fw, err := mw.CreateFormFile("file", "statement")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, true, decode(t, rec)["success"])
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		content    []byte
		wantStatus int
		wantFormat string
	}{
		{"norma43", feeFile(t), http.StatusOK, "norma43"},
		{"camt", []byte(`<?xml version="1.0"?><Document><BkToCstmrStmt/></Document>`), http.StatusOK, "camt053"},
		{"unrecognized", []byte("date,amount\n"), http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/detect", tt.content, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			if tt.wantFormat != "" {
				assert.Equal(t, tt.wantFormat, body["format"])
				assert.Equal(t, "utf-8", body["encoding"])
			} else {
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestImport_Success(t *testing.T) {
	sink := &recordingSink{}
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{Companies: testCompanies}, sink).
		ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", feeFile(t), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.FormatNorma43, resp.Format)
	assert.False(t, resp.NeedsReview)
	require.Len(t, resp.Statements, 1)

	st := resp.Statements[0]
	assert.Equal(t, models.ResolutionMatched, st.Resolution.Status)
	assert.Empty(t, st.ReviewReasons)
	assert.NotEmpty(t, st.SavedStatementID)
	assert.Equal(t, models.CategoryBankFee, st.Statement.Transactions[0].Category)

	require.Len(t, sink.saved, 1)
	assert.Equal(t, "c-ejemplo", sink.saved[0].companyID)
	assert.Equal(t, resp.ImportID, sink.saved[0].importID.String())
}

func TestImport_UnmatchedIsNotPersisted(t *testing.T) {
	sink := &recordingSink{}
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{}, sink).
		ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", feeFile(t), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.NeedsReview)
	assert.Equal(t, models.ResolutionUnmatched, resp.Statements[0].Resolution.Status)
	assert.Equal(t, []pipeline.ReviewReason{pipeline.ReviewUnmatchedCompany}, resp.Statements[0].ReviewReasons)
	assert.Empty(t, resp.Statements[0].SavedStatementID)
	assert.Empty(t, sink.saved)
}

func TestImport_CompanyRoute(t *testing.T) {
	shared := []models.CompanyRecord{
		{ID: "a", IBAN: "ES5601280250590100083954"},
		{ID: "b", IBAN: "ES5601280250590100083954"},
	}
	sink := &recordingSink{}
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{Companies: shared}, sink).
		ServeHTTP(rec, uploadRequest(t, "/api/companies/b/bank-statements/import", feeFile(t), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ResolutionMatched, resp.Statements[0].Resolution.Status)
	assert.Equal(t, "b", resp.Statements[0].CompanyID)
	require.Len(t, sink.saved, 1)
	assert.Equal(t, "b", sink.saved[0].companyID)
}

func TestImport_CompanyFormField(t *testing.T) {
	shared := []models.CompanyRecord{
		{ID: "a", IBAN: "ES5601280250590100083954"},
		{ID: "b", IBAN: "ES5601280250590100083954"},
	}
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{Companies: shared}, nil).
		ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", feeFile(t), map[string]string{"companyId": "a"}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	company, ok := resp.Statements[0].Resolution.Company()
	require.True(t, ok)
	assert.Equal(t, "a", company.CompanyID)
}

func TestImport_UserErrors(t *testing.T) {
	corrupt := feeFile(t)
	corrupt[40] = 'X'

	tests := []struct {
		name     string
		content  []byte
		wantKind string
		check    func(t *testing.T, details map[string]interface{})
	}{
		{
			name:     "unrecognized",
			content:  []byte("just some text"),
			wantKind: "unrecognized_format",
			check: func(t *testing.T, details map[string]interface{}) {
				assert.NotEmpty(t, details["hint"])
				assert.Equal(t, "just some text", details["snippet"])
			},
		},
		{
			name:     "empty",
			content:  []byte("   \n"),
			wantKind: "unrecognized_format",
		},
		{
			name:     "parse error",
			content:  corrupt,
			wantKind: "parse_error",
			check: func(t *testing.T, details map[string]interface{}) {
				assert.Equal(t, float64(1), details["line"])
				assert.Equal(t, "11", details["recordType"])
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", tt.content, nil))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			details, ok := body["details"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, details["kind"])
			if tt.check != nil {
				tt.check(t, details)
			}
		})
	}
}

func TestImport_BadRequests(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", nil, map[string]string{"companyId": "a"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bank-statements/import", bytes.NewBufferString("not multipart"))
	newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	newTestServer(t, &store.MockStore{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bank-statements/import", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestImport_TooLarge(t *testing.T) {
	logger := logging.NewDiscardLogger()
	p := pipeline.New(pipeline.Config{Detector: detector.Default()}, nil, logger)
	handler := NewServer(p, &store.MockStore{}, nil, 1024, logger).NewRouter()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", bytes.Repeat([]byte("x"), 4096), nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestImport_InternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &store.MockStore{LoadCompaniesError: errors.New("db down")}, nil).
		ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", feeFile(t), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to load companies", decode(t, rec)["error"])

	rec = httptest.NewRecorder()
	newTestServer(t, &store.MockStore{Companies: testCompanies}, &recordingSink{err: errors.New("copy failed")}).
		ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", feeFile(t), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "failed to save statements, nothing was stored", body["error"])
	assert.NotEmpty(t, body["importId"])
}

func camtStatement(id, iban string) string {
	return `<Stmt>
			<Id>` + id + `</Id>
			<Acct><Id><IBAN>` + iban + `</IBAN></Id><Ccy>EUR</Ccy></Acct>
			<Bal>
				<Tp><CdOrPrtry><Cd>OPBD</Cd></CdOrPrtry></Tp>
				<Amt Ccy="EUR">100.00</Amt>
				<CdtDbtInd>CRDT</CdtDbtInd>
				<Dt><Dt>2024-01-01</Dt></Dt>
			</Bal>
			<Bal>
				<Tp><CdOrPrtry><Cd>CLBD</Cd></CdOrPrtry></Tp>
				<Amt Ccy="EUR">120.00</Amt>
				<CdtDbtInd>CRDT</CdtDbtInd>
				<Dt><Dt>2024-01-31</Dt></Dt>
			</Bal>
			<Ntry>
				<Amt Ccy="EUR">20.00</Amt>
				<CdtDbtInd>CRDT</CdtDbtInd>
				<BookgDt><Dt>2024-01-12</Dt></BookgDt>
				<NtryDtls><TxDtls><RmtInf><Ustrd>ALQUILER ENERO</Ustrd></RmtInf></TxDtls></NtryDtls>
			</Ntry>
		</Stmt>`
}

func twoStatementCamt() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02">
	<BkToCstmrStmt>
		<GrpHdr><MsgId>MSG-2</MsgId><CreDtTm>2024-02-01T06:00:00</CreDtTm></GrpHdr>
		` + camtStatement("STMT-1", "ES5601280250590100083954") + `
		` + camtStatement("STMT-2", "ES9121000418450200051332") + `
	</BkToCstmrStmt>
</Document>`)
}

func TestImport_SavesAllStatementsTogether(t *testing.T) {
	companies := []models.CompanyRecord{
		{ID: "c-ejemplo", IBAN: "ES5601280250590100083954"},
		{ID: "c-gestion", IBAN: "ES9121000418450200051332"},
	}

	t.Run("success", func(t *testing.T) {
		sink := &recordingSink{}
		rec := httptest.NewRecorder()
		newTestServer(t, &store.MockStore{Companies: companies}, sink).
			ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", twoStatementCamt(), nil))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp ImportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Statements, 2)
		assert.NotEmpty(t, resp.Statements[0].SavedStatementID)
		assert.NotEmpty(t, resp.Statements[1].SavedStatementID)

		assert.Equal(t, 1, sink.calls)
		require.Len(t, sink.saved, 2)
		assert.Equal(t, "c-ejemplo", sink.saved[0].companyID)
		assert.Equal(t, "c-gestion", sink.saved[1].companyID)
	})

	t.Run("failure on second statement stores nothing", func(t *testing.T) {
		sink := &recordingSink{failAt: 2}
		rec := httptest.NewRecorder()
		newTestServer(t, &store.MockStore{Companies: companies}, sink).
			ServeHTTP(rec, uploadRequest(t, "/api/bank-statements/import", twoStatementCamt(), nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["importId"])
		assert.Equal(t, 1, sink.calls)
		assert.Empty(t, sink.saved)
	})
}
