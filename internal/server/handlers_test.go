package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nconklindev/tabula/internal/config"
	"github.com/nconklindev/tabula/internal/converter"
	"github.com/nconklindev/tabula/internal/session"
	"github.com/nconklindev/tabula/internal/template"
	"go.uber.org/zap"
)

func newTestServer(maxBytes int64) http.Handler {
	conv := converter.New(converter.Options{MaxBytes: maxBytes, InferTypes: true})
	builder := &template.Builder{Now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }}
	srv := NewServer(conv, builder, session.NewStore(time.Minute), &config.ServerConfig{Port: 8080}, zap.NewNop())
	return srv.Router()
}

// client replays the session cookie between requests.
type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func (c *client) do(r *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		r.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) upload(name, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		c.t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/convert", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(r)
}

func TestHandleHealth(t *testing.T) {
	c := &client{t: t, handler: newTestServer(0)}
	w := c.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestColumnsLifecycle(t *testing.T) {
	c := &client{t: t, handler: newTestServer(0)}

	w := c.do(httptest.NewRequest(http.MethodPost, "/api/v1/template/columns",
		strings.NewReader(`{"name":"PolicyId","sample_value":"01"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("add column status: got %d body %s", w.Code, w.Body.String())
	}
	if c.cookie == nil {
		t.Fatal("expected a session cookie")
	}

	w = c.do(httptest.NewRequest(http.MethodPost, "/api/v1/template/columns",
		strings.NewReader(`{"name":"","sample_value":"x"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty name status: got %d", w.Code)
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/template/columns", nil))
	var out struct {
		Columns []session.ColumnRow `json:"columns"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Columns) != 1 || out.Columns[0].Name != "PolicyId" || out.Columns[0].Index != 1 {
		t.Errorf("unexpected columns: %+v", out.Columns)
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/template", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("template status: got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != template.ContentType {
		t.Errorf("content type: got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, template.FileName) {
		t.Errorf("content disposition: got %s", cd)
	}

	records, _, err := converter.Parse(w.Body.Bytes(), template.FileName)
	if err != nil {
		t.Fatalf("downloaded template does not parse: %v", err)
	}
	if v, _ := records[0].Get("PolicyId"); v != "01" {
		t.Errorf("expected sample 01, got %#v", v)
	}

	w = c.do(httptest.NewRequest(http.MethodDelete, "/api/v1/template/columns", nil))
	if w.Code != http.StatusOK {
		t.Errorf("clear status: got %d", w.Code)
	}
	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/template/columns", nil))
	out.Columns = nil
	json.NewDecoder(w.Body).Decode(&out)
	if len(out.Columns) != 0 {
		t.Errorf("expected no columns after clear, got %+v", out.Columns)
	}
}

func TestHandleBuildTemplate(t *testing.T) {
	c := &client{t: t, handler: newTestServer(0)}

	w := c.do(httptest.NewRequest(http.MethodPost, "/api/v1/template",
		strings.NewReader(`{"columns":[{"name":"A","sample_value":"x"},{"name":"B"}]}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	_, table, err := converter.Parse(w.Body.Bytes(), template.FileName)
	if err != nil {
		t.Fatal(err)
	}
	if table.NumCols() != 2 {
		t.Errorf("expected 2 columns, got %v", table.Columns)
	}

	for _, body := range []string{
		`{"columns":[{"name":""}]}`,
		`{"columns":[{"name":"   "}]}`,
		`{"columns":[{"name":"A"},{"name":"\t"}]}`,
	} {
		w = c.do(httptest.NewRequest(http.MethodPost, "/api/v1/template", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHandleConvertAndDownload(t *testing.T) {
	c := &client{t: t, handler: newTestServer(0)}

	w := c.do(httptest.NewRequest(http.MethodGet, "/api/v1/convert/download", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("download before upload: got %d", w.Code)
	}

	w = c.upload("people.csv", "Name,Hours\nAlice,8\nBob,\n")
	if w.Code != http.StatusOK {
		t.Fatalf("convert status: got %d body %s", w.Code, w.Body.String())
	}

	var out struct {
		FileName     string           `json:"file_name"`
		TotalRows    int              `json:"total_rows"`
		TotalColumns int              `json:"total_columns"`
		Columns      []string         `json:"columns"`
		Records      []map[string]any `json:"records"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.FileName != "people.csv" || out.TotalRows != 2 || out.TotalColumns != 2 {
		t.Errorf("unexpected summary: %+v", out)
	}
	if out.Records[1]["Hours"] != nil {
		t.Errorf("expected null hours, got %v", out.Records[1]["Hours"])
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/convert/download?format=csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csv download: got %d", w.Code)
	}
	if w.Body.String() != "Name,Hours\nAlice,8\nBob,\n" {
		t.Errorf("unexpected csv: %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "converted_data.csv") {
		t.Errorf("content disposition: got %s", cd)
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/convert/download", nil))
	if !strings.HasPrefix(w.Body.String(), "[\n  {\n    \"Name\": \"Alice\"") {
		t.Errorf("unexpected json: %s", w.Body.String())
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/convert/download?format=xml", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: got %d", w.Code)
	}
}

func TestHandleConvert_Errors(t *testing.T) {
	c := &client{t: t, handler: newTestServer(64)}

	w := c.upload("bad.csv", "A,B\n1,2,3\n")
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed csv: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Error processing file") {
		t.Errorf("expected error message, got %s", w.Body.String())
	}

	w = c.upload("big.csv", "A\n"+strings.Repeat("x\n", 100))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize: got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/convert", strings.NewReader("no form"))
	w = c.do(r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file: got %d", w.Code)
	}
}

func TestHandleHelp(t *testing.T) {
	c := &client{t: t, handler: newTestServer(0)}

	w := c.do(httptest.NewRequest(http.MethodPost, "/api/v1/help",
		strings.NewReader(`{"query":"hello, can you help me with templates"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var out struct {
		Blocks []struct {
			Topic string `json:"topic"`
		} `json:"blocks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Blocks) != 3 {
		t.Errorf("expected 3 blocks, got %+v", out.Blocks)
	}

	w = c.do(httptest.NewRequest(http.MethodGet, "/api/v1/help/faq", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Template Creation") {
		t.Errorf("faq: got %d %s", w.Code, w.Body.String())
	}
}
