package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"duan/internal/amqp"
	"duan/internal/core"
	"duan/internal/log"
	"duan/internal/services"
	"duan/internal/storage"
)

type fakeStore struct {
	projects    []core.Project
	listCalls   int
	failList    bool
	createCalls int
	// failCreateAt makes the nth Create call fail; 0 disables.
	failCreateAt int
}

func (f *fakeStore) Create(_ context.Context, p core.Project) (core.Project, error) {
	f.createCalls++
	if f.failCreateAt > 0 && f.createCalls == f.failCreateAt {
		return core.Project{}, errors.New("disk full")
	}
	f.projects = append(f.projects, p)
	return p, nil
}

func (f *fakeStore) DeleteAll(context.Context) error {
	f.projects = nil
	return nil
}

func (f *fakeStore) List(_ context.Context, page, limit int) (storage.ProjectPage, error) {
	f.listCalls++
	if f.failList {
		return storage.ProjectPage{}, errors.New("db down")
	}
	start := (page - 1) * limit
	end := start + limit
	if start > len(f.projects) {
		start = len(f.projects)
	}
	if end > len(f.projects) {
		end = len(f.projects)
	}
	return storage.ProjectPage{
		Data: f.projects[start:end],
		Meta: storage.PageMeta{Total: len(f.projects), Page: page, Limit: limit},
	}, nil
}

func (f *fakeStore) ListAll(context.Context) ([]core.Project, error) {
	return f.projects, nil
}

type fakePublisher struct {
	published []*amqp.ImportJobMessage
	fail      bool
}

func (f *fakePublisher) PublishImportJob(_ context.Context, msg *amqp.ImportJobMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published = append(f.published, msg)
	return nil
}

func newTestServer(t *testing.T, store *fakeStore, opts Options) *Server {
	t.Helper()
	if opts.UploadDir == "" {
		opts.UploadDir = t.TempDir()
	}
	logger := log.New(log.DefaultConfig())
	s := NewServer(":0", store, services.NewImportService(store), logger, opts)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func doRequest(s *Server, method, target string, body *bytes.Buffer, header http.Header) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateProject(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, Options{})

	body := bytes.NewBufferString(`{"projectName":"Nhà máy nước sạch ABC"}`)
	rec := doRequest(s, http.MethodPost, "/projects", body, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	var created core.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ProjectCode != "Nhà máy nư" {
		t.Errorf("ProjectCode = %q, want name-derived code", created.ProjectCode)
	}
	if len(store.projects) != 1 {
		t.Errorf("stored %d projects, want 1", len(store.projects))
	}
}

func TestCreateProjectWithoutIdentity(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, Options{})

	rec := doRequest(s, http.MethodPost, "/projects", bytes.NewBufferString(`{"investor":"X"}`), nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestListProjectsUsesCache(t *testing.T) {
	store := &fakeStore{projects: []core.Project{{ProjectCode: "P1", ProjectName: "P1"}}}
	s := newTestServer(t, store, Options{})

	for range 3 {
		rec := doRequest(s, http.MethodGet, "/projects?page=1&limit=10", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}
	if store.listCalls != 1 {
		t.Errorf("store hit %d times, want 1 (cached afterwards)", store.listCalls)
	}
}

func TestCreateInvalidatesListCache(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(t, store, Options{})

	doRequest(s, http.MethodGet, "/projects", nil, nil)
	doRequest(s, http.MethodPost, "/projects", bytes.NewBufferString(`{"projectCode":"P9"}`), nil)
	doRequest(s, http.MethodGet, "/projects", nil, nil)

	if store.listCalls != 2 {
		t.Errorf("store hit %d times, want 2 (cache purged on create)", store.listCalls)
	}
}

func TestDeleteAllProjects(t *testing.T) {
	store := &fakeStore{projects: []core.Project{{ProjectCode: "P1"}}}
	s := newTestServer(t, store, Options{})

	rec := doRequest(s, http.MethodDelete, "/projects/all", nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(store.projects) != 0 {
		t.Error("projects were not deleted")
	}
}

func TestListProjectsStoreFailure(t *testing.T) {
	s := newTestServer(t, &fakeStore{failList: true}, Options{})

	rec := doRequest(s, http.MethodGet, "/projects", nil, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to list projects") {
		t.Errorf("body = %s, want error envelope", rec.Body.String())
	}
}

func TestBearerAuthOnMutatingRoutes(t *testing.T) {
	store := &fakeStore{projects: []core.Project{{ProjectCode: "P1"}}}
	s := newTestServer(t, store, Options{APIToken: "secret"})

	rec := doRequest(s, http.MethodDelete, "/projects/all", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	header := http.Header{"Authorization": {"Bearer secret"}}
	rec = doRequest(s, http.MethodDelete, "/projects/all", nil, header)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("authenticated status = %d, want 204", rec.Code)
	}

	// Reads stay open.
	rec = doRequest(s, http.MethodGet, "/projects", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200", rec.Code)
	}
}

func dashboardProjects() []core.Project {
	return []core.Project{
		{ProjectCode: "P1", ProjectName: "P1", ShortName: "P1", Investor: "Sông Đà", ProjectType: "Hạ tầng",
			ContractValue: core.Float(3e9), EstimatedBudget: core.Float(2e9),
			ProjectDirector: "Anh Tuấn + Minh + Hòa + Trang"},
		{ProjectCode: "P2", ProjectName: "P2", ShortName: "P2", Investor: "Sông Đà", ProjectType: "Dân dụng",
			ContractValue: core.Float(1e9)},
		{ProjectCode: "P3", ProjectName: "P3", ShortName: "P3", Investor: "Vinaconex", ProjectType: "Hạ tầng"},
	}
}

func TestDashboardInvestors(t *testing.T) {
	s := newTestServer(t, &fakeStore{projects: dashboardProjects()}, Options{})

	rec := doRequest(s, http.MethodGet, "/dashboard/investors", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var series struct {
		Labels []string `json:"labels"`
		Values []int    `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil {
		t.Fatal(err)
	}
	if len(series.Labels) != 2 || series.Labels[0] != "Sông Đà" || series.Values[0] != 2 {
		t.Errorf("series = %+v, want Sông Đà first with 2 projects", series)
	}
}

func TestDashboardKPIs(t *testing.T) {
	s := newTestServer(t, &fakeStore{projects: dashboardProjects()}, Options{})

	rec := doRequest(s, http.MethodGet, "/dashboard/kpis", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats struct {
		TotalProjects  int     `json:"totalProjects"`
		TotalBudget    float64 `json:"totalBudget"`
		TotalPersonnel int     `json:"totalPersonnel"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalProjects != 3 {
		t.Errorf("TotalProjects = %d, want 3", stats.TotalProjects)
	}
	if stats.TotalBudget != 4 {
		t.Errorf("TotalBudget = %v, want 4 (billions)", stats.TotalBudget)
	}
	if stats.TotalPersonnel != 4 {
		t.Errorf("TotalPersonnel = %d, want 4", stats.TotalPersonnel)
	}
}

func TestDashboardCostsAllFlag(t *testing.T) {
	var projects []core.Project
	for i := range 15 {
		projects = append(projects, core.Project{
			ProjectCode: "P", ProjectName: "P", ShortName: "P",
			ContractValue: core.Float(float64(i+1) * 1e9),
		})
	}
	s := newTestServer(t, &fakeStore{projects: projects}, Options{})

	var summary, detail struct {
		Labels []string `json:"labels"`
	}
	rec := doRequest(s, http.MethodGet, "/dashboard/costs", nil, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatal(err)
	}
	rec = doRequest(s, http.MethodGet, "/dashboard/costs?all=true", nil, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}

	if len(summary.Labels) != 10 {
		t.Errorf("summary has %d rows, want 10", len(summary.Labels))
	}
	if len(detail.Labels) != 15 {
		t.Errorf("detail has %d rows, want 15", len(detail.Labels))
	}
}

func workbookUpload(t *testing.T, rows [][]any) (*bytes.Buffer, string) {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	xlsx, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "projects.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(xlsx.Bytes()); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestImportUploadSync(t *testing.T) {
	store := &fakeStore{projects: []core.Project{{ProjectCode: "OLD"}}}
	s := newTestServer(t, store, Options{})

	body, contentType := workbookUpload(t, [][]any{
		{"Mã dự án", "Tên dự án", "Giá trị hợp đồng"},
		{"PRJ-001", "Nhà máy A", 1000000000},
		{"PRJ-002", "Nhà máy B", 2000000000},
	})
	header := http.Header{"Content-Type": {contentType}}
	rec := doRequest(s, http.MethodPost, "/imports", body, header)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Imported != 2 || result.Total != 2 {
		t.Errorf("result = %+v, want 2/2", result)
	}
	if len(store.projects) != 2 {
		t.Errorf("store holds %d projects, want 2 (old records replaced)", len(store.projects))
	}
}

func TestImportUploadNoValidRows(t *testing.T) {
	store := &fakeStore{projects: []core.Project{{ProjectCode: "OLD"}}}
	s := newTestServer(t, store, Options{})

	body, contentType := workbookUpload(t, [][]any{
		{"Mã dự án", "Tên dự án"},
		{"", ""},
	})
	header := http.Header{"Content-Type": {contentType}}
	rec := doRequest(s, http.MethodPost, "/imports", body, header)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if len(store.projects) != 1 {
		t.Error("existing records were wiped despite empty batch")
	}
}

func TestImportFailureInvalidatesListCache(t *testing.T) {
	store := &fakeStore{
		projects: []core.Project{
			{ProjectCode: "old-1", ProjectName: "old-1"},
			{ProjectCode: "old-2", ProjectName: "old-2"},
		},
		failCreateAt: 2,
	}
	s := newTestServer(t, store, Options{})

	// Warm the listing cache with the pre-import records.
	rec := doRequest(s, http.MethodGet, "/projects", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("warmup status = %d, want 200", rec.Code)
	}

	body, contentType := workbookUpload(t, [][]any{
		{"Mã dự án"},
		{"new-1"},
		{"new-2"},
		{"new-3"},
	})
	header := http.Header{"Content-Type": {contentType}}
	rec = doRequest(s, http.MethodPost, "/imports", body, header)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("import status = %d, want 500; body %s", rec.Code, rec.Body.String())
	}

	// The wipe already happened, so the next listing must come from the
	// store, not from the cached pre-import page.
	rec = doRequest(s, http.MethodGet, "/projects", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.listCalls != 2 {
		t.Errorf("store hit %d times, want 2 (cache purged by failed import)", store.listCalls)
	}
	var page struct {
		Data []core.Project   `json:"data"`
		Meta storage.PageMeta `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Meta.Total != 1 || len(page.Data) != 1 || page.Data[0].ProjectCode != "new-1" {
		t.Errorf("listing after failed import = %+v, want only the record inserted before the failure", page)
	}
}

func TestImportUploadQueued(t *testing.T) {
	pub := &fakePublisher{}
	store := &fakeStore{}
	s := newTestServer(t, store, Options{Publisher: pub})

	body, contentType := workbookUpload(t, [][]any{
		{"Mã dự án"},
		{"PRJ-001"},
	})
	header := http.Header{"Content-Type": {contentType}}
	rec := doRequest(s, http.MethodPost, "/imports", body, header)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(pub.published))
	}
	if pub.published[0].Source != amqp.SourceFile || pub.published[0].Path == "" {
		t.Errorf("job = %+v, want file job with spool path", pub.published[0])
	}
	if len(store.projects) != 0 {
		t.Error("queued mode must not import inline")
	}
}

func TestImportSheetQueued(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestServer(t, &fakeStore{}, Options{Publisher: pub})

	body := bytes.NewBufferString(`{"spreadsheetId":"sheet-42","sheetName":"Projects"}`)
	rec := doRequest(s, http.MethodPost, "/imports/sheet", body, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 || pub.published[0].SpreadsheetID != "sheet-42" {
		t.Errorf("published = %+v, want one sheet-42 job", pub.published)
	}
}

func TestImportSheetRequiresSpreadsheetID(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, Options{Publisher: &fakePublisher{}})

	rec := doRequest(s, http.MethodPost, "/imports/sheet", bytes.NewBufferString(`{}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeStore{}, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}
