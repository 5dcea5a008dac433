package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ksys/admission-service/internal/models"
	"github.com/ksys/admission-service/internal/repositories"
	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
	adminID    = "admin-1"
	userID     = "user-1"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeParser struct {
	tokens map[string]string
}

func (f *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("token signature invalid")
	}
	return &casdoorsdk.Claims{User: casdoorsdk.User{Id: id, Name: id, Email: id + "@example.com"}}, nil
}

// Unimplemented methods of the embedded interfaces panic, which fails the test that hit them.

type fakeCandidates struct {
	services.CandidateService
	submit       func(req *services.AdmissionSubmitRequest) (*services.SubmissionResponse, error)
	lookup       func(mobile string) (*services.LookupResult, error)
	updateStatus func(id string, req *services.StatusUpdateRequest, actor string) (*services.StatusUpdateResponse, error)
	listByStatus func(status models.CandidateStatus, filters repositories.CandidateFilters) (*services.CandidateListResponse, error)
}

func (f *fakeCandidates) Submit(ctx context.Context, req *services.AdmissionSubmitRequest) (*services.SubmissionResponse, error) {
	return f.submit(req)
}

func (f *fakeCandidates) LookupByMobile(ctx context.Context, mobile string) (*services.LookupResult, error) {
	return f.lookup(mobile)
}

func (f *fakeCandidates) UpdateStatus(ctx context.Context, id string, req *services.StatusUpdateRequest, actor string) (*services.StatusUpdateResponse, error) {
	return f.updateStatus(id, req, actor)
}

func (f *fakeCandidates) ListByStatus(ctx context.Context, status models.CandidateStatus, filters repositories.CandidateFilters, actor string) (*services.CandidateListResponse, error) {
	return f.listByStatus(status, filters)
}

type fakeAdmins struct {
	services.AdminService
	roster map[string]bool
	err    error
}

func (f *fakeAdmins) IsAdmin(ctx context.Context, principal string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.roster[principal], nil
}

func (f *fakeAdmins) GetCallerUserRole(ctx context.Context, caller string) (models.UserRole, error) {
	switch {
	case caller == "":
		return models.RoleGuest, nil
	case f.roster[caller]:
		return models.RoleAdmin, nil
	default:
		return models.RoleUser, nil
	}
}

type fakeUploads struct {
	received []byte
}

func (f *fakeUploads) Upload(ctx context.Context, req *services.UploadRequest) (*repositories.BlobObject, error) {
	f.received = req.Data
	return &repositories.BlobObject{Name: "photo.png", URL: "https://cdn.test/photo.png", ContentType: "image/png", Size: int64(len(req.Data))}, nil
}

type fakeGallery struct {
	services.GalleryService
	items   map[string]*models.GalleryItem
	deleted []string
}

func (f *fakeGallery) Add(ctx context.Context, req *services.GalleryItemRequest, actor string) (*models.GalleryItem, error) {
	if _, ok := f.items[req.Description]; ok {
		return nil, services.ErrGalleryItemExists
	}
	item := &models.GalleryItem{Description: req.Description, ImageURL: req.ImageURL, CreatedBy: actor}
	f.items[req.Description] = item
	return item, nil
}

func (f *fakeGallery) List(ctx context.Context) ([]*models.GalleryItem, error) {
	items := make([]*models.GalleryItem, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeGallery) Delete(ctx context.Context, description, actor string) error {
	f.deleted = append(f.deleted, description)
	if _, ok := f.items[description]; !ok {
		return services.ErrGalleryItemNotFound
	}
	delete(f.items, description)
	return nil
}

type fakeNews struct {
	services.NewsService
	items map[string]*models.NewsItem
}

func (f *fakeNews) Create(ctx context.Context, req *services.NewsCreateRequest, actor string) (*models.NewsItem, error) {
	if _, ok := f.items[req.Title]; ok {
		return nil, services.ErrNewsItemExists
	}
	item := &models.NewsItem{Title: req.Title, Content: req.Content}
	f.items[req.Title] = item
	return item, nil
}

func (f *fakeNews) Edit(ctx context.Context, title string, req *services.NewsEditRequest, actor string) (*models.NewsItem, error) {
	item, ok := f.items[title]
	if !ok {
		return nil, services.ErrNewsItemNotFound
	}
	item.Content = req.Content
	return item, nil
}

func (f *fakeNews) Delete(ctx context.Context, title, actor string) error {
	if _, ok := f.items[title]; !ok {
		return services.ErrNewsItemNotFound
	}
	delete(f.items, title)
	return nil
}

type fakeProfiles struct {
	services.ProfileService
	profiles map[string]*models.UserProfile
}

func (f *fakeProfiles) GetCallerProfile(ctx context.Context, caller string) (*models.UserProfile, error) {
	profile, ok := f.profiles[caller]
	if !ok {
		return nil, services.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfiles) SaveCallerProfile(ctx context.Context, caller string, req *services.ProfileRequest) (*models.UserProfile, error) {
	profile := &models.UserProfile{Principal: caller, Name: req.Name}
	f.profiles[caller] = profile
	return profile, nil
}

type fakeServiceManager struct {
	services.ServiceManager
	candidates *fakeCandidates
	admins     *fakeAdmins
	uploads    *fakeUploads
	gallery    *fakeGallery
	news       *fakeNews
	profiles   *fakeProfiles
	healthErr  error
}

func (f *fakeServiceManager) Candidate() services.CandidateService { return f.candidates }
func (f *fakeServiceManager) Admin() services.AdminService         { return f.admins }
func (f *fakeServiceManager) Upload() services.UploadService       { return f.uploads }
func (f *fakeServiceManager) Gallery() services.GalleryService     { return f.gallery }
func (f *fakeServiceManager) News() services.NewsService           { return f.news }
func (f *fakeServiceManager) Profile() services.ProfileService     { return f.profiles }
func (f *fakeServiceManager) Export() services.ExportService       { return nil }

func (f *fakeServiceManager) HealthCheck(ctx context.Context) error { return f.healthErr }

type testServer struct {
	router *gin.Engine
	sm     *fakeServiceManager
}

func newTestServer(t *testing.T, uploadMaxBytes int64) *testServer {
	t.Helper()

	sm := &fakeServiceManager{
		candidates: &fakeCandidates{},
		admins:     &fakeAdmins{roster: map[string]bool{adminID: true}},
		uploads:    &fakeUploads{},
		gallery:    &fakeGallery{items: map[string]*models.GalleryItem{}},
		news:       &fakeNews{items: map[string]*models.NewsItem{}},
		profiles:   &fakeProfiles{profiles: map[string]*models.UserProfile{}},
	}
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	parser := &fakeParser{tokens: map[string]string{adminToken: adminID, userToken: userID}}

	router := gin.New()
	SetupMiddleware(router, logger, uploadMaxBytes)
	NewHandlerManager(sm, logger, parser, nil, uploadMaxBytes).SetupRoutes(router)

	return &testServer{router: router, sm: sm}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
