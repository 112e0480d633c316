package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studydesk-api/internal/middleware"
	"github.com/noah-isme/studydesk-api/internal/models"
	"github.com/noah-isme/studydesk-api/internal/repository/memory"
	"github.com/noah-isme/studydesk-api/internal/service"
	"github.com/noah-isme/studydesk-api/pkg/middleware/requestid"
)

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *envelopeError         `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestRouter(h Handlers) *gin.Engine {
	return newTestRouterWith(h)
}

func newTestRouterWith(h Handlers, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.Middleware(), middleware.ResponseMeta())
	router.Use(extra...)
	RegisterRoutes(router.Group("/api/v1"), h)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(router, req)
}

func newJSONRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func newJSONRequestBody(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec, nil)
	require.NotNil(t, env.Error)
	require.Equal(t, code, env.Error.Code)
	require.NotEmpty(t, env.Meta["request_id"])
}

// seededHandlers wires the catalog handlers to real services over a seeded memory store.
func seededHandlers() Handlers {
	store := memory.NewStore()
	store.Seed(time.Now())
	cache := service.NewCacheService(nil, nil, 0, nil, false)
	validate := service.NewValidator()

	courses := service.NewCourseService(store.Courses(), store.Assignments(), store.Grades(), cache, validate, nil)
	grades := service.NewGradeService(store.Grades(), store.Courses(), cache, validate, nil)
	students := service.NewStudentService(store.Students(), validate, nil)

	return Handlers{
		Courses:  NewCourseHandler(courses, grades),
		Grades:   NewGradeHandler(grades),
		Students: NewStudentHandler(students),
	}
}
