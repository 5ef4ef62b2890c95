package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/excel"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterWithGin(); err != nil {
		panic(err)
	}
}

func teacherID(id int64) *int64 { return &id }

// withScope stands in for JWTAuth
func withScope(scope *models.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, scope.UserID)
		c.Set(middleware.ContextRoleType, string(scope.Role))
		c.Set(middleware.ContextScope, scope)
		c.Next()
	}
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type fakeGradeService struct {
	created *dto.CreateGradeRequest
	scope   *models.Scope
	err     error
}

func (f *fakeGradeService) ListGrades(_ context.Context, scope *models.Scope, req *dto.GradeFilterRequest) (*dto.GradeListResponse, error) {
	f.scope = scope
	return &dto.GradeListResponse{}, f.err
}

func (f *fakeGradeService) GetGrade(_ context.Context, _ *models.Scope, id int64) (*dto.GradeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.GradeResponse{ID: id}, nil
}

func (f *fakeGradeService) CreateGrade(_ context.Context, scope *models.Scope, req *dto.CreateGradeRequest) (*dto.GradeResponse, error) {
	f.scope, f.created = scope, req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.GradeResponse{ID: 99, StudentID: req.StudentID}, nil
}

func (f *fakeGradeService) UpdateGrade(_ context.Context, _ *models.Scope, id int64, _ *dto.UpdateGradeRequest) (*dto.GradeResponse, error) {
	return &dto.GradeResponse{ID: id}, f.err
}

func (f *fakeGradeService) DeleteGrade(context.Context, *models.Scope, int64) error {
	return f.err
}

func gradeRouter(svc *fakeGradeService, scope *models.Scope) *gin.Engine {
	ctrl := NewGradeController(svc, zerolog.Nop())
	router := gin.New()
	router.Use(withScope(scope))
	router.GET("/grades", ctrl.ListGrades)
	router.GET("/grades/:id", ctrl.GetGrade)
	router.POST("/grades", ctrl.CreateGrade)
	router.DELETE("/grades/:id", ctrl.DeleteGrade)
	return router
}

func TestGradeController_Create(t *testing.T) {
	teacher := &models.Scope{Role: models.RoleTeacher, UserID: 5, TeacherID: teacherID(20)}

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{
			name:   "created",
			body:   `{"studentId":30,"subjectId":1,"value":5.5}`,
			status: http.StatusCreated,
		},
		{
			name:   "grade out of range is rejected before the service",
			body:   `{"studentId":30,"subjectId":1,"value":6.5}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing student",
			body:   `{"subjectId":1,"value":5}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "outside scope",
			body:   `{"studentId":40,"subjectId":1,"value":5}`,
			err:    apperrors.NewForbiddenError("you do not teach this subject in this class"),
			status: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeGradeService{err: tt.err}
			w := do(gradeRouter(svc, teacher), http.MethodPost, "/grades", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusCreated {
				require.NotNil(t, svc.created)
				assert.Same(t, teacher, svc.scope)
				assert.True(t, decimal.RequireFromString("5.5").Equal(svc.created.Value))

				var resp dto.APIResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
			}
			if tt.status == http.StatusBadRequest {
				assert.Nil(t, svc.created)
			}
		})
	}
}

func TestGradeController_PathIDs(t *testing.T) {
	admin := &models.Scope{Role: models.RoleAdmin, UserID: 1}

	t.Run("non numeric id", func(t *testing.T) {
		w := do(gradeRouter(&fakeGradeService{}, admin), http.MethodGet, "/grades/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("not found", func(t *testing.T) {
		svc := &fakeGradeService{err: apperrors.NewResourceNotFoundError("grade not found")}
		w := do(gradeRouter(svc, admin), http.MethodGet, "/grades/7", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
	t.Run("delete", func(t *testing.T) {
		w := do(gradeRouter(&fakeGradeService{}, admin), http.MethodDelete, "/grades/7", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
	t.Run("list binds paging", func(t *testing.T) {
		w := do(gradeRouter(&fakeGradeService{}, admin), http.MethodGet, "/grades?page=0", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestController_MissingScope(t *testing.T) {
	ctrl := NewGradeController(&fakeGradeService{}, zerolog.Nop())
	router := gin.New()
	router.GET("/grades", ctrl.ListGrades)

	w := do(router, http.MethodGet, "/grades", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeReportService struct {
	content string
	err     error
	deleted string
}

func (f *fakeReportService) Classes(context.Context, *models.Scope) ([]models.Class, error) {
	return []models.Class{{ID: 8, Name: "8A"}}, f.err
}

func (f *fakeReportService) ClassReport(context.Context, *models.Scope, int64, *dto.ReportRangeRequest) (*dto.ClassReportResponse, error) {
	return &dto.ClassReportResponse{}, f.err
}

func (f *fakeReportService) Export(context.Context, *models.Scope, int64, *dto.ReportRangeRequest) (*dto.ExportResponse, error) {
	return &dto.ExportResponse{Key: "reports/8A-x.xlsx"}, f.err
}

func (f *fakeReportService) Download(_ context.Context, _ *models.Scope, key string) (io.ReadCloser, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return io.NopCloser(strings.NewReader(f.content)), "8A-x.xlsx", nil
}

func (f *fakeReportService) DeleteExport(_ context.Context, _ *models.Scope, key string) error {
	f.deleted = key
	return f.err
}

func reportRouter(svc *fakeReportService) *gin.Engine {
	ctrl := NewReportController(svc, zerolog.Nop())
	router := gin.New()
	router.Use(withScope(&models.Scope{Role: models.RoleAdmin, UserID: 1}))
	router.GET("/reports/download", ctrl.Download)
	router.POST("/reports/classes/:id/export", ctrl.Export)
	router.DELETE("/reports/files", ctrl.DeleteExport)
	return router
}

func TestReportController_Download(t *testing.T) {
	t.Run("streams the workbook", func(t *testing.T) {
		w := do(reportRouter(&fakeReportService{content: "PK-bytes"}), http.MethodGet, "/reports/download?key=reports/8A-x.xlsx", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PK-bytes", w.Body.String())
		assert.Equal(t, excel.ContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="8A-x.xlsx"`)
	})
	t.Run("key required", func(t *testing.T) {
		w := do(reportRouter(&fakeReportService{}), http.MethodGet, "/reports/download", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("missing file", func(t *testing.T) {
		svc := &fakeReportService{err: apperrors.NewResourceNotFoundError("report not found")}
		w := do(reportRouter(svc), http.MethodGet, "/reports/download?key=reports/gone.xlsx", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReportController_ExportAndDelete(t *testing.T) {
	svc := &fakeReportService{}
	router := reportRouter(svc)

	w := do(router, http.MethodPost, "/reports/classes/8/export?from=2024-01-01", "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(router, http.MethodPost, "/reports/classes/8/export?from=01.01.2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodDelete, "/reports/files?key=reports/8A-x.xlsx", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "reports/8A-x.xlsx", svc.deleted)
}

type fakeStatisticsService struct {
	services.StatisticsService
	query *dto.StatsQuery
}

func (f *fakeStatisticsService) ClassAverage(_ context.Context, _ *models.Scope, classID int64, q *dto.StatsQuery) (*dto.ClassAverageResponse, error) {
	f.query = q
	return &dto.ClassAverageResponse{ClassID: classID, SubjectIDs: q.Subjects()}, nil
}

func TestStatisticsController_ClassAverageSubjectSet(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		want   []int64
	}{
		{name: "repeated subjects", query: "?subjectIds=1&subjectIds=4", status: http.StatusOK, want: []int64{1, 4}},
		{name: "single subject", query: "?subjectId=2", status: http.StatusOK, want: []int64{2}},
		{name: "no subjects", status: http.StatusOK},
		{name: "invalid subject id", query: "?subjectIds=1&subjectIds=0", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeStatisticsService{}
			ctrl := NewStatisticsController(svc, zerolog.Nop())
			router := gin.New()
			router.Use(withScope(&models.Scope{Role: models.RoleAdmin, UserID: 1}))
			router.GET("/statistics/classes/:id/average", ctrl.ClassAverage)

			w := do(router, http.MethodGet, "/statistics/classes/8/average"+tt.query, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				require.NotNil(t, svc.query)
				assert.Equal(t, tt.want, svc.query.Subjects())
			}
		})
	}
}
