package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stockhub/backend/internal/application/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type accessFixture struct {
	userRepo *stubUserRepo
	stores   *stubStores
	handler  *AccessHandler
}

func newAccessFixture() *accessFixture {
	userRepo := newStubUserRepo()
	stores := &stubStores{repo: &stubOrgRepo{
		branchIDs:    []int64{1, 2},
		counterIDs:   []int64{10, 11},
		branchNames:  map[int64]string{1: "Main", 2: "North"},
		counterNames: map[int64]string{10: "Front Desk"},
	}}
	service := identityapp.NewAccessService(userRepo, stores, zap.NewNop())
	return &accessFixture{
		userRepo: userRepo,
		stores:   stores,
		handler:  NewAccessHandler(service),
	}
}

func (f *accessFixture) engine(userID int64) *gin.Engine {
	engine := gin.New()
	group := engine.Group("/access")
	if userID != 0 {
		group.Use(authAs(userID))
	}
	group.GET("/branches", f.handler.ListBranches)
	group.GET("/counters", f.handler.ListCounters)
	group.GET("/branches/:branchId", f.handler.CheckBranch)
	group.GET("/counters/:counterId", f.handler.CheckCounter)
	group.GET("/check", f.handler.Check)
	return engine
}

func TestAccessHandler_ListBranches_Admin(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")

	w := httptest.NewRecorder()
	f.engine(admin.ID).ServeHTTP(w, httptest.NewRequest("GET", "/access/branches", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                  `json:"success"`
		Data    AccessibleIDsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.ElementsMatch(t, []int64{1, 2}, resp.Data.IDs)
}

func TestAccessHandler_ListBranches_ScopedUser(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")
	user := mustScopedUser(t, f.userRepo, "clerk", 2, 11, admin.ID)

	w := httptest.NewRecorder()
	f.engine(user.ID).ServeHTTP(w, httptest.NewRequest("GET", "/access/branches", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data AccessibleIDsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{2}, resp.Data.IDs)
}

func TestAccessHandler_ListBranches_Unauthenticated(t *testing.T) {
	f := newAccessFixture()

	w := httptest.NewRecorder()
	f.engine(0).ServeHTTP(w, httptest.NewRequest("GET", "/access/branches", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessHandler_CheckBranch(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")
	user := mustScopedUser(t, f.userRepo, "clerk", 2, 11, admin.ID)

	tests := []struct {
		name    string
		userID  int64
		path    string
		allowed bool
	}{
		{"admin reaches any branch", admin.ID, "/access/branches/99", true},
		{"scoped user reaches own branch", user.ID, "/access/branches/2", true},
		{"scoped user denied other branch", user.ID, "/access/branches/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			f.engine(tt.userID).ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Data AccessCheckResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.allowed, resp.Data.Allowed)
		})
	}
}

func TestAccessHandler_CheckBranch_InvalidID(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")

	w := httptest.NewRecorder()
	f.engine(admin.ID).ServeHTTP(w, httptest.NewRequest("GET", "/access/branches/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccessHandler_CombinedCheck(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")
	user := mustScopedUser(t, f.userRepo, "clerk", 2, 11, admin.ID)

	tests := []struct {
		name    string
		userID  int64
		query   string
		allowed bool
	}{
		{"both match", user.ID, "branch_id=2&counter_id=11", true},
		{"branch only", user.ID, "branch_id=2&counter_id=10", false},
		{"counter only", user.ID, "branch_id=1&counter_id=11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			f.engine(tt.userID).ServeHTTP(w, httptest.NewRequest("GET", "/access/check?"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Data AccessCheckResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.allowed, resp.Data.Allowed)
		})
	}
}

func TestAccessHandler_CombinedCheck_MissingParams(t *testing.T) {
	f := newAccessFixture()
	admin := mustAdmin(t, f.userRepo, "boss")

	w := httptest.NewRecorder()
	f.engine(admin.ID).ServeHTTP(w, httptest.NewRequest("GET", "/access/check?branch_id=2", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
