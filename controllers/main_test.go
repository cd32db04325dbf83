package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv is a database with one user per role plus the services built on it
type testEnv struct {
	db       *gorm.DB
	store    *store.GormStore
	images   *services.LocalImageService
	notifier *services.MockNotifier

	customer   *models.User
	other      *models.User
	freelancer *models.User
	rival      *models.User
	admin      *models.User

	users      *services.UserService
	orders     *services.OrderService
	archives   *services.ArchiveService
	messages   *services.MessageService
	categories *services.CategoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, db := testutil.NewTestStore(t)
	images := services.NewLocalImageService(t.TempDir())
	notifier := services.NewMockNotifier()
	return &testEnv{
		db:         db,
		store:      st,
		images:     images,
		notifier:   notifier,
		customer:   testutil.CreateUser(t, db, "carol", models.RoleCustomer),
		other:      testutil.CreateUser(t, db, "chris", models.RoleCustomer),
		freelancer: testutil.CreateUser(t, db, "fiona", models.RoleFreelancer),
		rival:      testutil.CreateUser(t, db, "frank", models.RoleFreelancer),
		admin:      testutil.CreateUser(t, db, "ada", models.RoleAdmin),
		users:      services.NewUserService(st, images, nil),
		orders:     services.NewOrderService(st, nil),
		archives:   services.NewArchiveService(st),
		messages:   services.NewMessageService(st, notifier, nil),
		categories: services.NewCategoryService(st),
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware sets the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			testutil.SetMockAuthContext(c, policy.Caller{ID: user.ID, Role: user.Role})
		}
		c.Next()
	}
}

// routerAs builds a router whose requests are authenticated as user (anonymous when nil)
func routerAs(user *models.User, register func(r *gin.RouterGroup)) *gin.Engine {
	router := setupTestRouter()
	register(router.Group("", mockAuthMiddleware(user)))
	return router
}

func performRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var response []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
