package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/routes"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/freelance-platform/marketplace-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// apiSuite runs the full router behind a real HTTP server. Clients
// authenticate with the tokens the API itself issues.
type apiSuite struct {
	suite.Suite
	server   *httptest.Server
	db       *gorm.DB
	store    *store.GormStore
	cfg      *config.Config
	notifier *services.MockNotifier
}

// SetupSuite runs once before all tests
func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	t := s.T()
	testutil.MustSetTestEnvironment(t)
	t.Setenv("DATABASE_URL", "sqlite://acceptance")
	t.Setenv("JWT_SECRET", "acceptance-secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("AWS_S3_BUCKET", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load()
	s.Require().NoError(err)
	s.Require().True(cfg.IsTest())
	s.Require().False(cfg.UsesS3())
	s.cfg = cfg

	s.store, s.db = testutil.NewTestStore(s.T())
	s.notifier = services.NewMockNotifier()

	deps := routes.NewDependencies(cfg, s.store, services.NewLocalImageService(cfg.UploadDir), s.notifier, nil)
	router, err := routes.Setup(deps)
	s.Require().NoError(err)
	s.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (s *apiSuite) TearDownSuite() {
	s.server.Close()
}

// SetupTest clears every table, children first
func (s *apiSuite) SetupTest() {
	for _, table := range []string{"messages", "order_responses", "archived_orders", "orders", "categories", "users"} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}
	s.notifier.Reset()
}

// do sends a request and returns the status with the raw body
func (s *apiSuite) do(method, path, token string, body io.Reader, contentType string) (int, []byte) {
	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, data
}

// call sends an optional JSON body and decodes the JSON response into out when given
func (s *apiSuite) call(method, path, token string, body interface{}, out interface{}) int {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	status, data := s.do(method, path, token, reader, contentType)
	if out != nil {
		s.Require().NoError(json.Unmarshal(data, out), "status %d body %s", status, data)
	}
	return status
}

type account struct {
	ID    uint
	Token string
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

// register signs up a new account through the API
func (s *apiSuite) register(username, role string) account {
	var resp authResponse
	status := s.call("POST", "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password-" + username,
		"role":     role,
	}, &resp)
	s.Require().Equal(http.StatusCreated, status)
	s.Require().NotEmpty(resp.Token)
	return account{ID: resp.User.ID, Token: resp.Token}
}

// login signs in an existing account
func (s *apiSuite) login(username string) account {
	var resp authResponse
	status := s.call("POST", "/api/auth/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "password-" + username,
	}, &resp)
	s.Require().Equal(http.StatusOK, status)
	return account{ID: resp.User.ID, Token: resp.Token}
}
