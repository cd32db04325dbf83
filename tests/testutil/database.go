package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/policy"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PNGContent is a minimal payload detected as image/png
var PNGContent = append([]byte("\x89PNG\r\n\x1a\n"), []byte("test png body")...)

// NewTestDB opens a migrated sqlite database in a temp directory.
// Foreign keys are enforced so referential behavior matches PostgreSQL.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, models.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewTestStore returns a store over a fresh test database along with the raw handle
func NewTestStore(t *testing.T) (*store.GormStore, *gorm.DB) {
	t.Helper()
	db := NewTestDB(t)
	return store.New(db), db
}

// SingleConnection limits the pool to one connection so concurrent
// transactions on sqlite serialize instead of failing with SQLITE_BUSY
func SingleConnection(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
}

// CreateUser inserts a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CallerFor returns the policy caller of a user
func CallerFor(user *models.User) policy.Caller {
	return policy.Caller{ID: user.ID, Role: user.Role}
}

// CreateOrder inserts an open order for customerID. Options can adjust it before insertion.
func CreateOrder(t *testing.T, db *gorm.DB, customerID uint, opts ...func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		Title:       "Design a logo",
		Description: "Vector logo for a coffee shop",
		Budget:      decimal.NewFromInt(250),
		Deadline:    time.Now().Add(14 * 24 * time.Hour).Truncate(time.Second),
		CustomerID:  customerID,
		Status:      models.OrderStatusOpen,
	}
	for _, opt := range opts {
		opt(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// Assigned sets the order to status with the freelancer bound to it
func Assigned(freelancerID uint, status models.OrderStatus) func(*models.Order) {
	return func(o *models.Order) {
		o.FreelancerID = &freelancerID
		o.Status = status
	}
}

// CreateResponse inserts a pending response
func CreateResponse(t *testing.T, db *gorm.DB, orderID, freelancerID uint) *models.OrderResponse {
	t.Helper()
	resp := &models.OrderResponse{
		OrderID:       orderID,
		FreelancerID:  freelancerID,
		Proposal:      fmt.Sprintf("Proposal from %d", freelancerID),
		Price:         decimal.NewFromInt(200),
		EstimatedTime: 5,
		Status:        models.ResponseStatusPending,
	}
	require.NoError(t, db.Create(resp).Error)
	return resp
}

// CreateMessage inserts a message with an explicit timestamp
func CreateMessage(t *testing.T, db *gorm.DB, orderID, senderID, receiverID uint, content string, at time.Time) *models.Message {
	t.Helper()
	msg := &models.Message{
		OrderID:    orderID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

// NewFileHeader builds a multipart file header holding content
func NewFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	require.NotEmpty(t, form.File["avatar"])
	return form.File["avatar"][0]
}

// NewMultipartBody builds a multipart request body with a single file field
func NewMultipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}
