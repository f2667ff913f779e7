package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/techagentng/photohire/config"
	"github.com/techagentng/photohire/db"
	"github.com/techagentng/photohire/models"
	"github.com/techagentng/photohire/realtime"
	"github.com/techagentng/photohire/services"
	"github.com/techagentng/photohire/services/jwt"
	"github.com/techagentng/photohire/services/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  string          `json:"errors"`
	Status  string          `json:"status"`
}

type testServer struct {
	srv    *Server
	router *gin.Engine
	db     *db.GormDB
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	t.Setenv("GIN_MODE", "test")
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	users := []models.User{
		{Model: models.Model{ID: 5}, FirstName: "Ada", LastName: "Hirer", Email: "ada@photohire.test", HashedPassword: "x", Role: models.RoleHirer, IsActive: true},
		{Model: models.Model{ID: 9}, FirstName: "Lens", LastName: "Pro", Email: "lens@photohire.test", HashedPassword: "x", Role: models.RolePhotographer, IsActive: true},
		{Model: models.Model{ID: 12}, FirstName: "Gone", LastName: "Away", Email: "gone@photohire.test", HashedPassword: "x", Role: models.RoleHirer, IsActive: true},
		{Model: models.Model{ID: 13}, FirstName: "Root", LastName: "Admin", Email: "root@photohire.test", HashedPassword: "x", Role: models.Role("admin"), IsActive: true},
	}
	for i := range users {
		require.NoError(t, gormDB.Create(&users[i]).Error)
	}
	require.NoError(t, gormDB.Model(&models.User{}).Where("id = ?", 12).Update("is_active", false).Error)

	conf := &config.Config{
		Env:               "test",
		JWTSecret:         testSecret,
		StorageDriver:     "disk",
		UploadDir:         t.TempDir(),
		MaxAttachmentSize: 1 << 20,
		SendRateLimit:     100,
		SendRateWindow:    time.Second,
	}
	for _, m := range mutate {
		m(conf)
	}

	log := zap.NewNop().Sugar()
	g := db.NewGormDB(gormDB)
	userRepo := db.NewUserRepo(g)
	hub := realtime.NewHub(log)
	store := storage.NewDiskStore(conf.UploadDir, conf.PublicBaseURL, conf.MaxAttachmentSize, log)
	chat := services.NewChatService(userRepo, db.NewConversationRepo(g), db.NewMessageRepo(g), store, hub, log, conf)

	s := &Server{
		Config:         conf,
		DB:             g,
		UserRepository: userRepo,
		ChatService:    chat,
		Hub:            hub,
		Log:            log,
	}
	return &testServer{srv: s, router: s.setupRouter(), db: g}
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := jwt.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func multipartBody(t *testing.T, fields map[string]string, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
