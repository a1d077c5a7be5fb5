package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/adsmith-studio/adsmith-backend/internal/config"
	"github.com/adsmith-studio/adsmith-backend/internal/db"
	"github.com/adsmith-studio/adsmith-backend/internal/ledger"
	"github.com/adsmith-studio/adsmith-backend/internal/models"
	"github.com/adsmith-studio/adsmith-backend/internal/security"
	"github.com/adsmith-studio/adsmith-backend/internal/subscription"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "admin.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	engine := gin.New()
	RegisterAdminRoutes(engine, conn, testJWT, ledger.New(conn, nil))
	return engine, conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string, isAdmin bool) (uint64, string) {
	t.Helper()
	hash, errHash := security.HashPassword("password1234")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	user := models.User{Email: email, Password: hash, IsAdmin: isAdmin, Active: true}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}
	token, errSign := security.SignUserToken(testJWT, user.ID, isAdmin)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	return user.ID, token
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var errMarshal error
		raw, errMarshal = json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuthRejectsNonAdmins(t *testing.T) {
	engine, conn := newTestRouter(t)
	_, userToken := seedUser(t, conn, "user@example.com", false)

	rec := doJSON(t, engine, http.MethodGet, "/api/admin/plans", userToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/admin/plans", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}
}

func TestPlanCRUD(t *testing.T) {
	engine, conn := newTestRouter(t)
	_, adminToken := seedUser(t, conn, "admin@example.com", true)

	rec := doJSON(t, engine, http.MethodPost, "/api/admin/plans", adminToken, gin.H{
		"code":              "team",
		"name":              "Team",
		"price":             99.0,
		"interval":          "month",
		"tokens_per_period": 2000,
		"features":          []string{"priority support"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &created); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	planID := created["id"].(float64)

	rec = doJSON(t, engine, http.MethodGet, "/api/admin/plans", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/admin/plans/"+strconv.FormatUint(uint64(planID), 10)+"/disable", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: status = %d", rec.Code)
	}

	var plan models.Plan
	if errFind := conn.First(&plan, uint64(planID)).Error; errFind != nil {
		t.Fatalf("load plan: %v", errFind)
	}
	if plan.IsEnabled {
		t.Fatal("plan still enabled after disable")
	}
}

func TestPlanCreateRejectsBadInterval(t *testing.T) {
	engine, conn := newTestRouter(t)
	_, adminToken := seedUser(t, conn, "admin@example.com", true)

	rec := doJSON(t, engine, http.MethodPost, "/api/admin/plans", adminToken, gin.H{
		"code":     "weird",
		"name":     "Weird",
		"interval": "fortnight",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTokenGrantAndReset(t *testing.T) {
	engine, conn := newTestRouter(t)
	_, adminToken := seedUser(t, conn, "admin@example.com", true)
	userID, _ := seedUser(t, conn, "user@example.com", false)

	led := ledger.New(conn, nil)
	if _, errActivate := subscription.New(conn, led).Activate(context.Background(), userID, models.PlanCodeMonthly); errActivate != nil {
		t.Fatalf("activate: %v", errActivate)
	}
	if _, errDeduct := led.Deduct(context.Background(), userID, 100, "setup"); errDeduct != nil {
		t.Fatalf("deduct: %v", errDeduct)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/admin/users/"+strconv.FormatUint(userID, 10)+"/tokens/grant", adminToken, gin.H{
		"amount": 40,
		"reason": "support credit",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("grant: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var granted map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &granted); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if granted["remaining"] != float64(440) {
		t.Fatalf("remaining = %v, want 440", granted["remaining"])
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/admin/users/"+strconv.FormatUint(userID, 10)+"/tokens/reset", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status = %d", rec.Code)
	}

	var sub models.Subscription
	if errFind := conn.Where("user_id = ?", userID).First(&sub).Error; errFind != nil {
		t.Fatalf("load subscription: %v", errFind)
	}
	if sub.TokensUsed != 0 {
		t.Fatalf("tokens_used = %d after reset, want 0", sub.TokensUsed)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/admin/users/"+strconv.FormatUint(userID, 10)+"/transactions", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions: status = %d", rec.Code)
	}
	var txns map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &txns); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	// activation grant, manual deduct, manual grant, reset
	if rows, _ := txns["transactions"].([]any); len(rows) != 4 {
		t.Fatalf("got %d transactions, want 4", len(rows))
	}
}

func TestUserListAndDisable(t *testing.T) {
	engine, conn := newTestRouter(t)
	_, adminToken := seedUser(t, conn, "admin@example.com", true)
	userID, _ := seedUser(t, conn, "target@example.com", false)

	rec := doJSON(t, engine, http.MethodGet, "/api/admin/users?search=target", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var listed map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &listed); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if rows, _ := listed["users"].([]any); len(rows) != 1 {
		t.Fatalf("got %d users, want 1", len(rows))
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/admin/users/"+strconv.FormatUint(userID, 10)+"/disable", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable: status = %d", rec.Code)
	}
	var user models.User
	if errFind := conn.First(&user, userID).Error; errFind != nil {
		t.Fatalf("load user: %v", errFind)
	}
	if user.Active {
		t.Fatal("user still active after disable")
	}
}
