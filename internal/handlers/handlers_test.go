package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/enna-dta/incidentdb/internal/auth"
	"github.com/enna-dta/incidentdb/internal/config"
	"github.com/enna-dta/incidentdb/internal/handlers"
	"github.com/enna-dta/incidentdb/internal/middleware"
	"github.com/enna-dta/incidentdb/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Equipement{},
		&models.HardwareIncident{},
		&models.SoftwareIncident{},
		&models.Report{},
		&models.SchemaMigration{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		DBType:           "sqlite",
		DBDatabase:       ":memory:",
		JWTSecret:        testSecret,
		AccessTokenTTL:   24,
		RefreshTokenTTL:  168,
		MaxLoginAttempts: 5,
		LockoutMinutes:   30,
	}
}

// setupApp wires the API routes the way the server does, minus the global
// middleware that has no bearing on handler behavior.
func setupApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	cfg := testConfig()
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	incidentHandler := &handlers.IncidentHandler{DB: db}
	reportHandler := &handlers.ReportHandler{DB: db}
	equipmentHandler := &handlers.EquipmentHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)

	api := app.Group("/api")
	api.Get("/health/", healthHandler.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/login/", authHandler.Login)
	authGroup.Post("/logout/", requireAuth, authHandler.Logout)
	authGroup.Post("/refresh/", authHandler.Refresh)
	authGroup.Get("/profile/", requireAuth, authHandler.Profile)
	authGroup.Put("/profile/update/", requireAuth, authHandler.UpdateProfile)
	authGroup.Post("/change-password/", requireAuth, authHandler.ChangePassword)

	incidents := api.Group("/incidents", requireAuth)
	incidents.Get("/", incidentHandler.ListIncidents)
	incidents.Post("/", incidentHandler.CreateIncident)
	incidents.Get("/stats/", incidentHandler.Stats)
	incidents.Get("/recent/", incidentHandler.Recent)
	incidents.Put("/hardware/:id", incidentHandler.UpdateHardwareIncident)
	incidents.Put("/software/:id", incidentHandler.UpdateSoftwareIncident)
	incidents.Delete("/:id", incidentHandler.DeleteIncident)

	reports := api.Group("/reports", requireAuth)
	reports.Get("/", reportHandler.ListReports)
	reports.Post("/", reportHandler.UpsertReport)

	equipement := api.Group("/equipement", requireAuth)
	equipement.Get("/", equipmentHandler.ListEquipment)
	equipement.Post("/", equipmentHandler.CreateEquipment)
	equipement.Put("/:id", equipmentHandler.UpdateEquipment)
	equipement.Delete("/:id", equipmentHandler.DeleteEquipment)
	equipement.Get("/:id/history/", equipmentHandler.EquipmentHistory)

	users := api.Group("/users", requireAuth, middleware.RequireSuperadmin())
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	return app
}

// createTestUser inserts an account with a real bcrypt hash
func createTestUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("01010101")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Password: hash, Role: role, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func accessToken(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user.ID, user.Username, user.Role, auth.TokenAccess, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	resp := doJSON(t, app, "GET", "/api/health/", "", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "OK" || body["message"] != "ENNA Backend is running" {
		t.Errorf("Unexpected health body: %v", body)
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	user := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)

	// Missing token
	resp := doJSON(t, app, "GET", "/api/incidents/", "", nil)
	if resp.StatusCode != 401 {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Token d'authentification requis" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	// Garbage token
	resp = doJSON(t, app, "GET", "/api/incidents/", "not-a-token", nil)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for garbage token, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Token invalide" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	// Refresh token is not an access token
	refresh, err := auth.GenerateToken(user.ID, user.Username, user.Role, auth.TokenRefresh, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}
	resp = doJSON(t, app, "GET", "/api/incidents/", refresh, nil)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for refresh token, got %d", resp.StatusCode)
	}

	// Valid access token
	resp = doJSON(t, app, "GET", "/api/incidents/", accessToken(t, user), nil)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 with valid token, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	createTestUser(t, db, "admin", models.RoleSuperadmin)

	resp := doJSON(t, app, "POST", "/api/auth/login/", "", map[string]string{
		"username": "admin",
		"password": "01010101",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == nil || body["refresh_token"] == nil {
		t.Error("Expected token pair in login response")
	}
	if body["message"] != "Connexion réussie" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	user, ok := body["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected user object, got %v", body["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("Password hash leaked in login response")
	}

	resp = doJSON(t, app, "POST", "/api/auth/login/", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for wrong password, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Identifiants invalides" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestIncidentRoleGates(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	chef := createTestUser(t, db, "chefdep1", models.RoleChefDepartement)
	integration := createTestUser(t, db, "integration1", models.RoleServiceIntegration)
	maintenance := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)

	hardware := map[string]interface{}{
		"incident_type":     "hardware",
		"nom_de_equipement": "Radar",
		"description":       "Panne",
	}

	// Department head is read-only everywhere.
	resp := doJSON(t, app, "POST", "/api/incidents/", accessToken(t, chef), hardware)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for chef write, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Accès en lecture seule. Création non autorisée." {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	// Integration cannot write hardware incidents.
	resp = doJSON(t, app, "POST", "/api/incidents/", accessToken(t, integration), hardware)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for integration on hardware, got %d", resp.StatusCode)
	}

	// Maintenance can.
	resp = doJSON(t, app, "POST", "/api/incidents/", accessToken(t, maintenance), hardware)
	if resp.StatusCode != 201 {
		t.Errorf("Expected 201 for maintenance, got %d", resp.StatusCode)
	}

	// Maintenance cannot write software incidents.
	software := map[string]interface{}{
		"incident_type": "software",
		"description":   "Gel de position",
	}
	resp = doJSON(t, app, "POST", "/api/incidents/", accessToken(t, maintenance), software)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for maintenance on software, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "POST", "/api/incidents/", accessToken(t, integration), software)
	if resp.StatusCode != 201 {
		t.Errorf("Expected 201 for integration on software, got %d", resp.StatusCode)
	}

	// Everyone authenticated can read.
	resp = doJSON(t, app, "GET", "/api/incidents/", accessToken(t, chef), nil)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for chef read, got %d", resp.StatusCode)
	}
}

func TestIncidentCreateRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	user := createTestUser(t, db, "admin", models.RoleSuperadmin)

	resp := doJSON(t, app, "POST", "/api/incidents/", accessToken(t, user), map[string]interface{}{
		"incident_type": "firmware",
		"description":   "Panne",
	})
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for unknown type, got %d", resp.StatusCode)
	}
}

func TestEquipmentAccessGate(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	integration := createTestUser(t, db, "integration1", models.RoleServiceIntegration)
	maintenance := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)
	chef := createTestUser(t, db, "chefdep1", models.RoleChefDepartement)

	resp := doJSON(t, app, "GET", "/api/equipement/", accessToken(t, integration), nil)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for integration, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Accès non autorisé aux équipements" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	// Department head can read equipment but not create it.
	resp = doJSON(t, app, "POST", "/api/equipement/", accessToken(t, chef), map[string]string{
		"num_serie":      "SN-0",
		"nom_equipement": "Serveur FDP",
		"partition":      "CCR",
	})
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for chef create, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Accès en lecture seule. Création non autorisée." {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	resp = doJSON(t, app, "POST", "/api/equipement/", accessToken(t, maintenance), map[string]string{
		"num_serie":      "SN-1",
		"nom_equipement": "Serveur FDP",
		"partition":      "CCR",
	})
	if resp.StatusCode != 201 {
		t.Errorf("Expected 201 for maintenance, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "GET", "/api/equipement/?num_serie=SN-1", accessToken(t, maintenance), nil)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for serial lookup, got %d", resp.StatusCode)
	}
}

func TestReportAccessGate(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	maintenance := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)
	integration := createTestUser(t, db, "integration1", models.RoleServiceIntegration)

	resp := doJSON(t, app, "GET", "/api/reports/", accessToken(t, maintenance), nil)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for maintenance, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Accès non autorisé aux rapports" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	resp = doJSON(t, app, "GET", "/api/reports/", accessToken(t, integration), nil)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for integration, got %d", resp.StatusCode)
	}
}

func TestReportUpsertEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	integration := createTestUser(t, db, "integration1", models.RoleServiceIntegration)

	incident := models.SoftwareIncident{Date: "2026-08-01", Time: "10:00", Description: "Anomalie"}
	if err := db.Create(&incident).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	payload := map[string]interface{}{
		"incident":   incident.ID,
		"analysis":   "Analyse",
		"conclusion": "Conclusion",
	}
	resp := doJSON(t, app, "POST", "/api/reports/", accessToken(t, integration), payload)
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201 on create, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/reports/", accessToken(t, integration), payload)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 on update, got %d", resp.StatusCode)
	}

	// The incident id may arrive as a string; the payload still parses.
	payload["incident"] = "1"
	resp = doJSON(t, app, "POST", "/api/reports/", accessToken(t, integration), payload)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for string incident id, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/reports/", accessToken(t, integration), map[string]interface{}{
		"incident": incident.ID,
	})
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for missing analysis/conclusion, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "L'analyse et la conclusion sont requises" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestUsersSuperadminOnly(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)

	admin := createTestUser(t, db, "admin", models.RoleSuperadmin)
	maintenance := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)

	resp := doJSON(t, app, "GET", "/api/users/", accessToken(t, maintenance), nil)
	if resp.StatusCode != 403 {
		t.Errorf("Expected 403 for non-superadmin, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Accès non autorisé" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	resp = doJSON(t, app, "GET", "/api/users/", accessToken(t, admin), nil)
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for superadmin, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["count"] != float64(2) {
		t.Errorf("Expected 2 accounts, got %v", body["count"])
	}
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	admin := createTestUser(t, db, "admin", models.RoleSuperadmin)

	resp := doJSON(t, app, "DELETE", "/api/users/1", accessToken(t, admin), nil)
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for self-delete, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Vous ne pouvez pas supprimer votre propre compte" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestDeleteIncidentEndpoint(t *testing.T) {
	db := setupTestDB(t)
	app := setupApp(t, db)
	maintenance := createTestUser(t, db, "maintenance1", models.RoleServiceMaintenance)

	inc := models.HardwareIncident{
		Date: "2026-08-01", Time: "08:00",
		NomDeEquipement: "Radar", Description: "Panne",
	}
	if err := db.Create(&inc).Error; err != nil {
		t.Fatalf("Failed to create incident: %v", err)
	}

	resp := doJSON(t, app, "DELETE", "/api/incidents/1", accessToken(t, maintenance), nil)
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Incident matériel supprimé avec succès" {
		t.Errorf("Unexpected message: %v", body["message"])
	}

	resp = doJSON(t, app, "DELETE", "/api/incidents/1", accessToken(t, maintenance), nil)
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 on second delete, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["message"] != "Incident non trouvé" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}
