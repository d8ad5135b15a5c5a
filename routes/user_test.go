package routes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"tripmeld-server/models"
	"tripmeld-server/storage"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Alice",
		"email": "alice@example.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, app, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Other Alice",
		"email": "alice@example.com",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.Code)
	}
}

func TestDeletedUserEmailCanRegisterAgain(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	alice := createTestUser(t, "Alice", "alice@example.com")

	resp := doRequest(t, app, http.MethodDelete, "/api/users/"+strconv.Itoa(int(alice.ID)), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	resp = doRequest(t, app, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Alice Again",
		"email": "alice@example.com",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 re-registering a freed email, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	storage.DB.Model(&models.User{}).Where("email = ?", "alice@example.com").Count(&count)
	if count != 1 {
		t.Fatalf("expected one live user for the email, got %d", count)
	}
}

func TestCreateUserValidation(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/users", map[string]interface{}{
		"name":  "Alice",
		"email": "not-an-email",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", resp.Code)
	}
}

func TestPreferencesUpsert(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	path := "/api/users/" + strconv.Itoa(int(alice.ID)) + "/preferences"

	resp := doRequest(t, app, http.MethodGet, path, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before preferences are set, got %d", resp.Code)
	}

	resp = doRequest(t, app, http.MethodPut, path, map[string]interface{}{
		"travelStyle":   []string{"slow travel"},
		"budget":        500,
		"foodPrefs":     []string{"vegetarian"},
		"activityLevel": "Low",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on create, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, app, http.MethodPut, path, map[string]interface{}{
		"budget": 750,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", resp.Code, resp.Body.String())
	}

	var prefs []models.Preference
	storage.DB.Where("user_id = ?", alice.ID).Find(&prefs)
	if len(prefs) != 1 {
		t.Fatalf("expected one preference row per user, got %d", len(prefs))
	}
	if prefs[0].Budget != 750 {
		t.Fatalf("expected updated budget 750, got %d", prefs[0].Budget)
	}
	if prefs[0].ActivityLevel != "Low" {
		t.Fatalf("partial update must keep unset fields, got activity level %q", prefs[0].ActivityLevel)
	}

	var decoded struct {
		FoodPrefs []string `json:"foodPrefs"`
	}
	resp = doRequest(t, app, http.MethodGet, path, nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode preferences: %v", err)
	}
	if len(decoded.FoodPrefs) != 1 || decoded.FoodPrefs[0] != "vegetarian" {
		t.Fatalf("expected food prefs rendered as string list, got %v", decoded.FoodPrefs)
	}
}

func TestPreferencesActivityLevelValidation(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	resp := doRequest(t, app, http.MethodPut,
		"/api/users/"+strconv.Itoa(int(alice.ID))+"/preferences",
		map[string]interface{}{"activityLevel": "Extreme"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown activity level, got %d", resp.Code)
	}
}

func TestDeleteUserCascadesPreferences(t *testing.T) {
	setupTestDB(t)
	app := buildTestApp(t)

	alice := createTestUser(t, "Alice", "alice@example.com")
	setTestPreferences(t, alice, 500, "Low")

	resp := doRequest(t, app, http.MethodDelete, "/api/users/"+strconv.Itoa(int(alice.ID)), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	var count int64
	storage.DB.Model(&models.Preference{}).Where("user_id = ?", alice.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected preferences removed with the user, found %d", count)
	}
}
