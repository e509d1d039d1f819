package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-service/internal/config"
	"todo-service/internal/database"
	"todo-service/internal/denylist"
	"todo-service/internal/httpserver"
	"todo-service/internal/intelligence"
	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeProvider struct {
	plan *intelligence.Plan
	err  error
}

func (f *fakeProvider) GeneratePlan(ctx context.Context, query string) (*intelligence.Plan, error) {
	return f.plan, f.err
}

func setupServer(t *testing.T, provider intelligence.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "integration-secret"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.RateLimit.Enabled = false

	return httpserver.NewRouter(httpserver.Deps{
		Config:      cfg,
		DB:          db,
		AuthService: services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, bcrypt.MinCost),
		TaskService: services.NewTaskService(),
		Denylist:    denylist.NewMemory(),
		AIProvider:  provider,
	})
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
	return result
}

func register(t *testing.T, router *gin.Engine, name, email, password string) {
	w := doJSON(router, "POST", "/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Register %s failed with status %d: %s", email, w.Code, w.Body.String())
	}
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	w := doJSON(router, "POST", "/login", "", map[string]string{
		"email": email, "password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login %s failed with status %d: %s", email, w.Code, w.Body.String())
	}
	response := decode(t, w)["response"].(map[string]interface{})
	token, _ := response["token"].(string)
	if token == "" {
		t.Fatal("Expected token in login response")
	}
	return token
}

func listTasks(t *testing.T, router *gin.Engine, token string) []interface{} {
	w := doJSON(router, "GET", "/task", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("List tasks failed with status %d: %s", w.Code, w.Body.String())
	}
	tasks, _ := decode(t, w)["tasks"].([]interface{})
	return tasks
}

func TestTaskLifecycle(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	register(t, router, "Alice", "a@x.com", "pw")
	token := login(t, router, "a@x.com", "pw")

	w := doJSON(router, "POST", "/add-task", token, map[string]string{"task": "Write report"})
	if w.Code != http.StatusOK {
		t.Fatalf("Add task failed with status %d: %s", w.Code, w.Body.String())
	}

	tasks := listTasks(t, router, token)
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	task := tasks[0].(map[string]interface{})
	if task["title"] != "Write report" {
		t.Errorf("Expected title 'Write report', got %v", task["title"])
	}
	if task["is_done"] != false {
		t.Errorf("Expected is_done false, got %v", task["is_done"])
	}

	taskID := int(task["id"].(float64))

	w = doJSON(router, "PATCH", fmt.Sprintf("/mark-done/%d", taskID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Mark done failed with status %d: %s", w.Code, w.Body.String())
	}

	tasks = listTasks(t, router, token)
	if tasks[0].(map[string]interface{})["is_done"] != true {
		t.Error("Expected task to be marked done")
	}

	// Marking again is a no-op success.
	w = doJSON(router, "PATCH", fmt.Sprintf("/mark-done/%d", taskID), token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected idempotent mark-done, got status %d", w.Code)
	}

	w = doJSON(router, "GET", fmt.Sprintf("/remove-task/%d", taskID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Delete failed with status %d: %s", w.Code, w.Body.String())
	}

	if tasks = listTasks(t, router, token); len(tasks) != 0 {
		t.Errorf("Expected empty list after delete, got %d tasks", len(tasks))
	}

	w = doJSON(router, "GET", fmt.Sprintf("/remove-task/%d", taskID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected repeat delete to report not found, got status %d", w.Code)
	}
}

func TestRegisterTwiceConflicts(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	register(t, router, "Alice", "a@x.com", "pw")

	w := doJSON(router, "POST", "/register", "", map[string]string{
		"name": "Imposter", "email": "a@x.com", "password": "other",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for duplicate email, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	register(t, router, "Alice", "a@x.com", "pw")

	w := doJSON(router, "POST", "/login", "", map[string]string{
		"email": "nobody@x.com", "password": "pw",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for unknown email, got %d", http.StatusNotFound, w.Code)
	}

	w = doJSON(router, "POST", "/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for wrong password, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestTasksAreInvisibleToOtherUsers(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	register(t, router, "Alice", "a@x.com", "pw")
	register(t, router, "Bob", "b@x.com", "pw")
	aliceToken := login(t, router, "a@x.com", "pw")
	bobToken := login(t, router, "b@x.com", "pw")

	w := doJSON(router, "POST", "/add-task", aliceToken, map[string]string{"task": "Buy milk"})
	if w.Code != http.StatusOK {
		t.Fatalf("Add task failed with status %d", w.Code)
	}

	if tasks := listTasks(t, router, bobToken); len(tasks) != 0 {
		t.Errorf("Expected Bob to see no tasks, got %d", len(tasks))
	}

	aliceTasks := listTasks(t, router, aliceToken)
	if len(aliceTasks) != 1 {
		t.Fatalf("Expected Alice to see 1 task, got %d", len(aliceTasks))
	}

	// Bob cannot mutate Alice's task either.
	taskID := int(aliceTasks[0].(map[string]interface{})["id"].(float64))
	w = doJSON(router, "PATCH", fmt.Sprintf("/mark-done/%d", taskID), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for foreign task, got %d", http.StatusNotFound, w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	register(t, router, "Alice", "a@x.com", "pw")
	token := login(t, router, "a@x.com", "pw")

	w := doJSON(router, "GET", "/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Logout failed with status %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "GET", "/task", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected revoked token to be rejected, got status %d", w.Code)
	}

	// A fresh login works; only the exact revoked token is dead.
	fresh := login(t, router, "a@x.com", "pw")
	w = doJSON(router, "GET", "/task", fresh, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected fresh token to authenticate, got status %d", w.Code)
	}
}

func TestAddTaskRequiresAuth(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	w := doJSON(router, "POST", "/add-task", "", map[string]string{"task": "Buy milk"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d without token, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestGenerateTask(t *testing.T) {
	provider := &fakeProvider{
		plan: &intelligence.Plan{
			Tasks: []intelligence.PlanTask{
				{Task: "Decide on the date", Steps: []string{"Check availability of key guests"}},
			},
		},
	}
	router := setupServer(t, provider)

	register(t, router, "Alice", "a@x.com", "pw")
	token := login(t, router, "a@x.com", "pw")

	w := doJSON(router, "POST", "/generate-task", token, map[string]string{"query": "having a party"})
	if w.Code != http.StatusOK {
		t.Fatalf("Generate failed with status %d: %s", w.Code, w.Body.String())
	}

	response := decode(t, w)["response"].(map[string]interface{})
	if tasks, _ := response["tasks"].([]interface{}); len(tasks) != 1 {
		t.Errorf("Expected 1 generated task, got %v", response["tasks"])
	}

	// Generation is suggestion-only; nothing lands in the task store.
	if tasks := listTasks(t, router, token); len(tasks) != 0 {
		t.Errorf("Expected no persisted tasks after generation, got %d", len(tasks))
	}
}

func TestGenerateTask_OffTopic(t *testing.T) {
	provider := &fakeProvider{plan: &intelligence.Plan{Error: "not a TODO list query"}}
	router := setupServer(t, provider)

	register(t, router, "Alice", "a@x.com", "pw")
	token := login(t, router, "a@x.com", "pw")

	w := doJSON(router, "POST", "/generate-task", token, map[string]string{"query": "tell me a joke"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d for off-topic query, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := setupServer(t, &fakeProvider{})

	w := doJSON(router, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected healthy status, got %d: %s", w.Code, w.Body.String())
	}
}
