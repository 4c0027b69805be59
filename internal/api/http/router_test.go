package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/spec-kit/course-service/internal/api/http"
	"github.com/spec-kit/course-service/internal/api/http/handlers"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/observability"
	"github.com/spec-kit/course-service/internal/persistence"
	"github.com/spec-kit/course-service/internal/service"
	"github.com/spec-kit/course-service/internal/testutil"
)

type testEnv struct {
	app         *fiber.App
	users       *testutil.MemoryUserRepo
	enrollments *testutil.MemoryEnrollmentRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		App:  config.AppConfig{Name: "course-service", Version: "test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 24, BcryptCost: 4},
		Cors: config.CorsConfig{AllowedOrigins: "*"},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	users := testutil.NewMemoryUserRepo()
	courses := testutil.NewMemoryCourseRepo(users)
	enrollments := testutil.NewMemoryEnrollmentRepo(users)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		Dispatcher: dispatcher,
	})
	courseService := service.NewCourseService(service.CourseDependencies{
		CourseRepo:     courses,
		UserRepo:       users,
		EnrollmentRepo: enrollments,
		Dispatcher:     dispatcher,
	})
	enrollmentService := service.NewEnrollmentService(service.EnrollmentDependencies{
		CourseRepo:     courses,
		UserRepo:       users,
		EnrollmentRepo: enrollments,
		Dispatcher:     dispatcher,
	})

	app := fiber.New()
	httpapi.RegisterMiddlewares(app, logger, metrics, cfg)
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Courses:        handlers.NewCoursesHandler(courseService, enrollmentService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})

	return &testEnv{app: app, users: users, enrollments: enrollments}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
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

	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	decoded := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func (env *testEnv) register(t *testing.T, name, email, role string) (string, string) {
	t.Helper()
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret1",
		"role":     role,
		"age":      30,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%v)", email, status, body)
	}
	token, _ := body["token"].(string)
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(string)
	if token == "" || id == "" {
		t.Fatalf("register %s: incomplete response %v", email, body)
	}
	return token, id
}

func (env *testEnv) createCourse(t *testing.T, token, title string) string {
	t.Helper()
	status, body := env.do(t, http.MethodPost, "/api/courses/create", token, map[string]any{
		"title":       title,
		"description": "about " + title,
	})
	if status != http.StatusCreated {
		t.Fatalf("create course: expected 201, got %d (%v)", status, body)
	}
	course, _ := body["course"].(map[string]any)
	id, _ := course["id"].(string)
	if id == "" {
		t.Fatalf("create course: missing id in %v", body)
	}
	return id
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	_, id := env.register(t, "Ann", "a@x.com", "student")

	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "a@x.com",
		"password": "secret1",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", status, body)
	}
	if body["id"] != id || body["role"] != "student" || body["email"] != "a@x.com" {
		t.Fatalf("login response does not match the registered user: %v", body)
	}
	if token, _ := body["token"].(string); token == "" {
		t.Fatal("login must return a token")
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "a@x.com",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, body)
	}
	if errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "Ann", "a@x.com", "student")
	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Imposter",
		"email":    "a@x.com",
		"password": "secret2",
		"role":     "student",
		"age":      25,
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%v)", status, body)
	}
	if errorCode(body) != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", body)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "Ann", "a@x.com", "student")
	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "a@x.com",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%v)", status, body)
	}
}

func TestCreateCourseAuthChain(t *testing.T) {
	env := newTestEnv(t)

	teacherToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	studentToken, _ := env.register(t, "Ann", "a@x.com", "student")
	payload := map[string]any{"title": "Go 101", "description": "intro"}

	status, body := env.do(t, http.MethodPost, "/api/courses/create", "", payload)
	if status != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/create", "garbage-token", payload)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/create", studentToken, payload)
	if status != http.StatusForbidden {
		t.Fatalf("student: expected 403, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/create", teacherToken, payload)
	if status != http.StatusCreated {
		t.Fatalf("teacher: expected 201, got %d (%v)", status, body)
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	env := newTestEnv(t)

	teacherToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	status, body := env.do(t, http.MethodPost, "/api/courses/create", teacherToken, map[string]any{
		"title":       "",
		"description": "x",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, body)
	}
}

func TestEnrollFlow(t *testing.T) {
	env := newTestEnv(t)

	teacherToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	studentToken, studentID := env.register(t, "Ann", "a@x.com", "student")
	courseID := env.createCourse(t, teacherToken, "Go 101")

	status, body := env.do(t, http.MethodPost, "/api/courses/enroll/"+courseID, "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous enroll: expected 401, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/enroll/"+courseID, studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("enroll: expected 200, got %d (%v)", status, body)
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/enroll/"+courseID, studentToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("double enroll: expected 409, got %d (%v)", status, body)
	}
	if env.enrollments.Count() != 1 {
		t.Fatalf("expected one linkage, got %d", env.enrollments.Count())
	}

	status, body = env.do(t, http.MethodPost, "/api/courses/enroll/missing-course", studentToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown course: expected 404, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/api/courses/search/"+courseID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get course: expected 200, got %d (%v)", status, body)
	}
	students, _ := body["enrolledStudents"].([]any)
	if len(students) != 1 {
		t.Fatalf("expected one enrolled student, got %v", body["enrolledStudents"])
	}
	first, _ := students[0].(map[string]any)
	if first["id"] != studentID || first["email"] != "a@x.com" {
		t.Fatalf("expected resolved student identity, got %v", first)
	}

	status, body = env.do(t, http.MethodGet, "/api/courses/enrolled", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("enrolled list: expected 200, got %d (%v)", status, body)
	}
	data, _ := body["data"].(map[string]any)
	ids, _ := data["courseIds"].([]any)
	if len(ids) != 1 || ids[0] != courseID {
		t.Fatalf("expected the enrolled course id, got %v", body)
	}
}

func TestListCourses(t *testing.T) {
	env := newTestEnv(t)

	teacherToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	env.createCourse(t, teacherToken, "Algebra")
	env.createCourse(t, teacherToken, "Biology")

	status, body := env.do(t, http.MethodGet, "/api/courses?page=1&limit=1&search=alg", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d (%v)", status, body)
	}
	data, _ := body["data"].(map[string]any)
	if data["total"] != float64(1) || data["currentPage"] != float64(1) {
		t.Fatalf("unexpected pagination payload: %v", data)
	}
	courses, _ := data["courses"].([]any)
	if len(courses) != 1 {
		t.Fatalf("expected one matching course, got %v", courses)
	}
	course, _ := courses[0].(map[string]any)
	creator, _ := course["creator"].(map[string]any)
	if creator["email"] != "ted@x.com" {
		t.Fatalf("expected resolved creator, got %v", course)
	}
}

func TestGetCourseWithoutStudentsReturnsEmptyArray(t *testing.T) {
	env := newTestEnv(t)

	teacherToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	courseID := env.createCourse(t, teacherToken, "Go 101")

	status, body := env.do(t, http.MethodGet, "/api/courses/search/"+courseID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get course: expected 200, got %d (%v)", status, body)
	}
	students, present := body["enrolledStudents"]
	if !present {
		t.Fatalf("expected enrolledStudents to be present, got %v", body)
	}
	list, ok := students.([]any)
	if !ok || len(list) != 0 {
		t.Fatalf("expected an empty array, got %v", students)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/api/courses/search/missing", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%v)", status, body)
	}
	if errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", body)
	}
}

func TestUpdateCourseCreatorGate(t *testing.T) {
	env := newTestEnv(t)

	creatorToken, _ := env.register(t, "Ted", "ted@x.com", "teacher")
	otherToken, _ := env.register(t, "Eve", "eve@x.com", "teacher")
	studentToken, _ := env.register(t, "Ann", "a@x.com", "student")
	courseID := env.createCourse(t, creatorToken, "Go 101")
	patch := map[string]any{"title": "Go 102", "enrollmentStatus": "open"}

	status, body := env.do(t, http.MethodPut, "/api/courses/update/"+courseID, studentToken, patch)
	if status != http.StatusForbidden {
		t.Fatalf("student update: expected 403, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPut, "/api/courses/update/"+courseID, otherToken, patch)
	if status != http.StatusForbidden {
		t.Fatalf("non-creator update: expected 403, got %d (%v)", status, body)
	}

	status, body = env.do(t, http.MethodPut, "/api/courses/update/"+courseID, creatorToken, patch)
	if status != http.StatusOK {
		t.Fatalf("creator update: expected 200, got %d (%v)", status, body)
	}
	if body["title"] != "Go 102" || body["enrollmentStatus"] != "open" {
		t.Fatalf("expected patched course, got %v", body)
	}
	if body["description"] != "about Go 101" {
		t.Fatalf("expected untouched description, got %v", body)
	}

	status, body = env.do(t, http.MethodPut, "/api/courses/update/missing", creatorToken, patch)
	if status != http.StatusNotFound {
		t.Fatalf("unknown course update: expected 404, got %d (%v)", status, body)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, body)
	}
	if body["status"] != "alive" {
		t.Fatalf("unexpected liveness payload: %v", body)
	}
}
