package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jim-devENG/ispora-engine/internal/auth"
	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/metrics"
)

const testDevKey = "CHANGE_ME_STRONG_KEY"

type testEnv struct {
	db     *database.DB
	server *Server
}

func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Millisecond)
		return now
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "ispora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	db.SetClock(steppingClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	devKeys, err := auth.NewDevKeyService(testDevKey)
	require.NoError(t, err)

	s := NewServer(db, devKeys, metrics.New(), Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		RequestTimeout: 5 * time.Second,
	})
	return &testEnv{db: db, server: s}
}

func (e *testEnv) do(t *testing.T, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

type envelopeBody struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"pagination"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["uptime"])
}

func TestCORSTest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/cors-test", "", http.Header{"Origin": {"http://localhost:5173"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "CORS test successful!", body.Message)
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/api/dev/verify", "", http.Header{
		"Origin":                         {"http://localhost:5173"},
		"Access-Control-Request-Method":  {http.MethodGet},
		"Access-Control-Request-Headers": {"X-Dev-Key"},
	})
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = env.do(t, http.MethodOptions, "/api/dev/verify", "", http.Header{
		"Origin":                        {"https://evil.example"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDevVerify(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		target     string
		header     http.Header
		wantStatus int
	}{
		{"missing key", "/api/dev/verify", nil, http.StatusUnauthorized},
		{"wrong key", "/api/dev/verify", http.Header{"X-Dev-Key": {"guess"}}, http.StatusUnauthorized},
		{"header key", "/api/dev/verify", http.Header{"X-Dev-Key": {testDevKey}}, http.StatusOK},
		{"query key", "/api/dev/verify?x_dev_key=" + testDevKey, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, "", tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)

			body := decode(t, rec)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, body.Success)
				assert.Equal(t, "Dev access granted", body.Message)
			} else {
				assert.False(t, body.Success)
				assert.Equal(t, auth.ErrInvalidDevKey.Error(), body.Error)
			}
		})
	}
}

func TestProjects_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/projects", `{"title":"Mentor Match","description":"Pairing","creator_id":"user_1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.True(t, strings.HasPrefix(created["id"], database.PrefixProject))

	rec = env.do(t, http.MethodGet, "/api/projects?mine=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []database.Project
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, created["id"], projects[0].ID)
	assert.Equal(t, "active", projects[0].Status)
}

func TestProjects_EmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestProjects_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description":"no title"}`},
		{"blank title", `{"title":"   "}`},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/projects", tt.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestProjects_IDCollisionIsServerError(t *testing.T) {
	env := newTestEnv(t)
	frozen := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env.db.SetClock(func() time.Time { return frozen })

	rec := env.do(t, http.MethodPost, "/api/projects", `{"title":"one"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/projects", `{"title":"two"}`, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "conflict")
}

func TestFeed_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 1; i <= 120; i++ {
		_, err := env.db.CreateProject(ctx, &database.Project{Title: fmt.Sprintf("project %d", i)})
		require.NoError(t, err)
	}

	rec := env.do(t, http.MethodGet, "/api/feed?page=2&limit=50", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 50, body.Pagination.Limit)
	assert.Equal(t, 120, body.Pagination.Total)

	var items []database.FeedItem
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 50)
	assert.Equal(t, "project 70", items[0].Title)
	assert.Equal(t, "project 21", items[49].Title)
	assert.Equal(t, "project", items[0].Type)

	rec = env.do(t, http.MethodGet, "/api/feed", "", nil)
	body = decode(t, rec)
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, database.DefaultPageSize, body.Pagination.Limit)

	rec = env.do(t, http.MethodGet, "/api/feed?limit=1000", "", nil)
	assert.Equal(t, database.MaxPageSize, decode(t, rec).Pagination.Limit)

	rec = env.do(t, http.MethodGet, "/api/feed?page=two", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessions_StatusAllMatchesNoFilter(t *testing.T) {
	env := newTestEnv(t)

	payloads := []string{
		`{"projectId":"proj_1","title":"Kickoff","scheduledDate":"2025-04-01T10:00:00Z"}`,
		`{"projectId":"proj_1","title":"Review","scheduledDate":"2025-04-08T10:00"}`,
		`{"projectId":"proj_2","title":"Demo","scheduledDate":"2025-04-15","duration":30,"type":"in-person","isPublic":true,"maxParticipants":12}`,
	}
	for _, p := range payloads {
		rec := env.do(t, http.MethodPost, "/api/sessions", p, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	list := func(target string) []database.Session {
		rec := env.do(t, http.MethodGet, target, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var sessions []database.Session
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &sessions))
		return sessions
	}

	all := list("/api/sessions")
	require.Len(t, all, 3)
	assert.Equal(t, all, list("/api/sessions?status=all"))
	assert.Equal(t, "Demo", all[0].Title, "latest scheduled first")
	assert.Equal(t, 30, all[0].Duration)
	assert.True(t, all[0].IsPublic)
	require.NotNil(t, all[0].MaxParticipants)
	assert.EqualValues(t, 12, *all[0].MaxParticipants)

	assert.Equal(t, "upcoming", all[1].Status)
	assert.Equal(t, 60, all[1].Duration)
	assert.Equal(t, "video", all[1].Type)

	assert.Len(t, list("/api/sessions?projectId=proj_1"), 2)
	assert.Len(t, list("/api/sessions?projectId=proj_1&status=upcoming"), 2)
	assert.Len(t, list("/api/sessions?projectId=proj_1&status=completed"), 0)
	assert.Len(t, list("/api/sessions?projectId=&status="), 3)
}

func TestSessions_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"scheduledDate":"2025-04-01T10:00:00Z"}`},
		{"missing date", `{"title":"No date"}`},
		{"bad date", `{"title":"Bad","scheduledDate":"next week"}`},
		{"zero duration", `{"title":"Zero","scheduledDate":"2025-04-01","duration":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/sessions", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestTasks_CreateAndFilter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/tasks", `{"projectId":"proj_1","title":"Outline","dueDate":"2025-05-01"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, "/api/tasks", `{"projectId":"proj_2","title":"Slides","priority":"high","assigneeId":"user_9"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/tasks?projectId=proj_1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []database.Task
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Outline", tasks[0].Title)
	assert.Equal(t, "pending", tasks[0].Status)
	assert.Equal(t, "medium", tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, "2025-05-01", tasks[0].DueDate.Format(time.DateOnly))

	rec = env.do(t, http.MethodGet, "/api/tasks", "", nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &tasks))
	assert.Len(t, tasks, 2)

	rec = env.do(t, http.MethodPost, "/api/tasks", `{"title":"Bad due","dueDate":"soon"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_Mock(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/notifications?filter=unread", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notifications []database.Notification
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &notifications))
	require.Len(t, notifications, 2)
	assert.Equal(t, "notif_1", notifications[0].ID)
	assert.Equal(t, "Welcome to iSpora!", notifications[0].Title)
	assert.Equal(t, "success", notifications[1].Type)
	assert.False(t, notifications[1].IsRead)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/api/projects", "", nil)
	env.do(t, http.MethodGet, "/api/dev/verify", "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ispora_http_requests_total{method="GET",route="/api/projects",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `ispora_store_errors_total{kind="unauthorized"} 1`)
}

func TestAllowSubnetApplied(t *testing.T) {
	db, err := database.New(database.MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	devKeys, err := auth.NewDevKeyService(testDevKey)
	require.NoError(t, err)

	_, subnet, err := net.ParseCIDR("10.0.0.0/8")
	require.NoError(t, err)
	s := NewServer(db, devKeys, nil, Options{AllowedNet: subnet})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.168.0.10:4000"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
