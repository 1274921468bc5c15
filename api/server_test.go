package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/acrohunt/game/catalog"
	"github.com/wricardo/acrohunt/game/config"
	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
	"github.com/wricardo/acrohunt/game/service"
	"github.com/wricardo/acrohunt/game/session"
	"github.com/wricardo/acrohunt/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc     func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc        func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc      func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc     func(ctx context.Context, sessionID string) error
	StartGameFunc         func(ctx context.Context, sessionID string) (*engine.GameState, error)
	RestartFunc           func(ctx context.Context, sessionID string) (*engine.GameState, error)
	SelectFunc            func(ctx context.Context, sessionID string, cell engine.Coord) (*service.SelectResult, error)
	SelectPathFunc        func(ctx context.Context, sessionID string, cells []engine.Coord, submit bool) (*service.PathResult, error)
	BackspaceFunc         func(ctx context.Context, sessionID string) (*engine.GameState, error)
	ClearSelectionFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)
	SubmitFunc            func(ctx context.Context, sessionID string) (*service.SubmitResponse, error)
	GetGameStateFunc      func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetAttemptHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	FindWordsFunc         func(ctx context.Context, sessionID string, maxLen int) ([]engine.Found, error)
	ListConfigsFunc       func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc        func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc        func(ctx context.Context, configName string, config *engine.GameConfig) error
	LeaderboardFunc       func(ctx context.Context, limit int) ([]results.Summary, error)
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", GameState: &engine.GameState{Phase: engine.PhaseIdle}}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.StartGameFunc != nil {
		return m.StartGameFunc(ctx, sessionID)
	}
	return &engine.GameState{Phase: engine.PhaseCountdown, CountdownLeft: 3}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.GameState{Phase: engine.PhaseCountdown, Round: 2}, nil
}

func (m *MockGameService) Select(ctx context.Context, sessionID string, cell engine.Coord) (*service.SelectResult, error) {
	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, sessionID, cell)
	}
	return &service.SelectResult{Outcome: engine.SelectAdded, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) SelectPath(ctx context.Context, sessionID string, cells []engine.Coord, submit bool) (*service.PathResult, error) {
	if m.SelectPathFunc != nil {
		return m.SelectPathFunc(ctx, sessionID, cells, submit)
	}
	return &service.PathResult{Added: len(cells), GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Backspace(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.BackspaceFunc != nil {
		return m.BackspaceFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) ClearSelection(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ClearSelectionFunc != nil {
		return m.ClearSelectionFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) Submit(ctx context.Context, sessionID string) (*service.SubmitResponse, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, sessionID)
	}
	return &service.SubmitResponse{GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetAttemptHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetAttemptHistoryFunc != nil {
		return m.GetAttemptHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Attempts: []engine.AttemptEntry{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) FindWords(ctx context.Context, sessionID string, maxLen int) ([]engine.Found, error) {
	if m.FindWordsFunc != nil {
		return m.FindWordsFunc(ctx, sessionID, maxLen)
	}
	return []engine.Found{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return engine.DefaultGameConfig(), nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, cfg *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, cfg)
	}
	return nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, limit int) ([]results.Summary, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return []results.Summary{}, nil
}

func (m *MockGameService) CleanupExpired(maxAge time.Duration) int { return 0 }

func (m *MockGameService) Close() {}

var _ service.GameService = (*MockGameService)(nil)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		expectedStatus int
		expectedConfig string
	}{
		{name: "with config_id", body: `{"config_id":"blitz"}`, expectedStatus: http.StatusCreated, expectedConfig: "blitz"},
		{name: "with legacy config_name", body: `{"config_name":"zen"}`, expectedStatus: http.StatusCreated, expectedConfig: "zen"},
		{name: "empty body uses default", body: "", expectedStatus: http.StatusCreated, expectedConfig: ""},
		{name: "malformed body", body: `{"config_id":`, expectedStatus: http.StatusBadRequest},
		{
			name:           "unknown config",
			body:           `{"config_id":"nope"}`,
			mockErr:        fmt.Errorf("config 'nope' not found: %w", config.ErrConfigNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{name: "service failure", body: `{}`, mockErr: errors.New("disk full"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotConfig string
			mock := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					gotConfig = configName
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
				},
			}
			w := do(t, NewServer(mock, nil), "POST", "/api/sessions", tt.body)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusCreated && gotConfig != tt.expectedConfig {
				t.Errorf("Expected config %q, got %q", tt.expectedConfig, gotConfig)
			}
			if w.Code >= 400 {
				var body map[string]string
				decode(t, w, &body)
				if body["error"] == "" {
					t.Error("Expected error message in body")
				}
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "aaaa", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "bbbb", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "cccc", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now},
			}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    int
	}{
		{name: "default accessed desc", query: "", expected: []string{"cccc", "aaaa", "bbbb"}, total: 3},
		{name: "created asc", query: "?sort=created&order=asc", expected: []string{"aaaa", "cccc", "bbbb"}, total: 3},
		{name: "limit", query: "?limit=1", expected: []string{"cccc"}, total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, "GET", "/api/sessions"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			decode(t, w, &resp)
			if resp.Total != tt.total || resp.Count != len(tt.expected) {
				t.Errorf("Expected count %d total %d, got %d %d", len(tt.expected), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.expected {
				if resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	notFound := fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "ab12" {
				return nil, notFound
			}
			return &service.SessionInfo{ID: id, ConfigName: "classic"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, id string) error {
			if id != "ab12" {
				return notFound
			}
			return nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, server, tt.method, tt.path, "")
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestLifecycle(t *testing.T) {
	mock := &MockGameService{
		StartGameFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			if id == "busy" {
				return nil, fmt.Errorf("start from playing: %w", service.ErrWrongPhase)
			}
			return &engine.GameState{Phase: engine.PhaseCountdown, CountdownLeft: 3, Message: "Get ready"}, nil
		},
	}
	server := NewServer(mock, nil)

	t.Run("start", func(t *testing.T) {
		w := do(t, server, "POST", "/api/sessions/ab12/start", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp struct {
			Message string            `json:"message"`
			State   *engine.GameState `json:"state"`
		}
		decode(t, w, &resp)
		if resp.State.Phase != engine.PhaseCountdown || resp.Message != "Get ready" {
			t.Errorf("Unexpected start response: %+v", resp)
		}
	})

	t.Run("start in wrong phase", func(t *testing.T) {
		w := do(t, server, "POST", "/api/sessions/busy/start", "")
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409, got %d", w.Code)
		}
	})

	t.Run("restart", func(t *testing.T) {
		w := do(t, server, "POST", "/api/sessions/ab12/restart", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestSelect(t *testing.T) {
	var got engine.Coord
	mock := &MockGameService{
		SelectFunc: func(ctx context.Context, id string, cell engine.Coord) (*service.SelectResult, error) {
			got = cell
			return &service.SelectResult{Outcome: engine.SelectAdded, GameState: &engine.GameState{SelectedWord: "C"}}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "valid", body: `{"row":2,"col":3}`, status: http.StatusOK},
		{name: "zero coordinates", body: `{"row":0,"col":0}`, status: http.StatusOK},
		{name: "missing col", body: `{"row":2}`, status: http.StatusBadRequest},
		{name: "not json", body: `row=2`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, "POST", "/api/sessions/ab12/select", tt.body)
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}

	do(t, server, "POST", "/api/sessions/ab12/select", `{"row":2,"col":3}`)
	if got != (engine.Coord{Row: 2, Col: 3}) {
		t.Errorf("Expected coord (2,3), got %+v", got)
	}
}

func TestSelectPath(t *testing.T) {
	var gotCells []engine.Coord
	var gotSubmit bool
	mock := &MockGameService{
		SelectPathFunc: func(ctx context.Context, id string, cells []engine.Coord, submit bool) (*service.PathResult, error) {
			if id == "idle" {
				return nil, service.ErrWrongPhase
			}
			if len(cells) > 3 {
				return nil, service.ErrPathTooLong
			}
			gotCells, gotSubmit = cells, submit
			return &service.PathResult{Added: len(cells), Submitted: submit, GameState: &engine.GameState{}}, nil
		},
	}
	server := NewServer(mock, nil)

	t.Run("path with submit", func(t *testing.T) {
		w := do(t, server, "POST", "/api/sessions/ab12/select-path", `{"cells":[{"row":0,"col":0},{"row":1,"col":1}],"submit":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if len(gotCells) != 2 || gotCells[1] != (engine.Coord{Row: 1, Col: 1}) || !gotSubmit {
			t.Errorf("Unexpected forwarded path %v submit=%v", gotCells, gotSubmit)
		}
		var resp service.PathResult
		decode(t, w, &resp)
		if resp.Added != 2 || !resp.Submitted {
			t.Errorf("Unexpected response %+v", resp)
		}
	})

	statusTests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"empty cells", "ab12", `{"cells":[]}`, http.StatusBadRequest},
		{"too long", "ab12", `{"cells":[{},{},{},{}]}`, http.StatusBadRequest},
		{"wrong phase", "idle", `{"cells":[{}]}`, http.StatusConflict},
	}
	for _, tt := range statusTests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, "POST", "/api/sessions/"+tt.id+"/select-path", tt.body)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestSelectionEditing(t *testing.T) {
	calls := map[string]int{}
	mock := &MockGameService{
		BackspaceFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			calls["backspace"]++
			return &engine.GameState{}, nil
		},
		ClearSelectionFunc: func(ctx context.Context, id string) (*engine.GameState, error) {
			calls["clear"]++
			return &engine.GameState{}, nil
		},
	}
	server := NewServer(mock, nil)

	for _, path := range []string{"backspace", "clear"} {
		w := do(t, server, "POST", "/api/sessions/ab12/"+path, "")
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, w.Code)
		}
		if calls[path] != 1 {
			t.Errorf("Expected one %s call, got %d", path, calls[path])
		}
	}
}

func TestSubmit(t *testing.T) {
	term := catalog.Term{Abbreviation: "CPU", FullName: "Central Processing Unit"}
	mock := &MockGameService{
		SubmitFunc: func(ctx context.Context, id string) (*service.SubmitResponse, error) {
			return &service.SubmitResponse{
				Result:    engine.SubmitResult{Accepted: true, Matched: true, Word: "CPU", Term: &term, Points: 30, FirstFind: true},
				Message:   "CPU (Central Processing Unit) +30",
				GameState: &engine.GameState{Score: 30},
			}, nil
		},
	}
	w := do(t, NewServer(mock, nil), "POST", "/api/sessions/ab12/submit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp service.SubmitResponse
	decode(t, w, &resp)
	if !resp.Result.Matched || resp.Result.Term == nil || resp.Result.Term.FullName != term.FullName {
		t.Errorf("Unexpected submit result %+v", resp.Result)
	}
	if resp.GameState.Score != 30 {
		t.Errorf("Expected score 30, got %d", resp.GameState.Score)
	}
}

func TestGetHistory(t *testing.T) {
	var gotOpts service.HistoryOptions
	mock := &MockGameService{
		GetAttemptHistoryFunc: func(ctx context.Context, id string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
			gotOpts = opts
			return &service.HistoryResponse{Attempts: []engine.AttemptEntry{}, Page: opts.Page, PageSize: opts.Limit}, nil
		},
	}
	server := NewServer(mock, nil)

	tests := []struct {
		query    string
		expected service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}
	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			w := do(t, server, "GET", "/api/sessions/ab12/history"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if gotOpts != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, gotOpts)
			}
		})
	}
}

func TestHints(t *testing.T) {
	var gotMax int
	mock := &MockGameService{
		FindWordsFunc: func(ctx context.Context, id string, maxLen int) ([]engine.Found, error) {
			gotMax = maxLen
			return []engine.Found{{Word: "AI", Path: []engine.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}}}}, nil
		},
	}
	server := NewServer(mock, nil)

	w := do(t, server, "GET", "/api/sessions/ab12/hints", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotMax != engine.DefaultSolverDepth {
		t.Errorf("Expected default depth %d, got %d", engine.DefaultSolverDepth, gotMax)
	}
	var resp struct {
		Count int            `json:"count"`
		Words []engine.Found `json:"words"`
	}
	decode(t, w, &resp)
	if resp.Count != 1 || resp.Words[0].Word != "AI" {
		t.Errorf("Unexpected hints %+v", resp)
	}

	do(t, server, "GET", "/api/sessions/ab12/hints?max_len=4", "")
	if gotMax != 4 {
		t.Errorf("Expected max_len 4, got %d", gotMax)
	}
	if w := do(t, server, "GET", "/api/sessions/ab12/hints?max_len=1", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for max_len=1, got %d", w.Code)
	}
}

func TestConfigs(t *testing.T) {
	saved := map[string]*engine.GameConfig{}
	mock := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", GridSize: 5}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, name string) (*engine.GameConfig, error) {
			if name != "classic" {
				return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, name)
			}
			return engine.DefaultGameConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, name string, cfg *engine.GameConfig) error {
			saved[name] = cfg
			return nil
		},
	}
	server := NewServer(mock, nil)

	t.Run("list", func(t *testing.T) {
		w := do(t, server, "GET", "/api/configs", "")
		var configs []*service.ConfigInfo
		decode(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs %+v", configs)
		}
	})

	t.Run("get strips extension", func(t *testing.T) {
		if w := do(t, server, "GET", "/api/configs/classic.json", ""); w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w := do(t, server, "GET", "/api/configs/missing", ""); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create fills defaults", func(t *testing.T) {
		w := do(t, server, "POST", "/api/configs", `{"name":"quick","description":"Quick game","time_budget_seconds":45}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		cfg := saved["quick"]
		if cfg == nil {
			t.Fatal("Expected config to be saved")
		}
		if cfg.TimeBudgetSeconds != 45 || cfg.GridSize != engine.DefaultGridSize {
			t.Errorf("Expected budget 45 and default grid, got %d and %d", cfg.TimeBudgetSeconds, cfg.GridSize)
		}
	})

	t.Run("create rejects invalid", func(t *testing.T) {
		if w := do(t, server, "POST", "/api/configs", `{"description":"no name"}`); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 without name, got %d", w.Code)
		}
		if w := do(t, server, "POST", "/api/configs", `{"name":"big","description":"d","grid_size":40}`); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for grid_size 40, got %d", w.Code)
		}
	})
}

func TestLeaderboard(t *testing.T) {
	var gotLimit int
	mock := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, limit int) ([]results.Summary, error) {
			gotLimit = limit
			return []results.Summary{{ID: "r1", SessionID: "ab12", Score: 1220}}, nil
		},
	}
	server := NewServer(mock, nil)

	w := do(t, server, "GET", "/api/leaderboard?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotLimit != 5 {
		t.Errorf("Expected limit 5, got %d", gotLimit)
	}
	var resp struct {
		Count   int               `json:"count"`
		Entries []results.Summary `json:"entries"`
	}
	decode(t, w, &resp)
	if resp.Count != 1 || resp.Entries[0].Score != 1220 {
		t.Errorf("Unexpected leaderboard %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	w := do(t, NewServer(&MockGameService{}, nil), "GET", "/api/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestWebSocket(t *testing.T) {
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, id string) (*service.SessionInfo, error) {
			if id != "ab12" {
				return nil, session.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: id, GameState: &engine.GameState{Phase: engine.PhaseIdle, ConfigName: "classic"}}, nil
		},
	}
	server := httptest.NewServer(NewServer(mock, hub))
	defer server.Close()

	t.Run("missing session parameter", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws?session=zz99")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("stream receives initial state", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=ab12"
		conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("Failed to connect to WebSocket: %v", err)
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read initial message: %v", err)
		}
		if message.Type != websocket.TypeState || message.GameState.ConfigName != "classic" {
			t.Errorf("Unexpected initial message %+v", message)
		}
	})

	t.Run("disabled without hub", func(t *testing.T) {
		w := do(t, NewServer(mock, nil), "GET", "/ws?session=ab12", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 without hub, got %d", w.Code)
		}
	})
}
