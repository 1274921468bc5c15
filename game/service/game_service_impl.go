package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	resultTimeout       = 30 * time.Second
)

// Option customizes the game service.
type Option func(*gameServiceImpl)

// WithClock sets the tick source for session drivers. Defaults to engine.SecondClock.
func WithClock(factory engine.ClockFactory) Option {
	return func(s *gameServiceImpl) { s.clock = factory }
}

// WithPublisher sets where events and tick states are sent.
func WithPublisher(p Publisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// WithResultSink sets where summaries go after GameOver.
func WithResultSink(sink results.Sink) Option {
	return func(s *gameServiceImpl) { s.sink = sink }
}

// WithLeaderboard sets the leaderboard served by Leaderboard.
func WithLeaderboard(lb results.Leaderboard) Option {
	return func(s *gameServiceImpl) { s.leaderboard = lb }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions    SessionManager
	configs     ConfigManager
	clock       engine.ClockFactory
	publisher   Publisher
	sink        results.Sink
	leaderboard results.Leaderboard

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	drivers  map[string]*driver
	attached map[string]func()
	pending  sync.WaitGroup
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		clock:    engine.SecondClock,
		ctx:      ctx,
		cancel:   cancel,
		drivers:  make(map[string]*driver),
		attached: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// session fetches a session, touches it, and makes sure it is wired to the
// event stream and, if mid-game, to a clock driver.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sess.ID)
	s.attach(sess)

	switch sess.Engine.Phase() {
	case engine.PhaseCountdown, engine.PhasePlaying:
		s.ensureDriver(sess)
	}
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Ticking:        s.ticking(sess.ID),
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new, idle game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.attach(sess)

	log.Info().Str("session", sess.ID).Str("config", config.Name).Msg("session created")

	info := s.info(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession stops the session's clock and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if sess, err := s.sessions.Get(sessionID); err == nil {
		s.detach(sess.ID)
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// StartGame moves an idle session into Countdown and starts its clock
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.Engine.Start() {
		return nil, fmt.Errorf("start from %s: %w", sess.Engine.Phase(), ErrWrongPhase)
	}
	s.ensureDriver(sess)
	return s.afterChange(sess), nil
}

// Restart begins a new round from any phase
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Restart()
	s.ensureDriver(sess)
	log.Info().Str("session", sess.ID).Msg("game restarted")
	return s.afterChange(sess), nil
}

// playing fetches a session and checks that it accepts gameplay
func (s *gameServiceImpl) playing(sessionID string) (*Session, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if phase := sess.Engine.Phase(); !phase.AcceptsGameplay() {
		return nil, fmt.Errorf("session %s is %s: %w", sess.ID, phase, ErrWrongPhase)
	}
	return sess, nil
}

// Select appends one cell to the selection
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, cell engine.Coord) (*SelectResult, error) {
	sess, err := s.playing(sessionID)
	if err != nil {
		return nil, err
	}

	outcome := sess.Engine.Select(cell)
	return &SelectResult{Outcome: outcome, GameState: s.afterChange(sess)}, nil
}

// SelectPath appends several cells in order and optionally submits
func (s *gameServiceImpl) SelectPath(ctx context.Context, sessionID string, cells []engine.Coord, submit bool) (*PathResult, error) {
	if len(cells) > engine.MaxGridSize*engine.MaxGridSize {
		return nil, fmt.Errorf("%d cells: %w", len(cells), ErrPathTooLong)
	}
	sess, err := s.playing(sessionID)
	if err != nil {
		return nil, err
	}

	outcomes := sess.Engine.SelectPath(cells)
	result := &PathResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o == engine.SelectAdded {
			result.Added++
		}
	}

	if submit {
		res := sess.Engine.Submit()
		s.logSubmit(sess.ID, res)
		result.Submitted = res.Accepted
		result.Result = &res
	}
	result.GameState = s.afterChange(sess)
	return result, nil
}

// Backspace removes the last selected cell
func (s *gameServiceImpl) Backspace(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.playing(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.Backspace()
	return s.afterChange(sess), nil
}

// ClearSelection empties the selection
func (s *gameServiceImpl) ClearSelection(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.playing(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Engine.ClearSelection()
	return s.afterChange(sess), nil
}

// Submit validates and scores the current selection
func (s *gameServiceImpl) Submit(ctx context.Context, sessionID string) (*SubmitResponse, error) {
	sess, err := s.playing(sessionID)
	if err != nil {
		return nil, err
	}

	res := sess.Engine.Submit()
	s.logSubmit(sess.ID, res)
	state := s.afterChange(sess)
	return &SubmitResponse{Result: res, Message: state.Message, GameState: state}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetAttemptHistory returns paginated submit history for the current round
func (s *gameServiceImpl) GetAttemptHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetState().Attempts
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := min((opts.Page-1)*opts.Limit, total)
	end := min(start+opts.Limit, total)

	attempts := make([]engine.AttemptEntry, 0, end-start)
	if opts.Order == "desc" {
		for i := total - 1 - start; i >= total-end; i-- {
			attempts = append(attempts, history[i])
		}
	} else {
		attempts = append(attempts, history[start:end]...)
	}

	return &HistoryResponse{
		Attempts:      attempts,
		TotalAttempts: total,
		Page:          opts.Page,
		PageSize:      opts.Limit,
		TotalPages:    totalPages,
		HasNext:       opts.Page < totalPages,
		HasPrevious:   opts.Page > 1,
	}, nil
}

// FindWords lists abbreviations that can currently be spelled on the session's grid
func (s *gameServiceImpl) FindWords(ctx context.Context, sessionID string, maxLen int) ([]engine.Found, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	found := engine.FindWords(state.Grid, sess.Engine.Provider(), maxLen)
	if found == nil {
		found = []engine.Found{}
	}
	return found, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Leaderboard returns the best finished games
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]results.Summary, error) {
	if s.leaderboard == nil {
		return []results.Summary{}, nil
	}
	return s.leaderboard.Top(ctx, limit)
}

// CleanupExpired drops sessions idle for longer than maxAge and stops their clocks
func (s *gameServiceImpl) CleanupExpired(maxAge time.Duration) int {
	removed := s.sessions.CleanupExpiredSessions(maxAge)
	for _, id := range removed {
		s.detach(id)
	}
	return len(removed)
}

// Close stops every clock driver and waits for pending result submissions
func (s *gameServiceImpl) Close() {
	s.cancel()

	s.mu.Lock()
	drivers := make([]*driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		drivers = append(drivers, d)
	}
	s.mu.Unlock()

	for _, d := range drivers {
		<-d.done
	}
	s.pending.Wait()
}

// afterChange persists and broadcasts the session's new state
func (s *gameServiceImpl) afterChange(sess *Session) *engine.GameState {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}
	state := sess.Engine.GetState()
	if s.publisher != nil {
		s.publisher.PublishState(sess.ID, state)
	}
	return state
}

func (s *gameServiceImpl) logSubmit(sessionID string, res engine.SubmitResult) {
	if !res.Accepted {
		return
	}
	switch {
	case res.Matched:
		log.Info().
			Str("session", sessionID).
			Str("word", res.Word).
			Int("points", res.Points).
			Int("bonus", res.Bonus).
			Int("combo", res.Combo).
			Bool("grid_reset", res.GridReset).
			Msg("match")
	case res.Reason == engine.ReasonCatalogUnavailable:
		log.Warn().Str("session", sessionID).Str("word", res.Word).Str("reason", string(res.Reason)).Msg("miss")
	default:
		log.Debug().Str("session", sessionID).Str("word", res.Word).Str("reason", string(res.Reason)).Msg("miss")
	}
}

// attach subscribes to a session's engine events once.
func (s *gameServiceImpl) attach(sess *Session) {
	key := strings.ToLower(sess.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attached[key]; ok {
		return
	}

	id := sess.ID
	s.attached[key] = sess.Engine.Subscribe(func(ev engine.Event) {
		if s.publisher != nil {
			s.publisher.PublishEvent(id, ev)
		}
		if ev.Type == engine.EventGameOver {
			log.Info().Str("session", id).Int("score", ev.FinalScore).Msg("game over")
			s.finish(id, ev.Final)
		}
	})
}

// detach stops the driver and drops the event subscription.
func (s *gameServiceImpl) detach(sessionID string) {
	key := strings.ToLower(sessionID)

	s.mu.Lock()
	d := s.drivers[key]
	delete(s.drivers, key)
	unsubscribe := s.attached[key]
	delete(s.attached, key)
	s.mu.Unlock()

	if d != nil {
		d.stop()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

// finish hands the summary of a finished game to the result sink. Failures
// are logged and never touch the session.
func (s *gameServiceImpl) finish(sessionID string, state *engine.GameState) {
	if s.sink == nil {
		return
	}
	summary, err := results.NewSummary(sessionID, state)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("skipping result submission")
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), resultTimeout)
		defer cancel()

		if err := s.sink.SubmitResult(ctx, summary); err != nil {
			log.Error().Err(err).Str("session", sessionID).Str("result", summary.ID).Msg("result submission failed")
			return
		}
		log.Info().Str("session", sessionID).Str("result", summary.ID).Int("score", summary.Score).Msg("result submitted")
	}()
}
