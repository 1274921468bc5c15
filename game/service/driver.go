package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/acrohunt/game/engine"
)

// driver feeds clock ticks to one session's engine until the game ends.
type driver struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (d *driver) stop() {
	d.cancel()
	<-d.done
}

// ensureDriver starts a clock driver for the session unless one is already running.
func (s *gameServiceImpl) ensureDriver(sess *Session) {
	key := strings.ToLower(sess.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[key]; ok {
		return
	}
	if s.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	d := &driver{cancel: cancel, done: make(chan struct{})}
	s.drivers[key] = d

	clock := s.clock()
	go s.drive(ctx, key, sess, clock, d)
}

func (s *gameServiceImpl) drive(ctx context.Context, key string, sess *Session, clock engine.Clock, d *driver) {
	defer func() {
		clock.Stop()
		s.release(key, d)
		close(d.done)
	}()

	log.Debug().Str("session", sess.ID).Msg("clock driver started")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session", sess.ID).Msg("clock driver cancelled")
			return
		case <-clock.C():
			phase := sess.Engine.Tick()
			state := sess.Engine.GetState()
			if s.publisher != nil {
				s.publisher.PublishState(sess.ID, state)
			}
			if (phase == engine.PhaseGameOver || phase == engine.PhaseIdle) && s.retire(key, sess, d) {
				if err := s.sessions.Save(sess.ID); err != nil {
					log.Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
				}
				log.Debug().Str("session", sess.ID).Msg("clock driver finished")
				return
			}
		}
	}
}

// retire unregisters d once its session has stopped running. A restart that
// raced the final tick keeps the driver alive.
func (s *gameServiceImpl) retire(key string, sess *Session, d *driver) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch sess.Engine.Phase() {
	case engine.PhaseCountdown, engine.PhasePlaying:
		return false
	}
	if s.drivers[key] == d {
		delete(s.drivers, key)
	}
	return true
}

func (s *gameServiceImpl) release(key string, d *driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drivers[key] == d {
		delete(s.drivers, key)
	}
}

// ticking reports whether a clock driver is running for the session.
func (s *gameServiceImpl) ticking(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drivers[strings.ToLower(sessionID)]
	return ok
}
