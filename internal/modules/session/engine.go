package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/paragraf-app/core/internal/models"
	"github.com/paragraf-app/core/internal/modules/unit"
	redisc "github.com/paragraf-app/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "paragraf:session:"
	sessionTTL       = 24 * time.Hour
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrProjectEmpty    = errors.New("project has no units")
)

// Prefetcher fills the look-ahead window with machine drafts. The call is
// synchronous: when it returns, the cursor unit has been drafted (or its
// failure recorded).
type Prefetcher interface {
	Fill(ctx context.Context, projectID string, from, window int) error
}

// Session is the persisted cursor state of one review pass. Everything a
// navigation needs travels in the session itself.
type Session struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Cursor    int    `json:"cursor"`
	Window    int    `json:"window"`
}

// View is a session snapshot plus the active unit and progress counts.
type View struct {
	Session
	Complete bool              `json:"complete"`
	Total    int64             `json:"total"`
	Approved int64             `json:"approved"`
	Unit     *models.UnitModel `json:"unit,omitempty"`
}

// Engine drives cursor navigation over a project's units.
type Engine struct {
	rc       *redisc.Client
	units    *unit.Service
	prefetch Prefetcher
	log      *zap.Logger
	window   int
}

// NewEngine wires the cursor engine. prefetch may be nil (navigation
// without look-ahead).
func NewEngine(rc *redisc.Client, units *unit.Service, prefetch Prefetcher, log *zap.Logger, window int) *Engine {
	if window < 1 {
		window = 1
	}
	return &Engine{rc: rc, units: units, prefetch: prefetch, log: log, window: window}
}

// Open starts a review session positioned at the first pending unit.
// A fully approved project yields a terminal complete view and no
// session is created.
func (e *Engine) Open(ctx context.Context, projectID string) (*View, error) {
	total, err := e.units.CountTotal(projectID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrProjectEmpty
	}

	first, err := e.units.FirstPending(projectID)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return &View{
			Session:  Session{ProjectID: projectID},
			Complete: true,
			Total:    total,
			Approved: total,
		}, nil
	}

	sess := Session{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Cursor:    first.Seq,
		Window:    e.window,
	}
	if err := e.save(ctx, &sess); err != nil {
		return nil, err
	}
	e.triggerPrefetch(ctx, &sess)
	return e.view(ctx, &sess)
}

// Get returns the current state of an open session.
func (e *Engine) Get(ctx context.Context, sessionID string) (*View, error) {
	sess, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.view(ctx, sess)
}

// Advance moves the cursor one unit forward, clamped to the last unit.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*View, error) {
	return e.moveTo(ctx, sessionID, func(cursor int, total int64) int {
		return cursor + 1
	})
}

// Retreat moves the cursor one unit back, clamped to the first unit.
func (e *Engine) Retreat(ctx context.Context, sessionID string) (*View, error) {
	return e.moveTo(ctx, sessionID, func(cursor int, total int64) int {
		return cursor - 1
	})
}

// Jump moves the cursor to an absolute position, clamped to the
// project's bounds.
func (e *Engine) Jump(ctx context.Context, sessionID string, seq int) (*View, error) {
	return e.moveTo(ctx, sessionID, func(cursor int, total int64) int {
		return seq
	})
}

// NextPending moves the cursor to the first pending unit at or after the
// current position. Without one the cursor stays put.
func (e *Engine) NextPending(ctx context.Context, sessionID string) (*View, error) {
	sess, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	pending, err := e.units.FirstPendingFrom(sess.ProjectID, sess.Cursor)
	if err != nil {
		return nil, err
	}
	if pending != nil && pending.Seq != sess.Cursor {
		sess.Cursor = pending.Seq
		if err := e.save(ctx, sess); err != nil {
			return nil, err
		}
		e.triggerPrefetch(ctx, sess)
	}
	return e.view(ctx, sess)
}

// UnitApproved advances the session past an approval of its cursor unit.
// Approving the last unit leaves the cursor in place.
func (e *Engine) UnitApproved(ctx context.Context, sessionID, projectID string, seq int) error {
	sess, err := e.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.ProjectID != projectID || sess.Cursor != seq {
		return nil
	}

	total, err := e.units.CountTotal(sess.ProjectID)
	if err != nil {
		return err
	}
	if int64(seq) >= total-1 {
		return nil
	}

	sess.Cursor = seq + 1
	if err := e.save(ctx, sess); err != nil {
		return err
	}
	e.triggerPrefetch(ctx, sess)
	return nil
}

// Close drops the session state.
func (e *Engine) Close(ctx context.Context, sessionID string) error {
	return e.rc.Del(ctx, sessionKeyPrefix+sessionID)
}

func (e *Engine) moveTo(ctx context.Context, sessionID string, next func(cursor int, total int64) int) (*View, error) {
	sess, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	total, err := e.units.CountTotal(sess.ProjectID)
	if err != nil {
		return nil, err
	}

	cursor := next(sess.Cursor, total)
	if cursor < 0 {
		cursor = 0
	}
	if int64(cursor) >= total {
		cursor = int(total) - 1
	}

	if cursor != sess.Cursor {
		sess.Cursor = cursor
		if err := e.save(ctx, sess); err != nil {
			return nil, err
		}
		e.triggerPrefetch(ctx, sess)
	}
	return e.view(ctx, sess)
}

func (e *Engine) triggerPrefetch(ctx context.Context, sess *Session) {
	if e.prefetch == nil {
		return
	}
	if err := e.prefetch.Fill(ctx, sess.ProjectID, sess.Cursor, sess.Window); err != nil {
		e.log.Warn("prefetch fill failed",
			zap.String("project_id", sess.ProjectID),
			zap.Int("from", sess.Cursor),
			zap.Error(err),
		)
	}
}

func (e *Engine) view(ctx context.Context, sess *Session) (*View, error) {
	total, err := e.units.CountTotal(sess.ProjectID)
	if err != nil {
		return nil, err
	}
	approved, err := e.units.CountApproved(sess.ProjectID)
	if err != nil {
		return nil, err
	}
	active, err := e.units.GetBySeq(sess.ProjectID, sess.Cursor)
	if err != nil {
		return nil, err
	}
	return &View{
		Session:  *sess,
		Complete: approved == total,
		Total:    total,
		Approved: approved,
		Unit:     active,
	}, nil
}

func (e *Engine) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return e.rc.Set(ctx, sessionKeyPrefix+sess.ID, data, sessionTTL)
}

func (e *Engine) load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := e.rc.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}
