package prefetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/paragraf-app/core/internal/modules/project"
	"github.com/paragraf-app/core/internal/modules/unit"
	"github.com/paragraf-app/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TaskTypeFill tags the window-fill records in the task queue.
const TaskTypeFill = "prefetch.fill"

// Translator is the provider surface the prefetcher needs.
type Translator interface {
	Translate(ctx context.Context, text, instructions string, rules []string) (string, error)
}

type fillPayload struct {
	ProjectID string `json:"project_id"`
	From      int    `json:"from"`
	Window    int    `json:"window"`
}

type unitResult struct {
	Seq       int    `json:"seq"`
	Drafted   bool   `json:"drafted"`
	Discarded bool   `json:"discarded,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Service fills the look-ahead window with machine drafts ahead of the
// reviewer's cursor.
type Service struct {
	units      *unit.Service
	projects   *project.Service
	translator Translator
	tasks      *taskqueue.Service
	log        *zap.Logger
}

func NewService(units *unit.Service, projects *project.Service, translator Translator, tasks *taskqueue.Service, log *zap.Logger) *Service {
	return &Service{units: units, projects: projects, translator: translator, tasks: tasks, log: log}
}

// Fill drafts every undrafted pending unit with seq in [from, from+window).
// Units are translated in parallel, bounded by the window size, and the
// call returns only once the whole window has settled. A per-unit
// provider failure is recorded in the run result and never aborts the
// rest of the window. A live run for the same window is not repeated.
func (s *Service) Fill(ctx context.Context, projectID string, from, window int) error {
	if window < 1 {
		window = 1
	}

	dedupKey := fmt.Sprintf("%s:%d:%d", projectID, from, window)
	task, created, err := s.tasks.Enqueue(ctx, TaskTypeFill,
		fillPayload{ProjectID: projectID, From: from, Window: window},
		dedupKey, projectID)
	if err != nil {
		return err
	}
	if !created {
		s.log.Debug("prefetch window already in flight",
			zap.String("project_id", projectID),
			zap.Int("from", from),
		)
		return nil
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskRunning, nil, ""); err != nil {
		return err
	}

	results, err := s.fillWindow(ctx, projectID, from, window)
	if err != nil {
		_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, results, err.Error())
		return err
	}
	return s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, results, "")
}

func (s *Service) fillWindow(ctx context.Context, projectID string, from, window int) ([]unitResult, error) {
	p, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}

	units, err := s.units.PendingInRange(projectID, from, from+window)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return []unitResult{}, nil
	}

	var (
		mu      sync.Mutex
		results = make([]unitResult, 0, len(units))
	)
	record := func(r unitResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(window)
	for i := range units {
		u := units[i]
		g.Go(func() error {
			draft, err := s.translator.Translate(gctx, u.Original, p.Instructions, p.Memory)
			if err != nil {
				s.log.Warn("prefetch draft failed",
					zap.String("unit_id", u.ID),
					zap.Int("seq", u.Seq),
					zap.Error(err),
				)
				record(unitResult{Seq: u.Seq, Error: err.Error()})
				return nil
			}

			stored, err := s.units.SaveDraftIfPending(u.ID, draft)
			if err != nil {
				record(unitResult{Seq: u.Seq, Error: err.Error()})
				return nil
			}
			record(unitResult{Seq: u.Seq, Drafted: stored, Discarded: !stored})
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}
