package api

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/leadscope/sitediag/internal/diagnose"
	"github.com/leadscope/sitediag/internal/observe"
	"github.com/leadscope/sitediag/internal/report"
	"github.com/leadscope/sitediag/internal/runner"
	sharedErrors "github.com/leadscope/sitediag/internal/shared/errors"
)

// Service backs the HTTP API with the diagnosis engine, the results
// repository, and the optional observer.
type Service struct {
	engine   *diagnose.Engine
	repo     *report.Repository
	observer observe.Observer
	logger   *zap.SugaredLogger
}

func NewService(engine *diagnose.Engine, repo *report.Repository, observer observe.Observer, logger *zap.SugaredLogger) *Service {
	return &Service{
		engine:   engine,
		repo:     repo,
		observer: observer,
		logger:   logger,
	}
}

// Diagnose runs a full diagnosis of the URL, attaches an observation when an
// observer is configured, saves the result, and returns both the saved
// filename and the result body.
func (s *Service) Diagnose(ctx context.Context, url string) (*DiagnoseResponse, error) {
	result := s.engine.Diagnose(ctx, runner.NormalizeURL(url))

	if s.observer != nil {
		observation, err := s.observer.Observe(ctx, observe.Input{
			Tech:       result.Tech,
			ErrorCount: result.ConsoleErrorCount,
			LoadTime:   result.LoadTime,
		})
		switch {
		case err == nil:
			result.TechnicalObservation = observation
		case errors.Is(err, sharedErrors.ErrObserverDisabled):
			// observation stays empty
		default:
			s.logger.Warnw("observation failed", "url", result.URL, "error", err)
		}
	}

	filename, err := s.repo.Save(result)
	if err != nil {
		return nil, err
	}
	return &DiagnoseResponse{Filename: filename, Result: result}, nil
}

// List returns summaries of all saved results, newest first.
func (s *Service) List(ctx context.Context) ([]report.Summary, error) {
	return s.repo.List()
}

// Get loads one saved result by filename.
func (s *Service) Get(ctx context.Context, filename string) (*diagnose.Result, error) {
	return s.repo.Get(filename)
}
