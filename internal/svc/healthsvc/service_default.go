package healthsvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yusufsyaifudin/marathon/pkg/tracer"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type DefaultServiceConfig struct {
	Checkers []Checker     `validate:"required,min=1"`
	Timeout  time.Duration `validate:"-"`
}

type DefaultService struct {
	Config DefaultServiceConfig
}

var _ Service = (*DefaultService)(nil)

func New(cfg DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &DefaultService{Config: cfg}, nil
}

// Check run every checker concurrently, each under its own timeout.
func (d *DefaultService) Check(ctx context.Context) (out OutCheck) {
	ctx, span := tracer.StartSpan(ctx, "healthsvc.Check")
	defer span.End()

	var (
		lock sync.Mutex
		wg   sync.WaitGroup
	)

	out = OutCheck{
		Healthy:  true,
		Services: make(map[string]Report, len(d.Config.Checkers)),
	}

	for _, checker := range d.Config.Checkers {
		wg.Add(1)
		go func(checker Checker) {
			defer wg.Done()

			report := d.run(ctx, checker)

			lock.Lock()
			defer lock.Unlock()

			out.Services[checker.Name()] = report
			if !report.IsUp() {
				out.Healthy = false
				ylog.Error(ctx, fmt.Sprintf("healthcheck %s is down", checker.Name()), ylog.KV("report", report))
			}
		}(checker)
	}

	wg.Wait()
	return
}

func (d *DefaultService) run(ctx context.Context, checker Checker) (report Report) {
	ctx, cancel := context.WithTimeout(ctx, d.Config.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			report = down(fmt.Errorf("check panic: %v", r))
		}
	}()

	report = checker.Check(ctx)
	if report == nil {
		report = down(fmt.Errorf("%s checker return no report", checker.Name()))
	}

	return
}
