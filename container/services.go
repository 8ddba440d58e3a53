package container

import (
	"fmt"

	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/appsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/mailsvc"
	"github.com/yusufsyaifudin/marathon/internal/svc/templatesvc"
	"github.com/yusufsyaifudin/marathon/pkg/cache"
	"github.com/yusufsyaifudin/marathon/pkg/pubsub"
)

const appCachePrefix = "marathonapp"

type Services interface {
	App() appsvc.Service
	Template() templatesvc.Service
	Job() jobsvc.Service
}

type ServicesImpl struct {
	app      appsvc.Service
	template templatesvc.Service
	job      jobsvc.Service
}

var _ Services = (*ServicesImpl)(nil)

// SetupServices wires the services, mail may be nil when job creator notification is disabled.
func SetupServices(conf Config, repos Repositories, redisConn *RedisConnMaker, publisher pubsub.IPublisher, mail mailsvc.Service) (svc *ServicesImpl, err error) {
	if repos == nil {
		err = fmt.Errorf("nil repositories on services preparation")
		return
	}

	// ** Prepare app repo, optionally read through cache
	appRepo, err := repos.AppRepo(conf.Services.App.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get app repo: %w", err)
		return
	}

	appRepo, err = cachedAppRepo(conf.Services.Cache, appRepo, redisConn)
	if err != nil {
		err = fmt.Errorf("services cannot prepare app cache: %w", err)
		return
	}

	templateRepo, err := repos.TemplateRepo(conf.Services.Template.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get template repo: %w", err)
		return
	}

	jobRepo, err := repos.JobRepo(conf.Services.Job.DBLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get job repo: %w", err)
		return
	}

	appService, err := appsvc.New(appsvc.DefaultServiceConfig{
		AppRepo: appRepo,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare app service: %w", err)
		return
	}

	templateService, err := templatesvc.New(templatesvc.DefaultServiceConfig{
		TemplateRepo: templateRepo,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare template service: %w", err)
		return
	}

	jobService, err := jobsvc.New(jobsvc.DefaultServiceConfig{
		AppRepo:      appRepo,
		TemplateRepo: templateRepo,
		JobRepo:      jobRepo,
		Publisher:    publisher,
		QueueName:    conf.Queue.Type,
		Mail:         mail,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare job service: %w", err)
		return
	}

	svc = &ServicesImpl{
		app:      appService,
		template: templateService,
		job:      jobService,
	}

	return svc, nil
}

func cachedAppRepo(conf ConfigServiceCache, persistent apprepo.Repo, redisConn *RedisConnMaker) (apprepo.Repo, error) {
	var appCache cache.Cache
	switch conf.Type {
	case CacheNone:
		return persistent, nil

	case CacheInMemory:
		inMemory, err := cache.NewInMemory()
		if err != nil {
			return nil, err
		}

		appCache = inMemory

	case CacheRedis:
		if redisConn == nil {
			return nil, fmt.Errorf("redis cache needs redis connection")
		}

		redisClient, err := redisConn.Get(conf.RedisLabel)
		if err != nil {
			return nil, err
		}

		redisCache, err := cache.NewRedis(cache.RedisConfig{
			DB:        redisClient,
			KeyPrefix: appCachePrefix,
		})
		if err != nil {
			return nil, err
		}

		appCache = redisCache

	default:
		return nil, fmt.Errorf("unknown cache type '%s'", conf.Type)
	}

	return apprepo.NewCached(apprepo.CachedConfig{
		Persistent:     persistent,
		CacheExpiry:    conf.Expiry,
		CachePrefixKey: appCachePrefix,
		Cache:          appCache,
	})
}

func (s *ServicesImpl) App() appsvc.Service {
	return s.app
}

func (s *ServicesImpl) Template() templatesvc.Service {
	return s.template
}

func (s *ServicesImpl) Job() jobsvc.Service {
	return s.job
}
