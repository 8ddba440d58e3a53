package container

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/jobrepo"
	"github.com/yusufsyaifudin/marathon/internal/svc/templaterepo"
	"github.com/yusufsyaifudin/marathon/pkg/multidb"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"go.uber.org/multierr"
)

// Repositories is an abstraction layer to list down all repositories.
// This only will connect and save the repository.
// To use this, you must select the db label based on config file
type Repositories interface {
	io.Closer

	SQL(dbLabel string) (*sqlx.DB, error)
	AppRepo(dbLabel string) (apprepo.Repo, error)
	TemplateRepo(dbLabel string) (templaterepo.Repo, error)
	JobRepo(dbLabel string) (jobrepo.Repo, error)
}

// RepositoryImpl the real implementation of Repositories
type RepositoryImpl struct {
	dbResourceMap ConfigDatabaseResources `validate:"required"`
	dbSqlConn     multidb.MultiDB         `validate:"required"` // all database connection
}

// Ensure that RepositoryImpl implements RepositoryImpl
var _ Repositories = (*RepositoryImpl)(nil)

// SetupRepositories return pointer because it heavily used.
// This will return RepositoryImpl instead Repositories,
// the reason is when SetupRepositories called it must be close in deferred mode, any passed value using interface
// won't let user Close any dependencies during run-time.
func SetupRepositories(ctx context.Context, conf ConfigDatabaseResources) (*RepositoryImpl, error) {
	sqlDbConfig := multidb.DatabaseResources{}
	dbResourceMap := ConfigDatabaseResources{}
	for name, conn := range conf {
		dbResourceMap[normalizeLabel(name)] = conn
		sqlDbConfig[name] = multidb.DatabaseResource{
			Disable:  conn.Disable,
			Driver:   multidb.Driver(conn.Driver),
			Postgres: multidb.GoSqlDb(conn.Postgres),
		}
	}

	dbSqlConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{Config: sqlDbConfig})
	if err != nil {
		return nil, err
	}

	dep := &RepositoryImpl{
		dbResourceMap: dbResourceMap,
		dbSqlConn:     dbSqlConn,
	}

	err = validator.Validate(dep)
	if err != nil {
		_ = dep.Close()
		return nil, err
	}

	err = dbSqlConn.Ping(ctx)
	if err != nil {
		_ = dep.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return dep, nil
}

// SQL return the connection under dbLabel, only postgres driver is supported.
func (r *RepositoryImpl) SQL(dbLabel string) (sqlConn *sqlx.DB, err error) {
	dbLabel = normalizeLabel(dbLabel)
	repoConnInfo, ok := r.dbResourceMap[dbLabel]
	if !ok {
		err = fmt.Errorf("unknown database key %s", dbLabel)
		return
	}

	sqlDriver := multidb.Driver(repoConnInfo.Driver)
	switch sqlDriver {
	case multidb.Postgres:
		return r.dbSqlConn.GetSqlx(multidb.Postgres, dbLabel)

	default:
		err = fmt.Errorf("not supported db driver '%s' on label '%s'", sqlDriver, dbLabel)
		return
	}
}

// AppRepo return apprepo.Repo and return error when connection is closed or nil.
// This should never have caused panic.
func (r *RepositoryImpl) AppRepo(dbLabel string) (repo apprepo.Repo, err error) {
	sqlConn, err := r.SQL(dbLabel)
	if err != nil {
		err = fmt.Errorf("appRepo: %w", err)
		return
	}

	return apprepo.Postgres(apprepo.RepoPostgresConfig{
		Connection: sqlConn,
	})
}

func (r *RepositoryImpl) TemplateRepo(dbLabel string) (repo templaterepo.Repo, err error) {
	sqlConn, err := r.SQL(dbLabel)
	if err != nil {
		err = fmt.Errorf("templateRepo: %w", err)
		return
	}

	return templaterepo.Postgres(templaterepo.RepoPostgresConfig{
		Connection: sqlConn,
	})
}

func (r *RepositoryImpl) JobRepo(dbLabel string) (repo jobrepo.Repo, err error) {
	sqlConn, err := r.SQL(dbLabel)
	if err != nil {
		err = fmt.Errorf("jobRepo: %w", err)
		return
	}

	return jobrepo.Postgres(jobrepo.RepoPostgresConfig{
		Connection: sqlConn,
	})
}

// Close will close all dependencies.
func (r *RepositoryImpl) Close() error {
	if r == nil {
		return nil
	}

	if r.dbSqlConn == nil {
		return nil
	}

	var err error
	if _err := r.dbSqlConn.Close(); _err != nil {
		err = multierr.Append(err, fmt.Errorf("close db error: %w", _err))
	}

	return err
}
