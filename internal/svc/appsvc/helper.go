package appsvc

import (
	"github.com/yusufsyaifudin/marathon/internal/svc/apprepo"
)

func AppFromRepo(app apprepo.App) App {
	return App{
		ID:        app.ID,
		Key:       app.Key,
		BundleID:  app.BundleID,
		CreatedBy: app.CreatedBy,
		CreatedAt: app.CreatedAt.UTC(),
		UpdatedAt: app.UpdatedAt.UTC(),
	}
}
