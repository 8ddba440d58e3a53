package handlerapp

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yusufsyaifudin/marathon/internal/svc/appsvc"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/transport/restapi/httptyped"
)

type HandlerConfig struct {
	AppService appsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

type CreateAppReq struct {
	Key      string `json:"key"`
	BundleID string `json:"bundleId"`
}

type AppResp struct {
	App httptyped.AppEntity `json:"app"`
}

// CreateApp create new application, key and bundle id must be unique.
// Path         : POST /apps
// Header       : user-email
// Request Body : CreateAppReq
// Response     : AppResp
func (h *Handler) CreateApp() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var reqBody CreateAppReq
		err := httptyped.DecodeBody(r, &reqBody)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		createAppIn := appsvc.InputCreateApp{
			Key:       reqBody.Key,
			BundleID:  reqBody.BundleID,
			CreatedBy: r.Header.Get(httptyped.HeaderUserEmail),
		}

		createAppOut, err := h.Config.AppService.CreateApp(ctx, createAppIn)
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		respBody := AppResp{
			App: httptyped.AppEntityFromSvc(createAppOut.App),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

type PutAppReq struct {
	Key      string `json:"key"`
	BundleID string `json:"bundleId"`
}

// PutApp replace key and bundle id of existing application, it does not support patching.
// Path         : PUT /apps/{id}
// Request Body : PutAppReq
// Response     : AppResp
func (h *Handler) PutApp() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var reqBody PutAppReq
		err := httptyped.DecodeBody(r, &reqBody)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		putAppIn := appsvc.InputPutApp{
			ID:       strings.TrimSpace(chi.URLParam(r, "id")),
			Key:      reqBody.Key,
			BundleID: reqBody.BundleID,
		}

		putAppOut, err := h.Config.AppService.PutApp(ctx, putAppIn)
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		respBody := AppResp{
			App: httptyped.AppEntityFromSvc(putAppOut.App),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type ListAppsResp struct {
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Apps   []httptyped.AppEntity `json:"apps"`
}

// ListApps list apps ordered by creation time.
// Path          : GET /apps
// Request Query : httptyped.ListQuery
// Response      : ListAppsResp
func (h *Handler) ListApps() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, err := httptyped.DecodeListQuery(r)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		listOut, err := h.Config.AppService.ListApp(ctx, appsvc.InputListApp{
			Limit:  query.Limit,
			Offset: query.Offset,
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		apps := make([]httptyped.AppEntity, 0, len(listOut.Apps))
		for _, app := range listOut.Apps {
			apps = append(apps, httptyped.AppEntityFromSvc(app))
		}

		respBody := ListAppsResp{
			Limit:  listOut.Limit,
			Offset: listOut.Offset,
			Apps:   apps,
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// GetApp
// Path          : GET /apps/{id}
// Response      : AppResp
func (h *Handler) GetApp() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		getAppOut, err := h.Config.AppService.GetApp(ctx, appsvc.InputGetApp{
			ID: strings.TrimSpace(chi.URLParam(r, "id")),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		respBody := AppResp{
			App: httptyped.AppEntityFromSvc(getAppOut.App),
		}

		resp := respbuilder.Success(ctx, respBody)
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// DelApp delete app with its templates and jobs.
// Path          : DELETE /apps/{id}
// Response      : 204 without body
func (h *Handler) DelApp() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		_, err := h.Config.AppService.DelApp(ctx, appsvc.InputDelApp{
			ID: strings.TrimSpace(chi.URLParam(r, "id")),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		respbuilder.NoContent(w, r)
	}

	return handler
}
