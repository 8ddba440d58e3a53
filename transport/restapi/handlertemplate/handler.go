package handlertemplate

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/marathon/internal/svc/templatesvc"
	"github.com/yusufsyaifudin/marathon/pkg/respbuilder"
	"github.com/yusufsyaifudin/marathon/pkg/validator"
	"github.com/yusufsyaifudin/marathon/transport/restapi/httptyped"
)

type HandlerConfig struct {
	TemplateService templatesvc.Service `validate:"required"`
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

// TemplateReq is used both on create and replace.
// Defaults and Body must be JSON object, Body use {{var}} placeholder.
type TemplateReq struct {
	Name     string          `json:"name"`
	Locale   string          `json:"locale"`
	Defaults json.RawMessage `json:"defaults"`
	Body     json.RawMessage `json:"body"`
}

type TemplateResp struct {
	Template httptyped.TemplateEntity `json:"template"`
}

// CreateTemplate
// Path         : POST /apps/{id}/templates
// Header       : user-email
// Request Body : TemplateReq
// Response     : TemplateResp
func (h *Handler) CreateTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var reqBody TemplateReq
		err := httptyped.DecodeBody(r, &reqBody)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		createOut, err := h.Config.TemplateService.CreateTemplate(ctx, templatesvc.InputCreateTemplate{
			AppID:     appID(r),
			Name:      reqBody.Name,
			Locale:    reqBody.Locale,
			Defaults:  reqBody.Defaults,
			Body:      reqBody.Body,
			CreatedBy: r.Header.Get(httptyped.HeaderUserEmail),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TemplateResp{
			Template: httptyped.TemplateEntityFromSvc(createOut.Template),
		})
		respbuilder.WriteJSON(http.StatusCreated, w, r, resp)
	}

	return handler
}

// PutTemplate replace the template and recompile its body.
// Path         : PUT /apps/{id}/templates/{tid}
// Request Body : TemplateReq
// Response     : TemplateResp
func (h *Handler) PutTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var reqBody TemplateReq
		err := httptyped.DecodeBody(r, &reqBody)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		putOut, err := h.Config.TemplateService.PutTemplate(ctx, templatesvc.InputPutTemplate{
			AppID:    appID(r),
			ID:       templateID(r),
			Name:     reqBody.Name,
			Locale:   reqBody.Locale,
			Defaults: reqBody.Defaults,
			Body:     reqBody.Body,
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TemplateResp{
			Template: httptyped.TemplateEntityFromSvc(putOut.Template),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

type ListTemplatesResp struct {
	Limit     int                         `json:"limit"`
	Offset    int                         `json:"offset"`
	Templates []httptyped.TemplateSummary `json:"templates"`
}

// ListTemplates
// Path          : GET /apps/{id}/templates
// Request Query : httptyped.ListQuery
// Response      : ListTemplatesResp
func (h *Handler) ListTemplates() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		query, err := httptyped.DecodeListQuery(r)
		if err != nil {
			httptyped.WriteBadRequest(w, r, err)
			return
		}

		listOut, err := h.Config.TemplateService.ListTemplate(ctx, templatesvc.InputListTemplate{
			AppID:  appID(r),
			Limit:  query.Limit,
			Offset: query.Offset,
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		templates := make([]httptyped.TemplateSummary, 0, len(listOut.Templates))
		for _, tmpl := range listOut.Templates {
			templates = append(templates, httptyped.TemplateSummaryFromSvc(tmpl))
		}

		resp := respbuilder.Success(ctx, ListTemplatesResp{
			Limit:     listOut.Limit,
			Offset:    listOut.Offset,
			Templates: templates,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// GetTemplate
// Path          : GET /apps/{id}/templates/{tid}
// Response      : TemplateResp
func (h *Handler) GetTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		getOut, err := h.Config.TemplateService.GetTemplate(ctx, templatesvc.InputGetTemplate{
			AppID: appID(r),
			ID:    templateID(r),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, TemplateResp{
			Template: httptyped.TemplateEntityFromSvc(getOut.Template),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	return handler
}

// DelTemplate
// Path          : DELETE /apps/{id}/templates/{tid}
// Response      : 204 without body
func (h *Handler) DelTemplate() func(http.ResponseWriter, *http.Request) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		_, err := h.Config.TemplateService.DelTemplate(ctx, templatesvc.InputDelTemplate{
			AppID: appID(r),
			ID:    templateID(r),
		})
		if err != nil {
			httptyped.WriteSvcError(w, r, err)
			return
		}

		respbuilder.NoContent(w, r)
	}

	return handler
}

func appID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func templateID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "tid"))
}
