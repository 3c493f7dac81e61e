package photographer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	internalMiddleware "github.com/snapfield/sf-order/internal/pkg/middleware"
	"github.com/snapfield/sf-order/pkg/errors"
	publicMiddleware "github.com/snapfield/sf-order/pkg/middleware"
	"github.com/snapfield/sf-order/pkg/response"
	"github.com/snapfield/sf-order/pkg/status"
)

type HTTPHandler struct {
	Validate            *validator.Validate
	PhotographerUseCase PhotographerUseCase
}

func InitHTTPHandler(router *mux.Router, adminSession *internalMiddleware.AdminSession, validate *validator.Validate, photographerUseCase PhotographerUseCase) {
	handler := &HTTPHandler{
		Validate:            validate,
		PhotographerUseCase: photographerUseCase,
	}

	router.HandleFunc("/sf-order/v1/adminapp/photographers", publicMiddleware.SetRouteChain(handler.GetManyPhotographer, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/adminapp/photographers/{photographerID}", publicMiddleware.SetRouteChain(handler.GetPhotographer, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/adminapp/photographers/{photographerID}/share-percentage", publicMiddleware.SetRouteChain(handler.UpdateSharePercentage, adminSession.Verify)).Methods(http.MethodPut)
}

func (handler HTTPHandler) validate(ctx context.Context, payload interface{}) error {
	err := handler.Validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	errorFields := err.(validator.ValidationErrors)

	errMessages := make([]string, len(errorFields))

	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())
	}

	return fmt.Errorf(strings.Join(errMessages, ", "))
}

func (handler HTTPHandler) GetManyPhotographer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetManyPhotographerRequest{}
	req.Page, _ = strconv.ParseInt(qs.Get("page"), 10, 64)
	req.Size, _ = strconv.ParseInt(qs.Get("size"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.PhotographerUseCase.GetManyPhotographer(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "list of photographers",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetPhotographer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photographerID, _ := strconv.ParseInt(mux.Vars(r)["photographerID"], 10, 64)

	resp, err := handler.PhotographerUseCase.GetPhotographer(ctx, photographerID)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "photographer's detail",
		Data:    resp,
	})
}

func (handler HTTPHandler) UpdateSharePercentage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := UpdateSharePercentageRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	req.PhotographerID, _ = strconv.ParseInt(mux.Vars(r)["photographerID"], 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	if err := handler.PhotographerUseCase.UpdateSharePercentage(ctx, req); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "photographer's share percentage has been successfully updated",
	})
}
