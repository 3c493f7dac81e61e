package gallery

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/snapfield/sf-order/pkg/errors"
	publicMiddleware "github.com/snapfield/sf-order/pkg/middleware"
	"github.com/snapfield/sf-order/pkg/response"
	"github.com/snapfield/sf-order/pkg/status"
)

type HTTPHandler struct {
	Validate       *validator.Validate
	GalleryUseCase GalleryUseCase
}

func InitHTTPHandler(router *mux.Router, validate *validator.Validate, galleryUseCase GalleryUseCase) {
	handler := &HTTPHandler{
		Validate:       validate,
		GalleryUseCase: galleryUseCase,
	}

	router.HandleFunc("/sf-order/v1/customerapp/galleries", publicMiddleware.SetRouteChain(handler.GetManyGallery)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/galleries/{galleryID}", publicMiddleware.SetRouteChain(handler.GetGallery)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/galleries/{galleryID}/photos", publicMiddleware.SetRouteChain(handler.GetManyPhoto)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/pricing/quote", publicMiddleware.SetRouteChain(handler.QuotePrice)).Methods(http.MethodGet)
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

func (handler HTTPHandler) GetManyGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetManyGalleryRequest{}
	req.Page, _ = strconv.ParseInt(qs.Get("page"), 10, 64)
	req.Size, _ = strconv.ParseInt(qs.Get("size"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.GalleryUseCase.GetManyGallery(ctx, req)
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
		Message: "list of galleries",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	galleryID := mux.Vars(r)["galleryID"]

	resp, err := handler.GalleryUseCase.GetGallery(ctx, galleryID)
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
		Message: "gallery's detail",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetManyPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	galleryID := mux.Vars(r)["galleryID"]

	resp, err := handler.GalleryUseCase.GetManyPhoto(ctx, galleryID)
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
		Message: "list of photos",
		Data:    resp,
	})
}

func (handler HTTPHandler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := QuotePriceRequest{}
	req.Quantity, _ = strconv.ParseInt(qs.Get("quantity"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.GalleryUseCase.QuotePrice(ctx, req)
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
		Message: "price quote",
		Data:    resp,
	})
}
