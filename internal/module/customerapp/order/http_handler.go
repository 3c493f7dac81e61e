package order

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
	Validate     *validator.Validate
	OrderUseCase OrderUseCase
}

func InitHTTPHandler(router *mux.Router, customerSession *internalMiddleware.CustomerSession, validate *validator.Validate, orderUseCase OrderUseCase) {
	handler := &HTTPHandler{
		Validate:     validate,
		OrderUseCase: orderUseCase,
	}

	router.HandleFunc("/sf-order/v1/customerapp/orders", publicMiddleware.SetRouteChain(handler.PlaceOrder, customerSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/customerapp/orders", publicMiddleware.SetRouteChain(handler.GetManyOrder, customerSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/orders/{orderID}", publicMiddleware.SetRouteChain(handler.GetOrder, customerSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/orders/{orderID}/download", publicMiddleware.SetRouteChain(handler.Download)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/customerapp/orders/on-payment-notification", publicMiddleware.SetRouteChain(handler.OnPaymentNotification)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/customerapp/orders/on-expire-download", publicMiddleware.SetRouteChain(handler.OnExpireDownload)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/customerapp/orders/on-abandon-sweep", publicMiddleware.SetRouteChain(handler.OnAbandonSweep)).Methods(http.MethodPost)
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

func (handler HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := PlaceOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.PlaceOrder(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "order has been successfully placed",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetManyOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetManyOrderRequest{}
	req.Page, _ = strconv.ParseInt(qs.Get("page"), 10, 64)
	req.Size, _ = strconv.ParseInt(qs.Get("size"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.GetManyOrder(ctx, req)
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
		Message: "list of orders",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := mux.Vars(r)["orderID"]

	resp, err := handler.OrderUseCase.GetOrder(ctx, orderID)
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
		Message: "order's detail",
		Data:    resp,
	})
}

func (handler HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := DownloadRequest{}
	req.OrderID = mux.Vars(r)["orderID"]
	req.Expires, _ = strconv.ParseInt(qs.Get("expires"), 10, 64)
	req.Signature = qs.Get("signature")

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.Download(ctx, req)
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
		Message: "order's downloadable files",
		Data:    resp,
	})
}

func (handler HTTPHandler) OnPaymentNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	e := PaymentNotificationEvent{}
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.OrderUseCase.OnPaymentNotification(ctx, e); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "order has been updated by payment notification",
	})
}

func (handler HTTPHandler) OnExpireDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	e := ExpireDownloadEvent{}
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.OrderUseCase.OnExpireDownload(ctx, e); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "order's download window has been expired",
	})
}

func (handler HTTPHandler) OnAbandonSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := handler.OrderUseCase.AbandonStalePending(ctx)
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
		Message: "stale pending orders have been abandoned",
		Data:    resp,
	})
}
