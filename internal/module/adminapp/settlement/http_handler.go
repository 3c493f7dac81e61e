package settlement

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
	Validate          *validator.Validate
	SettlementUseCase SettlementUseCase
}

func InitHTTPHandler(router *mux.Router, adminSession *internalMiddleware.AdminSession, validate *validator.Validate, settlementUseCase SettlementUseCase) {
	handler := &HTTPHandler{
		Validate:          validate,
		SettlementUseCase: settlementUseCase,
	}

	router.HandleFunc("/sf-order/v1/adminapp/earnings/pending", publicMiddleware.SetRouteChain(handler.GetPendingEarnings, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/adminapp/settlements/preview", publicMiddleware.SetRouteChain(handler.PreviewSettlement, adminSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/adminapp/settlements", publicMiddleware.SetRouteChain(handler.CommitSettlement, adminSession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/sf-order/v1/adminapp/settlements", publicMiddleware.SetRouteChain(handler.GetManySettlement, adminSession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/sf-order/v1/adminapp/settlements/{settlementID}", publicMiddleware.SetRouteChain(handler.GetSettlement, adminSession.Verify)).Methods(http.MethodGet)
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

func (handler HTTPHandler) GetPendingEarnings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetPendingEarningsRequest{
		RecipientType: qs.Get("recipient_type"),
		PeriodStart:   qs.Get("period_start"),
		PeriodEnd:     qs.Get("period_end"),
	}

	if raw := qs.Get("photographer_id"); raw != "" {
		photographerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
				Status:  status.BAD_REQUEST,
				Message: fmt.Sprintf("invalid 'photographer_id' with value '%s'", raw),
			})

			return
		}

		req.PhotographerID = &photographerID
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.SettlementUseCase.GetPendingEarnings(ctx, req)
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
		Message: "pending earnings",
		Data:    resp,
	})
}

func (handler HTTPHandler) PreviewSettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := PreviewSettlementRequest{}
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

	resp, err := handler.SettlementUseCase.PreviewSettlement(ctx, req)
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
		Message: "settlement preview",
		Data:    resp,
	})
}

func (handler HTTPHandler) CommitSettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := CommitSettlementRequest{}
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

	resp, err := handler.SettlementUseCase.CommitSettlement(ctx, req)
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
		Message: "settlement has been successfully created",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetManySettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetManySettlementRequest{}
	req.Page, _ = strconv.ParseInt(qs.Get("page"), 10, 64)
	req.Size, _ = strconv.ParseInt(qs.Get("size"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	settlements, count, err := handler.SettlementUseCase.GetManySettlement(ctx, req)
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
		Message: "list of settlements",
		Data:    settlements,
		Meta: map[string]interface{}{
			"page":  req.Page,
			"size":  req.Size,
			"total": count,
		},
	})
}

func (handler HTTPHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settlementID := mux.Vars(r)["settlementID"]

	resp, err := handler.SettlementUseCase.GetSettlement(ctx, settlementID)
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
		Message: "settlement's detail",
		Data:    resp,
	})
}
