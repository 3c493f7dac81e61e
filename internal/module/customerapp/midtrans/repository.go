package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/snapfield/sf-order/pkg/errors"
	"github.com/snapfield/sf-order/pkg/status"
)

type MidtransRepository interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error)
	GetTransactionStatus(ctx context.Context, orderID string) (TransactionStatusResponse, error)
}

type midtransRepository struct {
	baseURL      string
	basicAuthKey string
	logger       *logrus.Logger
	hc           *http.Client
}

func NewMidtransRepository(baseURL string, basicAuthKey string, logger *logrus.Logger, hc *http.Client) MidtransRepository {
	return &midtransRepository{
		baseURL:      baseURL,
		basicAuthKey: basicAuthKey,
		logger:       logger,
		hc:           hc,
	}
}

// Charge implements MidtransRepository.
func (r *midtransRepository) Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	reqBuff, _ := json.Marshal(req)
	body := bytes.NewBuffer(reqBuff)
	url := fmt.Sprintf("%s/v2/charge", r.baseURL)

	var resp ChargeResponse
	if err := r.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return ChargeResponse{}, err
	}

	return resp, nil
}

// GetTransactionStatus implements MidtransRepository. Used to reconcile an
// order against the gateway when a notification is in doubt.
func (r *midtransRepository) GetTransactionStatus(ctx context.Context, orderID string) (TransactionStatusResponse, error) {
	url := fmt.Sprintf("%s/v2/%s/status", r.baseURL, orderID)

	var resp TransactionStatusResponse
	if err := r.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return TransactionStatusResponse{}, err
	}

	return resp, nil
}

func (r *midtransRepository) do(ctx context.Context, method, url string, body io.Reader, out interface{}) error {
	hr, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while calling midtrans")
	}

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", fmt.Sprintf("Basic %s", r.basicAuthKey))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while calling midtrans")
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while calling midtrans")
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		err := fmt.Errorf("midtrans responded with status %d: %s", hresp.StatusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while calling midtrans")
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while decoding midtrans response")
	}

	return nil
}
