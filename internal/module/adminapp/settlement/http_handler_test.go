package settlement

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapfield/sf-order/pkg/validator"
)

type stubSettlementUseCase struct {
	pendingCalls int
}

func (s *stubSettlementUseCase) GetPendingEarnings(ctx context.Context, req GetPendingEarningsRequest) (GetPendingEarningsResponse, error) {
	s.pendingCalls++
	return GetPendingEarningsResponse{}, nil
}

func (s *stubSettlementUseCase) PreviewSettlement(ctx context.Context, req PreviewSettlementRequest) (PreviewSettlementResponse, error) {
	return PreviewSettlementResponse{}, nil
}

func (s *stubSettlementUseCase) CommitSettlement(ctx context.Context, req CommitSettlementRequest) (CommitSettlementResponse, error) {
	return CommitSettlementResponse{}, nil
}

func (s *stubSettlementUseCase) GetManySettlement(ctx context.Context, req GetManySettlementRequest) ([]Settlement, int64, error) {
	return nil, 0, nil
}

func (s *stubSettlementUseCase) GetSettlement(ctx context.Context, ID string) (Settlement, error) {
	return Settlement{}, nil
}

func TestGetPendingEarningsRejectsNonNumericPhotographerID(t *testing.T) {
	uc := &stubSettlementUseCase{}
	handler := HTTPHandler{
		Validate:          validator.Get(),
		SettlementUseCase: uc,
	}

	r := httptest.NewRequest(http.MethodGet, "/sf-order/v1/adminapp/earnings/pending?recipient_type=PHOTOGRAPHER&period_start=2026-01-15&period_end=2026-01-19&photographer_id=abc", nil)
	w := httptest.NewRecorder()

	handler.GetPendingEarnings(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "photographer_id")
	require.Equal(t, 0, uc.pendingCalls)
}

func TestGetPendingEarningsAcceptsNumericPhotographerID(t *testing.T) {
	uc := &stubSettlementUseCase{}
	handler := HTTPHandler{
		Validate:          validator.Get(),
		SettlementUseCase: uc,
	}

	r := httptest.NewRequest(http.MethodGet, "/sf-order/v1/adminapp/earnings/pending?recipient_type=PHOTOGRAPHER&period_start=2026-01-15&period_end=2026-01-19&photographer_id=11", nil)
	w := httptest.NewRecorder()

	handler.GetPendingEarnings(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, uc.pendingCalls)
}
