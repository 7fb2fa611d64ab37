package pos

import (
	"context"
	"testing"

	"github.com/erp/accounting/internal/domain/pos"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashSessionService_OneOpenSessionPerCompany(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	_, err := f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New()})
	require.NoError(t, err)

	_, err = f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, "SESSION_ALREADY_OPEN", codeOf(t, err))

	// another company is unaffected
	_, err = f.sessions.Open(ctx, uuid.New(), OpenSessionRequest{CashierID: uuid.New()})
	require.NoError(t, err)
}

func TestCashSessionService_CloseClassifiesVariance(t *testing.T) {
	tests := []struct {
		name     string
		closing  string
		variance pos.VarianceClass
		diff     string
	}{
		{"balanced", "125000", pos.VarianceBalanced, "0"},
		{"short within tolerance", "124960", pos.VarianceMinor, "-40"},
		{"over beyond tolerance", "125100", pos.VarianceMajor, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPOSFixture(t)
			obs := &varianceRecorder{}
			f.sessions.SetObserver(obs)
			ctx := context.Background()

			session, err := f.sessions.Open(ctx, f.companyID, OpenSessionRequest{
				CashierID:      uuid.New(),
				OpeningBalance: decimal.NewFromInt(100000),
			})
			require.NoError(t, err)

			_, err = f.sales.PostPOSSale(ctx, f.companyID,
				f.saleRequest(1, TenderInput{PaymentMethodID: f.cash, Amount: decimal.NewFromInt(50000)}))
			require.NoError(t, err)

			_, err = f.sessions.RecordMovement(ctx, f.companyID, session.ID, RecordMovementRequest{
				Type:   string(pos.MovementManualIn),
				Amount: decimal.NewFromInt(10000),
				Note:   "float top-up",
			})
			require.NoError(t, err)
			_, err = f.sessions.RecordMovement(ctx, f.companyID, session.ID, RecordMovementRequest{
				Type:   string(pos.MovementManualOut),
				Amount: decimal.NewFromInt(10000),
				Note:   "petty cash",
			})
			require.NoError(t, err)

			closed, err := f.sessions.CloseCashSession(ctx, f.companyID, session.ID, CloseSessionRequest{
				ClosingBalance: decimal.RequireFromString(tt.closing),
			})
			require.NoError(t, err)

			assert.Equal(t, string(pos.SessionClosed), closed.Status)
			assert.Equal(t, "125000", closed.ExpectedBalance.String())
			require.NotNil(t, closed.Difference)
			assert.Equal(t, tt.diff, closed.Difference.String())
			assert.Equal(t, string(tt.variance), closed.Variance)

			require.Len(t, obs.classes, 1)
			assert.Equal(t, tt.variance, obs.classes[0])
			assert.Equal(t, tt.diff, obs.differences[0].String())
		})
	}
}

func TestCashSessionService_ClosedSessionRejectsMovements(t *testing.T) {
	f := newPOSFixture(t)
	ctx := context.Background()

	session, err := f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New()})
	require.NoError(t, err)
	_, err = f.sessions.CloseCashSession(ctx, f.companyID, session.ID, CloseSessionRequest{ClosingBalance: decimal.Zero})
	require.NoError(t, err)

	_, err = f.sessions.RecordMovement(ctx, f.companyID, session.ID, RecordMovementRequest{
		Type:   string(pos.MovementManualIn),
		Amount: decimal.NewFromInt(1),
		Note:   "late",
	})
	require.Error(t, err)
	assert.Equal(t, "SESSION_CLOSED", codeOf(t, err))

	_, err = f.sessions.CloseCashSession(ctx, f.companyID, session.ID, CloseSessionRequest{ClosingBalance: decimal.Zero})
	assert.Error(t, err)

	// a closed session frees the company for a new one
	_, err = f.sessions.Open(ctx, f.companyID, OpenSessionRequest{CashierID: uuid.New()})
	require.NoError(t, err)
}

func TestCashSessionService_RecordMovementRejectsSaleType(t *testing.T) {
	f := newPOSFixture(t)

	_, err := f.sessions.RecordMovement(context.Background(), f.companyID, uuid.New(), RecordMovementRequest{
		Type:   string(pos.MovementSale),
		Amount: decimal.NewFromInt(1),
		Note:   "sneaky",
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", codeOf(t, err))
}
