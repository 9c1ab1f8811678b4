package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/finance_tracker/internal/apperrors"
	"github.com/SscSPs/finance_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/finance_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/finance_tracker/internal/core/ports/services"
	"github.com/SscSPs/finance_tracker/internal/dto"
	"github.com/SscSPs/finance_tracker/internal/handlers"
	"github.com/SscSPs/finance_tracker/internal/middleware"
	"github.com/SscSPs/finance_tracker/internal/platform/config"
	"github.com/SscSPs/finance_tracker/internal/platform/observability"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}
func (m *MockTransactionService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}
func (m *MockTransactionService) CreateTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}
func (m *MockTransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req dto.UpdateTransactionRequest) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, userID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}
func (m *MockTransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	args := m.Called(ctx, userID, transactionID)
	return args.Error(0)
}
func (m *MockTransactionService) RestoreTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, userID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}
func (m *MockTransactionService) CreateInUnit(ctx context.Context, repos portsrepo.RepositoryProvider, userID string, txn domain.Transaction) (*domain.TransactionDetails, error) {
	args := m.Called(ctx, repos, userID, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionDetails), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock GroupTransactionService ---
type MockGroupTransactionService struct {
	mock.Mock
}

func (m *MockGroupTransactionService) CreateGroupTransaction(ctx context.Context, userID, groupID string, req dto.CreateGroupTransactionRequest) (*domain.GroupTransaction, error) {
	args := m.Called(ctx, userID, groupID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupTransaction), args.Error(1)
}
func (m *MockGroupTransactionService) UpdateGroupTransaction(ctx context.Context, userID, groupID, transactionID string, req dto.UpdateGroupTransactionRequest) (*domain.GroupTransaction, error) {
	args := m.Called(ctx, userID, groupID, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupTransaction), args.Error(1)
}
func (m *MockGroupTransactionService) DeleteGroupTransaction(ctx context.Context, userID, groupID, transactionID string) error {
	args := m.Called(ctx, userID, groupID, transactionID)
	return args.Error(0)
}
func (m *MockGroupTransactionService) ListGroupTransactions(ctx context.Context, userID, groupID string, params dto.ListGroupTransactionsParams) ([]domain.GroupTransaction, error) {
	args := m.Called(ctx, userID, groupID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GroupTransaction), args.Error(1)
}
func (m *MockGroupTransactionService) DisableGroupWallet(ctx context.Context, userID, groupID, walletID string) error {
	args := m.Called(ctx, userID, groupID, walletID)
	return args.Error(0)
}

var _ portssvc.GroupTransactionSvcFacade = (*MockGroupTransactionService)(nil)

// --- Mock SavingGoalService ---
type MockSavingGoalService struct {
	mock.Mock
}

func (m *MockSavingGoalService) Deposit(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error) {
	args := m.Called(ctx, userID, goalID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoalMovement), args.Error(1)
}
func (m *MockSavingGoalService) Withdraw(ctx context.Context, userID, goalID string, req dto.GoalMovementRequest) (*domain.GoalMovement, error) {
	args := m.Called(ctx, userID, goalID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GoalMovement), args.Error(1)
}
func (m *MockSavingGoalService) GetGoal(ctx context.Context, userID, goalID string) (*domain.SavingGoal, error) {
	args := m.Called(ctx, userID, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavingGoal), args.Error(1)
}

var _ portssvc.SavingGoalSvcFacade = (*MockSavingGoalService)(nil)

// --- Mock RecurringBillService ---
type MockRecurringBillService struct {
	mock.Mock
}

func (m *MockRecurringBillService) Pay(ctx context.Context, userID, billID string) (*domain.BillPayment, error) {
	args := m.Called(ctx, userID, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillPayment), args.Error(1)
}
func (m *MockRecurringBillService) PayDueBills(ctx context.Context, now time.Time) (*domain.BillRunSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillRunSummary), args.Error(1)
}

var _ portssvc.RecurringBillSvcFacade = (*MockRecurringBillService)(nil)

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletService) ListWallets(ctx context.Context, userID string) (*domain.WalletSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}
func (m *MockWalletService) SetDefaultWallet(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}
func (m *MockWalletService) RecalculateBalance(ctx context.Context, userID, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Test Suite ---
type HandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	jwtSecret   string
	userID      string
	transaction *MockTransactionService
	group       *MockGroupTransactionService
	goal        *MockSavingGoalService
	bill        *MockRecurringBillService
	wallet      *MockWalletService
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// generateTestToken creates a signed JWT for userID.
func (s *HandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "ft-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.userID = uuid.NewString()

	s.transaction = new(MockTransactionService)
	s.group = new(MockGroupTransactionService)
	s.goal = new(MockSavingGoalService)
	s.bill = new(MockRecurringBillService)
	s.wallet = new(MockWalletService)

	v1 := s.router.Group("/api/v1", middleware.AuthMiddleware(s.jwtSecret))
	handlers.RegisterTransactionRoutes(v1, s.transaction)
	handlers.RegisterGroupRoutes(v1, s.group)
	handlers.RegisterSavingGoalRoutes(v1, s.goal)
	handlers.RegisterRecurringBillRoutes(v1, s.bill)
	handlers.RegisterWalletRoutes(v1, s.wallet)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.transaction.AssertExpectations(s.T())
	s.group.AssertExpectations(s.T())
	s.goal.AssertExpectations(s.T())
	s.bill.AssertExpectations(s.T())
	s.wallet.AssertExpectations(s.T())
}

// do serves an authenticated request and decodes the Result envelope.
func (s *HandlerTestSuite) do(method, url string, body any) (*httptest.ResponseRecorder, dto.Result) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+s.generateTestToken(s.userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var result dto.Result
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	}
	return w, result
}

// --- Test Cases ---

func (s *HandlerTestSuite) TestCreateTransaction_Success() {
	now := time.Now().UTC()
	details := &domain.TransactionDetails{
		Transaction: domain.Transaction{
			TransactionID: "txn-1",
			UserID:        s.userID,
			WalletID:      "wallet-1",
			Amount:        decimal.RequireFromString("12.5"),
			Type:          domain.Expense,
			Date:          now,
		},
		Wallet: &domain.Wallet{WalletID: "wallet-1", Name: "Cash", Balance: decimal.NewFromInt(88)},
	}

	s.transaction.On("CreateTransaction", mock.Anything, s.userID,
		mock.MatchedBy(func(req dto.CreateTransactionRequest) bool {
			return req.WalletID == "wallet-1" && req.Type == domain.Expense && req.Amount.Equal(decimal.RequireFromString("12.5"))
		}),
	).Return(details, nil).Once()

	w, result := s.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"walletID": "wallet-1",
		"amount":   "12.50",
		"type":     "expense",
	})

	s.Equal(http.StatusCreated, w.Code)
	s.True(result.Success)
	data := result.Data.(map[string]any)
	s.Equal("txn-1", data["transactionID"])
	s.Equal("Cash", data["wallet"].(map[string]any)["name"])
}

func (s *HandlerTestSuite) TestCreateTransaction_UnknownTypeRejectedBeforeService() {
	w, result := s.do(http.MethodPost, "/api/v1/transactions", map[string]any{
		"walletID": "wallet-1",
		"amount":   "10",
		"type":     "gift",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	s.False(result.Success)
	s.Equal(apperrors.KindValidation, result.ErrorKind)
	s.transaction.AssertNotCalled(s.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestCreateTransaction_ErrorKinds() {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   apperrors.Kind
	}{
		{"type mismatch", fmt.Errorf("%w: income category on expense", apperrors.ErrTypeMismatch), http.StatusUnprocessableEntity, apperrors.KindTypeMismatch},
		{"invalid transfer", apperrors.ErrInvalidTransfer, http.StatusBadRequest, apperrors.KindValidation},
		{"wallet missing", apperrors.ErrWalletNotFound, http.StatusNotFound, apperrors.KindNotFound},
		{"consistency", apperrors.NewConsistencyError("unit aborted", errors.New("connection reset")), http.StatusServiceUnavailable, apperrors.KindConsistency},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, apperrors.KindInternal},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.transaction.On("CreateTransaction", mock.Anything, s.userID, mock.Anything).Return(nil, tt.err).Once()

			w, result := s.do(http.MethodPost, "/api/v1/transactions", map[string]any{
				"walletID": "wallet-1",
				"amount":   "10",
				"type":     "expense",
			})

			s.Equal(tt.wantStatus, w.Code)
			s.False(result.Success)
			s.Equal(tt.wantKind, result.ErrorKind)
		})
	}
}

func (s *HandlerTestSuite) TestInternalErrorDoesNotLeakCause() {
	s.transaction.On("DeleteTransaction", mock.Anything, s.userID, "txn-1").Return(errors.New("pq: relation does not exist")).Once()

	w, result := s.do(http.MethodDelete, "/api/v1/transactions/txn-1", nil)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(result.Message, "relation")
}

func (s *HandlerTestSuite) TestConsistencyFailureDoesNotLeakCause() {
	cause := errors.New("wallet.ApplyDeltas: pq: could not serialize access")
	s.transaction.On("DeleteTransaction", mock.Anything, s.userID, "txn-1").
		Return(apperrors.NewConsistencyError("unit aborted", cause)).Once()

	w, result := s.do(http.MethodDelete, "/api/v1/transactions/txn-1", nil)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(apperrors.KindConsistency, result.ErrorKind)
	s.Equal("unit aborted", result.Message)
	s.NotContains(result.Message, "ApplyDeltas")
}

func (s *HandlerTestSuite) TestDeleteTransaction_NoContent() {
	s.transaction.On("DeleteTransaction", mock.Anything, s.userID, "txn-1").Return(nil).Once()

	w, _ := s.do(http.MethodDelete, "/api/v1/transactions/txn-1", nil)

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *HandlerTestSuite) TestRestoreTransaction_NotDeleted() {
	s.transaction.On("RestoreTransaction", mock.Anything, s.userID, "txn-1").Return(nil, apperrors.ErrNotDeleted).Once()

	w, result := s.do(http.MethodPatch, "/api/v1/transactions/txn-1/restore", nil)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.KindConflict, result.ErrorKind)
}

func (s *HandlerTestSuite) TestListTransactions_BindsQuery() {
	next := "abc"
	s.transaction.On("ListTransactions", mock.Anything, s.userID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 2 && p.Type != nil && *p.Type == "expense" &&
				p.From != nil && p.From.Format("2006-01-02") == "2025-03-01"
		}),
	).Return(&dto.ListTransactionsResponse{Transactions: []dto.TransactionResponse{}, NextToken: &next}, nil).Once()

	w, result := s.do(http.MethodGet, "/api/v1/transactions?limit=2&type=expense&from=2025-03-01", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("abc", result.Data.(map[string]any)["nextToken"])
}

func (s *HandlerTestSuite) TestListTransactions_LimitOutOfRange() {
	w, result := s.do(http.MethodGet, "/api/v1/transactions?limit=1000", nil)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(apperrors.KindValidation, result.ErrorKind)
}

func (s *HandlerTestSuite) TestMissingTokenIsUnauthorized() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.wallet.AssertNotCalled(s.T(), "ListWallets", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestDisableGroupWallet_Forbidden() {
	s.group.On("DisableGroupWallet", mock.Anything, s.userID, "group-1", "gw-1").
		Return(fmt.Errorf("%w: requires ADMIN", apperrors.ErrForbidden)).Once()

	w, result := s.do(http.MethodPatch, "/api/v1/groups/group-1/wallets/gw-1/disable", nil)

	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(apperrors.KindForbidden, result.ErrorKind)
}

func (s *HandlerTestSuite) TestCreateGroupTransaction_PassesSplits() {
	walletID := "gw-1"
	s.group.On("CreateGroupTransaction", mock.Anything, s.userID, "group-1",
		mock.MatchedBy(func(req dto.CreateGroupTransactionRequest) bool {
			return len(req.Splits) == 2 && req.PaidBy == "member-a" && *req.WalletID == walletID
		}),
	).Return(&domain.GroupTransaction{TransactionID: "gtxn-1", GroupID: "group-1"}, nil).Once()

	w, result := s.do(http.MethodPost, "/api/v1/groups/group-1/transactions", map[string]any{
		"walletID": walletID,
		"amount":   "100",
		"type":     "expense",
		"paidBy":   "member-a",
		"splits": []map[string]any{
			{"userID": "member-a", "amount": "60"},
			{"userID": "member-b", "amount": "40"},
		},
	})

	s.Equal(http.StatusCreated, w.Code)
	s.Equal("gtxn-1", result.Data.(map[string]any)["transactionID"])
}

func (s *HandlerTestSuite) TestWithdraw_InsufficientGoalBalance() {
	s.goal.On("Withdraw", mock.Anything, s.userID, "goal-1", mock.Anything).
		Return(nil, apperrors.ErrInsufficientGoalBalance).Once()

	w, result := s.do(http.MethodPost, "/api/v1/saving-goals/goal-1/withdraw", map[string]any{"amount": "500"})

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.KindConflict, result.ErrorKind)
}

func (s *HandlerTestSuite) TestDeposit_Success() {
	movement := &domain.GoalMovement{
		Goal:        domain.SavingGoal{GoalID: "goal-1", CurrentAmount: decimal.NewFromInt(300)},
		Transaction: domain.Transaction{TransactionID: "txn-9", Type: domain.Expense},
	}
	s.goal.On("Deposit", mock.Anything, s.userID, "goal-1",
		mock.MatchedBy(func(req dto.GoalMovementRequest) bool { return req.Amount.Equal(decimal.NewFromInt(200)) }),
	).Return(movement, nil).Once()

	w, result := s.do(http.MethodPost, "/api/v1/saving-goals/goal-1/deposit", map[string]any{"amount": 200})

	s.Equal(http.StatusCreated, w.Code)
	s.True(result.Success)
}

func (s *HandlerTestSuite) TestPayBill_AlreadyPaid() {
	s.bill.On("Pay", mock.Anything, s.userID, "bill-1").Return(nil, apperrors.ErrAlreadyPaidThisPeriod).Once()

	w, result := s.do(http.MethodPost, "/api/v1/recurring-bills/bill-1/pay", nil)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal(apperrors.KindConflict, result.ErrorKind)
	s.Contains(result.Message, "already paid")
}

func (s *HandlerTestSuite) TestListWallets() {
	s.wallet.On("ListWallets", mock.Anything, s.userID).Return(&domain.WalletSummary{
		Wallets:      []domain.Wallet{{WalletID: "w1", Balance: decimal.NewFromInt(10)}},
		TotalBalance: decimal.NewFromInt(10),
	}, nil).Once()

	w, result := s.do(http.MethodGet, "/api/v1/wallets", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("10", result.Data.(map[string]any)["totalBalance"])
}

func (s *HandlerTestSuite) TestSetDefaultWallet_Archived() {
	s.wallet.On("SetDefaultWallet", mock.Anything, s.userID, "w1").
		Return(nil, apperrors.NewConflictError("archived wallet cannot be the default")).Once()

	w, result := s.do(http.MethodPut, "/api/v1/wallets/w1/default", nil)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("archived wallet cannot be the default", result.Message)
}

func TestRegisterRoutes_PublicEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := &config.Config{JWTSecret: "secret", IsProduction: true}
	handlers.RegisterRoutes(r, cfg, &portssvc.ServiceContainer{}, observability.NewMetrics(), nil)

	for _, path := range []string{"/health", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: got %d", path, w.Code)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be disabled in production, got %d", w.Code)
	}
}
