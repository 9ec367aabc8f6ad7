package services

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"order-service/database"
	"order-service/models"
	"order-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrGatewayUnavailable means the gateway could not be reached at all.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentInitiationError means the gateway answered but rejected the
// initiation request.
type PaymentInitiationError struct {
	Reason string
}

func (e *PaymentInitiationError) Error() string {
	return "payment initiation rejected: " + e.Reason
}

// GatewayConfig holds the Easebuzz merchant credentials and endpoints.
type GatewayConfig struct {
	Key         string
	Salt        string
	BaseURL     string
	CallbackURL string
	FrontendURL string
}

// PaymentInitiation is handed back to the client so it can redirect the
// shopper to the hosted payment page.
type PaymentInitiation struct {
	TempOrderNumber string  `json:"tempOrderNumber"`
	PaymentURL      string  `json:"paymentUrl"`
	Amount          float64 `json:"amount"`
}

// CallbackParams are the form fields the gateway posts back after payment.
type CallbackParams struct {
	Status      string
	TxnID       string
	Amount      string
	ProductInfo string
	Firstname   string
	Email       string
	Phone       string
	Mode        string
	EasepayID   string
	Hash        string
	UDF         [10]string
}

// PaymentService drives the hosted-checkout flow: it freezes a pending
// checkout at initiation time and later materializes or releases it when
// the signed gateway callback arrives. The callback is the single source
// of truth; the gateway echo is cross-checked, never trusted.
type PaymentService struct {
	store         repository.Store
	reservations  *ReservationService
	notifications *NotificationService
	events        *EventEmitter
	guard         *database.CallbackGuard
	cfg           GatewayConfig
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewPaymentService(
	store repository.Store,
	reservations *ReservationService,
	notifications *NotificationService,
	events *EventEmitter,
	guard *database.CallbackGuard,
	cfg GatewayConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		store:         store,
		reservations:  reservations,
		notifications: notifications,
		events:        events,
		guard:         guard,
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}
}

// SetHTTPClient swaps the gateway HTTP client, used by tests.
func (s *PaymentService) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Initiate runs inside the checkout transaction: it persists the pending
// checkout snapshot and asks the gateway for a hosted payment link. Any
// failure rolls the whole checkout back, reservation included.
func (s *PaymentService) Initiate(
	ctx context.Context,
	tx repository.Store,
	identity models.UserIdentity,
	req *models.CreateOrderRequest,
	lines []models.CheckoutLine,
	totals Totals,
) (*PaymentInitiation, error) {
	tempOrderNumber := fmt.Sprintf("%s%d-%04d", models.TempOrderPrefix, time.Now().UnixMilli(), randomInt(10000))

	checkout := &models.PendingCheckout{
		TempOrderNumber: tempOrderNumber,
		UserID:          identity.UserID,
		Items:           lines,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		ShippingFee:     totals.ShippingFee,
		TotalAmount:     totals.TotalAmount,
		ShippingAddress: req.ShippingAddress,
		CustomerName:    identity.Name,
		CustomerEmail:   identity.Email,
		Notes:           req.Notes,
		CouponCode:      req.CouponCode,
		Status:          models.PendingCheckoutInitiated,
	}
	if err := tx.PendingCheckouts().Create(ctx, checkout); err != nil {
		return nil, err
	}

	addressJSON, err := json.Marshal(req.ShippingAddress)
	if err != nil {
		return nil, err
	}

	amount := fmt.Sprintf("%.2f", totals.TotalAmount)
	productInfo := fmt.Sprintf("Order of %d item(s)", len(lines))
	udf1 := identity.UserID.String()
	udf2 := base64.StdEncoding.EncodeToString(addressJSON)

	form := url.Values{}
	form.Set("key", s.cfg.Key)
	form.Set("txnid", tempOrderNumber)
	form.Set("amount", amount)
	form.Set("productinfo", productInfo)
	form.Set("firstname", identity.Name)
	form.Set("email", identity.Email)
	form.Set("phone", identity.Phone)
	form.Set("surl", s.cfg.CallbackURL)
	form.Set("furl", s.cfg.CallbackURL)
	form.Set("udf1", udf1)
	form.Set("udf2", udf2)
	form.Set("hash", s.forwardHash(tempOrderNumber, amount, productInfo, identity.Name, identity.Email, udf1, udf2))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(s.cfg.BaseURL, "/")+"/payment/initiateLink",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("gateway unreachable", zap.String("txnid", tempOrderNumber), zap.Error(err))
		return nil, ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	var gatewayResp struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gatewayResp); err != nil {
		return nil, &PaymentInitiationError{Reason: "malformed gateway response"}
	}
	if gatewayResp.Status != 1 {
		reason := strings.Trim(string(gatewayResp.Data), `"`)
		if reason == "" {
			reason = "gateway declined the request"
		}
		s.logger.Warn("gateway declined initiation",
			zap.String("txnid", tempOrderNumber),
			zap.String("reason", reason))
		return nil, &PaymentInitiationError{Reason: reason}
	}

	var token string
	if err := json.Unmarshal(gatewayResp.Data, &token); err != nil || token == "" {
		return nil, &PaymentInitiationError{Reason: "gateway returned no access token"}
	}

	s.logger.Info("payment initiated",
		zap.String("txnid", tempOrderNumber),
		zap.String("amount", amount))

	return &PaymentInitiation{
		TempOrderNumber: tempOrderNumber,
		PaymentURL:      strings.TrimRight(s.cfg.BaseURL, "/") + "/pay/" + token,
		Amount:          totals.TotalAmount,
	}, nil
}

// errTamperedCallback aborts the consume transaction so the checkout stays
// in its prior state.
var errTamperedCallback = errors.New("callback parameters do not match checkout")

// HandleCallback verifies the gateway's signed result and settles the
// pending checkout exactly once. It always returns a frontend redirect URL;
// the gateway follows redirects on behalf of the shopper.
func (s *PaymentService) HandleCallback(ctx context.Context, params CallbackParams) string {
	if params.TxnID == "" || params.Status == "" || params.Hash == "" {
		return s.failRedirect("Invalid payment callback")
	}
	if !s.verifyCallbackHash(params) {
		s.logger.Warn("callback hash mismatch", zap.String("txnid", params.TxnID))
		return s.failRedirect("Payment verification failed")
	}

	success := params.Status == "success"

	if s.guard.Seen(ctx, params.TxnID) {
		return s.replayRedirect(ctx, params.TxnID)
	}

	var order *models.Order
	var checkout *models.PendingCheckout
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		toStatus := models.PendingCheckoutFailed
		if success {
			toStatus = models.PendingCheckoutCompleted
		}
		var err error
		checkout, err = tx.PendingCheckouts().Consume(ctx, params.TxnID, toStatus)
		if err != nil {
			return err
		}

		if params.UDF[0] != checkout.UserID.String() {
			return errTamperedCallback
		}
		if amount, err := strconv.ParseFloat(params.Amount, 64); err != nil || math.Abs(amount-checkout.TotalAmount) > 0.009 {
			return errTamperedCallback
		}

		if !success {
			return s.reservations.Restore(ctx, tx, checkout.Items)
		}

		transactionID := params.EasepayID
		if transactionID == "" {
			transactionID = params.TxnID
		}
		order, err = Materialize(ctx, tx, MaterializeParams{
			UserID: checkout.UserID,
			Lines:  checkout.Items,
			Totals: Totals{
				Subtotal:    checkout.Subtotal,
				TaxAmount:   checkout.TaxAmount,
				ShippingFee: checkout.ShippingFee,
				TotalAmount: checkout.TotalAmount,
			},
			ShippingAddress: checkout.ShippingAddress,
			PaymentMethod:   models.PaymentMethodOnline,
			PaymentStatus:   models.PaymentStatusPaid,
			PaymentDetails: &models.PaymentDetails{
				Gateway:       "Easebuzz",
				TransactionID: transactionID,
				PaymentMode:   params.Mode,
			},
			CouponUsed:    couponFromCode(checkout.CouponCode),
			Notes:         checkout.Notes,
			CustomerName:  checkout.CustomerName,
			CustomerEmail: checkout.CustomerEmail,
		})
		if err != nil {
			return err
		}
		if err := tx.PendingCheckouts().LinkOrder(ctx, params.TxnID, order.ID); err != nil {
			return err
		}
		return s.clearCart(ctx, tx, checkout.UserID)
	})

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			// already consumed by an earlier delivery of this callback
			return s.replayRedirect(ctx, params.TxnID)
		case errors.Is(err, errTamperedCallback):
			s.logger.Warn("tampered callback rejected", zap.String("txnid", params.TxnID))
			return s.failRedirect("Payment verification failed")
		default:
			s.logger.Error("callback processing failed", zap.String("txnid", params.TxnID), zap.Error(err))
			return s.failRedirect("Something went wrong processing your payment")
		}
	}

	s.guard.Mark(ctx, params.TxnID)

	if success {
		s.events.Emit(ctx, orderEvent(models.EventOrderCreated, order))
		s.notifications.OrderConfirmed(ctx, order)
		return s.successRedirect(order.ID.String())
	}

	s.events.Emit(ctx, models.OrderEvent{
		Type:    models.EventPaymentFailed,
		OrderID: params.TxnID,
		UserID:  checkout.UserID.String(),
		Amount:  checkout.TotalAmount,
	})
	s.notifications.PaymentFailed(ctx, checkout.CustomerEmail, checkout.CustomerName, params.TxnID)
	return s.failRedirect("Payment failed")
}

func (s *PaymentService) clearCart(ctx context.Context, tx repository.Store, userID uuid.UUID) error {
	cart, err := tx.Carts().FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	return tx.Carts().ClearItems(ctx, cart.ID)
}

// replayRedirect answers a duplicate callback from the stored outcome
// without mutating anything.
func (s *PaymentService) replayRedirect(ctx context.Context, tempOrderNumber string) string {
	checkout, err := s.store.PendingCheckouts().FindByTempOrderNumber(ctx, tempOrderNumber)
	if err != nil {
		return s.failRedirect("Unknown transaction")
	}
	if checkout.Status == models.PendingCheckoutCompleted && checkout.OrderID != nil {
		return s.successRedirect(checkout.OrderID.String())
	}
	return s.failRedirect("Payment failed")
}

// forwardHash signs the initiation request:
// key|txnid|amount|productinfo|firstname|email|udf1..udf10|salt
func (s *PaymentService) forwardHash(txnid, amount, productInfo, firstname, email, udf1, udf2 string) string {
	fields := []string{
		s.cfg.Key, txnid, amount, productInfo, firstname, email,
		udf1, udf2, "", "", "", "", "", "", "", "",
		s.cfg.Salt,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// verifyCallbackHash checks the reversed signature:
// salt|status|udf10..udf1|email|firstname|productinfo|amount|txnid|key
func (s *PaymentService) verifyCallbackHash(params CallbackParams) bool {
	fields := make([]string, 0, 17)
	fields = append(fields, s.cfg.Salt, params.Status)
	for i := 9; i >= 0; i-- {
		fields = append(fields, params.UDF[i])
	}
	fields = append(fields, params.Email, params.Firstname, params.ProductInfo, params.Amount, params.TxnID, s.cfg.Key)
	expected := sha512Hex(strings.Join(fields, "|"))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(params.Hash))) == 1
}

func (s *PaymentService) successRedirect(orderID string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/order-success?orderId=" + url.QueryEscape(orderID)
}

func (s *PaymentService) failRedirect(message string) string {
	return strings.TrimRight(s.cfg.FrontendURL, "/") + "/order-failed?message=" + url.QueryEscape(message)
}

func sha512Hex(input string) string {
	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:])
}

// couponDiscount is the recorded flat discount; the promotion system owns
// the real calculation and reconciles it downstream.
const couponDiscount = 10.0

func couponFromCode(code string) *models.CouponUsed {
	if code == "" {
		return nil
	}
	return &models.CouponUsed{Code: code, Discount: couponDiscount}
}
