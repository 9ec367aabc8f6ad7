package services

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newHashService() *PaymentService {
	cfg := GatewayConfig{Key: "merchant-key", Salt: "merchant-salt"}
	return NewPaymentService(nil, nil, nil, nil, nil, cfg, zap.NewNop())
}

func TestForwardHash_FieldOrder(t *testing.T) {
	s := newHashService()

	got := s.forwardHash("TEMP-1-0001", "93.00", "Order of 1 item(s)", "Asha", "asha@example.com", "user-1", "addr-b64")

	raw := "merchant-key|TEMP-1-0001|93.00|Order of 1 item(s)|Asha|asha@example.com|user-1|addr-b64||||||||" + "|merchant-salt"
	sum := sha512.Sum512([]byte(raw))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestVerifyCallbackHash_ReversedFieldOrder(t *testing.T) {
	s := newHashService()

	params := CallbackParams{
		Status:      "success",
		TxnID:       "TEMP-1-0001",
		Amount:      "93.00",
		ProductInfo: "Order of 1 item(s)",
		Firstname:   "Asha",
		Email:       "asha@example.com",
	}
	params.UDF[0] = "user-1"
	params.UDF[1] = "addr-b64"

	raw := "merchant-salt|success|||||||||addr-b64|user-1|asha@example.com|Asha|Order of 1 item(s)|93.00|TEMP-1-0001|merchant-key"
	sum := sha512.Sum512([]byte(raw))
	params.Hash = hex.EncodeToString(sum[:])

	assert.True(t, s.verifyCallbackHash(params))
}

func TestVerifyCallbackHash_CaseInsensitive(t *testing.T) {
	s := newHashService()

	params := CallbackParams{Status: "success", TxnID: "TEMP-1", Amount: "10.00"}
	raw := "merchant-salt|success||||||||||||||10.00|TEMP-1|merchant-key"
	sum := sha512.Sum512([]byte(raw))
	params.Hash = hex.EncodeToString(sum[:])

	assert.True(t, s.verifyCallbackHash(params))

	upper := CallbackParams{Status: params.Status, TxnID: params.TxnID, Amount: params.Amount}
	upper.Hash = upperHex(params.Hash)
	assert.True(t, s.verifyCallbackHash(upper))
}

func TestVerifyCallbackHash_RejectsWrongSalt(t *testing.T) {
	s := newHashService()

	params := CallbackParams{Status: "success", TxnID: "TEMP-1", Amount: "10.00"}
	raw := "other-salt|success||||||||||||||10.00|TEMP-1|merchant-key"
	sum := sha512.Sum512([]byte(raw))
	params.Hash = hex.EncodeToString(sum[:])

	assert.False(t, s.verifyCallbackHash(params))
}

func upperHex(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 32
		}
	}
	return string(b)
}
