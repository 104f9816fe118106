// File: internal/infra/payment/alipay.go
package payment

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"sort"
	"strings"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/domain/ports/adapter"
)

// Alipay callback field names.
const (
	FieldSign        = "sign"
	FieldSignType    = "sign_type"
	FieldOrderNo     = "out_trade_no"
	FieldTradeNo     = "trade_no"
	FieldTradeStatus = "trade_status"
	FieldTotalAmount = "total_amount"

	SignTypeRSA2 = "RSA2"

	TradeStatusSuccess  = "TRADE_SUCCESS"
	TradeStatusFinished = "TRADE_FINISHED"
)

// PaidStatus reports whether a trade_status value means the payment went
// through. Other statuses (WAIT_BUYER_PAY, TRADE_CLOSED) are acknowledged
// without processing.
func PaidStatus(tradeStatus string) bool {
	return tradeStatus == TradeStatusSuccess || tradeStatus == TradeStatusFinished
}

var _ adapter.SignatureVerifier = (*AlipayVerifier)(nil)

// AlipayVerifier checks RSA2 (RSA-SHA256) signatures on callback params
// against Alipay's public key. The signed content is every non-empty field
// except sign and sign_type, sorted by key and joined as k=v&k=v.
type AlipayVerifier struct {
	pub *rsa.PublicKey
}

func NewAlipayVerifier(publicKeyPEM string) (*AlipayVerifier, error) {
	if strings.TrimSpace(publicKeyPEM) == "" {
		return nil, domain.Trust("alipay public key not configured", nil)
	}
	pub, err := parsePublicKey(publicKeyPEM)
	if err != nil {
		return nil, domain.Trust("invalid alipay public key", err)
	}
	return &AlipayVerifier{pub: pub}, nil
}

func (v *AlipayVerifier) Verify(params map[string]string) error {
	sign := params[FieldSign]
	if sign == "" {
		return domain.Trust("missing sign", nil)
	}
	if params[FieldSignType] != SignTypeRSA2 {
		return domain.Trust(fmt.Sprintf("unsupported sign_type %q", params[FieldSignType]), nil)
	}

	sigBytes, err := base64.StdEncoding.DecodeString(sign)
	if err != nil {
		return domain.Trust("sign is not valid base64", err)
	}

	digest := sha256.Sum256([]byte(SignContent(params)))
	if err := rsa.VerifyPKCS1v15(v.pub, crypto.SHA256, digest[:], sigBytes); err != nil {
		return domain.Trust("signature verification failed", err)
	}
	return nil
}

// SignContent builds the canonical string-to-sign: non-empty params minus
// sign/sign_type, key-sorted, ampersand-joined.
func SignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, val := range params {
		if k == FieldSign || k == FieldSignType || val == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}

func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	var der []byte
	if block != nil {
		der = block.Bytes
	} else {
		// Keys copied out of the Alipay console often come without PEM
		// armor; accept bare base64 too.
		raw := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(pemStr), "\n", ""), " ", "")
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, errors.New("public key is neither PEM nor base64 DER")
		}
		der = b
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return pub, nil
}
