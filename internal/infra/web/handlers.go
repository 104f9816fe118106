package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wellness-order-service/internal/domain"
	"wellness-order-service/internal/infra/metrics"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	writeCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeProviderText answers in the payment provider's bare-text contract.
func writeProviderText(w http.ResponseWriter, body string) {
	writeCORS(w)
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleAlipayCallback receives the provider's form-encoded notification.
// Only trust failures and an unknown order answer "fail" (prompting a
// provider retry); entitlement problems are already swallowed upstream.
func (s *Server) handleAlipayCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseForm(); err != nil {
		s.log.Error().Err(err).Msg("alipay callback: bad form body")
		metrics.IncCallback("alipay", "error")
		writeProviderText(w, "fail")
		return
	}
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}

	outcome, err := s.callbackUC.HandleAlipay(r.Context(), params)
	metrics.ObserveCallbackLatency("alipay", float64(time.Since(start).Milliseconds()))
	if err != nil {
		switch {
		case domain.IsTrust(err):
			s.log.Error().Err(err).Msg("alipay callback rejected")
			metrics.IncCallback("alipay", "invalid_signature")
		case errors.Is(err, domain.ErrOrderNotFound):
			s.log.Error().Err(err).Msg("alipay callback: order not found")
			metrics.IncCallback("alipay", "not_found")
		default:
			s.log.Error().Err(err).Msg("alipay callback failed")
			metrics.IncCallback("alipay", "error")
		}
		writeProviderText(w, "fail")
		return
	}

	metrics.IncCallback("alipay", string(outcome))
	writeProviderText(w, "success")
}

type createOrderRequest struct {
	PackageKey string `json:"packageKey"`
	PayType    string `json:"payType"`
}

// handleCreateOrder starts a checkout. A valid bearer token binds the order
// immediately; without one the order is created as a guest order and can be
// claimed after login.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "缺少套餐参数"})
		return
	}

	var userID *string
	if claims, err := s.auth.ParseFromRequest(r); err == nil {
		id := claims.UserID()
		userID = &id
	}

	o, err := s.orderUC.Create(r.Context(), req.PackageKey, userID, req.PayType)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "套餐不存在"})
			return
		}
		s.log.Error().Err(err).Str("package_key", req.PackageKey).Msg("create order failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "订单创建失败"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"orderNo":     o.OrderNo,
		"amount":      o.Amount,
		"packageName": o.PackageName,
	})
}

type claimRequest struct {
	OrderNo string `json:"orderNo"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	claims, err := s.auth.ParseFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "未授权"})
		return
	}
	userID := claims.UserID()

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderNo == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "缺少订单号"})
		return
	}

	if !s.rateLimit(w, r, userID, "claim") {
		return
	}

	res, err := s.claimUC.Claim(r.Context(), userID, req.OrderNo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			metrics.IncClaim("rejected")
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "订单不存在"})
		case errors.Is(err, domain.ErrOrderUnpaid):
			metrics.IncClaim("rejected")
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "订单未支付"})
		case errors.Is(err, domain.ErrOrderClaimedByOther):
			metrics.IncClaim("conflict")
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "订单已被其他用户认领"})
		default:
			metrics.IncClaim("error")
			s.log.Error().Err(err).Str("order_no", req.OrderNo).Msg("claim failed")
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "认领失败"})
		}
		return
	}

	if res.AlreadyClaimed {
		metrics.IncClaim("already_own")
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"alreadyClaimed": true,
			"message":        "订单已是您的",
		})
		return
	}

	metrics.IncClaim("claimed")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "订单认领成功，权益已发放",
		"packageKey":  res.PackageKey,
		"packageName": res.PackageName,
	})
}

func (s *Server) handleSelfRedeem(w http.ResponseWriter, r *http.Request) {
	claims, err := s.auth.ParseFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "未授权"})
		return
	}
	userID := claims.UserID()

	if !s.rateLimit(w, r, userID, "self-redeem") {
		return
	}

	granted, err := s.redeemUC.Redeem(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPartnerNotFound):
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "error": "您不是合伙人"})
		case errors.Is(err, domain.ErrNoPrepurchaseLeft):
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "预购名额已用完"})
		default:
			s.log.Error().Err(err).Str("user_id", userID).Msg("self-redeem failed")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "兑换失败"})
		}
		return
	}

	if granted == nil {
		granted = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"granted_items": granted,
		"message":       "兑换成功，权益已发放",
	})
}
