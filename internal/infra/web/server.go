package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	red "wellness-order-service/internal/infra/redis"
	"wellness-order-service/internal/usecase"
)

// Server wires the provider callback and the user-facing order endpoints.
type Server struct {
	callbackUC usecase.PaymentCallbackUseCase
	claimUC    usecase.GuestClaimUseCase
	redeemUC   usecase.SelfRedeemUseCase
	orderUC    usecase.OrderUseCase
	auth       *AuthManager
	limiter    *red.RateLimiter
	log        *zerolog.Logger
}

func NewServer(
	callbackUC usecase.PaymentCallbackUseCase,
	claimUC usecase.GuestClaimUseCase,
	redeemUC usecase.SelfRedeemUseCase,
	orderUC usecase.OrderUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		callbackUC: callbackUC,
		claimUC:    claimUC,
		redeemUC:   redeemUC,
		orderUC:    orderUC,
		auth:       auth,
		limiter:    limiter,
		log:        logger,
	}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Provider contract: form-encoded POST, bare-text body, permissive CORS.
	r.Post("/api/payment/alipay/callback", s.handleAlipayCallback)
	r.Options("/api/payment/alipay/callback", s.handlePreflight)

	r.Post("/api/v1/orders", s.handleCreateOrder)
	r.Post("/api/v1/orders/claim", s.handleClaim)
	r.Options("/api/v1/orders/claim", s.handlePreflight)
	r.Post("/api/v1/partner/self-redeem", s.handleSelfRedeem)
	r.Options("/api/v1/partner/self-redeem", s.handlePreflight)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// writeCORS mirrors the headers the web client and the provider expect.
func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, content-type")
}

func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	writeCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

// rateLimit returns false after writing the 429 when the caller is over the
// per-user window. A limiter error fails open: throttling is protective, not
// load-bearing.
func (s *Server) rateLimit(w http.ResponseWriter, r *http.Request, userID, action string) bool {
	if s.limiter == nil {
		return true
	}
	ok, err := s.limiter.Allow(r.Context(), red.UserActionKey(userID, action), 10, time.Minute)
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success": false,
			"error":   "请求过于频繁，请稍后再试",
		})
		return false
	}
	return true
}
