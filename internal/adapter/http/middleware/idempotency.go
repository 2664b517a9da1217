package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/tradeledger/internal/infrastructure/metrics"
	"github.com/iho/tradeledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	maxIdempotentBody = 1 << 20
	maxKeyLength      = 255
)

// IdempotencyMiddleware makes mutating requests safe to retry. The first
// request with a key reserves it; repeats get the stored response, a 409
// while the first one is still running, or a 422 if the request differs.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}

	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// WithMetrics counts replayed responses in m.
func (m *IdempotencyMiddleware) WithMetrics(mt *metrics.Metrics) *IdempotencyMiddleware {
	m.metrics = mt
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		if len(key) > maxKeyLength {
			writeError(w, http.StatusBadRequest, "invalid idempotency key", "key is too long")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		if len(body) > maxIdempotentBody {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		scoped := scopeKey(r, key)
		fingerprint := fingerprintRequest(r, body)

		existing, claimed, err := m.store.Reserve(r.Context(), scoped, fingerprint, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed")
			writeError(w, http.StatusServiceUnavailable, "idempotency check failed", "")
			return
		}

		if !claimed {
			m.replay(w, existing, fingerprint)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		// The store must outlive a client disconnect.
		storeCtx := context.WithoutCancel(r.Context())

		finished := false
		defer func() {
			if !finished {
				m.release(storeCtx, scoped)
			}
		}()

		next.ServeHTTP(recorder, r)
		finished = true

		if recorder.statusCode >= http.StatusInternalServerError {
			m.release(storeCtx, scoped)
			return
		}

		if err := m.store.Complete(storeCtx, scoped, usecase.IdempotentResponse{
			Fingerprint: fingerprint,
			StatusCode:  recorder.statusCode,
			Body:        recorder.body.Bytes(),
		}, m.ttl); err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, existing *usecase.IdempotentResponse, fingerprint string) {
	switch {
	case existing == nil:
		writeError(w, http.StatusServiceUnavailable, "idempotency check failed", "")
	case existing.Fingerprint != fingerprint:
		writeError(w, http.StatusUnprocessableEntity, "idempotency key reused", "the key was used with a different request")
	case existing.Pending:
		writeError(w, http.StatusConflict, "request in progress", "a request with this idempotency key is still running")
	default:
		if m.metrics != nil {
			m.metrics.IdempotencyReplays.Inc()
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(IdempotencyReplayHeader, "true")
		w.WriteHeader(existing.StatusCode)
		_, _ = w.Write(existing.Body)
	}
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string) {
	if err := m.store.Release(ctx, key); err != nil {
		m.logger.Error().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// scopeKey keeps keys of different callers apart.
func scopeKey(r *http.Request, key string) string {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		return identity.UserID + ":" + key
	}
	return key
}

func fingerprintRequest(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(len(body))))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	body        *bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}
