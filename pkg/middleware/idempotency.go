package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	redisclient "github.com/richxcame/logistics-pricing/pkg/redis"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key of a ride transition
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency cache
	ReplayedHeader = "Idempotent-Replayed"

	idempotencyPrefix = "idempotency:"
)

// replayEntry is the cached outcome of a keyed request
type replayEntry struct {
	StatusCode  int             `json:"status_code"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
	RequestHash string          `json:"request_hash"`
}

type recordingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first successful response of a POST carrying an
// Idempotency-Key for ttl. Keys are scoped per caller; reusing a key with a
// different body or route is rejected with 422. Cache failures never block
// the request.
func Idempotency(store redisclient.ClientInterface, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		requestHash := hashRequest(c.Request.Method, c.Request.URL.Path, body)

		caller := "anonymous"
		if uid, err := GetUserID(c); err == nil {
			caller = uid.String()
		}
		redisKey := idempotencyPrefix + caller + ":" + key

		cached, err := store.GetBytes(ctx, redisKey)
		switch {
		case err == nil:
			var entry replayEntry
			if err := json.Unmarshal(cached, &entry); err != nil {
				logger.WarnContext(ctx, "discarding corrupt idempotency entry", zap.String("key", key), zap.Error(err))
				break
			}
			if entry.RequestHash != requestHash {
				common.ErrorResponse(c, http.StatusUnprocessableEntity,
					"Idempotency-Key has already been used with a different request")
				c.Abort()
				return
			}
			c.Header(ReplayedHeader, "true")
			c.Data(entry.StatusCode, entry.ContentType, entry.Body)
			c.Abort()
			return
		case !errors.Is(err, redisclient.ErrNotFound):
			logger.WarnContext(ctx, "idempotency lookup failed", zap.String("key", key), zap.Error(err))
		}

		writer := &recordingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		data, err := json.Marshal(replayEntry{
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			RequestHash: requestHash,
		})
		if err != nil {
			return
		}
		if err := store.SetBytes(ctx, redisKey, data, ttl); err != nil {
			logger.WarnContext(ctx, "failed to cache idempotency response", zap.String("key", key), zap.Error(err))
		}
	}
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
