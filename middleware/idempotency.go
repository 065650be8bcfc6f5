package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/pkg/context"
	"github.com/Jayjokeer/loyalty-api/pkg/fingerprint"
	"github.com/Jayjokeer/loyalty-api/pkg/lock"
	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxBodyBytes       = 1 << 20
	idempotencyStripes = 256
)

// Idempotency 同一 (method, path, body, key) 只执行一次, 之后原样返回首次结果.
// 查询 -> 执行 -> 保存 在同一把指纹锁内完成; 只缓存 2xx 和可重放的业务拒绝.
func Idempotency(store dao.IdempotencyStore, now func() time.Time) gin.HandlerFunc {
	locks := lock.NewStriped(idempotencyStripes)

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			response.Abort(c, response.ErrMissingIdempotencyKey)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			response.Abort(c, response.InvalidRequest("Request body could not be read"))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if len(bytes.TrimSpace(body)) > 0 && !gjson.ValidBytes(body) {
			response.Abort(c, response.InvalidRequest("Request body must be valid JSON"))
			return
		}
		fp, err := fingerprint.Compute(c.Request.Method, c.Request.URL.Path, body, key)
		if err != nil {
			response.Abort(c, response.InvalidRequest("Request body must be valid JSON"))
			return
		}

		unlock := locks.Lock(fp)
		defer unlock()

		path := c.FullPath()
		ctx := c.Request.Context()
		rec, err := store.Lookup(ctx, fp, now())
		switch {
		case err == nil:
			idempotencyTotal.WithLabelValues(path, "replayed").Inc()
			c.Header(HeaderReplayed, "true")
			c.Data(rec.Status, gin.MIMEJSON+"; charset=utf-8", rec.Body)
			c.Abort()
			return
		case !errors.Is(err, dao.ErrNotFound):
			log.L.Error("idempotency lookup failed",
				zap.String("request_id", c.GetString(context.CtxRequestID)),
				zap.Error(err))
			response.Abort(c, response.ErrInternal)
			return
		}

		bw := newBufferedWriter(c.Writer)
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		status := bw.Status()
		if cacheable(c, status) {
			if err := store.Store(ctx, fp, status, bw.body.Bytes(), now()); err != nil {
				// 变更已经发生, 仍然把结果返回给调用方
				log.L.Error("idempotency store failed",
					zap.String("request_id", c.GetString(context.CtxRequestID)),
					zap.Int("status", status),
					zap.Error(err))
			}
			idempotencyTotal.WithLabelValues(path, "stored").Inc()
		} else {
			idempotencyTotal.WithLabelValues(path, "skipped").Inc()
		}

		c.Writer.WriteHeader(status)
		if _, err := c.Writer.Write(bw.body.Bytes()); err != nil {
			log.L.Warn("write response failed", zap.Error(err))
		}
	}
}

func cacheable(c *gin.Context, status int) bool {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return true
	}
	return c.GetBool(response.CtxReplayable)
}

// bufferedWriter 暂存响应, 保存幂等记录后再写给客户端
type bufferedWriter struct {
	gin.ResponseWriter
	status  int
	written bool
	body    bytes.Buffer
}

func newBufferedWriter(w gin.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *bufferedWriter) WriteHeader(code int) {
	if code > 0 {
		w.status = code
	}
}

func (w *bufferedWriter) WriteHeaderNow() {
	w.written = true
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.body.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.written = true
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	if !w.written {
		return -1
	}
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.written
}
