package middleware

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

// storedResponse keeps a completed response for replay.
type storedResponse struct {
	statusCode  int
	contentType string
	body        []byte
}

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency returns middleware that replays the stored response for
// a repeated Idempotency-Key instead of applying the mutation twice.
// The client stamps the key on every mutating request, so a retried
// PATCH after a dropped response does not double-apply.
func Idempotency() gin.HandlerFunc {
	var (
		mu        sync.Mutex
		responses = make(map[string]*storedResponse)
	)

	return func(c *gin.Context) {
		// Only apply to mutating methods.
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		mu.Lock()
		stored, seen := responses[key]
		mu.Unlock()

		if seen {
			c.Data(stored.statusCode, stored.contentType, stored.body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			mu.Lock()
			responses[key] = &storedResponse{
				statusCode:  c.Writer.Status(),
				contentType: c.Writer.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			}
			mu.Unlock()
		}
	}
}
