package ports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type MetricsPort interface {
	RecordMetrics(c *gin.Context, start time.Time)
	RecordStoreWrite(backend string, err error)
	RecordDegraded(backend string)
	Handler() http.Handler
}
