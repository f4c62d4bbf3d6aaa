package middleware

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/metrics"
	"github.com/smarttransit/bus-booking/internal/utils"
)

// RequestLogger logs every request with client details and records its latency
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), latency)

		fields := logrus.Fields(utils.ClientFromRequest(c).Fields())
		fields["status"] = status
		fields["method"] = c.Request.Method
		fields["path"] = c.Request.URL.Path
		// query values carry emails and payment IDs; only the keys are logged
		if query := c.Request.URL.Query(); len(query) > 0 {
			fields["query_keys"] = slices.Sorted(maps.Keys(query))
		}
		fields["latency_ms"] = latency.Milliseconds()
		fields["has_auth"] = c.GetHeader("Authorization") != ""

		if admin, ok := GetAdminContext(c); ok {
			fields["admin"] = admin.Username
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}
