package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	mu              sync.RWMutex
	RequestCount    int64            `json:"request_count"`
	ErrorCount      int64            `json:"error_count"`
	ActiveRequests  int64            `json:"active_requests"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
	totalDuration   time.Duration
	RequestDuration time.Duration `json:"avg_request_duration_ms"`
}

var globalMetrics = &Metrics{
	StatusCodes: make(map[string]int64),
	Endpoints:   make(map[string]int64),
	StartTime:   time.Now(),
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := fmt.Sprintf("%d", c.Writer.Status())
		endpoint := c.Request.Method + " " + c.FullPath()

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests--
		globalMetrics.RequestCount++
		globalMetrics.LastRequest = time.Now()
		globalMetrics.totalDuration += duration
		globalMetrics.RequestDuration = globalMetrics.totalDuration / time.Duration(globalMetrics.RequestCount)
		globalMetrics.StatusCodes[status]++
		globalMetrics.Endpoints[endpoint]++
		if c.Writer.Status() >= 400 {
			globalMetrics.ErrorCount++
		}
		globalMetrics.mu.Unlock()
	}
}

// snapshotMetrics copies the counters and both maps under the read lock,
// so serialization never touches the live maps the middleware mutates.
func snapshotMetrics() gin.H {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	statusCodes := make(map[string]int64, len(globalMetrics.StatusCodes))
	for k, v := range globalMetrics.StatusCodes {
		statusCodes[k] = v
	}
	endpoints := make(map[string]int64, len(globalMetrics.Endpoints))
	for k, v := range globalMetrics.Endpoints {
		endpoints[k] = v
	}

	return gin.H{
		"request_count":           globalMetrics.RequestCount,
		"error_count":             globalMetrics.ErrorCount,
		"active_requests":         globalMetrics.ActiveRequests,
		"status_codes":            statusCodes,
		"endpoint_calls":          endpoints,
		"start_time":              globalMetrics.StartTime,
		"last_request":            globalMetrics.LastRequest,
		"avg_request_duration_ms": globalMetrics.RequestDuration.Milliseconds(),
		"uptime_seconds":          int64(time.Since(globalMetrics.StartTime).Seconds()),
	}
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, snapshotMetrics())
	}
}

type HealthCheckFunc func(ctx context.Context) error

// HealthHandler runs every registered check and reports 503 if any fails.
func HealthHandler(checks map[string]HealthCheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = gin.H{"status": "down", "message": err.Error()}
			} else {
				results[name] = gin.H{"status": "up"}
			}
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status": overall,
			"checks": results,
		})
	}
}
