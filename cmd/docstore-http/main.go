// Command docstore-http is a REST binding over the document store engine,
// shaped the way the ingestion HTTP wrapper this was adapted from shapes
// its own handlers: a small struct holding the service, a CORS middleware,
// and JSON request/response structs with manual field validation.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chaturanga836/docstore/internal/common"
	"github.com/chaturanga836/docstore/internal/engine"
)

// HTTPWrapper provides REST endpoints over a document store engine.
type HTTPWrapper struct {
	engine *engine.Engine
}

// NewHTTPWrapper opens the engine at dir and wraps it for HTTP access.
func NewHTTPWrapper(dir string) (*HTTPWrapper, error) {
	e, err := engine.OpenNative(dir, engine.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return &HTTPWrapper{engine: e}, nil
}

// PutRequest represents the HTTP request for writing a document.
type PutRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// QueryRequest represents the HTTP request for an equality query.
type QueryRequest struct {
	Collection string `json:"collection"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

// setupRoutes configures the HTTP routes.
func (h *HTTPWrapper) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", h.healthCheck)
	r.PUT("/api/v1/documents/*key", h.putDocument)
	r.GET("/api/v1/documents/*key", h.getDocument)
	r.DELETE("/api/v1/documents/*key", h.deleteDocument)
	r.POST("/api/v1/query", h.query)
	r.POST("/api/v1/flush", h.flush)
	r.POST("/api/v1/compact", h.compact)

	return r
}

func (h *HTTPWrapper) healthCheck(c *gin.Context) {
	if err := h.engine.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "docstore-http",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPWrapper) putDocument(c *gin.Context) {
	key := trimLeadingSlash(c.Param("key"))
	var req PutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": "document key is required",
		})
		return
	}

	if err := h.engine.Put(key, []byte(req.Value)); err != nil {
		writeEngineError(c, "put", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"key":    key,
	})
}

func (h *HTTPWrapper) getDocument(c *gin.Context) {
	key := trimLeadingSlash(c.Param("key"))
	value, err := h.engine.Get(key)
	if err != nil {
		writeEngineError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": string(value),
	})
}

func (h *HTTPWrapper) deleteDocument(c *gin.Context) {
	key := trimLeadingSlash(c.Param("key"))
	if err := h.engine.Delete(key); err != nil {
		writeEngineError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"key":    key,
	})
}

func (h *HTTPWrapper) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Collection == "" || req.Field == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"details": "collection and field are required",
		})
		return
	}

	docs, err := h.engine.Query(req.Collection, req.Field, req.Value)
	if err != nil {
		writeEngineError(c, "query", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(docs),
		"documents": docs,
	})
}

func (h *HTTPWrapper) flush(c *gin.Context) {
	if err := h.engine.Flush(); err != nil {
		writeEngineError(c, "flush", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPWrapper) compact(c *gin.Context) {
	stats, err := h.engine.Compact()
	if err != nil {
		writeEngineError(c, "compact", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files_before":       stats.FilesBefore,
		"files_after":        stats.FilesAfter,
		"entries_before":     stats.EntriesBefore,
		"entries_after":      stats.EntriesAfter,
		"tombstones_removed": stats.TombstonesRemoved,
	})
}

func trimLeadingSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}

// writeEngineError maps the engine's error taxonomy onto an HTTP status.
func writeEngineError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case common.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case common.Is(err, common.ErrPermissionDenied):
		status = http.StatusForbidden
	case common.Is(err, common.ErrValidation), common.Is(err, common.ErrInvalidArgument):
		status = http.StatusBadRequest
	case common.Is(err, common.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{
		"error":   op + " failed",
		"details": err.Error(),
	})
}

func main() {
	dir := os.Getenv("DOCSTORE_DIR")
	if dir == "" {
		dir = "./data"
	}
	port, err := strconv.Atoi(os.Getenv("DOCSTORE_HTTP_PORT"))
	if err != nil || port == 0 {
		port = 8080
	}

	wrapper, err := NewHTTPWrapper(dir)
	if err != nil {
		log.Fatalf("failed to initialize docstore-http: %v", err)
	}

	router := wrapper.setupRoutes()
	log.Printf("docstore-http listening on :%d, data dir %s", port, dir)
	if err := router.Run(":" + strconv.Itoa(port)); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
