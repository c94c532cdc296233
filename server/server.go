// Package server stellt den Connector über eine kleine HTTP-API bereit.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"paper-sorts/config"
	"paper-sorts/models"
	"paper-sorts/services"
	"paper-sorts/storage"
)

// Connector ist der Teil von services.Connector, den die API nutzt.
type Connector interface {
	SearchByTitle(ctx context.Context, title string) ([]models.PaperRecord, error)
	SearchByAuthor(ctx context.Context, author string) ([]models.AuthorHit, error)
	PaperByID(ctx context.Context, paperID uint) (models.PaperRecord, error)
	BibEntry(ctx context.Context, bibtexID string) (models.BibEntry, error)
	AddPaper(ctx context.Context, p services.NewPaper) (uint, error)
	UpdateEntry(ctx context.Context, column, value, table, identifier string) error
	DeletePaper(ctx context.Context, title string, authors []string) error
}

type addPaperRequest struct {
	BibtexID string   `json:"bibtex_id" binding:"required"`
	Bibtex   string   `json:"bibtex" binding:"required"`
	Title    string   `json:"title" binding:"required"`
	Contents string   `json:"contents"`
	Authors  []string `json:"authors"`
}

type updateRequest struct {
	Table      string `json:"table" binding:"required"`
	Column     string `json:"column" binding:"required"`
	Identifier string `json:"identifier" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

type deleteRequest struct {
	Title   string   `json:"title" binding:"required"`
	Authors []string `json:"authors"`
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// NewRouter baut die gin-Engine mit allen Routen. gatherer liefert die Werte für /metrics.
func NewRouter(cfg *config.Config, conn Connector, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	log := logger.With(zap.String("component", "server"))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	setupPaperRoutes(router, conn, log)
	setupEntryRoutes(router, conn, log)
	return router
}

func setupPaperRoutes(router *gin.Engine, conn Connector, log *zap.Logger) {
	rg := router.Group("/papers")

	rg.GET("", func(c *gin.Context) {
		ctx := c.Request.Context()
		if title := c.Query("title"); title != "" {
			records, err := conn.SearchByTitle(ctx, title)
			if err != nil {
				writeError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, records)
			return
		}
		if author := c.Query("author"); author != "" {
			hits, err := conn.SearchByAuthor(ctx, author)
			if err != nil {
				writeError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, hits)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "title or author query parameter required"})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paper id"})
			return
		}
		rec, err := conn.PaperByID(c.Request.Context(), uint(id))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	rg.POST("", func(c *gin.Context) {
		var req addPaperRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		id, err := conn.AddPaper(c.Request.Context(), services.NewPaper{
			BibtexID: req.BibtexID,
			Bibtex:   req.Bibtex,
			Title:    req.Title,
			Contents: req.Contents,
			Authors:  req.Authors,
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"paper_id": id})
	})

	rg.DELETE("", func(c *gin.Context) {
		var req deleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := conn.DeletePaper(c.Request.Context(), req.Title, req.Authors); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}

func setupEntryRoutes(router *gin.Engine, conn Connector, log *zap.Logger) {
	router.GET("/bib/:key", func(c *gin.Context) {
		bib, err := conn.BibEntry(c.Request.Context(), c.Param("key"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, bib)
	})

	router.PUT("/entries", func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := conn.UpdateEntry(c.Request.Context(), req.Column, req.Value, req.Table, req.Identifier); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "updated"})
	})
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateKey), errors.Is(err, services.ErrDuplicateValue):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidColumn), errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case storage.IsStorageError(err):
		log.Error("Datenbankfehler", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "database error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
