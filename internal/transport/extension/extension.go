package extension

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/agent-zones/internal/domain/schema"
)

func Register(rg *gin.RouterGroup, exts []schema.Extension) {
	rg.GET("/", listExtensions(exts))
	rg.GET("/:alias", getExtension(exts))
}

func listExtensions(exts []schema.Extension) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := exts
		if out == nil {
			out = []schema.Extension{}
		}
		c.JSON(http.StatusOK, gin.H{"extensions": out})
	}
}

func getExtension(exts []schema.Extension) gin.HandlerFunc {
	return func(c *gin.Context) {
		alias := c.Param("alias")
		for _, e := range exts {
			if e.Alias == alias {
				c.JSON(http.StatusOK, gin.H{"extension": e})
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "extension " + alias + " not supported"})
	}
}
