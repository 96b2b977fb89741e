package availabilityzone

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainaz "github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	"github.com/alanyang/agent-zones/internal/domain/schema"
	azsvc "github.com/alanyang/agent-zones/internal/service/availabilityzone"
)

func Register(rg *gin.RouterGroup, svc *azsvc.Service, m schema.Map) {
	rg.GET("/", listZones(svc, m))
	rg.POST("/validate", validateZones(svc))
}

func listZones(svc *azsvc.Service, m schema.Map) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainaz.Filters

		if v, ok := c.GetQuery("name"); ok {
			filters.Name = &v
		}
		if v := c.Query("resource"); v != "" {
			r, err := domainaz.ParseResource(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filters.Resource = &r
		}
		if v := c.Query("state"); v != "" {
			st, err := domainaz.ParseState(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filters.State = &st
		}

		zones, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := schema.RenderList(m, schema.CollectionAvailabilityZones, zones, schema.ParseFields(c.QueryArray("fields")))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"availability_zones": out})
	}
}

type validateReq struct {
	Resource string   `json:"resource" binding:"required"`
	Zones    []string `json:"zones"`
}

// validateZones answers 204 when every requested zone is available for the resource.
func validateZones(svc *azsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := svc.Validate(c.Request.Context(), domainaz.Resource(req.Resource), req.Zones)
		switch {
		case err == nil:
			c.Status(http.StatusNoContent)
		case errors.Is(err, domainaz.ErrInvalidResourceType):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domainaz.ErrZoneNotFound):
			var nf *domainaz.NotFoundError
			if errors.As(err, &nf) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "zones": nf.Zones})
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
	}
}
