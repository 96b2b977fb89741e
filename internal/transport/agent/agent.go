package agent

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagent "github.com/alanyang/agent-zones/internal/domain/agent"
	"github.com/alanyang/agent-zones/internal/domain/availabilityzone"
	"github.com/alanyang/agent-zones/internal/domain/schema"
	agentsvc "github.com/alanyang/agent-zones/internal/service/agent"
)

func Register(rg *gin.RouterGroup, svc *agentsvc.Service, m schema.Map) {
	rg.POST("", registerAgent(svc, m))
	rg.GET("/", listAgents(svc, m))
	rg.GET("/:id", getAgent(svc, m))
	rg.PUT("/:id", updateAgent(svc, m))
	rg.DELETE("/:id", deleteAgent(svc))
}

type registerReq struct {
	AgentType        string                 `json:"agent_type" binding:"required"`
	Binary           string                 `json:"binary"`
	Topic            string                 `json:"topic"`
	Host             string                 `json:"host" binding:"required"`
	AvailabilityZone string                 `json:"availability_zone"`
	Configurations   map[string]interface{} `json:"configurations"`
}

func registerAgent(svc *agentsvc.Service, m schema.Map) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		a, err := svc.Register(c.Request.Context(), agentsvc.Report{
			AgentType:        req.AgentType,
			Binary:           req.Binary,
			Topic:            req.Topic,
			Host:             req.Host,
			AvailabilityZone: req.AvailabilityZone,
			Configurations:   req.Configurations,
		})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		render(c, http.StatusCreated, m, a, nil)
	}
}

func listAgents(svc *agentsvc.Service, m schema.Map) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainagent.ListFilters

		if v := c.Query("host"); v != "" {
			filters.Host = &v
		}
		if v := c.Query("agent_type"); v != "" {
			filters.AgentType = &v
		}
		if v, ok := c.GetQuery("availability_zone"); ok {
			if !m[schema.CollectionAgents]["availability_zone"].IsVisible {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown filter availability_zone"})
				return
			}
			filters.AvailabilityZone = &v
		}
		if v := c.Query("admin_state_up"); v != "" {
			up, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_state_up"})
				return
			}
			filters.AdminStateUp = &up
		}

		agents, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := schema.RenderList(m, schema.CollectionAgents, agents, schema.ParseFields(c.QueryArray("fields")))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"agents": out})
	}
}

func getAgent(svc *agentsvc.Service, m schema.Map) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		a, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		render(c, http.StatusOK, m, a, schema.ParseFields(c.QueryArray("fields")))
	}
}

func updateAgent(svc *agentsvc.Service, m schema.Map) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := m.CheckUpdate(schema.CollectionAgents, body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		u, err := parseUpdate(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		a, err := svc.Update(c.Request.Context(), id, u)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		render(c, http.StatusOK, m, a, nil)
	}
}

func deleteAgent(svc *agentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// parseUpdate reads the operator-writable keys out of an already schema-checked body.
func parseUpdate(body map[string]any) (domainagent.Update, error) {
	var u domainagent.Update
	if v, ok := body["admin_state_up"]; ok {
		up, ok := v.(bool)
		if !ok {
			return u, errors.New("admin_state_up must be a boolean")
		}
		u.AdminStateUp = &up
	}
	if v, ok := body["description"]; ok {
		d, ok := v.(string)
		if !ok {
			return u, errors.New("description must be a string")
		}
		u.Description = &d
	}
	return u, nil
}

func render(c *gin.Context, status int, m schema.Map, a domainagent.Agent, fields []string) {
	out, err := m.Render(schema.CollectionAgents, a, fields)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(status, gin.H{"agent": out})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainagent.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainagent.ErrInvalidReport), errors.Is(err, domainagent.ErrInvalidUpdate),
		errors.Is(err, availabilityzone.ErrInvalidZoneName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
