package contentplan

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamplan/planboard/internal/apperr"
	"github.com/teamplan/planboard/internal/auth"
	"github.com/teamplan/planboard/internal/roles"
)

// GetRangeHandler serves the aggregated content plan for a date window.
func GetRangeHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := RangeQuery{
			From:  c.Query("from"),
			To:    c.Query("to"),
			Month: c.Query("month"),
			Year:  c.Query("year"),
		}

		payload, err := svc.GetRange(c.Request.Context(), query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

// CreateItemHandler creates a content-plan item in the bucket named by the
// URL.
func CreateItemHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bindBody(c)
		if !ok {
			return
		}

		item, err := svc.Create(c.Request.Context(), actorRole(c), c.Param("bucket"), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// UpdateItemHandler applies a partial update to an item.
func UpdateItemHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bindBody(c)
		if !ok {
			return
		}

		item, err := svc.Update(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id"), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteItemHandler removes an item.
func DeleteItemHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Remove(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListAssetsHandler lists the assets of a publication.
func ListAssetsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		assets, err := svc.ListAssets(c.Request.Context(), c.Param("bucket"), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, assets)
	}
}

// CreateAssetHandler attaches an asset to a publication.
func CreateAssetHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bindBody(c)
		if !ok {
			return
		}

		asset, err := svc.CreateAsset(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id"), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, asset)
	}
}

// DeleteAssetHandler removes an asset scoped to its publication.
func DeleteAssetHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.RemoveAsset(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id"), c.Param("assetId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListLinkedTasksHandler lists the tasks linked to a publication.
func ListLinkedTasksHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks, err := svc.ListLinkedTasks(c.Request.Context(), c.Param("bucket"), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tasks)
	}
}

// LinkTaskHandler associates an existing task with a publication.
func LinkTaskHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			TaskID string `json:"taskId"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		link, err := svc.LinkTask(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id"), body.TaskID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}

// UnlinkTaskHandler removes a task association.
func UnlinkTaskHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.UnlinkTask(c.Request.Context(), actorRole(c), c.Param("bucket"), c.Param("id"), c.Param("taskId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// bindBody decodes an optional JSON object body. A missing body is treated
// as an empty object so normalization produces the field-specific errors.
func bindBody(c *gin.Context) (map[string]any, bool) {
	raw := map[string]any{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return raw, true
	}
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return nil, false
	}
	return raw, true
}

func actorRole(c *gin.Context) roles.Role {
	principal, _ := auth.FromContext(c)
	return principal.Role
}

// respondError translates the error taxonomy to HTTP. Storage failures are
// logged with their cause and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("Content plan request failed",
			"path", c.FullPath(),
			"error", err.Error(),
		)
	}
	c.JSON(status, gin.H{"message": apperr.Message(err)})
}
