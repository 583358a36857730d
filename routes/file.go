package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/filegrid/filegrid-backend/handlers"
)

// RegisterFileRoutes wires the /v0/files surface. Identity resolution is
// optional on every route; the access pipelines decide per operation
// class whether an anonymous requester is acceptable.
func RegisterFileRoutes(r *gin.Engine, h *handlers.FileHandler) {
	files := r.Group("/v0/files")

	files.GET("", h.ListFiles)
	files.POST("", h.CreateFile)
	files.GET("/:uuid", h.GetFile)
	files.GET("/:uuid/qrcode", h.FileQRCode)
	files.PATCH("/:uuid", h.UpdateFile)
	files.DELETE("/:uuid", h.DeleteFile)
	files.POST("/:uuid/move", h.MoveFile)
	files.POST("/:uuid/thumbnail", h.UpdateThumbnail)
	files.POST("/:uuid/invites", h.CreateInvite)

	r.POST("/v0/invites/:inviteId/accept", h.AcceptInvite)
}
