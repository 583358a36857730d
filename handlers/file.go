package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/filegrid/filegrid-backend/access"
	"github.com/filegrid/filegrid-backend/auth/middleware"
	"github.com/filegrid/filegrid-backend/models"
	"github.com/filegrid/filegrid-backend/storage"
	"github.com/filegrid/filegrid-backend/store"
)

type FileHandler struct {
	files  *store.FileStore
	roles  *store.RoleStore
	users  *store.UserStore
	thumbs storage.ThumbnailStorage
	log    *zap.Logger

	// base URL baked into public link QR codes
	publicBaseURL string
}

func NewFileHandler(files *store.FileStore, roles *store.RoleStore, users *store.UserStore, thumbs storage.ThumbnailStorage, publicBaseURL string, log *zap.Logger) *FileHandler {
	return &FileHandler{
		files:         files,
		roles:         roles,
		users:         users,
		thumbs:        thumbs,
		log:           log,
		publicBaseURL: publicBaseURL,
	}
}

// requesterFrom reads the identity the auth middleware resolved. Absent
// or invalid credentials leave the request anonymous.
func requesterFrom(c *gin.Context) access.Requester {
	if v, ok := c.Get(middleware.UserIDKey); ok {
		if userID, ok := v.(uuid.UUID); ok {
			return access.AuthenticatedUser(userID)
		}
	}
	return access.Anonymous()
}

func (h *FileHandler) respondError(c *gin.Context, err error) {
	status := access.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": gin.H{"message": "Internal server error"}})
		return
	}
	c.JSON(status, gin.H{"error": gin.H{"message": err.Error()}})
}

type fileResponse struct {
	UUID             string                  `json:"uuid"`
	Name             string                  `json:"name"`
	PublicLinkAccess models.PublicLinkAccess `json:"publicLinkAccess"`
	Thumbnail        *string                 `json:"thumbnail"`
	CreatedDate      time.Time               `json:"createdDate"`
	UpdatedDate      time.Time               `json:"updatedDate"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		UUID:             f.UUID,
		Name:             f.Name,
		PublicLinkAccess: f.PublicLinkAccess,
		Thumbnail:        f.ThumbnailKey,
		CreatedDate:      f.CreatedAt,
		UpdatedDate:      f.UpdatedAt,
	}
}

// ListFiles returns the requester's own files, name ascending. Files the
// requester only holds link access to are discoverable by uuid but never
// enumerable here.
func (h *FileHandler) ListFiles(c *gin.Context) {
	req := requesterFrom(c)
	if err := access.RequireUser(req); err != nil {
		h.respondError(c, err)
		return
	}
	userID, _ := req.UserID()

	files, err := h.files.ListOwned(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]fileResponse, 0, len(files))
	for i := range files {
		out = append(out, toFileResponse(&files[i]))
	}
	c.JSON(http.StatusOK, out)
}

// CreateFile creates a file owned by the requester, NOT_SHARED by
// default.
func (h *FileHandler) CreateFile(c *gin.Context) {
	req := requesterFrom(c)
	if err := access.RequireUser(req); err != nil {
		h.respondError(c, err)
		return
	}
	userID, _ := req.UserID()

	var body struct {
		Name     string `json:"name" binding:"required"`
		Contents string `json:"contents"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	file := models.File{
		OwnerUserID:   userID,
		CreatorUserID: userID,
		Name:          body.Name,
		Contents:      []byte(body.Contents),
	}
	if err := h.files.Create(c.Request.Context(), &file); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"file": toFileResponse(&file)})
}

// GetFile is the read-tolerant fetch by external identifier. Anonymous
// requesters are fine; what they see depends on the resolved permission
// set.
func (h *FileHandler) GetFile(c *gin.Context) {
	req := requesterFrom(c)

	res, err := access.ReadFile(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": gin.H{
			"uuid":             res.File.UUID,
			"name":             res.File.Name,
			"contents":         string(res.File.Contents),
			"publicLinkAccess": res.File.PublicLinkAccess,
			"thumbnail":        res.File.ThumbnailKey,
			"createdDate":      res.File.CreatedAt,
			"updatedDate":      res.File.UpdatedAt,
		},
		"userMakingRequest": gin.H{
			"filePermissions": res.Permissions.Slice(),
			"isFileOwner":     res.IsOwner,
		},
	})
}

// FileQRCode renders a QR code of the file's public link. Same pipeline
// as a read: whoever may view the file may also carry its link around.
func (h *FileHandler) FileQRCode(c *gin.Context) {
	req := requesterFrom(c)

	res, err := access.ReadFile(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	png, err := qrcode.Encode(h.publicBaseURL+"/file/"+res.File.UUID, qrcode.Medium, 256)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// UpdateFile renames a file and/or changes its public link policy.
// Authorization runs before the body is even parsed, matching the rest
// of the write-required surface.
func (h *FileHandler) UpdateFile(c *gin.Context) {
	req := requesterFrom(c)

	file, err := access.AuthorizeWrite(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"), access.FileEdit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body struct {
		Name             *string `json:"name"`
		PublicLinkAccess *string `json:"publicLinkAccess"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.Name == nil && body.PublicLinkAccess == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	var link models.PublicLinkAccess
	if body.PublicLinkAccess != nil {
		link = models.PublicLinkAccess(*body.PublicLinkAccess)
		switch link {
		case models.LinkNotShared, models.LinkReadOnly, models.LinkEdit:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
			return
		}
	}

	if body.Name != nil {
		if err := h.files.Rename(c.Request.Context(), file.ID, *body.Name); err != nil {
			h.respondError(c, err)
			return
		}
	}
	if body.PublicLinkAccess != nil {
		if err := h.files.SetPublicLinkAccess(c.Request.Context(), file.ID, link); err != nil {
			h.respondError(c, err)
			return
		}
	}

	h.audit(c, file.ID, req, "update")
	c.JSON(http.StatusOK, gin.H{"message": "File updated"})
}

// DeleteFile soft-deletes: the row stays for audit, reads by parties
// with sufficient permission turn into Gone.
func (h *FileHandler) DeleteFile(c *gin.Context) {
	req := requesterFrom(c)

	file, err := access.AuthorizeWrite(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"), access.FileDelete)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.files.SoftDelete(c.Request.Context(), file.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit(c, file.ID, req, "delete")
	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

// MoveFile relocates a file to another owner. The new owner gets the
// full permission set by status; the previous owner keeps only whatever
// link policy or roles still grant them.
func (h *FileHandler) MoveFile(c *gin.Context) {
	req := requesterFrom(c)

	file, err := access.AuthorizeWrite(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"), access.FileMove)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body struct {
		OwnerEmail string `json:"ownerEmail" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	newOwner, err := h.users.ByEmail(c.Request.Context(), body.OwnerEmail)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "User not found"}})
			return
		}
		h.respondError(c, err)
		return
	}

	if err := h.files.SetOwner(c.Request.Context(), file.ID, newOwner.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit(c, file.ID, req, "move")
	c.JSON(http.StatusOK, gin.H{"message": "File moved"})
}

// UpdateThumbnail stores the uploaded preview image on S3 and records
// its key on the file.
func (h *FileHandler) UpdateThumbnail(c *gin.Context) {
	req := requesterFrom(c)

	file, err := access.AuthorizeWrite(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"), access.FileEdit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	upload, err := c.FormFile("thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "No thumbnail uploaded"}})
		return
	}
	src, err := upload.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer src.Close()

	contentType := "application/octet-stream"
	if ct := upload.Header.Get("Content-Type"); ct != "" {
		contentType = ct
	}

	key := "thumbnails/" + shortuuid.New() + filepath.Ext(upload.Filename)
	if err := h.thumbs.Upload(c.Request.Context(), key, src, contentType); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.files.SetThumbnail(c.Request.Context(), file.ID, key); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit(c, file.ID, req, "thumbnail")
	c.JSON(http.StatusOK, gin.H{"message": "Preview updated"})
}

// CreateInvite records a pending grant keyed by email. The invite gives
// no access until the invited user accepts it.
func (h *FileHandler) CreateInvite(c *gin.Context) {
	req := requesterFrom(c)

	file, err := access.AuthorizeWrite(c.Request.Context(), h.files, h.roles, req, c.Param("uuid"), access.FileEdit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body struct {
		Email       string   `json:"email" binding:"required"`
		Permissions []string `json:"permissions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}
	perms := access.NewPermissionSet()
	for _, p := range body.Permissions {
		perms.Union(access.ParsePermissions(p))
	}
	if len(perms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	invite := models.FileInvite{
		FileID:      file.ID,
		Email:       body.Email,
		Permissions: perms.String(),
	}
	if err := h.roles.CreateInvite(c.Request.Context(), &invite); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invite": gin.H{"id": invite.ID, "email": invite.Email}})
}

// AcceptInvite turns a pending invite addressed to the requester into a
// live role.
func (h *FileHandler) AcceptInvite(c *gin.Context) {
	req := requesterFrom(c)
	if err := access.RequireUser(req); err != nil {
		h.respondError(c, err)
		return
	}
	userID, _ := req.UserID()

	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid input"}})
		return
	}

	user, err := h.users.ByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.roles.AcceptInvite(c.Request.Context(), inviteID, user); err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Invite not found"}})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invite accepted"})
}

// audit records who mutated what. Best effort: a failed audit write is
// logged, never surfaced.
func (h *FileHandler) audit(c *gin.Context, fileID uuid.UUID, req access.Requester, action string) {
	userID, ok := req.UserID()
	if !ok {
		return
	}
	event := models.FileAuditEvent{
		FileID:    fileID,
		UserID:    userID,
		Action:    action,
		IPAddress: c.ClientIP(),
	}
	if err := h.files.RecordAudit(c.Request.Context(), &event); err != nil {
		h.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
