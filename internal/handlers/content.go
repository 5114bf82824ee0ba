// internal/handlers/content.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmdboutique/storefront-backend/internal/services"
	"github.com/cmdboutique/storefront-backend/internal/utils"
)

// ContentHandler serves the public homepage content and the back-office
// editing endpoints for content, icons, settings and image uploads.
type ContentHandler struct {
	contentService *services.ContentService
	storageService *services.StorageService
}

func NewContentHandler(contentService *services.ContentService, storageService *services.StorageService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		storageService: storageService,
	}
}

// GET /content/homepage
func (h *ContentHandler) GetHomepage(c *gin.Context) {
	role, _ := utils.GetUserRoleFromContext(c)
	includeInactive := role == "admin" && c.Query("preview") == "true"

	blocks, err := h.contentService.GetHomepageContent(includeInactive)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, blocks)
}

// GET /content/app-icons
func (h *ContentHandler) GetAppIcons(c *gin.Context) {
	icons, err := h.contentService.GetAppIcons(false)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, icons)
}

// POST /admin/content/homepage
func (h *ContentHandler) CreateHomepageBlock(c *gin.Context) {
	var req services.HomepageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	block, err := h.contentService.CreateHomepageContent(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, block)
}

// PUT /admin/content/homepage/:id
func (h *ContentHandler) UpdateHomepageBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid content ID", nil)
		return
	}

	var req services.HomepageContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	block, err := h.contentService.UpdateHomepageContent(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Homepage content")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.SuccessResponse(c, block)
}

// DELETE /admin/content/homepage/:id
func (h *ContentHandler) DeleteHomepageBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid content ID", nil)
		return
	}

	if err := h.contentService.DeleteHomepageContent(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Homepage content")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "Homepage content deleted"})
}

// GET /admin/content/app-icons
func (h *ContentHandler) GetAllAppIcons(c *gin.Context) {
	icons, err := h.contentService.GetAppIcons(true)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, icons)
}

// POST /admin/content/app-icons
func (h *ContentHandler) CreateAppIcon(c *gin.Context) {
	var req services.AppIconRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	icon, err := h.contentService.CreateAppIcon(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.CreatedResponse(c, icon)
}

// DELETE /admin/content/app-icons/:id
func (h *ContentHandler) DeleteAppIcon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid icon ID", nil)
		return
	}

	if err := h.contentService.DeleteAppIcon(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "App icon")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "App icon deleted"})
}

// GET /admin/settings
func (h *ContentHandler) GetSettings(c *gin.Context) {
	settings, err := h.contentService.GetSettings()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, settings)
}

// PUT /admin/settings
func (h *ContentHandler) UpdateSetting(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	setting, err := h.contentService.UpsertSetting(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	utils.SuccessResponse(c, setting)
}

// POST /admin/uploads
func (h *ContentHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file", err.Error())
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "general")
	options := h.storageService.GetDefaultUploadOptions(category)

	result, err := h.storageService.UploadImage(file, header, options)
	if err != nil {
		if strings.Contains(err.Error(), "not allowed") ||
			strings.Contains(err.Error(), "exceeds maximum") {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.CreatedResponse(c, result)
}
