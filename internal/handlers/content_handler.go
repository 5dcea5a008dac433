package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksys/admission-service/internal/services"
	"github.com/ksys/admission-service/internal/utils"
)

// ContentHandler serves gallery and news endpoints
type ContentHandler struct {
	BaseHandler
	galleryService services.GalleryService
	newsService    services.NewsService
}

func NewContentHandler(galleryService services.GalleryService, newsService services.NewsService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		galleryService: galleryService,
		newsService:    newsService,
	}
}

// ===== GALLERY =====

// ListGallery returns every gallery item, newest first
// @Summary List gallery
// @Tags gallery
// @Produce json
// @Success 200 {array} models.GalleryItem
// @Router /gallery [get]
func (h *ContentHandler) ListGallery(c *gin.Context) {
	items, err := h.galleryService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// AddGalleryItem publishes an uploaded image
// @Summary Add gallery item
// @Tags gallery
// @Accept json
// @Produce json
// @Param request body services.GalleryItemRequest true "Gallery item"
// @Success 201 {object} models.GalleryItem
// @Failure 409 {object} ErrorResponse
// @Router /admin/gallery [post]
func (h *ContentHandler) AddGalleryItem(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.GalleryItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.galleryService.Add(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// DeleteGalleryItem removes the item with the given description
// @Summary Delete gallery item
// @Tags gallery
// @Param description query string true "Description"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/gallery [delete]
func (h *ContentHandler) DeleteGalleryItem(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	description, ok := h.parseStringQuery(c, "description")
	if !ok {
		return
	}

	if err := h.galleryService.Delete(c.Request.Context(), description, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Gallery item deleted successfully", nil)
}

// ===== NEWS =====

// ListNews returns every post, newest first
// @Summary List news
// @Tags news
// @Produce json
// @Success 200 {array} models.NewsItem
// @Router /news [get]
func (h *ContentHandler) ListNews(c *gin.Context) {
	items, err := h.newsService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateNews publishes a post
// @Summary Create news
// @Tags news
// @Accept json
// @Produce json
// @Param request body services.NewsCreateRequest true "News item"
// @Success 201 {object} models.NewsItem
// @Failure 409 {object} ErrorResponse
// @Router /admin/news [post]
func (h *ContentHandler) CreateNews(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}

	var req services.NewsCreateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.newsService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// EditNews rewrites the post with the given title
// @Summary Edit news
// @Tags news
// @Accept json
// @Produce json
// @Param title query string true "Title"
// @Param request body services.NewsEditRequest true "New content"
// @Success 200 {object} models.NewsItem
// @Failure 404 {object} ErrorResponse
// @Router /admin/news [put]
func (h *ContentHandler) EditNews(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	title, ok := h.parseStringQuery(c, "title")
	if !ok {
		return
	}

	var req services.NewsEditRequest
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.newsService.Edit(c.Request.Context(), title, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteNews removes the post with the given title
// @Summary Delete news
// @Tags news
// @Param title query string true "Title"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/news [delete]
func (h *ContentHandler) DeleteNews(c *gin.Context) {
	caller, ok := h.requireCaller(c)
	if !ok {
		return
	}
	title, ok := h.parseStringQuery(c, "title")
	if !ok {
		return
	}

	if err := h.newsService.Delete(c.Request.Context(), title, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "News item deleted successfully", nil)
}
