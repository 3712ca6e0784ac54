package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariqs/myfood-api/models"
	"github.com/Kariqs/myfood-api/repositories"
	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menu *repositories.MenuRepository
}

func NewMenuController(menu *repositories.MenuRepository) *MenuController {
	return &MenuController{menu: menu}
}

type createMenuItemRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description" binding:"required"`
	Price       models.Money `json:"price" binding:"required,gt=0"`
	Image       string       `json:"image"`
	CuisineType string       `json:"cuisineType"`
	IsAvailable *bool        `json:"isAvailable"`
}

func (c *MenuController) CreateMenuItem(ctx *gin.Context) {
	var req createMenuItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item := models.MenuItem{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CuisineType: req.CuisineType,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := c.menu.Create(ctx.Request.Context(), &item); err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create menu item", err)
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

func (c *MenuController) GetMenu(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := c.menu.Page(ctx.Request.Context(), ctx.Query("search"), page, limit)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"metadata": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (c *MenuController) GetMenuItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	item, err := c.menu.FindByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrMenuItemNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Menu item not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve menu item", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, item)
}
