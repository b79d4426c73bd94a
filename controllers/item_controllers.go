package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rakawidhi/canteen-app/hub"
	"github.com/rakawidhi/canteen-app/models"
	"github.com/rakawidhi/canteen-app/services"
	"github.com/rakawidhi/canteen-app/utils"
)

type ItemController struct {
	DB        *gorm.DB
	Stock     *services.StockService
	Uploader  services.Uploader
	Publisher services.Publisher
}

func NewItemController(db *gorm.DB, stock *services.StockService, up services.Uploader, pub services.Publisher) *ItemController {
	return &ItemController{DB: db, Stock: stock, Uploader: up, Publisher: pub}
}

// GetAllItems -> full catalog, public
func (ic *ItemController) GetAllItems(c *gin.Context) {
	var items []models.Item
	if err := ic.DB.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of items", items)
}

func (ic *ItemController) GetItemByID(c *gin.Context) {
	id := c.Param("item_id")

	var item models.Item
	if err := ic.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("item %s: %w", id, models.ErrNotFound))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item detail", item)
}

func (ic *ItemController) GetItemsByCategory(c *gin.Context) {
	category := c.Param("category")
	if !models.ValidCategory(category) {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown category %q: %w", category, models.ErrInvalidRequest))
		return
	}

	var items []models.Item
	if err := ic.DB.Where("category = ?", category).Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items by category", items)
}

// CreateItem -> admin adds a catalog item (multipart, image required)
func (ic *ItemController) CreateItem(c *gin.Context) {
	name := c.PostForm("name")
	category := c.PostForm("category")
	if name == "" || !models.ValidCategory(category) {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("name and a valid category are required: %w", models.ErrInvalidRequest))
		return
	}

	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil || price < 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("price must be a non-negative number: %w", models.ErrInvalidRequest))
		return
	}
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if err != nil || stock < 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("stock must be a non-negative integer: %w", models.ErrInvalidRequest))
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("please upload an image: %w", models.ErrInvalidRequest))
		return
	}
	defer file.Close()

	imageURL, err := ic.Uploader.Store(header.Filename, file)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	item := models.Item{
		Name:        name,
		Description: c.PostForm("description"),
		Price:       price,
		Category:    category,
		SubCategory: c.PostForm("sub_category"),
		Stock:       stock,
		ImageUrl:    imageURL,
		IsAvailable: stock > 0,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.Publisher.Publish(hub.TopicStaff, hub.EventStockUpdate, hub.StockUpdatePayload{
		ItemID: item.ID,
		Stock:  item.Stock,
	})

	utils.RespondJSON(c, http.StatusCreated, "Item created", item)
}

// UpdateItem -> admin edits item fields; image is optional. Stock moves
// only through the ledger endpoint, never here.
func (ic *ItemController) UpdateItem(c *gin.Context) {
	id := c.Param("item_id")

	var item models.Item
	if err := ic.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("item %s: %w", id, models.ErrNotFound))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if v := c.PostForm("name"); v != "" {
		item.Name = v
	}
	if v := c.PostForm("description"); v != "" {
		item.Description = v
	}
	if v := c.PostForm("sub_category"); v != "" {
		item.SubCategory = v
	}
	if v := c.PostForm("category"); v != "" {
		if !models.ValidCategory(v) {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("unknown category %q: %w", v, models.ErrInvalidRequest))
			return
		}
		item.Category = v
	}
	if v := c.PostForm("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("price must be a non-negative number: %w", models.ErrInvalidRequest))
			return
		}
		item.Price = price
	}

	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err := ic.Uploader.Store(header.Filename, file)
		if err != nil {
			utils.RespondServiceError(c, err)
			return
		}
		item.ImageUrl = imageURL
	}

	item.UpdatedAt = time.Now()
	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.Publisher.Publish(hub.TopicStaff, hub.EventItemUpdate, item)

	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	id := c.Param("item_id")

	var item models.Item
	if err := ic.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, fmt.Errorf("item %s: %w", id, models.ErrNotFound))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ic.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ic.Publisher.Publish(hub.TopicStaff, hub.EventItemDelete, hub.ItemDeletePayload{ItemID: item.ID})

	utils.RespondJSON(c, http.StatusOK, "Item deleted", gin.H{"item_id": item.ID})
}

// UpdateItemStock -> manual restock through the ledger
func (ic *ItemController) UpdateItemStock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid item id: %w", models.ErrInvalidRequest))
		return
	}

	var body struct {
		Stock *int `json:"stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := ic.Stock.SetStock(uint(id), *body.Stock)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stock updated", item)
}
