package transport

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eshop-api/internal/domain"
	"eshop-api/internal/middleware"
	"eshop-api/internal/repository"
	"eshop-api/internal/service"
	"eshop-api/internal/upload"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// productForm carries the multipart form fields of a product create or
// update request
type productForm struct {
	Name            string `validate:"required"`
	Description     string
	RichDescription string
	Brand           string
	Price           float64 `validate:"gte=0"`
	CategoryID      primitive.ObjectID
	Rating          float64
	NumReviews      int
	IsFeatured      bool
	CountInStock    int `validate:"gte=0"`
}

// ProductResponse is the serialized product shape. Category holds the
// referenced identity as a hex string, or the full category document on
// populated reads.
type ProductResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	RichDescription string      `json:"richDescription"`
	Image           string      `json:"image"`
	Images          []string    `json:"images"`
	Brand           string      `json:"brand"`
	Price           float64     `json:"price"`
	Category        interface{} `json:"category"`
	Rating          float64     `json:"rating"`
	NumReviews      int         `json:"numReviews"`
	IsFeatured      bool        `json:"isFeatured"`
	CountInStock    int         `json:"countInStock"`
	DateCreated     time.Time   `json:"dateCreated"`
}

// CountResponse reports the product collection size
type CountResponse struct {
	ProductCount int64 `json:"productCount"`
}

// BulkDeleteRequest carries the identity set for a bulk delete
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BulkDeleteResponse reports the outcome of a bulk delete
type BulkDeleteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	uploads        upload.Store
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, uploads upload.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		uploads:        uploads,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/get/count", h.Count)
		r.Get("/get/featured/{count}", h.Featured)
		r.Put("/gallery-images/{id}", h.UpdateGallery)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/one/{id}", h.DeleteOne)
		r.Delete("/multiple", h.DeleteMany)
	})
}

// List handles listing products with an optional category filter
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryIDs []primitive.ObjectID

	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(part))
			if err != nil {
				middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id in filter")
				return
			}
			categoryIDs = append(categoryIDs, id)
		}
	}

	products, err := h.productService.List(r.Context(), categoryIDs)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, newPopulatedProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// Get handles fetching one product by identity
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newPopulatedProductResponse(product))
}

// Create handles product creation from a multipart form with a required
// image field
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := parseProductForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors := validateForm(form); validationErrors != nil {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	file, _, err := formImage(r, "image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file == nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "no image uploaded")
		return
	}

	filename, err := h.uploads.Save(file)
	if err != nil {
		if err == upload.ErrInvalidImageType {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid image type")
			return
		}
		h.logger.Error("Failed to store uploaded image", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	product := form.toDomain()
	product.Image = h.uploads.URL(r, filename)

	created, err := h.productService.Create(r.Context(), product)
	if err != nil {
		if err == service.ErrInvalidCategory {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "the product cannot be created")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", created.ID.Hex()))
	middleware.RespondWithJSON(w, http.StatusCreated, newProductResponse(created))
}

// Update handles full field replacement of a product; the image is
// optional and the stored path is retained when absent
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	form, err := parseProductForm(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if validationErrors := validateForm(form); validationErrors != nil {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	var imageURL string
	file, _, err := formImage(r, "image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		filename, err := h.uploads.Save(file)
		if err != nil {
			if err == upload.ErrInvalidImageType {
				middleware.RespondWithError(w, http.StatusBadRequest, "invalid image type")
				return
			}
			h.logger.Error("Failed to store uploaded image", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		imageURL = h.uploads.URL(r, filename)
	}

	updated, err := h.productService.Update(r.Context(), id, form.toDomain(), imageURL)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case service.ErrInvalidCategory:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "the product cannot be updated")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(updated))
}

// DeleteOne handles deletion of a single product
func (h *ProductHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithJSON(w, http.StatusNotFound, StatusResponse{Success: false, Message: "product not found"})
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "the product is deleted"})
}

// DeleteMany handles bulk deletion by identity set. Zero matches is still
// a success: the requested post-state holds.
func (h *ProductHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.productService.DeleteMany(r.Context(), ids)
	if err != nil {
		h.logger.Error("Failed to bulk delete products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete products")
		return
	}

	h.logger.Info("Products bulk deleted", zap.Int64("deleted", deleted))
	middleware.RespondWithJSON(w, http.StatusOK, BulkDeleteResponse{Success: true, DeletedCount: deleted})
}

// Count handles the total product count
func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.productService.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to count products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CountResponse{ProductCount: count})
}

// Featured handles the featured subset; a count of zero or an unparsable
// count applies no limit
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(chi.URLParam(r, "count"), 10, 64)

	products, err := h.productService.Featured(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list featured products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list featured products")
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, newProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// maxGalleryImages bounds a single gallery replacement
const maxGalleryImages = 20

// UpdateGallery handles wholesale gallery replacement from a multipart
// array field
func (h *ProductHandler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "no images uploaded")
		return
	}
	if len(files) > maxGalleryImages {
		middleware.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("too many images, at most %d allowed", maxGalleryImages))
		return
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		filename, err := h.uploads.Save(file)
		if err != nil {
			if err == upload.ErrInvalidImageType {
				middleware.RespondWithError(w, http.StatusBadRequest, "invalid image type")
				return
			}
			h.logger.Error("Failed to store gallery image", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		urls = append(urls, h.uploads.URL(r, filename))
	}

	updated, err := h.productService.UpdateGallery(r.Context(), id, urls)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update gallery", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "the product cannot be updated")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newProductResponse(updated))
}

// parseProductForm decodes the multipart form fields shared by create and
// update
func parseProductForm(r *http.Request) (*productForm, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart form")
	}

	form := &productForm{
		Name:            r.FormValue("name"),
		Description:     r.FormValue("description"),
		RichDescription: r.FormValue("richDescription"),
		Brand:           r.FormValue("brand"),
	}

	categoryID, err := primitive.ObjectIDFromHex(r.FormValue("category"))
	if err != nil {
		return nil, fmt.Errorf("invalid category id")
	}
	form.CategoryID = categoryID

	if form.Price, err = parseFloatField(r, "price"); err != nil {
		return nil, err
	}
	if form.Rating, err = parseFloatField(r, "rating"); err != nil {
		return nil, err
	}
	if form.NumReviews, err = parseIntField(r, "numReviews"); err != nil {
		return nil, err
	}
	if form.CountInStock, err = parseIntField(r, "countInStock"); err != nil {
		return nil, err
	}
	if form.IsFeatured, err = parseBoolField(r, "isFeatured"); err != nil {
		return nil, err
	}

	return form, nil
}

// validateForm runs tag validation and formats failures, or returns nil
func validateForm(form *productForm) []middleware.ValidationError {
	if err := middleware.ValidateRequest(form); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			return validationErrors
		}
	}
	return nil
}

func (f *productForm) toDomain() *domain.Product {
	return &domain.Product{
		Name:            f.Name,
		Description:     f.Description,
		RichDescription: f.RichDescription,
		Brand:           f.Brand,
		Price:           f.Price,
		CategoryID:      f.CategoryID,
		Rating:          f.Rating,
		NumReviews:      f.NumReviews,
		IsFeatured:      f.IsFeatured,
		CountInStock:    f.CountInStock,
	}
}

// formImage returns the uploaded file header for the named field, nil
// when the field is absent
func formImage(r *http.Request, field string) (*multipart.FileHeader, string, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("invalid image upload")
	}
	f.Close()
	return header, header.Filename, nil
}

func parseFloatField(r *http.Request, field string) (float64, error) {
	value := r.FormValue(field)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", field)
	}
	return parsed, nil
}

func parseIntField(r *http.Request, field string) (int, error) {
	value := r.FormValue(field)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", field)
	}
	return parsed, nil
}

func parseBoolField(r *http.Request, field string) (bool, error) {
	value := r.FormValue(field)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s", field)
	}
	return parsed, nil
}

// newProductResponse serializes a product with its category as a hex
// reference
func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		RichDescription: p.RichDescription,
		Image:           p.Image,
		Images:          p.Images,
		Brand:           p.Brand,
		Price:           p.Price,
		Category:        p.CategoryID.Hex(),
		Rating:          p.Rating,
		NumReviews:      p.NumReviews,
		IsFeatured:      p.IsFeatured,
		CountInStock:    p.CountInStock,
		DateCreated:     p.DateCreated,
	}
}

// newPopulatedProductResponse serializes a product with its category
// expanded to the full document
func newPopulatedProductResponse(p *domain.PopulatedProduct) ProductResponse {
	resp := newProductResponse(&p.Product)
	if p.Category != nil {
		resp.Category = p.Category
	}
	return resp
}
