package handlers

import (
	"errors"
	"strconv"

	"receipt-vault/internal/dto"
	"receipt-vault/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReceiptHandler struct {
	receipts *service.ReceiptService
	queries  *service.QueryService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewReceiptHandler(receipts *service.ReceiptService, queries *service.QueryService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts: receipts,
		queries:  queries,
		validate: validator.New(),
		logger:   logger,
	}
}

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrConfirmRequired):
		return fiber.StatusPreconditionRequired
	case errors.Is(err, service.ErrInvalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *ReceiptHandler) fail(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// Create godoc
// @Summary Ingest a receipt image
// @Description Upload a receipt image with optional explicit fields; duplicate content returns the existing record id
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image"
// @Param vendor formData string false "Vendor override"
// @Param date formData string false "Receipt date (YYYY-MM-DD)"
// @Param total formData number false "Total override"
// @Param currency formData string false "Currency code"
// @Param category formData string false "Category override"
// @Param text formData string false "Receipt text (skips OCR)"
// @Security Bearer
// @Success 201 {object} service.IngestResult
// @Success 200 {object} service.IngestResult
// @Failure 400 {object} map[string]string
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	var req dto.AddReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid form fields"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	in := service.IngestInput{}
	if req.Vendor != "" {
		in.Vendor = &req.Vendor
	}
	if req.Date != "" {
		in.Date = &req.Date
	}
	if req.Total != "" {
		total, err := strconv.ParseFloat(req.Total, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total must be a number"})
		}
		in.Total = &total
	}
	if req.Currency != "" {
		in.Currency = &req.Currency
	}
	if req.Category != "" {
		in.Category = &req.Category
	}
	if req.Text != "" {
		in.Text = &req.Text
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer src.Close()

	result, err := h.receipts.IngestUpload(c.Context(), src, file.Filename, in)
	if err != nil {
		return h.fail(c, err)
	}

	status := fiber.StatusCreated
	if result.Duplicate {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

// Get godoc
// @Summary Fetch one receipt
// @Tags receipts
// @Produce json
// @Param id path int true "Receipt id"
// @Security Bearer
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} map[string]string
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	rec, err := h.receipts.Get(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewReceiptResponse(rec))
}

// List godoc
// @Summary List receipts
// @Tags receipts
// @Produce json
// @Param month query string false "Month filter (YYYY-MM or bare month number)"
// @Param category query string false "Category filter"
// @Param limit query int false "Max rows" default(20)
// @Security Bearer
// @Success 200 {array} dto.ReceiptResponse
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	recs, err := h.receipts.List(c.Context(), c.Query("month"), c.Query("category"), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewReceiptResponses(recs))
}

// Search godoc
// @Summary Search receipts
// @Tags receipts
// @Produce json
// @Param q query string false "Text query (vendor, category, text, items)"
// @Param item query string false "Item keyword"
// @Param limit query int false "Max rows" default(20)
// @Security Bearer
// @Success 200 {array} dto.ReceiptResponse
// @Router /receipts/search [get]
func (h *ReceiptHandler) Search(c *fiber.Ctx) error {
	recs, err := h.receipts.Search(c.Context(), c.Query("q"), c.Query("item"), c.QueryInt("limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewReceiptResponses(recs))
}

// Update godoc
// @Summary Update receipt fields
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path int true "Receipt id"
// @Param request body dto.UpdateReceiptRequest true "Fields to update"
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /receipts/{id} [patch]
func (h *ReceiptHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var req dto.UpdateReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	fields, err := h.receipts.Update(c.Context(), id, service.UpdateInput{
		Vendor:    req.Vendor,
		Date:      req.Date,
		Total:     req.Total,
		Currency:  req.Currency,
		Category:  req.Category,
		Text:      req.Text,
		ItemsJSON: req.ItemsJSON,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"updated_id": id, "fields": fields})
}

// Delete godoc
// @Summary Delete a receipt
// @Description Requires confirm=true; delete_image=true also removes the stored image
// @Tags receipts
// @Produce json
// @Param id path int true "Receipt id"
// @Param confirm query bool false "Confirmation flag"
// @Param delete_image query bool false "Also delete stored image"
// @Security Bearer
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 428 {object} map[string]string
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	confirm := c.QueryBool("confirm", false)
	deleteImage := c.QueryBool("delete_image", false)

	if err := h.receipts.Delete(c.Context(), id, confirm, deleteImage); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted_id": id, "image_deleted": deleteImage})
}

// Summary godoc
// @Summary Monthly aggregation
// @Tags summary
// @Produce json
// @Param month path string true "Month (YYYY-MM)"
// @Param vendor_limit query int false "Top vendors" default(10)
// @Security Bearer
// @Success 200 {object} service.SummaryResult
// @Router /summary/{month} [get]
func (h *ReceiptHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.receipts.Summary(c.Context(), c.Params("month"), c.QueryInt("vendor_limit", 10))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(summary)
}

// Query godoc
// @Summary Natural-language trigger query
// @Description Dispatches one of three fixed trigger phrases; anything else is unrecognized
// @Tags query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Query text"
// @Security Bearer
// @Success 200 {object} service.QueryResult
// @Router /query [post]
func (h *ReceiptHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	result, err := h.queries.Dispatch(c.Context(), req.Text, req.Limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
