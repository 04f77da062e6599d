package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/service"
	"expense-tracker/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const receiptFormField = "receipt"

type ReceiptService interface {
	Extract(ctx context.Context, doc models.UploadedDocument) (*models.ExtractionResult, error)
	Commit(ctx context.Context, userID uuid.UUID, input service.ReceiptExpenseInput) (*models.Expense, error)
}

type ReceiptHandler struct {
	receiptService ReceiptService
	uploadDir      string
	logger         *zap.Logger
}

func NewReceiptHandler(receiptService ReceiptService, uploadDir string, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		uploadDir:      uploadDir,
		logger:         logger,
	}
}

// ExtractReceipt godoc
// @Summary Extract expense data from a receipt
// @Description Runs OCR (images) or text-layer extraction (PDF) and parses amount, merchant, date, category and items
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param receipt formData file true "Receipt image (JPEG, PNG) or PDF, up to 10MB"
// @Security Bearer
// @Success 200 {object} dto.ExtractReceiptResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/receipts/extract [post]
func (h *ReceiptHandler) ExtractReceipt(c *fiber.Ctx) error {
	file, err := c.FormFile(receiptFormField)
	if err != nil {
		return h.receiptError(c, service.NewMissingFileError(err))
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error("Failed to create upload directory", zap.String("dir", h.uploadDir), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Error processing receipt")
	}

	path := filepath.Join(h.uploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, path); err != nil {
		h.logger.Error("Failed to store upload", zap.String("filename", file.Filename), zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, "Error processing receipt")
	}

	result, err := h.receiptService.Extract(c.Context(), models.UploadedDocument{
		Path:     path,
		MIMEType: file.Header.Get(fiber.HeaderContentType),
		Size:     file.Size,
	})
	if err != nil {
		return h.receiptError(c, err)
	}

	return c.JSON(dto.NewExtractReceiptResponse(result))
}

// AddExpenseFromReceipt godoc
// @Summary Save a confirmed receipt as an expense
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.AddExpenseFromReceiptRequest true "Confirmed receipt data"
// @Security Bearer
// @Success 200 {object} dto.AddExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/receipts/add-expense [post]
func (h *ReceiptHandler) AddExpenseFromReceipt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authorized")
	}

	var req dto.AddExpenseFromReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	expense, err := h.receiptService.Commit(c.Context(), userID, service.ReceiptExpenseInput{
		Amount:   req.Amount,
		Category: req.Category,
		Merchant: req.Merchant,
		Date:     req.Date,
		Items:    dto.NewExpenseItems(req.Items),
	})
	if err != nil {
		return h.receiptError(c, err)
	}

	return c.JSON(dto.AddExpenseResponse{
		Success: true,
		Message: "Expense added successfully from receipt",
		Expense: dto.NewExpenseResponse(expense),
	})
}

func (h *ReceiptHandler) receiptError(c *fiber.Ctx, err error) error {
	re := service.AsReceiptError(err)
	status := statusForCode(re.Code)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Receipt request failed", zap.String("code", string(re.Code)), zap.Error(err))
	} else {
		h.logger.Info("Receipt request rejected", zap.String("code", string(re.Code)), zap.Error(err))
	}
	return errorJSON(c, status, re.Message)
}

func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.ErrorValidationFailed, service.ErrorUnreadableContent:
		return fiber.StatusBadRequest
	case service.ErrorRecognitionFailed:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Success: false, Message: message})
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals(middleware.UserIDLocalKey).(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}
