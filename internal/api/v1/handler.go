package v1

import (
	"strconv"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/api/contract"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/api/validator"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	topUp      service.TopUpService
	webhook    service.WebhookService
	XValidator validator.IXValidator
}

func NewHandler(logger *zap.Logger, topUp service.TopUpService, webhook service.WebhookService,
	XValidator validator.IXValidator) *Handler {
	return &Handler{
		logger:     logger,
		topUp:      topUp,
		webhook:    webhook,
		XValidator: XValidator,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) InitiateTopUp(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest InitiateTopUpRequest
	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.InitiateTopUpCommand{
		AccountID:   handlerRequest.AccountID,
		Amount:      handlerRequest.Amount,
		Description: handlerRequest.Description,
	}

	result, err := h.topUp.Initiate(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	h.logger.Info("Top-up request accepted",
		zap.String("transaction_id", result.TransactionID),
		zap.Int64("account_id", cmd.AccountID),
		zap.Duration("duration", time.Since(start)),
	)

	return c.JSON(contract.Response{Code: "success", Result: result})
}

func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	view, err := h.topUp.GetStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{Code: "success", Result: view})
}

func (h *Handler) VerifyTransaction(c *fiber.Ctx) error {
	view, err := h.topUp.VerifyNow(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{Code: "success", Result: view})
}

func (h *Handler) VerifyAccountPending(c *fiber.Ctx) error {
	accountID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(contract.Response{
			Code:    constants.ErrCodeInvalidRequestBody,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
		})
	}

	views, err := h.topUp.VerifyAllPendingForAccount(c.UserContext(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{Code: "success", Result: views})
}

// Callback receives provider confirmations. The body is passed through raw;
// parsing and signature checks belong to the gateway adapter.
func (h *Handler) Callback(c *fiber.Ctx) error {
	body := make([]byte, len(c.Body()))
	copy(body, c.Body())

	result, err := h.webhook.HandleCallback(c.UserContext(), service.HandleCallbackCommand{RawBody: body})
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{Code: "success", Result: result})
}
