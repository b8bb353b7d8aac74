// Path: internal/handlers/handlers.go
package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"securebank/internal/models"
	"securebank/internal/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const claimsKey = "user"

type Handler struct {
	bank   *sandbox.Bank
	tokens *sandbox.TokenService
	logger *zap.Logger
}

func NewHandler(bank *sandbox.Bank, tokens *sandbox.TokenService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		bank:   bank,
		tokens: tokens,
		logger: logger.With(zap.String("component", "sandbox-http")),
	}
}

type AppConfig struct {
	AllowOrigins string
	// AccessLog receives one line per request; nil disables the access log.
	AccessLog io.Writer
}

// NewApp builds the fiber application serving the banking REST surface
// under /api.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          h.ErrorHandler,
		DisableStartupMessage: true,
	})

	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: cfg.AccessLog,
		}))
	}

	api := app.Group("/api")
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", h.AuthMiddleware, h.Me)

	accounts := api.Group("/accounts", h.AuthMiddleware)
	accounts.Get("/", h.GetAccounts)
	accounts.Post("/", h.CreateAccount)
	accounts.Get("/:id", h.GetAccount)
	accounts.Get("/:id/balance", h.GetBalance)
	accounts.Get("/:id/statement", h.GetStatement)
	accounts.Patch("/:id/status", h.UpdateStatus)

	txs := api.Group("/transactions", h.AuthMiddleware)
	txs.Post("/deposit", h.Deposit)
	txs.Post("/withdraw", h.Withdraw)
	txs.Post("/transfer", h.Transfer)
	txs.Get("/", h.ListTransactions)
	txs.Get("/:id", h.GetTransaction)

	admin := api.Group("/admin", h.AuthMiddleware, h.AdminOnly)
	admin.Get("/dashboard", h.AdminDashboard)
	admin.Get("/users", h.AdminUsers)
	admin.Get("/accounts", h.AdminAccounts)
	admin.Get("/transactions", h.AdminTransactions)
	admin.Post("/accounts/:id/freeze", h.FreezeAccount)
	admin.Post("/accounts/:id/unfreeze", h.UnfreezeAccount)
	admin.Get("/audit-logs", h.AuditLogs)
	admin.Get("/reports/daily", h.DailyReport)

	return app
}

// ErrorHandler renders every failure in the response envelope.
func (h *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	details := ""

	var appErr *sandbox.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		details = appErr.Details
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		details = err.Error()
	}

	log := h.logger.With(zap.String("path", c.Path()), zap.Int("status", code), zap.Error(err))
	if code >= fiber.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Debug("Request rejected")
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
		"details": details,
	})
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(models.APIResponse[any]{Success: true, Message: message, Data: data})
}

func (h *Handler) AuthMiddleware(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return &sandbox.AppError{
			Code:    fiber.StatusUnauthorized,
			Message: "Missing token",
			Details: "Authorization header is empty",
		}
	}

	var token string
	if _, err := fmt.Sscanf(authHeader, "Bearer %s", &token); err != nil {
		return &sandbox.AppError{
			Code:    fiber.StatusUnauthorized,
			Message: "Invalid token format",
			Details: err.Error(),
		}
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		return err
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// AdminOnly must run after AuthMiddleware.
func (h *Handler) AdminOnly(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	if claims.Role != models.RoleAdmin {
		return &sandbox.AppError{
			Code:    fiber.StatusForbidden,
			Message: "Access denied",
			Details: "Administrator role required",
		}
	}
	return c.Next()
}

func claimsFrom(c *fiber.Ctx) (*models.Claims, error) {
	claims, ok := c.Locals(claimsKey).(*models.Claims)
	if !ok {
		return nil, &sandbox.AppError{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to retrieve user claims",
			Details: "User claims were not of the expected type",
		}
	}
	return claims, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &sandbox.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request format",
			Details: err.Error(),
			Err:     err,
		}
	}
	return nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, &sandbox.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid account ID",
			Details: fmt.Sprintf("id: %q", c.Params("id")),
			Err:     err,
		}
	}
	return int64(id), nil
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.bank.Register(req)
	if err != nil {
		return err
	}
	h.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return respond(c, fiber.StatusCreated, "Registration successful", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.bank.Authenticate(req.Username, req.Password)
	if err != nil {
		return err
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Login successful", models.AuthResponse{Token: token, Type: "Bearer", User: user})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	user, err := h.bank.User(claims.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", user)
}

func (h *Handler) GetAccounts(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", h.bank.Accounts(claims.UserID))
}

func (h *Handler) GetAccount(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	account, err := h.bank.Account(claims.UserID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", account)
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	balance, err := h.bank.Balance(claims.UserID, id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"balance": balance})
}

func (h *Handler) GetStatement(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	page, err := h.bank.Statement(claims.UserID, id, models.StatementQuery{
		Page:      c.QueryInt("page", 0),
		Size:      c.QueryInt("size", 0),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Type:      models.TransactionType(strings.ToUpper(c.Query("type"))),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", page)
}

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	var req models.CreateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := h.bank.CreateAccount(claims.UserID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Account created", account)
}

func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req models.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	account, err := h.bank.UpdateStatus(claims.UserID, id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Account status updated", account)
}

func (h *Handler) Deposit(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	var req models.TransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.bank.Deposit(claims.UserID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Deposit successful", tx)
}

func (h *Handler) Withdraw(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	var req models.TransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.bank.Withdraw(claims.UserID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Withdrawal successful", tx)
}

func (h *Handler) Transfer(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	var req models.TransferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.bank.Transfer(claims.UserID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Transfer successful", tx)
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	filter, err := transactionFilter(c)
	if err != nil {
		return err
	}
	page, err := h.bank.Transactions(claims.UserID, filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", page)
}

func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	tx, err := h.bank.Transaction(claims.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", tx)
}

// transactionFilter reads the shared transaction query parameters.
func transactionFilter(c *fiber.Ctx) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		Page:      c.QueryInt("page", 0),
		Size:      c.QueryInt("size", 0),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Type:      models.TransactionType(strings.ToUpper(c.Query("type"))),
		Status:    models.TransactionStatus(strings.ToUpper(c.Query("status"))),
	}
	var err error
	if f.MinAmount, err = queryDecimal(c, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = queryDecimal(c, "maxAmount"); err != nil {
		return f, err
	}
	return f, nil
}

func queryDecimal(c *fiber.Ctx, key string) (decimal.NullDecimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, &sandbox.AppError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid " + key,
			Details: err.Error(),
			Err:     err,
		}
	}
	return decimal.NewNullDecimal(d), nil
}
