package handlers

import (
	"securebank/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func pageQuery(c *fiber.Ctx) models.PageQuery {
	return models.PageQuery{Page: c.QueryInt("page", 0), Size: c.QueryInt("size", 0)}
}

func (h *Handler) AdminDashboard(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.bank.Metrics())
}

func (h *Handler) AdminUsers(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.bank.AllUsers(pageQuery(c)))
}

func (h *Handler) AdminAccounts(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.bank.AllAccounts(pageQuery(c)))
}

func (h *Handler) AdminTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return err
	}
	page, err := h.bank.AllTransactions(models.AdminTransactionFilter{
		TransactionFilter: filter,
		Username:          c.Query("username"),
		AccountNumber:     c.Query("accountNumber"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", page)
}

func (h *Handler) FreezeAccount(c *fiber.Ctx) error {
	return h.setFrozen(c, true)
}

func (h *Handler) UnfreezeAccount(c *fiber.Ctx) error {
	return h.setFrozen(c, false)
}

func (h *Handler) setFrozen(c *fiber.Ctx, frozen bool) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	account, err := h.bank.SetFrozen(claims.UserID, id, frozen)
	if err != nil {
		return err
	}
	message := "Account unfrozen"
	if frozen {
		message = "Account frozen"
	}
	h.logger.Info(message, zap.Int64("account_id", id), zap.String("admin", claims.Username))
	return respond(c, fiber.StatusOK, message, account)
}

func (h *Handler) AuditLogs(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.bank.AuditLogs(pageQuery(c)))
}

func (h *Handler) DailyReport(c *fiber.Ctx) error {
	report, err := h.bank.DailyReport(c.Query("date"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", report)
}
