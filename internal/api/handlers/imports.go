package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/api/middleware"
	"github.com/NeiruBugz/play-later/internal/controllers"
)

// ImportHandler handles Steam import and reconciliation endpoints.
type ImportHandler struct {
	importCtrl *controllers.ImportController
	logger     zerolog.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importCtrl *controllers.ImportController, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{importCtrl: importCtrl, logger: logger}
}

type connectSteamRequest struct {
	SteamID string `json:"steam_id"`
}

// ConnectSteam links the user's Steam account. Accepts a SteamID64 or
// a vanity name.
func (h *ImportHandler) ConnectSteam(c *fiber.Ctx) error {
	var req connectSteamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	conn, err := h.importCtrl.ConnectSteam(c.Context(), middleware.UserID(c), req.SteamID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(conn)
}

// Plan fetches the user's Steam library and returns the reconciliation
// plan without persisting anything.
func (h *ImportHandler) Plan(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	candidates, err := h.importCtrl.FetchCandidates(c.Context(), userID)
	if err != nil {
		return err
	}

	plan, err := h.importCtrl.PlanImport(c.Context(), userID, candidates)
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

// Apply fetches the user's Steam library, plans, and persists the
// toCreate set. Safe to call repeatedly.
func (h *ImportHandler) Apply(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	candidates, err := h.importCtrl.FetchCandidates(c.Context(), userID)
	if err != nil {
		return err
	}

	result, err := h.importCtrl.ApplyImport(c.Context(), userID, candidates)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type ignoreRequest struct {
	Title string `json:"title"`
}

// Ignore records a title as permanently skipped for future imports.
func (h *ImportHandler) Ignore(c *fiber.Ctx) error {
	var req ignoreRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.importCtrl.IgnoreTitle(c.Context(), middleware.UserID(c), req.Title); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
