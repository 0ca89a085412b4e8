package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/NeiruBugz/play-later/internal/api/middleware"
	"github.com/NeiruBugz/play-later/internal/controllers"
	"github.com/NeiruBugz/play-later/internal/models"
)

// LibraryHandler handles library CRUD and status transitions.
type LibraryHandler struct {
	libraryCtrl *controllers.LibraryController
	logger      zerolog.Logger
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(libraryCtrl *controllers.LibraryController, logger zerolog.Logger) *LibraryHandler {
	return &LibraryHandler{libraryCtrl: libraryCtrl, logger: logger}
}

func filterFromQuery(c *fiber.Ctx) models.LibraryFilter {
	return models.LibraryFilter{
		Platform: models.Platform(c.Query("platform")),
		Status:   models.Status(c.Query("status")),
		Search:   c.Query("search"),
	}
}

// List returns the user's grouped library.
func (h *LibraryHandler) List(c *fiber.Ctx) error {
	grouped, err := h.libraryCtrl.GetLibrary(c.Context(), middleware.UserID(c), filterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"games": grouped, "count": len(grouped)})
}

// BacklogTime returns aggregated completion-time estimates for a
// filtered library view.
func (h *LibraryHandler) BacklogTime(c *fiber.Ctx) error {
	summary, err := h.libraryCtrl.BacklogTime(c.Context(), middleware.UserID(c), filterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

type addEntryRequest struct {
	GameID          string `json:"game_id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	Platform        string `json:"platform"`
	AcquisitionType string `json:"acquisition_type"`
}

// Add creates a library entry manually.
func (h *LibraryHandler) Add(c *fiber.Ctx) error {
	var req addEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.libraryCtrl.AddEntry(c.Context(), middleware.UserID(c), controllers.AddEntryParams{
		GameID:          req.GameID,
		Title:           req.Title,
		Status:          req.Status,
		Platform:        req.Platform,
		AcquisitionType: req.AcquisitionType,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus applies a status transition to an entry.
func (h *LibraryHandler) UpdateStatus(c *fiber.Ctx) error {
	entryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid entry id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	entry, updateErr := h.libraryCtrl.UpdateStatus(c.Context(), middleware.UserID(c), uint(entryID), req.Status)
	if updateErr != nil {
		return updateErr
	}
	return c.JSON(entry)
}

// Delete soft-deletes a library entry.
func (h *LibraryHandler) Delete(c *fiber.Ctx) error {
	entryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid entry id")
	}

	if err := h.libraryCtrl.DeleteEntry(c.Context(), middleware.UserID(c), uint(entryID)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
