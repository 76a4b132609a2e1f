package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/service"
)

// AdminSummary returns aggregate counts and sums over the whole registry.
func AdminSummary(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(s)
	}
}

// AdminRecentUploads returns the latest uploads, newest first.
func AdminRecentUploads(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		items, err := svc.RecentUploads(c.UserContext(), limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": items})
	}
}

// AdminTopDownloads returns documents ranked by download count.
func AdminTopDownloads(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		approvedOnly := c.Query("approvedOnly", "true") != "false"
		items, err := svc.TopDownloads(c.UserContext(), limit, approvedOnly)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": items})
	}
}

// AdminDownloadsByDay returns the gap-free daily download series for a chart.
func AdminDownloadsByDay(svc service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := strconv.Atoi(c.Query("days", "14"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DAYS", "invalid days")
		}
		series, err := svc.DownloadsByDay(c.UserContext(), days)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(series)
	}
}
