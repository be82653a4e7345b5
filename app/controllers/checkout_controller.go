package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/payments"
)

var checkoutService *payments.Service

// InitializeCheckoutController wires the payment service used by the
// checkout endpoint.
func InitializeCheckoutController(svc *payments.Service) {
	checkoutService = svc
}

// CreateCheckoutSessionRequest is the JSON body of
// POST /api/create-checkout-session.
type CreateCheckoutSessionRequest struct {
	GameID      string `json:"gameId" validate:"required"`
	AccessToken string `json:"accessToken" validate:"required"`
}

// HandleCreateCheckoutSession authenticates the caller, resolves the game and
// opens a hosted checkout session. The response carries only the opaque
// session id; the browser uses it to enter the processor's hosted flow.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	if checkoutService == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Service not configured"})
	}

	var req CreateCheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing gameId or accessToken"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing gameId or accessToken"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sessionID, err := checkoutService.InitiateCheckout(ctx, req.GameID, req.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid session"})
		case errors.Is(err, payments.ErrGameNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
		}

		var upstream *payments.UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("checkout: stripe rejected session for game=%s: %v", req.GameID, upstream)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create checkout session"})
		}

		log.Printf("checkout: initiation failed for game=%s: %v", req.GameID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create checkout session"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"sessionId": sessionID})
}
