package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/payments"
)

var (
	webhookService *payments.Service
	webhookSecret  string
)

// InitializeWebhookController wires the payment service and signing secret
// used by the webhook endpoint.
func InitializeWebhookController(svc *payments.Service, secret string) {
	webhookService = svc
	webhookSecret = secret
}

// HandleStripeWebhook receives the processor's signed payment events.
// The signature is checked over the raw body before any parsing; only
// checkout.session.completed reconciles, every other type is acknowledged so
// the processor does not retry it. Reconciliation failures respond 500 on
// purpose: the processor redelivers and the pipeline is idempotent.
func HandleStripeWebhook(c *fiber.Ctx) error {
	if strings.TrimSpace(webhookSecret) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook secret not configured"})
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("stripe-signature"))
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing Stripe signature"})
	}

	if err := payments.VerifyStripeSignature(rawBody, signature, webhookSecret); err != nil {
		log.Printf("webhook: rejected event with invalid signature: %v", err)
		_ = counter.AddWebhookEvent(counter.OutcomeRejected)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	event, err := payments.ParseEvent(rawBody)
	if err != nil {
		log.Printf("webhook: verified event has invalid payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	if event.Type != payments.EventTypeCheckoutCompleted {
		_ = counter.AddWebhookEvent(counter.OutcomeIgnored)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	session, err := event.CheckoutSession()
	if err != nil {
		log.Printf("webhook: completed event has invalid session object: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := webhookService.ReconcileCompletedCheckout(ctx, session, event.Data.Object)
	if err != nil {
		if errors.Is(err, payments.ErrMissingMetadata) {
			log.Printf("webhook: session %s carries no user/game metadata", session.ID)
		} else {
			log.Printf("webhook: failed to process session %s: %v", session.ID, err)
		}
		_ = counter.AddWebhookEvent(counter.OutcomeFailed)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session"})
	}

	if result.Duplicate {
		log.Printf("webhook: session %s already credited, acknowledging redelivery", session.ID)
		_ = counter.AddWebhookEvent(counter.OutcomeDuplicate)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	_ = counter.AddWebhookEvent(counter.OutcomeProcessed)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
