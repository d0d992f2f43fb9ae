package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TherapyAppBack/internal/models"
)

var errInvalidToken = errors.New("invalid token")

// actorFromContext rebuilds the authenticated Actor from the Locals the auth
// middleware populated.
func actorFromContext(c *fiber.Ctx) (models.Actor, error) {
	idValue, ok := c.Locals("user_id").(string)
	if !ok {
		return models.Actor{}, errInvalidToken
	}
	roleValue, ok := c.Locals("role").(string)
	if !ok {
		return models.Actor{}, errInvalidToken
	}

	id, err := uuid.Parse(idValue)
	if err != nil {
		return models.Actor{}, errInvalidToken
	}
	role, ok := models.ParseRole(roleValue)
	if !ok {
		return models.Actor{}, errInvalidToken
	}

	return models.Actor{ID: id, Role: role}, nil
}
