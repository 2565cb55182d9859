package v1

import (
	"parttime-match/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterUsers(r fiber.Router, userHandler *handler.UserHandler) {
	if r == nil || userHandler == nil {
		return
	}
	userHandler.RegisterRoutes(r)
}

func RegisterSeekers(r fiber.Router, seekerHandler *handler.SeekerHandler) {
	if r == nil || seekerHandler == nil {
		return
	}
	seekerHandler.RegisterRoutes(r)
}

func RegisterShops(r fiber.Router, shopHandler *handler.ShopHandler) {
	if r == nil || shopHandler == nil {
		return
	}
	shopHandler.RegisterRoutes(r)
}

func RegisterPosts(r fiber.Router, postHandler *handler.PostHandler, matchHandler *handler.MatchHandler) {
	if r == nil || postHandler == nil {
		return
	}

	postHandler.RegisterRoutes(r)
	if matchHandler != nil {
		matchHandler.RegisterRoutes(r)
	}
}
