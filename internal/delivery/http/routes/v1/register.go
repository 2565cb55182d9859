package v1

import (
	"parttime-match/internal/delivery/http/handler"
	"parttime-match/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Seeker *handler.SeekerHandler
	Shop   *handler.ShopHandler
	Post   *handler.PostHandler
	Match  *handler.MatchHandler
}

func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}

	protected := r.Group("", authMw.Middleware())

	RegisterUsers(protected.Group("/users"), h.User)
	RegisterSeekers(protected.Group("/seekers"), h.Seeker)
	RegisterShops(protected.Group("/shops"), h.Shop)
	RegisterPosts(protected.Group("/posts"), h.Post, h.Match)
}
