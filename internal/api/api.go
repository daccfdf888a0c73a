// Package api sets up and starts the API server with routing and middleware.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/recipevault/recipevault/internal/api/middleware"
	"github.com/recipevault/recipevault/internal/api/routes/ingredients"
	"github.com/recipevault/recipevault/internal/api/routes/ping"
	"github.com/recipevault/recipevault/internal/api/routes/recipes"
	"github.com/recipevault/recipevault/internal/api/routes/tags"
	"github.com/recipevault/recipevault/internal/api/routes/users"
	"github.com/recipevault/recipevault/internal/env"
)

func addRoutes(router *chi.Mux) {
	router.Get("/ping", ping.HandlePing)

	router.Route("/recipes", func(r chi.Router) {
		r.Use(middleware.Authenticate)

		r.Route("/recipe", func(r chi.Router) {
			r.Get("/", recipes.HandleListRecipes)
			r.Post("/", recipes.HandleCreateRecipe)

			r.Route("/{recipeID}", func(r chi.Router) {
				r.Get("/", recipes.HandleGetRecipe)
				r.Put("/", recipes.HandleReplaceRecipe)
				r.Patch("/", recipes.HandlePatchRecipe)
				r.Delete("/", recipes.HandleDeleteRecipe)
				r.Post("/upload_image", recipes.HandleUploadImage)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", tags.HandleListTags)
			r.Post("/", tags.HandleCreateTag)
			r.Put("/{tagID}", tags.HandleUpdateTag)
			r.Patch("/{tagID}", tags.HandleUpdateTag)
			r.Delete("/{tagID}", tags.HandleDeleteTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredients.HandleListIngredients)
			r.Post("/", ingredients.HandleCreateIngredient)
			r.Put("/{ingredientID}", ingredients.HandleUpdateIngredient)
			r.Patch("/{ingredientID}", ingredients.HandleUpdateIngredient)
			r.Delete("/{ingredientID}", ingredients.HandleDeleteIngredient)
		})
	})

	router.Route("/user", func(r chi.Router) {
		r.Post("/create", users.HandleCreateUser)
		r.Post("/token", users.HandleCreateToken)

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.Authenticate)
			r.Get("/", users.HandleGetMe)
			r.Patch("/", users.HandleUpdateMe)
		})
	})
}

// NewRouter wires the middleware chain and route table.
func NewRouter(environment *env.Env) *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimw.StripSlashes)
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(environment.Logger))
	router.Use(middleware.InjectEnv(environment))
	router.Use(middleware.AddCors)

	addRoutes(router)
	return router
}

func Start(environment *env.Env, port uint16) error {
	router := NewRouter(environment)

	addr := fmt.Sprintf(":%d", port)
	environment.Logger.Info(fmt.Sprintf("Listening at 0.0.0.0%s", addr))
	return http.ListenAndServe(addr, router)
}
