package rest

import (
	"strconv"

	domainEngine "github.com/savora/savora/domains/engine"
	domainRecipe "github.com/savora/savora/domains/recipe"
	"github.com/savora/savora/pkg/utils"
	"github.com/savora/savora/validations"
	"github.com/gofiber/fiber/v2"
)

type Recipe struct {
	Service domainEngine.IEngineUsecase
}

func InitRestRecipe(app fiber.Router, service domainEngine.IEngineUsecase) Recipe {
	rest := Recipe{Service: service}
	app.Get("/recipes/cached", rest.ListCached)
	app.Delete("/recipes/cached", rest.ClearCache)
	app.Get("/recipes/search", rest.Search)
	app.Post("/recipes/generate", rest.Generate)
	app.Get("/recipes/:id", rest.GetRecipe)
	app.Put("/recipes/:id/favorite", rest.Favorite)
	app.Delete("/recipes/:id/favorite", rest.Unfavorite)
	app.Get("/recipes/:id/favorite", rest.IsFavorite)
	app.Put("/preferences", rest.UpdatePreferences)
	app.Post("/favorites/refresh", rest.RefreshFavorites)

	return rest
}

func (handler *Recipe) ListCached(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cached recipes retrieved",
		Results: handler.Service.ListCachedRecipes(),
	})
}

func (handler *Recipe) ClearCache(c *fiber.Ctx) error {
	handler.Service.ClearCache()

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleared successfully",
	})
}

func (handler *Recipe) GetRecipe(c *fiber.Ctx) error {
	id := c.Params("id")
	recipe, err := handler.Service.GetRecipe(c.UserContext(), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recipe retrieved",
		Results: recipe,
	})
}

func (handler *Recipe) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	filters := searchFiltersFromQuery(c)

	utils.PanicIfNeeded(validations.ValidateSearch(c.UserContext(), query))

	results, err := handler.Service.Search(c.UserContext(), query, filters)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Search completed",
		Results: results,
	})
}

func (handler *Recipe) Generate(c *fiber.Ctx) error {
	var request domainRecipe.GenerateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	utils.PanicIfNeeded(validations.ValidateGenerateRecipe(c.UserContext(), request))

	response, err := handler.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	message := "Recipe generated"
	if response.Queued {
		message = "Remote service unavailable, generation queued for sync"
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: response,
	})
}

func (handler *Recipe) Favorite(c *fiber.Ctx) error {
	id := c.Params("id")
	utils.PanicIfNeeded(validations.ValidateRecipeID(c.UserContext(), id))

	result, err := handler.Service.Favorite(c.UserContext(), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recipe favorited",
		Results: result,
	})
}

func (handler *Recipe) Unfavorite(c *fiber.Ctx) error {
	id := c.Params("id")
	utils.PanicIfNeeded(validations.ValidateRecipeID(c.UserContext(), id))

	result, err := handler.Service.Unfavorite(c.UserContext(), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recipe unfavorited",
		Results: result,
	})
}

func (handler *Recipe) IsFavorite(c *fiber.Ctx) error {
	id := c.Params("id")

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorite status retrieved",
		Results: fiber.Map{"recipe_id": id, "is_favorite": handler.Service.IsOfflineFavorite(id)},
	})
}

func (handler *Recipe) UpdatePreferences(c *fiber.Ctx) error {
	var prefs domainRecipe.Preferences
	if err := c.BodyParser(&prefs); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	result, err := handler.Service.UpdatePreferences(c.UserContext(), prefs)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Preferences updated",
		Results: result,
	})
}

func (handler *Recipe) RefreshFavorites(c *fiber.Ctx) error {
	err := handler.Service.RefreshFavorites(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Favorites refreshed from server",
	})
}

func searchFiltersFromQuery(c *fiber.Ctx) domainRecipe.SearchFilters {
	filters := domainRecipe.SearchFilters{
		Diet: c.Query("diet"),
	}
	if cuisines := c.Query("cuisine"); cuisines != "" {
		filters.Cuisines = append(filters.Cuisines, cuisines)
	}
	if tags := c.Query("tag"); tags != "" {
		filters.Tags = append(filters.Tags, tags)
	}
	if maxPrep := c.Query("max_prep"); maxPrep != "" {
		if n, err := strconv.Atoi(maxPrep); err == nil && n > 0 {
			filters.MaxPrepMinutes = n
		}
	}
	return filters
}
