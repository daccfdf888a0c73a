package recipes

import (
	"github.com/recipevault/recipevault/internal/database"
	"github.com/recipevault/recipevault/internal/env"
)

type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type IngredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary is the list-view projection.
type RecipeSummary struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int32                `json:"time_minutes"`
	Price       string               `json:"price"`
	Link        *string              `json:"link"`
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

// RecipeDetail extends the summary with the fields only single-resource
// views carry.
type RecipeDetail struct {
	RecipeSummary
	User        int64   `json:"user"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func newRecipeSummary(r database.Recipe) RecipeSummary {
	summary := RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Tags:        make([]TagResponse, 0, len(r.Tags)),
		Ingredients: make([]IngredientResponse, 0, len(r.Ingredients)),
	}
	if r.Link.Valid {
		link := r.Link.String
		summary.Link = &link
	}
	for _, t := range r.Tags {
		summary.Tags = append(summary.Tags, TagResponse{ID: t.ID, Name: t.Name})
	}
	for _, ing := range r.Ingredients {
		summary.Ingredients = append(summary.Ingredients, IngredientResponse{ID: ing.ID, Name: ing.Name})
	}
	return summary
}

func newRecipeDetail(e *env.Env, r database.Recipe) RecipeDetail {
	detail := RecipeDetail{
		RecipeSummary: newRecipeSummary(r),
		User:          r.UserID,
	}
	if r.Description.Valid {
		description := r.Description.String
		detail.Description = &description
	}
	if r.ImageURL.Valid && r.ImageURL.String != "" {
		imageURL := r.ImageURL.String
		if e.FileStore != nil {
			imageURL = e.FileStore.FileURL(imageURL)
		}
		detail.Image = &imageURL
	}
	return detail
}
