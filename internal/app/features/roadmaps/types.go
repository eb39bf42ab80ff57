package roadmaps

import (
	"github.com/dalemusser/roadmaphub/internal/app/system/paging"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
)

// stepInput is one step of a create/update body.
type stepInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
}

// roadmapInput is the create/update body. Update replaces every field.
type roadmapInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	Steps       []stepInput `json:"steps"`
	Visibility  string      `json:"visibility"`
}

// listResponse is one page of roadmaps.
type listResponse struct {
	Roadmaps []models.Roadmap `json:"roadmaps"`
	Page     paging.Page      `json:"page"`
}
