package progress

import (
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// upsertInput is the POST / body.
type upsertInput struct {
	Roadmap        string `json:"roadmap"`
	CompletedSteps *[]int `json:"completedSteps"`
}

// roadmapSummary is the part of a roadmap shown alongside progress.
type roadmapSummary struct {
	ID         primitive.ObjectID `json:"id"`
	Title      string             `json:"title"`
	Category   string             `json:"category"`
	TotalSteps int                `json:"totalSteps"`
	Status     string             `json:"status"`
}

// progressView is a progress record joined with its roadmap. Details is
// nil when the roadmap no longer exists.
type progressView struct {
	models.Progress
	Details    *roadmapSummary `json:"roadmapDetails"`
	Percentage int             `json:"percentage"`
}

func newView(p models.Progress, rm *models.Roadmap) progressView {
	v := progressView{Progress: p}
	if rm != nil {
		total := len(rm.Steps)
		v.Details = &roadmapSummary{
			ID:         rm.ID,
			Title:      rm.Title,
			Category:   rm.Category,
			TotalSteps: total,
			Status:     rm.Status,
		}
		v.Percentage = percent(countInRange(p.CompletedSteps, total), total)
	}
	return v
}
