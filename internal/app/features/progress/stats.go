package progress

import (
	"math"
	"sort"

	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats summarizes a user's progress across roadmaps.
type Stats struct {
	TotalRoadmaps        int      `json:"totalRoadmaps"`
	CompletedRoadmaps    int      `json:"completedRoadmaps"`
	InProgressRoadmaps   int      `json:"inProgressRoadmaps"`
	TotalStepsCompleted  int      `json:"totalStepsCompleted"`
	TotalSteps           int      `json:"totalSteps"`
	CompletionPercentage int      `json:"completionPercentage"`
	CategoriesInProgress []string `json:"categoriesInProgress"`
}

// ComputeStats reduces records against the roadmaps they reference.
// Records whose roadmap is absent from roadmaps are ignored, and only step
// indices that are in range for the roadmap's current steps are counted.
func ComputeStats(records []models.Progress, roadmaps map[primitive.ObjectID]models.Roadmap) Stats {
	s := Stats{CategoriesInProgress: []string{}}
	categories := map[string]struct{}{}

	for _, p := range records {
		rm, ok := roadmaps[p.RoadmapID]
		if !ok {
			continue
		}
		total := len(rm.Steps)
		done := countInRange(p.CompletedSteps, total)

		s.TotalRoadmaps++
		s.TotalSteps += total
		s.TotalStepsCompleted += done
		if rm.Category != "" {
			categories[rm.Category] = struct{}{}
		}

		switch {
		case total > 0 && done == total:
			s.CompletedRoadmaps++
		case done > 0:
			s.InProgressRoadmaps++
		}
	}

	s.CompletionPercentage = percent(s.TotalStepsCompleted, s.TotalSteps)
	for c := range categories {
		s.CategoriesInProgress = append(s.CategoriesInProgress, c)
	}
	sort.Strings(s.CategoriesInProgress)
	return s
}

// countInRange counts distinct indices in [0, total).
func countInRange(steps []int, total int) int {
	seen := make(map[int]struct{}, len(steps))
	for _, i := range steps {
		if i >= 0 && i < total {
			seen[i] = struct{}{}
		}
	}
	return len(seen)
}

// percent returns round(part/whole*100), or 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
