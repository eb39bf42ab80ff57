package roadmaps

import (
	"fmt"
	"strings"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/app/system/apierr"
	"github.com/dalemusser/roadmaphub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/roadmaphub/internal/app/system/inputval"
	"github.com/dalemusser/roadmaphub/internal/app/system/normalize"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
)

// clean strips markup and normalizes every field of in, then validates the
// result. Field errors are keyed by JSON path, e.g. "steps[2].title".
func (in roadmapInput) clean() (roadmapstore.Update, *apierr.Error) {
	fields := map[string]string{}

	out := roadmapstore.Update{
		Title:       normalize.Name(htmlsanitize.PlainText(in.Title)),
		Description: htmlsanitize.PlainText(in.Description),
		Category:    normalize.Category(htmlsanitize.PlainText(in.Category)),
		Tags:        normalize.Tags(htmlsanitize.PlainTexts(in.Tags)),
		Visibility:  strings.ToLower(strings.TrimSpace(in.Visibility)),
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}

	switch {
	case out.Title == "":
		fields["title"] = "is required"
	case inputval.TooLong(out.Title, inputval.MaxTitleLen):
		fields["title"] = fmt.Sprintf("must be at most %d characters", inputval.MaxTitleLen)
	}
	switch {
	case out.Category == "":
		fields["category"] = "is required"
	case inputval.TooLong(out.Category, inputval.MaxCategoryLen):
		fields["category"] = fmt.Sprintf("must be at most %d characters", inputval.MaxCategoryLen)
	}
	if inputval.TooLong(out.Description, inputval.MaxDescriptionLen) {
		fields["description"] = fmt.Sprintf("must be at most %d characters", inputval.MaxDescriptionLen)
	}

	if len(out.Tags) > inputval.MaxTags {
		fields["tags"] = fmt.Sprintf("at most %d tags are allowed", inputval.MaxTags)
	}
	for i, tag := range out.Tags {
		if inputval.TooLong(tag, inputval.MaxTagLen) {
			fields[fmt.Sprintf("tags[%d]", i)] = fmt.Sprintf("must be at most %d characters", inputval.MaxTagLen)
		}
	}

	switch out.Visibility {
	case "":
		out.Visibility = models.VisibilityPublic
	case models.VisibilityPublic, models.VisibilityPrivate:
	default:
		fields["visibility"] = `must be "public" or "private"`
	}

	switch {
	case len(in.Steps) == 0:
		fields["steps"] = "at least one step is required"
	case len(in.Steps) > inputval.MaxSteps:
		fields["steps"] = fmt.Sprintf("at most %d steps are allowed", inputval.MaxSteps)
	}
	out.Steps = make([]models.Step, len(in.Steps))
	for i, st := range in.Steps {
		step := models.Step{
			Title:       normalize.Name(htmlsanitize.PlainText(st.Title)),
			Description: htmlsanitize.PlainText(st.Description),
			Resources:   normalize.Resources(st.Resources),
		}
		path := fmt.Sprintf("steps[%d]", i)

		switch {
		case step.Title == "":
			fields[path+".title"] = "is required"
		case inputval.TooLong(step.Title, inputval.MaxTitleLen):
			fields[path+".title"] = fmt.Sprintf("must be at most %d characters", inputval.MaxTitleLen)
		}
		if inputval.TooLong(step.Description, inputval.MaxDescriptionLen) {
			fields[path+".description"] = fmt.Sprintf("must be at most %d characters", inputval.MaxDescriptionLen)
		}
		if len(step.Resources) > inputval.MaxResources {
			fields[path+".resources"] = fmt.Sprintf("at most %d resources are allowed", inputval.MaxResources)
		}
		for j, link := range step.Resources {
			if !inputval.IsHTTPURL(link) {
				fields[fmt.Sprintf("%s.resources[%d]", path, j)] = "must be an absolute http(s) URL"
			}
		}
		out.Steps[i] = step
	}

	if len(fields) > 0 {
		return roadmapstore.Update{}, apierr.Validation("roadmap is invalid", fields)
	}
	return out, nil
}
