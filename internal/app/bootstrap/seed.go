// internal/app/bootstrap/seed.go
package bootstrap

import (
	"context"
	"fmt"

	roadmapstore "github.com/dalemusser/roadmaphub/internal/app/store/roadmaps"
	"github.com/dalemusser/roadmaphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// seedCreator owns the starter catalog. No user has this subject, so only
// admins can edit or archive seeded roadmaps.
const seedCreator = "system"

func step(title, description string, resources ...string) models.Step {
	return models.Step{Title: title, Description: description, Resources: resources}
}

// starterRoadmaps is the catalog inserted into an empty database.
func starterRoadmaps() []models.Roadmap {
	return []models.Roadmap{
		{
			Title:       "Frontend Developer",
			Description: "HTML, CSS, JavaScript and modern frontend frameworks to build interactive UIs.",
			Category:    "Frontend",
			Tags:        []string{"html", "css", "javascript", "react"},
			Steps: []models.Step{
				step("HTML & CSS", "Semantics, layouts, Flexbox, Grid", "https://developer.mozilla.org/en-US/docs/Web/HTML", "https://developer.mozilla.org/en-US/docs/Web/CSS"),
				step("JavaScript Basics", "DOM, ES6+, event handling, async", "https://javascript.info/"),
				step("Build Tools & Package Managers", "npm, bundlers, module systems", "https://nodejs.org/en/docs/"),
				step("React (or similar)", "Components, hooks, state management", "https://react.dev/"),
				step("Routing & Data Fetching", "Client routing, REST and GraphQL", "https://reactrouter.com/"),
				step("Performance & Accessibility", "Lighthouse, a11y basics", "https://web.dev/"),
			},
		},
		{
			Title:       "Backend Developer",
			Description: "Server-side development, APIs, databases and authentication.",
			Category:    "Backend",
			Tags:        []string{"api", "databases", "auth"},
			Steps: []models.Step{
				step("Language Fundamentals", "Pick a server language and learn its runtime", "https://go.dev/doc/"),
				step("HTTP & Routing", "Handlers, middleware, error handling", "https://developer.mozilla.org/en-US/docs/Web/HTTP"),
				step("Databases", "MongoDB (NoSQL) or SQL", "https://www.mongodb.com/docs/", "https://www.postgresql.org/docs/"),
				step("Authentication & Authorization", "JWT, sessions, OAuth", "https://jwt.io/", "https://oauth.net/"),
				step("Testing & Validation", "Unit and integration tests"),
				step("Deployment & Monitoring", "Process supervision, structured logging"),
			},
		},
		{
			Title:       "DevOps Engineer",
			Description: "Infrastructure automation, CI/CD, containerization and monitoring.",
			Category:    "DevOps",
			Tags:        []string{"docker", "ci", "aws", "kubernetes"},
			Steps: []models.Step{
				step("Linux & Shell", "CLI tools and basic scripting", "https://linuxjourney.com/"),
				step("Version Control & CI", "Git and CI systems", "https://docs.github.com/en/actions"),
				step("Containers (Docker)", "Images, containers, registries", "https://docs.docker.com/"),
				step("Orchestration (Kubernetes)", "Deploy, scale, services", "https://kubernetes.io/docs/home/"),
				step("Infrastructure as Code", "Terraform/CloudFormation", "https://www.terraform.io/docs"),
				step("Monitoring & Alerts", "Prometheus, Grafana", "https://prometheus.io/docs/"),
			},
		},
		{
			Title:       "Data Scientist",
			Description: "Statistics, data wrangling, visualization and modeling.",
			Category:    "Data",
			Tags:        []string{"python", "pandas", "ml", "statistics"},
			Steps: []models.Step{
				step("Python for Data", "NumPy, pandas basics", "https://pandas.pydata.org/docs/"),
				step("Statistics & Probability", "Descriptive stats, hypothesis testing", "https://stattrek.com/"),
				step("Data Visualization", "Matplotlib, Seaborn, interactive viz", "https://matplotlib.org/"),
				step("Machine Learning Basics", "Supervised and unsupervised learning", "https://scikit-learn.org/stable/"),
				step("Model Evaluation", "Cross-validation, metrics", "https://scikit-learn.org/stable/modules/model_evaluation.html"),
			},
		},
		{
			Title:       "Machine Learning Engineer",
			Description: "Build, train and deploy scalable ML systems.",
			Category:    "AI/ML",
			Tags:        []string{"ml", "deep-learning", "pytorch"},
			Steps: []models.Step{
				step("Linear Algebra & Probability", "Math foundations for ML", "https://www.khanacademy.org/math/linear-algebra"),
				step("Core ML Algorithms", "Regression, trees, clustering", "https://scikit-learn.org/stable/"),
				step("Deep Learning", "Neural networks, CNNs, RNNs", "https://www.deeplearning.ai/"),
				step("Frameworks", "TensorFlow or PyTorch", "https://pytorch.org/", "https://www.tensorflow.org/"),
				step("MLOps & Deployment", "Serving models and monitoring", "https://mlflow.org/"),
			},
		},
		{
			Title:       "AI Engineer (LLMs)",
			Description: "Large language models, embeddings, prompt engineering and vector search.",
			Category:    "AI/LLM",
			Tags:        []string{"llm", "nlp", "prompt", "vector-db"},
			Steps: []models.Step{
				step("NLP Basics", "Tokenization, embeddings, language tasks", "https://nlp.stanford.edu/"),
				step("Transformer Architectures", "Self-attention and transformers", "https://arxiv.org/abs/1706.03762"),
				step("Working with LLMs", "APIs, fine-tuning, safety"),
				step("Vector Databases", "Similarity search basics"),
				step("Productionization", "Latency, cost, retrieval"),
			},
		},
		{
			Title:       "Android Developer",
			Description: "Build native Android apps with Kotlin and the Android SDK.",
			Category:    "Mobile",
			Tags:        []string{"android", "kotlin", "mobile"},
			Steps: []models.Step{
				step("Kotlin Language", "Syntax, coroutines", "https://kotlinlang.org/docs/home.html"),
				step("Android Fundamentals", "Activities, fragments, layouts", "https://developer.android.com/docs"),
				step("Jetpack Compose", "Modern UI toolkit", "https://developer.android.com/jetpack/compose"),
				step("Networking & Persistence", "Retrofit, Room", "https://square.github.io/retrofit/"),
				step("Testing & Publishing", "Unit and instrumented tests, Play Store", "https://developer.android.com/studio/test"),
			},
		},
		{
			Title:       "iOS Developer",
			Description: "Build native iOS apps using Swift and SwiftUI.",
			Category:    "Mobile",
			Tags:        []string{"ios", "swift", "mobile"},
			Steps: []models.Step{
				step("Swift Language", "Syntax, optionals, concurrency", "https://swift.org/documentation/"),
				step("SwiftUI Basics", "Views, state, layout", "https://developer.apple.com/documentation/swiftui"),
				step("UIKit & Interop", "Legacy UI and bridging", "https://developer.apple.com/documentation/uikit"),
				step("Networking & Storage", "URLSession, Core Data", "https://developer.apple.com/documentation/foundation/urlsession"),
				step("Testing & App Store", "Unit and UI tests, publishing", "https://developer.apple.com/app-store/"),
			},
		},
	}
}

// seedRoadmaps inserts the starter catalog when the roadmaps collection has
// no documents (active or archived). It returns how many were inserted.
func seedRoadmaps(ctx context.Context, db *mongo.Database, logger *zap.Logger) (int, error) {
	store := roadmapstore.New(db)
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count roadmaps: %w", err)
	}
	if n > 0 {
		logger.Debug("roadmaps present, skipping seed", zap.Int64("count", n))
		return 0, nil
	}

	inserted := 0
	for _, rm := range starterRoadmaps() {
		rm.CreatedBy = seedCreator
		rm.CreatedByName = "RoadmapHub"
		rm.Visibility = models.VisibilityPublic
		if _, err := store.Create(ctx, rm); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", rm.Title, err)
		}
		inserted++
	}
	logger.Info("seeded starter roadmaps", zap.Int("count", inserted))
	return inserted, nil
}
