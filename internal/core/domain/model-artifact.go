package domain

import "path"

// ArtifactKind is a file uploaded under a fixed artifact path label.
type ArtifactKind struct {
	Label    string
	FileName string
}

var (
	ArtifactModelInfo    = ArtifactKind{Label: "model_info", FileName: "model_info.json"}
	ArtifactRequirements = ArtifactKind{Label: "requirements", FileName: "requirements.txt"}
	ArtifactMetrics      = ArtifactKind{Label: "metrics", FileName: "metrics.csv"}
	ArtifactModelConfig  = ArtifactKind{Label: "model_config", FileName: "model_config.json"}
	ArtifactModel        = ArtifactKind{Label: "model", FileName: "model.pkl"}
)

// Path is the artifact path as listed by the tracking server.
func (k ArtifactKind) Path() string {
	return path.Join(k.Label, k.FileName)
}

func (k ArtifactKind) String() string {
	return k.Path()
}

// Requirements is the pinned dependency list attached to every model.
const Requirements = "scikit-learn>=1.0.0\nmlflow>=2.0.0\npandas>=1.0.0\nnumpy>=1.0.0"

// MetricNames is the header row of metrics.csv, in column order.
var MetricNames = []string{"accuracy", "precision", "recall", "f1_score"}
