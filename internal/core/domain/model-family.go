package domain

import "strings"

// ModelFamily ties a run-name keyword to the local files of one trained model.
type ModelFamily struct {
	Keyword  string
	FileStem string
}

var (
	FamilyLogisticRegression = ModelFamily{Keyword: "logistic", FileStem: "iris_logistic_regression"}
	FamilyRandomForest       = ModelFamily{Keyword: "random", FileStem: "iris_random_forest"}
)

// DefaultFamilies is ordered: the first keyword found in a run name wins.
var DefaultFamilies = []ModelFamily{
	FamilyLogisticRegression,
	FamilyRandomForest,
}

func (f ModelFamily) MetadataFileName() string {
	return f.FileStem + "_metadata.json"
}

func (f ModelFamily) ModelFileName() string {
	return f.FileStem + ".pkl"
}

// ClassifyRun returns the first family whose keyword is a substring of the
// lowercased run name.
func ClassifyRun(runName string, families []ModelFamily) (ModelFamily, bool) {
	name := strings.ToLower(runName)
	for _, f := range families {
		if strings.Contains(name, f.Keyword) {
			return f, true
		}
	}
	return ModelFamily{}, false
}
