package deploy

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Stages that report failures in an "error" field of a 200 response.
var errorReportingStages = []string{
	"METADATA_EXTRACTOR_URL",
	"TEXT_EXTRACTOR_URL",
	"LABEL_DETECTOR_URL",
	"OCR_STARTER_URL",
}

type workflowIndex struct {
	results    map[string]string // stage env var -> result variable
	conditions []string
}

func (w *workflowIndex) walk(node interface{}) {
	switch n := node.(type) {
	case map[string]interface{}:
		if n["call"] == "http.post" {
			if args, ok := n["args"].(map[string]interface{}); ok {
				url := fmt.Sprint(args["url"])
				if result, ok := n["result"].(string); ok {
					for _, stage := range errorReportingStages {
						if strings.Contains(url, stage) {
							w.results[stage] = result
						}
					}
				}
			}
		}
		if cond, ok := n["condition"].(string); ok {
			w.conditions = append(w.conditions, cond)
		}
		for _, v := range n {
			w.walk(v)
		}
	case []interface{}:
		for _, v := range n {
			w.walk(v)
		}
	}
}

func loadWorkflow(t *testing.T) *workflowIndex {
	t.Helper()
	data, err := os.ReadFile("workflow.yaml")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	w := &workflowIndex{results: map[string]string{}}
	w.walk(doc)
	return w
}

func TestWorkflowRaisesOnStageErrors(t *testing.T) {
	w := loadWorkflow(t)

	for _, stage := range errorReportingStages {
		result, ok := w.results[stage]
		require.True(t, ok, "no call to %s", stage)
		assert.Contains(t, w.conditions, fmt.Sprintf(`${"error" in %s.body}`, result), stage)
	}
}
