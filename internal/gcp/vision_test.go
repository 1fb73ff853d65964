package gcp

import (
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/stretchr/testify/assert"
)

func TestLabelNames(t *testing.T) {
	annotations := []*visionpb.EntityAnnotation{
		{Description: "Dog", Score: 0.98},
		{Description: "Grass", Score: 0.69},
		{Description: "Pet", Score: 0.7},
		{Description: "", Score: 0.9},
		{Description: "Fur", Score: 0.75},
	}
	assert.Equal(t, []string{"Dog", "Pet", "Fur"}, labelNames(annotations, 0.7))
	assert.Empty(t, labelNames(nil, 0.7))
}
