package gcp

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// VisionClient detects labels in images stored in Cloud Storage.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClient creates an image annotator client.
func NewVisionClient(ctx context.Context) (*VisionClient, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision.NewImageAnnotatorClient: %w", err)
	}
	return &VisionClient{client: client}, nil
}

// DetectLabels asks for up to maxLabels labels and keeps those scoring at least
// minConfidence, in the service's ranking order.
func (c *VisionClient) DetectLabels(ctx context.Context, bucket, name string, maxLabels int, minConfidence float32) ([]string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{
					Source: &visionpb.ImageSource{GcsImageUri: fmt.Sprintf("gs://%s/%s", bucket, name)},
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(maxLabels)},
				},
			},
		},
	}
	resp, err := c.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("label detection for gs://%s/%s: %w", bucket, name, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, nil
	}
	res := resp.GetResponses()[0]
	if res.GetError() != nil && res.GetError().GetCode() != 0 {
		return nil, fmt.Errorf("label detection for gs://%s/%s: %s", bucket, name, res.GetError().GetMessage())
	}
	return labelNames(res.GetLabelAnnotations(), minConfidence), nil
}

// Close releases the annotator client.
func (c *VisionClient) Close() error {
	return c.client.Close()
}

func labelNames(annotations []*visionpb.EntityAnnotation, minConfidence float32) []string {
	var names []string
	for _, a := range annotations {
		if a.GetScore() >= minConfidence && a.GetDescription() != "" {
			names = append(names, a.GetDescription())
		}
	}
	return names
}
