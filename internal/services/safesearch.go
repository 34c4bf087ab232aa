package services

import (
	"context"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

type SafeSearchResult struct {
	Adult    string
	Violence string
	Racy     string
	Spoof    string
	Medical  string
}

// SafeSearchDetector annotates the image at a gs:// URI.
type SafeSearchDetector func(ctx context.Context, gcsURI string) (*SafeSearchResult, error)

// NewVisionSafeSearch builds a detector backed by the Cloud Vision API.
func NewVisionSafeSearch(ctx context.Context, opts ...option.ClientOption) (SafeSearchDetector, error) {
	opts = append([]option.ClientOption{option.WithScopes(vision.CloudPlatformScope)}, opts...)
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, gcsURI string) (*SafeSearchResult, error) {
		call := svc.Images.Annotate(&vision.BatchAnnotateImagesRequest{
			Requests: []*vision.AnnotateImageRequest{{
				Image: &vision.Image{
					Source: &vision.ImageSource{GcsImageUri: gcsURI},
				},
				Features: []*vision.Feature{
					{Type: "SAFE_SEARCH_DETECTION"},
				},
			}},
		})
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		if len(resp.Responses) == 0 || resp.Responses[0].SafeSearchAnnotation == nil {
			return &SafeSearchResult{}, nil
		}

		ss := resp.Responses[0].SafeSearchAnnotation
		return &SafeSearchResult{
			Adult:    ss.Adult,
			Violence: ss.Violence,
			Racy:     ss.Racy,
			Spoof:    ss.Spoof,
			Medical:  ss.Medical,
		}, nil
	}, nil
}

func likelyOrHigher(l string) bool {
	return l == "LIKELY" || l == "VERY_LIKELY"
}

// IsUnsafe ignores spoof and medical.
func (r *SafeSearchResult) IsUnsafe() bool {
	return likelyOrHigher(r.Adult) || likelyOrHigher(r.Violence) || likelyOrHigher(r.Racy)
}
