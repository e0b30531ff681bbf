package apiclient

import (
	"context"
	"net/http"
)

// The chat assistant and the image classifier are separate services; build
// a Client per base URL and call these on it.

type ChatAnswer struct {
	Text string `json:"text"`
}

func (c *Client) Ask(ctx context.Context, question string) (ChatAnswer, error) {
	resp, err := c.Request(ctx, http.MethodPost, "/chat", Options{
		Op:   "chat.ask",
		JSON: map[string]string{"question": question},
	})
	if err != nil {
		return ChatAnswer{}, err
	}

	var out ChatAnswer
	if err := resp.Decode(&out); err != nil {
		return ChatAnswer{}, err
	}
	return out, nil
}

type Prediction struct {
	Prediction      string  `json:"prediction"`
	ConfidenceScore float64 `json:"confidence_score"`
	ModelVersion    string  `json:"model_version,omitempty"`
}

func (c *Client) Classify(ctx context.Context, image ImageUpload) (Prediction, error) {
	resp, err := c.Request(ctx, http.MethodPost, "/api/predict", Options{
		Op: "classifier.predict",
		Multipart: &Multipart{
			File: &File{
				Field:       "file",
				Name:        image.Name,
				ContentType: image.ContentType,
				Reader:      image.Reader,
			},
		},
	})
	if err != nil {
		return Prediction{}, err
	}

	var out Prediction
	if err := resp.Decode(&out); err != nil {
		return Prediction{}, err
	}
	return out, nil
}
