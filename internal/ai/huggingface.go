package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HuggingFaceClassifier calls a zero-shot classification model on the
// HuggingFace inference API (facebook/bart-large-mnli by default).
type HuggingFaceClassifier struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	model      string
	apiKey     string
}

// NewHuggingFaceClassifier creates a classifier. A nil httpClient gets a
// client with a 30s safety timeout; callers still bound each call by ctx.
func NewHuggingFaceClassifier(httpClient *http.Client, baseURL, model, apiKey string) *HuggingFaceClassifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HuggingFaceClassifier{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

// Name implements Classifier.
func (c *HuggingFaceClassifier) Name() string { return "huggingface" }

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// zeroShotResponse is the classic pipeline shape: parallel label/score arrays.
type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// Classify implements Classifier. Results are sorted by score, best first.
func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string, labels []string) ([]Label, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding zero-shot request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building zero-shot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zero-shot http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("zero-shot request: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading zero-shot response: %w", err)
	}
	return decodeZeroShot(raw)
}

// decodeZeroShot accepts both the {labels, scores} object and the newer
// [{label, score}] list returned by the serverless router.
func decodeZeroShot(raw []byte) ([]Label, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyResponse
	}

	var out []Label
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decoding zero-shot response: %w", err)
		}
	} else {
		var zs zeroShotResponse
		if err := json.Unmarshal(trimmed, &zs); err != nil {
			return nil, fmt.Errorf("decoding zero-shot response: %w", err)
		}
		out = make([]Label, len(zs.Labels))
		for i, l := range zs.Labels {
			out[i] = Label{Name: l}
			if i < len(zs.Scores) {
				out[i].Score = zs.Scores[i]
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}
