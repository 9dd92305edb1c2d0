package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

var (
	ErrEmptyResponse = errors.New("no response text from model")
	ErrMissingAPIKey = errors.New("oracle API key is not configured")
)

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the Gemini API. The key travels in a request header, never in the URL.
type Client struct {
	models  *genai.Models
	model   string
	timeout time.Duration
}

// New builds a client. An empty API key yields a client whose every call fails with ErrMissingAPIKey,
// so the oracle falls back instead of the process refusing to start.
func New(ctx context.Context, conf Config) (*Client, error) {
	client := &Client{
		model:   conf.Model,
		timeout: conf.Timeout,
	}

	if client.model == "" {
		client.model = DefaultModel
	}

	if conf.APIKey == "" {
		return client, nil
	}

	baseURL := conf.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      conf.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: conf.Timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	client.models = sdk.Models

	return client, nil
}

// moveSchema is the JSON shape the model is asked to answer with.
var moveSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"row":       {Type: genai.TypeInteger, Description: "The row index (0-14)"},
		"col":       {Type: genai.TypeInteger, Description: "The column index (0-14)"},
		"reasoning": {Type: genai.TypeString, Description: "Strategic explanation of the move"},
		"winRate":   {Type: genai.TypeNumber, Description: "Estimated win probability (-1.0 to 1.0)"},
	},
	Required: []string{"row", "col", "reasoning", "winRate"},
}

// Complete - sends one generateContent request and returns the text of the first candidate.
func (that *Client) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if that.models == nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrOracleUnavailable, ErrMissingAPIKey)
	}

	if that.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.timeout)
		defer cancel()
	}

	resp, err := that.models.GenerateContent(ctx, that.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    moveSchema,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrOracleUnavailable, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: %w", apperror.ErrOracleUnavailable, ErrEmptyResponse)
	}

	return text, nil
}
