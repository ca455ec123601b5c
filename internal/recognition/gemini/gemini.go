package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"splitinvoice/internal/recognition"
)

// extractionPrompt asks the model for exactly the JSON contract the
// reconciler consumes. Keep the example in sync with parse.go.
const extractionPrompt = `Analyze this invoice image. Extract line items, including description and total price for each item. Also extract the overall tax amount and the final grand total. Structure the output as a JSON object with keys: "lineItems" (an array of objects, each with "description" and "price" as a number), "tax" (a number), and "grandTotal" (a number). If a value isn't found, represent it as null. Example: { "lineItems": [{"description": "Burger", "price": 12.50}, {"description": "Fries", "price": 4.00}], "tax": 1.32, "grandTotal": 17.82 }`

const defaultModel = "gemini-2.0-flash"

// Client calls the Gemini API to read invoice images.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ recognition.Recognizer = (*Client)(nil)

// New creates a Gemini-backed recognizer. The timeout bounds every
// Recognize call; zero means the 15s default.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: cli, model: model, timeout: timeout}, nil
}

// NewFromEnv creates a recognizer from environment variables.
// Required: GEMINI_API_KEY. Optional: GEMINI_MODEL, SCAN_TIMEOUT.
func NewFromEnv(ctx context.Context) (*Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	timeout := time.Duration(0)
	if v := strings.TrimSpace(os.Getenv("SCAN_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}
	return New(ctx, apiKey, model, timeout)
}

// Recognize sends the image plus the extraction prompt and parses the
// JSON answer. Errors map onto the recognition failure classes so the
// caller can distinguish a timeout from garbage output.
func (c *Client) Recognize(ctx context.Context, img recognition.Image) (recognition.Result, error) {
	if len(img.Data) == 0 {
		return recognition.Result{}, fmt.Errorf("%w: empty image", recognition.ErrMalformed)
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, mime),
			genai.NewPartFromText(extractionPrompt),
		}, genai.RoleUser),
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return recognition.Result{}, classifyError(ctx, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return recognition.Result{}, fmt.Errorf("%w: empty response", recognition.ErrMalformed)
	}

	result, err := parseResult(text)
	if err != nil {
		return recognition.Result{}, err
	}

	slog.InfoContext(ctx, "Invoice recognized",
		"model", c.model,
		"line_items", len(result.LineItems),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// classifyError maps transport errors onto the recognition failure classes.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", recognition.ErrTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", recognition.ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", recognition.ErrUnauthorized, err)
		}
	}
	return fmt.Errorf("%w: %v", recognition.ErrRemote, err)
}
