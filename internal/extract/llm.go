package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/weekender-app/weekender/internal/apperr"
)

const systemPrompt = "You identify weekend-trip destinations (parks, museums, attractions, trails, " +
	"family outings) from photos, documents, and social posts. For each distinct destination you can " +
	"identify, emit one object. Respond with strict JSON only: " +
	`{"places":[{"found":true,"name":"...","address":"...","city":"...","state":"...",` +
	`"category":"...","overview":"..."}]}. When nothing identifiable is present, respond ` +
	`{"places":[]}.`

type failureClass int

const (
	failureNone failureClass = iota
	failureParse
	failureEmpty
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

// Extractor is the black-box boundary to the vision/LLM extractor. The
// normalizer owns everything downstream of it.
type Extractor interface {
	Extract(ctx context.Context, in Input) ([]Candidate, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicExtractor struct {
	messages AnthropicMessager
}

type anthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient anthropicClientCreator = defaultAnthropicCreator

func NewAnthropicExtractor(apiKey string) (*AnthropicExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicExtractor{messages: newAnthropicClient(apiKey)}, nil
}

// Extract sends the document or caption to the model and parses the JSON
// candidate list. Any transport or parse failure surfaces as an
// extraction_failed error; it is never folded into "zero candidates".
func (a *AnthropicExtractor) Extract(ctx context.Context, in Input) ([]Candidate, error) {
	blocks, err := contentBlocks(in)
	if err != nil {
		return nil, apperr.ExtractionFailed(err.Error())
	}

	for attempt := 1; ; attempt++ {
		resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.ModelClaudeSonnet4_20250514,
			MaxTokens:   2048,
			System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
			Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
			Temperature: anthropic.Float(0),
		})
		if err != nil {
			class := classifyTransportError(err)
			if attempt < 3 && (class == failureTimeout || class == failureRateLimit || class == failureServer) {
				time.Sleep(backoffDelay(attempt))
				continue
			}
			return nil, apperr.ExtractionFailed(fmt.Sprintf("extractor transport failure: %v", err))
		}

		var sb strings.Builder
		for _, b := range resp.Content {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
		raw := strings.TrimSpace(sb.String())
		if raw == "" {
			return nil, apperr.ExtractionFailed("extractor returned an empty response")
		}

		var payload struct {
			Places []Candidate `json:"places"`
		}
		if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
			// A garbled response is an explicit failure, not zero candidates.
			return nil, apperr.ExtractionFailed(fmt.Sprintf("extractor returned unparseable JSON: %v", err))
		}
		return payload.Places, nil
	}
}

func contentBlocks(in Input) ([]anthropic.ContentBlockParamUnion, error) {
	var blocks []anthropic.ContentBlockParamUnion

	if data := strings.TrimSpace(in.ImageData); data != "" {
		switch in.FileType {
		case FileTypePDF:
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: data}))
		default:
			mediaType := strings.TrimSpace(in.MediaType)
			if mediaType == "" {
				mediaType = "image/jpeg"
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
		}
	}

	prompt := "Identify the destination place(s) shown or described."
	if caption := strings.TrimSpace(in.Caption); caption != "" {
		prompt += "\n\nCaption:\n" + caption
	}
	blocks = append(blocks, anthropic.NewTextBlock(prompt))

	if len(blocks) == 1 && strings.TrimSpace(in.Caption) == "" {
		return nil, errors.New("nothing to extract: no document data and no caption")
	}
	return blocks, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func classifyTransportError(err error) failureClass {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}

var backoffDelay = func(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
