package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

// bedrockInvoker is the subset of the bedrockruntime client used here.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider implements Provider over AWS Bedrock InvokeModel.
// Conversations are flattened into a single prompt; the request body shape
// follows the model family.
type BedrockProvider struct {
	client bedrockInvoker
	model  string
}

// NewBedrockProvider loads AWS credentials from the default chain and
// creates a Bedrock runtime client.
func NewBedrockProvider(ctx context.Context, cfg BedrockConfig) (*BedrockProvider, error) {
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("bedrock model id is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return newBedrockProvider(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID), nil
}

func newBedrockProvider(client bedrockInvoker, model string) *BedrockProvider {
	return &BedrockProvider{client: client, model: model}
}

func (p *BedrockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	prompt := flattenMessages(req)
	if req.Schema != nil {
		schemaBytes, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		prompt = fmt.Sprintf("%s\n\nRespond with JSON only, matching this JSON Schema:\n%s", prompt, schemaBytes)
	}

	body, err := json.Marshal(bedrockRequestBody(p.model, req, prompt))
	if err != nil {
		return nil, fmt.Errorf("marshal bedrock body: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, mapBedrockError(err)
	}

	text := ExtractBedrockText(out.Body)
	content := json.RawMessage(text)
	if req.Schema != nil {
		content = json.RawMessage(extractJSONValue(text))
	}

	return finishResponse(req, content, p.model, bedrockStopReason(out.Body), bedrockUsage(out.Body))
}

func (p *BedrockProvider) ModelID() string {
	return p.model
}

// flattenMessages renders the system prompt and conversation as a single
// "System:/User:/Assistant:" transcript ending with an open assistant turn.
func flattenMessages(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "System: %s\n\n", req.System)
	}
	for _, m := range req.Messages {
		prefix := "User"
		if m.Role == RoleAssistant {
			prefix = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", prefix, m.Content)
	}
	b.WriteString("\nAssistant:")
	return b.String()
}

func bedrockRequestBody(model string, req Request, prompt string) map[string]any {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	switch {
	case strings.Contains(model, "amazon.titan"):
		return map[string]any{
			"inputText": prompt,
			"textGenerationConfig": map[string]any{
				"maxTokenCount": maxTokens,
				"temperature":   req.Temperature,
			},
		}
	case strings.Contains(model, "amazon.nova"):
		return map[string]any{
			"messages": []map[string]any{
				{"role": "user", "content": []map[string]any{{"text": prompt}}},
			},
			"inferenceConfig": map[string]any{
				"maxTokens":   maxTokens,
				"temperature": req.Temperature,
			},
		}
	case strings.Contains(model, "anthropic."):
		return map[string]any{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        maxTokens,
			"temperature":       req.Temperature,
			"messages": []map[string]any{
				{"role": "user", "content": prompt},
			},
		}
	default:
		return map[string]any{
			"prompt":      prompt,
			"max_tokens":  maxTokens,
			"temperature": req.Temperature,
		}
	}
}

// ExtractBedrockText reduces a Bedrock response body to text. Known keys are
// tried in order: outputs[].content[].text, output, outputText, completion,
// generated_text, text, result. Model-family shapes (Nova output.message,
// Titan results[], Anthropic content[]) are checked next. Anything else is
// returned verbatim.
func ExtractBedrockText(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body)
	}

	if outputs, ok := parsed["outputs"].([]any); ok {
		for _, o := range outputs {
			om, _ := o.(map[string]any)
			if s := textFromContent(om["content"]); s != "" {
				return s
			}
		}
	}
	for _, key := range []string{"output", "outputText", "completion", "generated_text", "text", "result"} {
		if s, ok := parsed[key].(string); ok && s != "" {
			return s
		}
	}

	// Nova: {"output":{"message":{"content":[{"text":...}]}}}
	if out, ok := parsed["output"].(map[string]any); ok {
		if msg, ok := out["message"].(map[string]any); ok {
			if s := textFromContent(msg["content"]); s != "" {
				return s
			}
		}
	}
	// Titan: {"results":[{"outputText":...}]}
	if results, ok := parsed["results"].([]any); ok && len(results) > 0 {
		if rm, ok := results[0].(map[string]any); ok {
			if s, ok := rm["outputText"].(string); ok {
				return s
			}
		}
	}
	// Anthropic messages: {"content":[{"type":"text","text":...}]}
	if s := textFromContent(parsed["content"]); s != "" {
		return s
	}

	return string(body)
}

func textFromContent(v any) string {
	blocks, ok := v.([]any)
	if !ok {
		return ""
	}
	var parts []string
	for _, c := range blocks {
		cm, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := cm["text"].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "")
}

func bedrockStopReason(body []byte) string {
	var parsed struct {
		StopReason string `json:"stop_reason"`
		NovaStop   string `json:"stopReason"`
		Results    []struct {
			CompletionReason string `json:"completionReason"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return StopEnd
	}
	switch {
	case parsed.StopReason == "max_tokens", parsed.NovaStop == "max_tokens":
		return StopMaxTokens
	case len(parsed.Results) > 0 && parsed.Results[0].CompletionReason == "LENGTH":
		return StopMaxTokens
	}
	return StopEnd
}

func bedrockUsage(body []byte) Usage {
	var parsed struct {
		Usage struct {
			InputTokens  int `json:"inputTokens"`
			OutputTokens int `json:"outputTokens"`
			In           int `json:"input_tokens"`
			Out          int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Usage{}
	}
	in := parsed.Usage.InputTokens + parsed.Usage.In
	out := parsed.Usage.OutputTokens + parsed.Usage.Out
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

// extractJSONValue trims model chatter around a JSON object or array: it
// returns the text from the first '{' or '[' through the last matching
// closer, or the input unchanged if there is none.
func extractJSONValue(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return s
	}
	return s[start : end+1]
}

func mapBedrockError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
			return &ErrRateLimit{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
