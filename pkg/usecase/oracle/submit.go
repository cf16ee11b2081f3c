package oracle

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
	"google.golang.org/genai"
)

// Submit asks the oracle. Only the interpret call can fail the request;
// a failed image synthesis leaves ImageURL empty. Interpret failures of
// any kind are reported as model.ErrConnectionSevered.
//
// Submit does not guard against overlapping calls. Callers that accept
// input concurrently must wait for one submission before the next.
func (u *UseCase) Submit(ctx context.Context, query string) (*model.OracleResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(model.ErrEmptyQuery, "refused to consult the oracle")
	}

	logger := logging.From(ctx).With("request_id", uuid.NewString())
	ctx = logging.With(ctx, logger)

	reasons, err := u.admission.Evaluate(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate admission policy")
	}
	if len(reasons) > 0 {
		logger.Info("query denied by policy", "reasons", reasons)
		return nil, goerr.Wrap(model.ErrQueryDenied, "query is not admitted", goerr.V("reasons", reasons))
	}

	result, err := u.interpret(ctx, query)
	if err != nil {
		logger.Error("oracle interpret call failed", "error", err)
		return nil, goerr.Wrap(model.ErrConnectionSevered, "failed to interpret query", goerr.V("cause", err.Error()))
	}
	logger.Debug("oracle interpreted query", "type", result.Type)

	if result.Type == model.ResultTypeImage {
		imageURL, err := u.synthesize(ctx, result.Text)
		if err != nil {
			logger.Warn("failed to generate image", "error", err)
		} else {
			result.ImageURL = imageURL
		}
	}

	return result, nil
}

func (u *UseCase) interpret(ctx context.Context, query string) (*model.OracleResult, error) {
	schema, err := interpretSchema()
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(u.persona.Directive, ""),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(query, genai.RoleUser),
	}

	ctx, cancel := withTimeout(ctx, u.interpretTimeout)
	defer cancel()

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "interpret call failed")
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, goerr.New("interpret call returned no text")
	}

	return parseInterpretation(raw)
}

// parseInterpretation decodes the interpret answer. Anything that is not
// a complete, valid oracle result is rejected.
func parseInterpretation(raw string) (*model.OracleResult, error) {
	var parsed interpretation
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal interpretation", goerr.V("json", raw))
	}

	result := &model.OracleResult{
		Type: parsed.Type,
		Text: parsed.Text,
	}
	if err := result.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid interpretation", goerr.V("json", raw))
	}
	return result, nil
}

// responseText joins the non-thought text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
