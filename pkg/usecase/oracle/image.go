package oracle

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const defaultImageMIMEType = "image/png"

var errNoImage = goerr.New("no inline image in synthesis response")

// synthesize turns an IMAGE description into a data URI
func (u *UseCase) synthesize(ctx context.Context, text string) (string, error) {
	prompt, err := u.persona.ImagePrompt(text)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: u.persona.AspectRatio,
		},
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	ctx, cancel := withTimeout(ctx, u.synthesisTimeout)
	defer cancel()

	resp, err := u.gemini.GenerateImage(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "synthesis call failed")
	}

	blob := firstInlineImage(resp)
	if blob == nil {
		return "", errNoImage
	}

	return DataURI(blob.MIMEType, blob.Data), nil
}

// firstInlineImage returns the first part of the first candidate that
// carries inline data
func firstInlineImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData
		}
	}
	return nil
}

// DataURI wraps raw image bytes as a base64 data URI. An empty MIME type
// is treated as PNG.
func DataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = defaultImageMIMEType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI built by DataURI into its MIME
// type and raw bytes
func DecodeDataURI(uri string) (string, []byte, error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return "", nil, goerr.New("not a data uri")
	}

	meta, payload, ok := strings.Cut(uri[len(prefix):], ",")
	if !ok {
		return "", nil, goerr.New("data uri has no payload")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, goerr.New("data uri is not base64 encoded", goerr.V("meta", meta))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to decode data uri payload")
	}
	return mimeType, data, nil
}
