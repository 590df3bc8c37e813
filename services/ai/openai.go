// Package aisvc talks to an OpenAI-compatible chat-completions API.
package aisvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assist"
)

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
)

type OpenAIGenerator struct {
	key     string
	baseURL string
	model   string
}

var _ assist.Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(conf *core.Config) *OpenAIGenerator {
	return &OpenAIGenerator{
		key:     conf.Assist.APIKey,
		baseURL: conf.Assist.BaseURL,
		model:   conf.Assist.Model,
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding completion request")
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: g.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + g.key,
			"Content-Type":  "application/json",
		},
		Body: body,
	}
	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "calling completion API")
	}

	var cr chatResponse
	if err = json.Unmarshal([]byte(res.Body), &cr); err != nil {
		return "", errors.Wrap(err, "decoding completion response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		msg := res.Body
		if cr.Error != nil {
			msg = cr.Error.Message
		}
		return "", errors.Errorf("completion API: status %d: %s", res.StatusCode, msg)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("completion API: empty response")
	}
	return cr.Choices[0].Message.Content, nil
}
