// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"encoding/json"
	"fmt"
)

// Strategy names, in default fallback order.
const (
	StrategyJSONChat  = "chat-json"
	StrategyPlainChat = "chat"
	StrategyResponses = "responses"
)

// Strategy is one request shape in the fallback chain. Text returns an error
// to hand over to the next strategy.
type Strategy struct {
	Name string
	Path string
	Body func(model, prompt string) any
	Text func(body []byte) (string, error)
}

// DefaultStrategies returns structured chat, then plain chat, then the
// responses endpoint.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyJSONChat, Path: chatPath, Body: chatBody(true), Text: chatText},
		{Name: StrategyPlainChat, Path: chatPath, Body: chatBody(false), Text: chatText},
		{Name: StrategyResponses, Path: responsesPath, Body: responsesBody, Text: responsesText},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Choices []chatChoice `json:"choices"`
}

func chatBody(structured bool) func(model, prompt string) any {
	return func(model, prompt string) any {
		req := chatRequest{
			Model: model,
			Messages: []chatMessage{
				{Role: "system", Content: SystemPrompt},
				{Role: "user", Content: prompt},
			},
		}
		if structured {
			req.ResponseFormat = map[string]string{"type": "json_object"}
		}
		return req
	}
}

// chatText reads choices[0].message.content. A null content is empty text,
// a missing choice is a failure.
func chatText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices: %s", summarize(string(body)))
	}
	if c := resp.Choices[0].Message.Content; c != nil {
		return *c, nil
	}
	return "", nil
}

func responsesBody(model, prompt string) any {
	return responsesRequest{Model: model, Input: prompt}
}

// responsesText tries output_text, then output[0].content[0].text, then the
// chat shape. Nothing found is empty text.
func responsesText(body []byte) (string, error) {
	var resp responsesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode responses response: %w", err)
	}
	if resp.OutputText != "" {
		return resp.OutputText, nil
	}
	if len(resp.Output) > 0 && len(resp.Output[0].Content) > 0 && resp.Output[0].Content[0].Text != "" {
		return resp.Output[0].Content[0].Text, nil
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}
	return "", nil
}
