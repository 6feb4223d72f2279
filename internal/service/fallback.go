package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ledger-gateway/internal/utils"
)

// Generator suggests a one-line plan in the restricted tabular vocabulary
// when the rule engine has nothing to go on. Whatever it returns is parsed
// and validated before execution; it never gets a wider execution surface
// than the rules themselves.
type Generator interface {
	GeneratePlan(ctx context.Context, columns []string, question string) (string, error)
}

const planPrompt = `You are a query planner for a tabular dataset.
Dataset columns: %s

User question: "%s"

Answer with ONLY ONE LINE in this exact grammar, nothing else:
  sum:<column> | avg:<column> | max:<column> | min:<column> | count:<column>
  argmax:<column> | argmin:<column> | list:<column>[,<column>...] | full
Return only the line, no explanations or markdown.`

// OllamaGenerator asks a local ollama server for a plan line.
type OllamaGenerator struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewOllamaGenerator(endpoint, model string, timeout time.Duration) *OllamaGenerator {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaGenerator{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

func (g *OllamaGenerator) GeneratePlan(ctx context.Context, columns []string, question string) (string, error) {
	payload, err := json.Marshal(ollamaChatRequest{
		Model: g.model,
		Messages: []ollamaMessage{{
			Role:    "user",
			Content: fmt.Sprintf(planPrompt, strings.Join(columns, ", "), question),
		}},
	})
	if err != nil {
		return "", utils.NewBackendFailure(err, "encoding plan request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.endpoint+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", utils.NewBackendFailure(err, "building plan request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", utils.NewBackendFailure(err, "calling plan generator")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", utils.NewBackendFailure(nil,
			fmt.Sprintf("plan generator returned %d", resp.StatusCode))
	}

	var chat ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", utils.NewBackendFailure(err, "decoding plan response")
	}
	return cleanPlanLine(chat.Message.Content), nil
}

// cleanPlanLine strips markdown fences and keeps the first non-empty line.
func cleanPlanLine(content string) string {
	content = strings.ReplaceAll(content, "`", "")
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
