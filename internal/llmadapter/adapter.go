// Package llmadapter implements the Section 4.L AI adapter: a single
// generate(prompt, max_tokens) -> text call wrapped with a timeout,
// response-size cap, and a deterministic seeded fallback. Grounded
// directly on the teacher's internal/llm/client.go (Client.Complete's
// http.Client-with-timeout shape) and internal/entropy/random.go's
// pooled-external-call-with-crypto/rand-fallback idiom, generalized from
// "random float" to "generated text".
package llmadapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/talgya/mini-world/internal/service"
)

// Config mirrors the Section 6.5 recognized options governing the adapter.
type Config struct {
	Endpoint      string
	APIKey        string
	TimeoutSeconds int // AI_TIMEOUT_SECONDS
	MaxResponseLen int // AI_MAX_RESPONSE_LENGTH
}

// Adapter is the Section 4.L external interface. An empty Endpoint means
// "adapter absent" — Generate then always uses the deterministic fallback
// and never makes a network call.
type Adapter struct {
	cfg    Config
	client *http.Client
}

// New constructs an Adapter. If cfg.Endpoint is empty the adapter always
// falls back (no network call is ever attempted).
func New(cfg Config) *Adapter {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.MaxResponseLen <= 0 {
		cfg.MaxResponseLen = 10000
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}}
}

type completionRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Generate performs the Section 4.L contract. With an empty endpoint it
// returns the deterministic fallback and a nil error. On timeout or
// transport error it returns the fallback text together with a
// KindAdapter error, so callers can either use the text or detect the
// failure. Callers that need to know up front whether AI is in play
// should check Configured().
func (a *Adapter) Generate(prompt string, maxTokens int) (string, error) {
	if a.cfg.Endpoint == "" {
		return Fallback("", prompt), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	text, err := a.call(ctx, prompt, maxTokens)
	if err != nil {
		return Fallback("", prompt), service.Wrap(service.KindAdapter, "AI adapter unavailable", err)
	}
	if len(text) > a.cfg.MaxResponseLen {
		text = text[:a.cfg.MaxResponseLen]
	}
	return text, nil
}

func (a *Adapter) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(completionRequest{Prompt: prompt, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("adapter returned status %d", resp.StatusCode)
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Configured reports whether this adapter has a real endpoint wired —
// checked by the /npc generate handler and logged at startup. The GOAP
// planner does not call it; it only checks for a non-nil Generator.
func (a *Adapter) Configured() bool {
	return a.cfg.Endpoint != ""
}

// ExtractJSON performs the best-effort JSON extraction the Section 4.L
// contract requires even on truncated output: it locates the first '{' or
// '[' and the last matching '}' or ']' and attempts to unmarshal that
// span, also stripping a markdown code fence if present — grounded on the
// teacher's internal/llm/oracle.go and internal/gardener/decide.go fence-
// stripping helpers.
func ExtractJSON(text string, v any) error {
	text = stripFence(text)
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return errors.New("no JSON object or array found")
	}
	closeCh := byte('}')
	if text[start] == '[' {
		closeCh = ']'
	}
	end := strings.LastIndexByte(text, closeCh)
	if end < start {
		return errors.New("no matching closing bracket found")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// Fallback produces deterministic, contextually seeded text, seeded from
// the SHA-256 of worldName and prompt joined by a NUL byte (Section 4.L),
// exercised directly in tests without ever touching the network.
func Fallback(worldName, prompt string) string {
	seed := seedFrom(worldName, prompt)
	rng := rand.New(rand.NewSource(seed))
	beats := []string{
		"looks around thoughtfully.",
		"mutters something under their breath.",
		"shifts their stance, considering the options.",
		"seems lost in thought for a moment.",
		"glances toward the nearest exit.",
	}
	return beats[rng.Intn(len(beats))]
}

// FallbackPlan produces a deterministic single-action plan JSON array
// (do_nothing or emote), shaped like an AI plan response (Section 4.H.3).
func FallbackPlan(worldName, prompt string) string {
	seed := seedFrom(worldName, prompt)
	rng := rand.New(rand.NewSource(seed))
	if rng.Intn(2) == 0 {
		return `[{"tool":"do_nothing","args":{}}]`
	}
	return `[{"tool":"emote","args":{}}]`
}

func seedFrom(worldName, prompt string) int64 {
	h := sha256.Sum256([]byte(worldName + "\x00" + prompt))
	return int64(binary.BigEndian.Uint64(h[:8]))
}
