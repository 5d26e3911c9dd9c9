// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package labeling

import (
	"context"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Joshykins/stupid-neko-sub000/internal/config"
	"github.com/Joshykins/stupid-neko-sub000/internal/logging"
	"github.com/Joshykins/stupid-neko-sub000/internal/metrics"
	"github.com/Joshykins/stupid-neko-sub000/internal/models"
)

// Detection is the outcome of a language detection call. An empty
// LanguageCode means the detector could not decide; the label still
// completes, it just never matches a target language.
type Detection struct {
	LanguageCode string `json:"language_code"`
	Evidence     string `json:"evidence"`
}

// Detector identifies the language of a piece of content from its URL and
// metadata. The URL disambiguates titles that read the same in several
// languages.
type Detector interface {
	DetectLanguage(ctx context.Context, key models.ContentKey, contentURL, title, author string) (*Detection, error)
}

const detectSystemPrompt = `You identify the primary language of media content from its metadata.
Respond with a JSON object: {"language_code": "<two-letter ISO 639-1 code or empty string>", "evidence": "<one short sentence>"}.
Use the language of the content itself, not of the metadata formatting. If you cannot tell, use an empty language_code.`

// LLMDetector detects content language through an OpenAI-compatible chat
// API, with results cached in Badger keyed by content key. Labels are
// shared system-wide, so each distinct content item is detected once.
type LLMDetector struct {
	client *openai.Client
	model  string
	cache  *badger.DB
	ttl    time.Duration
}

// NewLLMDetector creates the detector and opens its cache.
func NewLLMDetector(cfg *config.LabelingConfig) (*LLMDetector, error) {
	clientConfig := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		clientConfig.BaseURL = cfg.LLMBaseURL
	}

	opts := badger.DefaultOptions(cfg.CachePath).
		WithLogger(nil).
		WithCompactL0OnClose(true)
	cache, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open detection cache: %w", err)
	}

	return &LLMDetector{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.LLMModel,
		cache:  cache,
		ttl:    cfg.CacheTTL,
	}, nil
}

// Close closes the detection cache.
func (d *LLMDetector) Close() error {
	return d.cache.Close()
}

// DetectLanguage implements Detector.
func (d *LLMDetector) DetectLanguage(ctx context.Context, key models.ContentKey, contentURL, title, author string) (*Detection, error) {
	if cached, ok := d.cached(key); ok {
		metrics.LanguageDetections.WithLabelValues("cached").Inc()
		return cached, nil
	}

	if strings.TrimSpace(contentURL) == "" && strings.TrimSpace(title) == "" && strings.TrimSpace(author) == "" {
		// Nothing to detect from.
		return &Detection{}, nil
	}

	prompt := fmt.Sprintf("URL: %s\nTitle: %s\nAuthor/Channel: %s", contentURL, title, author)
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: detectSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		metrics.LanguageDetections.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.LanguageDetections.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	detection, err := parseDetection(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.LanguageDetections.WithLabelValues("error").Inc()
		return nil, err
	}

	if detection.LanguageCode == "" {
		metrics.LanguageDetections.WithLabelValues("unknown").Inc()
	} else {
		metrics.LanguageDetections.WithLabelValues("detected").Inc()
	}

	d.store(key, detection)
	return detection, nil
}

// parseDetection extracts and validates the detection payload from a model
// response. Codes that are not two lowercase letters collapse to unknown
// rather than poisoning labels with junk.
func parseDetection(response string) (*Detection, error) {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("parse detection response: %w", err)
	}

	detection := &Detection{}
	if err := json.Unmarshal([]byte(jsonStr), detection); err != nil {
		return nil, fmt.Errorf("unmarshal detection: %w", err)
	}

	detection.LanguageCode = strings.ToLower(strings.TrimSpace(detection.LanguageCode))
	if !validLanguageCode(detection.LanguageCode) {
		detection.LanguageCode = ""
	}
	return detection, nil
}

func validLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func cacheKey(key models.ContentKey) []byte {
	return []byte("lang:" + string(key))
}

func (d *LLMDetector) cached(key models.ContentKey) (*Detection, bool) {
	var detection *Detection
	err := d.cache.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			detection = &Detection{}
			return json.Unmarshal(val, detection)
		})
	})
	if err != nil {
		return nil, false
	}
	return detection, true
}

func (d *LLMDetector) store(key models.ContentKey, detection *Detection) {
	payload, err := json.Marshal(detection)
	if err != nil {
		return
	}
	err = d.cache.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(key), payload).WithTTL(d.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		logging.Warn().Err(err).Str("content_key", string(key)).Msg("Failed to cache detection")
	}
}

// NoopDetector never identifies a language. Used when no LLM credentials
// are configured; labels still complete, they just cannot match a target.
type NoopDetector struct{}

// DetectLanguage implements Detector.
func (NoopDetector) DetectLanguage(context.Context, models.ContentKey, string, string, string) (*Detection, error) {
	return &Detection{}, nil
}
