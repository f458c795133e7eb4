package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

const BUDDY_PROMPT_MAX_LEN = 2000

// cannedBuddyReplies keeps the chat usable with no model endpoint configured.
var cannedBuddyReplies = []string{
	"OMG that's totally valid! 💅✨",
	"Periodt! You're absolutely right about that! 🔥",
	"No cap, that's the tea! ☕",
	"Slay! You're doing amazing sweetie! 💁‍♀️",
	"That's giving... everything! 💯",
	"Literally same bestie! 😭",
	"You ate that up! 👏",
	"That's so fetch! 💖",
}

type BuddyReply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ServiceBuddy proxies chat prompts to an external completion endpoint.
// With no endpoint configured it answers from the canned set, so dev
// environments never need a model running.
type ServiceBuddy struct {
	client   *httpclient.Client
	endpoint string
	apiKey   string
}

func NewServiceBuddy(endpoint string, apiKey string) (*ServiceBuddy, error) {
	backoff := heimdall.NewConstantBackoff(500*time.Millisecond, 100*time.Millisecond)
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(2),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
	)

	return &ServiceBuddy{client: client, endpoint: endpoint, apiKey: apiKey}, nil
}

func (service *ServiceBuddy) Chat(ctx context.Context, prompt string) (*BuddyReply, error) {
	if prompt == "" {
		return nil, errorx.Wrap(errors.New("prompt is required"), errorx.Validation)
	}
	if len(prompt) > BUDDY_PROMPT_MAX_LEN {
		return nil, errorx.Wrap(errors.New("prompt too long"), errorx.Validation)
	}

	if service.endpoint == "" {
		return &BuddyReply{
			Response:  cannedBuddyReplies[rand.Intn(len(cannedBuddyReplies))],
			Timestamp: time.Now(),
		}, nil
	}

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, service.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	req.Header.Set("Content-Type", "application/json")
	if service.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+service.apiKey)
	}

	resp, err := service.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, errorx.Wrap(fmt.Errorf("completion endpoint returned %d", resp.StatusCode), errorx.Service)
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if payload.Response == "" {
		return nil, errorx.Wrap(errors.New("completion endpoint returned an empty response"), errorx.Service)
	}

	return &BuddyReply{Response: payload.Response, Timestamp: time.Now()}, nil
}
