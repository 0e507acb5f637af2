package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Discord embed colors.
const (
	ColorSuccess = 0x2ecc71
	ColorError   = 0xe74c3c
)

// Discord field limits.
const (
	maxDescription = 4096
	maxFieldValue  = 1024
)

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Footer      *discordFooter      `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Discord posts messages to a Discord (or Discord-compatible) webhook.
type Discord struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

// NewDiscord creates a notifier for webhookURL. An empty URL leaves it
// unconfigured.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (d *Discord) Name() string {
	return "discord"
}

func (d *Discord) IsConfigured() bool {
	return d.webhookURL != ""
}

// Send posts msg as a single embed.
func (d *Discord) Send(ctx context.Context, msg *Message) error {
	if !d.IsConfigured() {
		return nil
	}

	embed := discordEmbed{
		Title:       msg.Title,
		Description: truncate(msg.Body, maxDescription),
		Color:       color(msg.Severity),
		Footer:      &discordFooter{Text: "lambdo"},
		Timestamp:   d.now().UTC().Format(time.RFC3339),
	}
	for _, f := range msg.Fields {
		if f.Value == "" {
			continue
		}
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   f.Name,
			Value:  truncate(f.Value, maxFieldValue),
			Inline: true,
		})
	}

	body, err := json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content on success.
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

func color(s Severity) int {
	if s == SeverityError {
		return ColorError
	}
	return ColorSuccess
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
