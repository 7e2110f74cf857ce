package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Misacorp/leetbot/leetbot/analytics"
)

// ScoreboardImageService renders a ranking as a PNG through headless Chrome,
// for guilds that prefer the image attachment over the embed listing.
type ScoreboardImageService struct {
	logger *slog.Logger
}

type scoreboardData struct {
	GuildName   string
	MessageType string
	Window      string
	Timestamp   string
	Entries     []analytics.RankingEntry
}

func NewScoreboardImageService() *ScoreboardImageService {
	service := &ScoreboardImageService{
		logger: slog.With(slog.String("service", "scoreboard_image")),
	}
	service.testChromedpAvailability()
	return service
}

func (s *ScoreboardImageService) testChromedpAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	err := chromedp.Run(chromedpCtx, chromedp.Navigate("data:text/html,<html><body>test</body></html>"))
	if err != nil {
		s.logger.Error("chromedp not available - scoreboard images will fail",
			slog.String("error", err.Error()))
	} else {
		s.logger.Info("chromedp is available and working")
	}
}

// GenerateScoreboardImage renders the top entries of a ranking. Entries
// beyond the first ten are cut; callers paginate those in the embed instead.
func (s *ScoreboardImageService) GenerateScoreboardImage(ctx context.Context, guildName, messageType string, window analytics.TimeWindow, entries []analytics.RankingEntry) ([]byte, error) {
	start := time.Now()

	if len(entries) == 0 {
		return nil, fmt.Errorf("no ranking entries provided")
	}
	if len(entries) > 10 {
		entries = entries[:10]
	}

	htmlContent, err := s.generateHTML(scoreboardData{
		GuildName:   guildName,
		MessageType: messageType,
		Window:      window.String(),
		Timestamp:   time.Now().Format("15:04 MST"),
		Entries:     entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, 15*time.Second)
	defer cancel()

	var imageBytes []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("data:text/html,"+htmlContent),
		chromedp.WaitVisible("#scoreboard", chromedp.ByID),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Screenshot("#scoreboard", &imageBytes, chromedp.ByID),
	)
	if err != nil {
		s.logger.Error("Failed to generate scoreboard image",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	s.logger.Info("Scoreboard image generated",
		slog.String("guild", guildName),
		slog.Int("image_size", len(imageBytes)),
		slog.Duration("elapsed", time.Since(start)))
	return imageBytes, nil
}

func (s *ScoreboardImageService) generateHTML(data scoreboardData) (string, error) {
	tmpl, err := template.New("scoreboard").Parse(scoreboardTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const scoreboardTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
  body { margin: 0; background: #1e1f22; font-family: "Segoe UI", sans-serif; }
  #scoreboard { width: 480px; padding: 24px; box-sizing: border-box; color: #f2f3f5; }
  h1 { font-size: 20px; margin: 0 0 4px 0; }
  .meta { color: #949ba4; font-size: 12px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 6px 8px; font-size: 14px; border-bottom: 1px solid #2b2d31; }
  td.pos { width: 32px; color: #949ba4; }
  td.count { text-align: right; font-weight: 600; }
  tr:first-child td { color: #f0b232; font-weight: 700; }
</style>
</head>
<body>
<div id="scoreboard">
  <h1>{{.GuildName}}: {{.MessageType}}</h1>
  <div class="meta">{{.Window}} · {{.Timestamp}}</div>
  <table>
    {{range .Entries}}
    <tr>
      <td class="pos">#{{.Position}}</td>
      <td>{{.DisplayName}}</td>
      <td class="count">{{.Count}}</td>
    </tr>
    {{end}}
  </table>
</div>
</body>
</html>`
