package email

import (
	"fmt"
	"html"

	"farmshops/internal/config"
	"farmshops/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #15803d; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .success { color: #059669; }
        .error { color: #dc2626; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// captionLine renders the photo caption block, or "" when no caption was given.
func captionLine(photo *models.Photo) (htmlPart, textPart string) {
	if photo.Caption == "" {
		return "", ""
	}
	htmlPart = fmt.Sprintf(`<p><span class="label">Caption:</span> %s</p>`, html.EscapeString(photo.Caption))
	textPart = fmt.Sprintf("Caption: %s\n", photo.Caption)
	return htmlPart, textPart
}

// PhotoApproved generates the email sent to a submitter whose photo went live.
func (t *Templates) PhotoApproved(photo *models.Photo, farmName string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your photo of %s is now live", t.cfg.SiteTitle, farmName)

	captionHTML, captionText := captionLine(photo)

	content := fmt.Sprintf(`
        <p class="success">Good news! Your photo has been approved.</p>

        <div class="info-box">
            <p><span class="label">Farm shop:</span> %s</p>
            %s
        </div>

        <p>It is now part of the photo gallery at
        <a href="%s/farms/%s">%s/farms/%s</a>.</p>

        <p>Thank you for contributing to %s.</p>
    `,
		html.EscapeString(farmName),
		captionHTML,
		t.cfg.BaseURL, photo.FarmSlug, t.cfg.BaseURL, photo.FarmSlug,
		html.EscapeString(t.cfg.SiteTitle),
	)

	htmlBody = t.baseHTML("Photo approved", content)

	textBody = fmt.Sprintf(`Good news! Your photo of %s has been approved.

%sIt is now part of the gallery at %s/farms/%s.

Thank you for contributing to %s.
`, farmName, captionText, t.cfg.BaseURL, photo.FarmSlug, t.cfg.SiteTitle)

	return subject, htmlBody, textBody
}

// PhotoRejected generates the email sent to a submitter whose photo was
// declined, including the moderator's reason and the photo guidelines.
func (t *Templates) PhotoRejected(photo *models.Photo, farmName, reason string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] Your photo of %s was not accepted", t.cfg.SiteTitle, farmName)

	captionHTML, captionText := captionLine(photo)

	guidelinesHTML := ""
	guidelinesText := ""
	if t.cfg.GuidelinesURL != "" {
		guidelinesHTML = fmt.Sprintf(`<p>Our photo guidelines: <a href="%s">%s</a></p>`,
			t.cfg.GuidelinesURL, t.cfg.GuidelinesURL)
		guidelinesText = fmt.Sprintf("Our photo guidelines: %s\n", t.cfg.GuidelinesURL)
	}

	content := fmt.Sprintf(`
        <p>Unfortunately your photo submission was not accepted.</p>

        <div class="info-box">
            <p><span class="label">Farm shop:</span> %s</p>
            %s
            <p><span class="label">Reason:</span> <span class="error">%s</span></p>
        </div>

        %s

        <p>You are welcome to submit another photo.</p>
    `,
		html.EscapeString(farmName),
		captionHTML,
		html.EscapeString(reason),
		guidelinesHTML,
	)

	htmlBody = t.baseHTML("Photo not accepted", content)

	textBody = fmt.Sprintf(`Unfortunately your photo of %s was not accepted.

%sReason: %s

%sYou are welcome to submit another photo.
`, farmName, captionText, reason, guidelinesText)

	return subject, htmlBody, textBody
}
