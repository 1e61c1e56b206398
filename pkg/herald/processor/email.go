package processor

import (
	"fmt"

	"github.com/herald-io/herald/pkg/herald/notification"
)

// OptTemplateVariables is the options key carrying the variable map for
// template rendering.
const OptTemplateVariables = "template_variables"

// applyEmailStage renders a named template when requested and carries
// attachments and the HTML alternative through as opaque assets.
func (p *Pipeline) applyEmailStage(pm *ProcessedMessage, opts notification.Options) error {
	if name := opts.String(notification.OptTemplate); name != "" {
		variables, _ := opts[OptTemplateVariables].(map[string]any)
		subject, body, err := p.config.Templates.RenderTemplate(name, variables)
		if err != nil {
			pm.AddStep("email_template", err.Error(), false)
			return fmt.Errorf("processor: %w", err)
		}
		if subject != "" {
			pm.Subject = subject
		}
		pm.Body = body
		pm.SetMetadata("template", name)
		pm.AddStep("email_template", fmt.Sprintf("rendered template %q", name), true)
	}

	// Attachments and the HTML part are not transformed, only carried.
	if attachments, ok := opts[notification.OptAttachments]; ok {
		pm.SetMetadata("attachments", attachments)
		pm.AddStep("email_attachments", "attached opaque assets", true)
	}
	if html := opts.String(notification.OptHTMLContent); html != "" {
		pm.SetMetadata("html_content", html)
		pm.AddStep("email_multipart", "carried HTML alternative part", true)
	}
	if replyTo := opts.String(notification.OptReplyTo); replyTo != "" {
		pm.SetMetadata("reply_to", replyTo)
	}

	return nil
}
