package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects the rendered layout (verify_email or forgot_password);
// raw Subject/Text/HTML can be used instead for one-off messages.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
