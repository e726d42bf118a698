package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for deferred
// deliveries (task-assignment notifications). Verification OTP mail is
// never queued: the registration flow needs a synchronous send result.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "task_assigned"
	Data     map[string]any `json:"data,omitempty"`
}
