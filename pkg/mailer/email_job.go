package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Bodies are rendered before enqueueing; the worker only delivers.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Valid reports whether the job can be delivered at all.
func (j EmailJob) Valid() bool {
	return j.To != "" && j.Subject != "" && (j.Text != "" || j.HTML != "")
}
