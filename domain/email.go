package domain

// Email is an outbound transactional message. HTML falls back to Text when empty.
type Email struct {
	ToName      string
	ToAddress   string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}
