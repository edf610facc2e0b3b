package mail

type AuditEmailData struct {
	ProcessedAt string
	Lines       [][2]string
	Lost        []LostLead
	MoreLost    int
}

type LostLead struct {
	Name       string
	Enrollment string
	EventType  string
	Date       string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
