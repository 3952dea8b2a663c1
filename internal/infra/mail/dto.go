package mail

import "time"

type JobReportData struct {
	JobName  string
	Message  string
	Count    int
	FiredAt  time.Time
	Hostname string
}

type ReportSender struct {
	Host     string
	Port     int
	User     string
	Password string

	From string
	To   string
}
