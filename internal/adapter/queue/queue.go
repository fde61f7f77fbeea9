package queue

// Subjects published by the reporting services.
const (
	SubjectReportGenerated = "reports.generated"
	SubjectAlertsCritical  = "alerts.critical"
	SubjectValueRefreshed  = "customers.value_refreshed"
)
