package services

import (
	"bytes"
	"fmt"
	"html/template"
)

// EmailContent is a rendered email body with its subject line
type EmailContent struct {
	Subject string
	HTML    string
}

var newRequestAdminTmpl = template.Must(template.New("newRequestAdmin").Parse(`
<h2>New Service Request</h2>
<p><strong>User:</strong> {{.UserName}} ({{.UserEmail}})</p>
<p><strong>Service:</strong> {{.ServiceName}}</p>
<p><strong>Request ID:</strong> {{.RequestID}}</p>
<p>Please log in to the admin dashboard to review this request.</p>
`))

var requestReceivedTmpl = template.Must(template.New("requestReceived").Parse(`
<h2>Hello {{.UserName}},</h2>
<p>Thank you for requesting <strong>{{.ServiceName}}</strong>.</p>
<p>We have received your request and will review it shortly.</p>
<p>You can track the status of your request in your dashboard.</p>
`))

var adminReviewedTmpl = template.Must(template.New("adminReviewed").Parse(`
<h2>Hello {{.UserName}},</h2>
<p>Your request for <strong>{{.ServiceName}}</strong> has been reviewed by our admin.</p>
<p>We are currently processing it and will update you with the next steps soon.</p>
`))

var statusChangedTmpl = template.Must(template.New("statusChanged").Parse(`
<h2>Hello {{.UserName}},</h2>
<p>Your request for <strong>{{.ServiceName}}</strong> {{.StatusMessage}}</p>
{{if .EstimatedTime}}<p><strong>Estimated Completion:</strong> {{.EstimatedTime}}</p>{{end}}
<p>Visit your dashboard for more details.</p>
`))

// NewRequestAdminEmail is the notification sent to the admin when a request is created
func NewRequestAdminEmail(userName, userEmail, serviceName string, requestID uint) (EmailContent, error) {
	html, err := render(newRequestAdminTmpl, map[string]interface{}{
		"UserName":    userName,
		"UserEmail":   userEmail,
		"ServiceName": serviceName,
		"RequestID":   requestID,
	})
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: fmt.Sprintf("New Service Request: %s", serviceName),
		HTML:    html,
	}, nil
}

// RequestReceivedEmail is the confirmation sent to the requester on creation
func RequestReceivedEmail(userName, serviceName string) (EmailContent, error) {
	html, err := render(requestReceivedTmpl, map[string]interface{}{
		"UserName":    userName,
		"ServiceName": serviceName,
	})
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: fmt.Sprintf("We received your request: %s", serviceName),
		HTML:    html,
	}, nil
}

// AdminReviewedEmail is sent to the requester when the admin first views the request
func AdminReviewedEmail(userName, serviceName string) (EmailContent, error) {
	html, err := render(adminReviewedTmpl, map[string]interface{}{
		"UserName":    userName,
		"ServiceName": serviceName,
	})
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: fmt.Sprintf("Update on your request: %s", serviceName),
		HTML:    html,
	}, nil
}

// StatusChangedEmail is sent to the requester whenever the request status changes
func StatusChangedEmail(userName, serviceName, status string, estimatedTime *string) (EmailContent, error) {
	var statusMessage template.HTML
	switch status {
	case "in_progress":
		statusMessage = "is now <strong>In Progress</strong>."
	case "resolved":
		statusMessage = "has been <strong>Resolved</strong>."
	default:
		statusMessage = template.HTML(fmt.Sprintf("status has been updated to <strong>%s</strong>.", template.HTMLEscapeString(status)))
	}

	data := map[string]interface{}{
		"UserName":      userName,
		"ServiceName":   serviceName,
		"StatusMessage": statusMessage,
	}
	if estimatedTime != nil && *estimatedTime != "" {
		data["EstimatedTime"] = *estimatedTime
	}

	html, err := render(statusChangedTmpl, data)
	if err != nil {
		return EmailContent{}, err
	}
	return EmailContent{
		Subject: fmt.Sprintf("Status Update: %s", serviceName),
		HTML:    html,
	}, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
