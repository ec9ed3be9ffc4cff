package services

import (
	"go.uber.org/zap"

	"github.com/meridian-ca/meridian-ca-api/models"
)

// RequestNotifier sends the transactional emails triggered by service request
// writes. Delivery is at-most-once: failures are logged and swallowed so they
// can never fail the document write that triggered them.
type RequestNotifier struct {
	sender     EmailSender
	adminEmail string
	logger     *zap.Logger
}

var requestNotifierInstance *RequestNotifier

// InitRequestNotifier initializes the global request notifier
func InitRequestNotifier(sender EmailSender, adminEmail string, logger *zap.Logger) *RequestNotifier {
	requestNotifierInstance = NewRequestNotifier(sender, adminEmail, logger)
	return requestNotifierInstance
}

// GetRequestNotifier returns the initialized request notifier instance
func GetRequestNotifier() *RequestNotifier {
	return requestNotifierInstance
}

// SetRequestNotifier sets the request notifier instance (primarily for testing)
func SetRequestNotifier(n *RequestNotifier) {
	requestNotifierInstance = n
}

// NewRequestNotifier creates a request notifier
func NewRequestNotifier(sender EmailSender, adminEmail string, logger *zap.Logger) *RequestNotifier {
	return &RequestNotifier{
		sender:     sender,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// RequestCreated handles a newly created service request: one email to the
// admin with the request details and one confirmation to the requester.
func (n *RequestNotifier) RequestCreated(req *models.ServiceRequest) {
	adminContent, err := NewRequestAdminEmail(req.UserName, req.UserEmail, req.ServiceName, req.ID)
	n.deliver(n.adminEmail, adminContent, err, "new_request_admin", req.ID)

	userContent, err := RequestReceivedEmail(req.UserName, req.ServiceName)
	n.deliver(req.UserEmail, userContent, err, "request_received", req.ID)
}

// RequestUpdated compares the request before and after an admin update. A
// seenByAdmin flip from false to true sends a "reviewed" email; a status
// change sends a status-update email. Both fire when both conditions hold;
// field-only edits (notes, estimate) send nothing.
func (n *RequestNotifier) RequestUpdated(before, after *models.ServiceRequest) {
	if !before.SeenByAdmin && after.SeenByAdmin {
		content, err := AdminReviewedEmail(after.UserName, after.ServiceName)
		n.deliver(after.UserEmail, content, err, "admin_reviewed", after.ID)
	}

	if before.Status != after.Status {
		content, err := StatusChangedEmail(after.UserName, after.ServiceName, after.Status, after.EstimatedTime)
		n.deliver(after.UserEmail, content, err, "status_changed", after.ID)
	}
}

func (n *RequestNotifier) deliver(to string, content EmailContent, renderErr error, kind string, requestID uint) {
	if renderErr != nil {
		n.logger.Error("failed to render notification email",
			zap.String("kind", kind), zap.Uint("request_id", requestID), zap.Error(renderErr))
		return
	}
	if to == "" {
		n.logger.Warn("notification email skipped, no recipient configured",
			zap.String("kind", kind), zap.Uint("request_id", requestID))
		return
	}
	if err := n.sender.Send(to, content.Subject, content.HTML); err != nil {
		n.logger.Error("failed to send notification email",
			zap.String("kind", kind), zap.Uint("request_id", requestID), zap.Error(err))
		return
	}
	n.logger.Info("notification email dispatched",
		zap.String("kind", kind), zap.Uint("request_id", requestID))
}
