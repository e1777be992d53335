// Inbound email webhook handler.
//
// Email forwarding services (or a mail rule on the subscriber's account)
// POST each portal alert email here as JSON. The shared secret in the
// X-Inbound-Secret header is the only authentication: a missing or wrong
// value is rejected with 403 before the body is read into the pipeline.
package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bridgepark/go-alerts-backend/internal/services"
)

// inboundSecretHeader carries the webhook shared secret.
const inboundSecretHeader = "X-Inbound-Secret"

// IngestService defines webhook ingestion operations consumed by HTTP
// handlers.
type IngestService interface {
	Ingest(ctx context.Context, subject, textBody, htmlBody string) (*services.IngestResult, error)
}

// InboundEmailRequest is the JSON payload posted by the email forwarder.
// Field names follow the common forwarding-service shape; either body may
// be empty.
type InboundEmailRequest struct {
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

// InboundEmailResponse reports what one delivery produced.
type InboundEmailResponse struct {
	OK        bool     `json:"ok"`
	FoundURLs []string `json:"found_urls"`
	New       int      `json:"new"`
}

// InboundEmail handles POST /webhooks/inbound-email.
//
// The secret comparison is constant-time. When no secret is configured the
// endpoint is disabled entirely rather than left open.
func (h *Handlers) InboundEmail(c *gin.Context) {
	if h.inboundSecret == "" {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "inbound webhook is not configured")
		return
	}
	got := c.GetHeader(inboundSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.inboundSecret)) != 1 {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid inbound secret")
		return
	}

	var req InboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.ingestSvc.Ingest(c.Request.Context(), req.Subject, req.TextBody, req.HTMLBody)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	found := res.FoundURLs
	if found == nil {
		found = []string{}
	}
	ok(c, http.StatusOK, InboundEmailResponse{
		OK:        true,
		FoundURLs: found,
		New:       res.New,
	})
}
